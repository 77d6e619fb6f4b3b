// ABOUTME: SQLite implementation of the estatedesk repositories using modernc.org/sqlite
// ABOUTME: Versioned schema with forward migrations and one-time demo seeding

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// currentSchemaVersion is the target PRAGMA user_version.
// Version 1: estates and properties. Version 2: adds visitors.
const currentSchemaVersion = 2

// SQLiteStore implements the repository interfaces using SQLite.
// One store is opened per process and shared by injection; it is the only
// reader and writer of the database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// migrations holds the forward migration for each schema version, applied
// in order on open. Each step is idempotent: creating a table that may
// already exist must not fail.
var migrations = []struct {
	version int
	apply   string
}{
	{
		version: 1,
		apply: `
			CREATE TABLE IF NOT EXISTS estates (
				id                    TEXT PRIMARY KEY,
				name                  TEXT NOT NULL,
				address               TEXT,
				description           TEXT,
				date_added            TEXT NOT NULL,
				is_featured           INTEGER NOT NULL DEFAULT 0,
				featured_details_json TEXT
			);

			CREATE INDEX IF NOT EXISTS idx_estates_name ON estates(name);
			CREATE INDEX IF NOT EXISTS idx_estates_featured ON estates(is_featured);

			CREATE TABLE IF NOT EXISTS properties (
				id        TEXT PRIMARY KEY,
				estate_id TEXT NOT NULL REFERENCES estates(id),
				name      TEXT NOT NULL,
				type      TEXT,
				address   TEXT,
				status    TEXT,
				owner_id  TEXT
			);

			CREATE INDEX IF NOT EXISTS idx_properties_estate ON properties(estate_id);
		`,
	},
	{
		version: 2,
		apply: `
			CREATE TABLE IF NOT EXISTS visitors (
				id               TEXT PRIMARY KEY,
				property_id      TEXT NOT NULL REFERENCES properties(id),
				owner_id         TEXT,
				visitor_name     TEXT NOT NULL,
				visitor_phone    TEXT NOT NULL,
				address_visiting TEXT NOT NULL,
				expected_date    TEXT NOT NULL,
				expected_time    TEXT NOT NULL,
				gate_pass_code   TEXT,
				status           TEXT NOT NULL DEFAULT 'Expected',
				date_added       TEXT NOT NULL,

				CHECK (status IN ('Expected', 'Arrived', 'Departed'))
			);

			CREATE INDEX IF NOT EXISTS idx_visitors_property ON visitors(property_id);
			CREATE INDEX IF NOT EXISTS idx_visitors_expected ON visitors(expected_date DESC, expected_time DESC);
		`,
	},
}

// NewSQLiteStore opens (or creates) the estatedesk database at the given
// path, applies any pending migrations, and seeds demo data on first-ever
// creation. Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	fresh, err := s.migrate()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if fresh {
		if err := s.Seed(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("seeding database: %w", err)
		}
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// migrate brings the database schema up to currentSchemaVersion by
// applying each version's forward migration in order. It returns whether
// the database was brand new (version 0 before migrating), which triggers
// the one-time seed.
func (s *SQLiteStore) migrate() (fresh bool, err error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return false, fmt.Errorf("reading schema version: %w", err)
	}

	if version > currentSchemaVersion {
		return false, fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	fresh = version == 0

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := s.db.Exec(m.apply); err != nil {
			return false, fmt.Errorf("applying migration to version %d: %w", m.version, err)
		}
		// PRAGMA does not support placeholders
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return false, fmt.Errorf("recording schema version %d: %w", m.version, err)
		}
		if !fresh {
			s.logger.Info("applied migration", "version", m.version)
		}
	}

	return fresh, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isForeignKeyViolation checks if the error is a SQLite foreign key failure
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// nullString returns nil for empty strings, otherwise the string itself
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Ensure SQLiteStore implements the repository interfaces
var (
	_ EstateStore   = (*SQLiteStore)(nil)
	_ PropertyStore = (*SQLiteStore)(nil)
	_ VisitorStore  = (*SQLiteStore)(nil)
)
