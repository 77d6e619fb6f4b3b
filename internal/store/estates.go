// ABOUTME: Estate repository methods for the SQLite store
// ABOUTME: Featured-estate details are serialized to a single JSON column

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InsertEstate inserts an estate, generating an ID and timestamp if the
// caller did not supply them. An existing row with the same ID is
// replaced, not duplicated. Non-featured estates never persist featured
// details: they are cleared here on save.
func (s *SQLiteStore) InsertEstate(ctx context.Context, estate *Estate) error {
	if estate.ID == "" {
		estate.ID = uuid.New().String()
	}
	if estate.DateAdded.IsZero() {
		estate.DateAdded = time.Now().UTC()
	}
	if !estate.IsFeatured {
		estate.Featured = nil
	}

	featuredJSON, err := marshalFeatured(estate.Featured)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO estates (id, name, address, description, date_added, is_featured, featured_details_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			description = excluded.description,
			date_added = excluded.date_added,
			is_featured = excluded.is_featured,
			featured_details_json = excluded.featured_details_json
	`

	_, err = s.db.ExecContext(ctx, query,
		estate.ID,
		estate.Name,
		nullString(estate.Address),
		nullString(estate.Description),
		estate.DateAdded.UTC().Format(time.RFC3339),
		boolToInt(estate.IsFeatured),
		featuredJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting estate: %w", err)
	}

	s.logger.Debug("inserted estate", "id", estate.ID, "name", estate.Name)
	return nil
}

// GetEstate retrieves an estate by ID.
// Returns ErrNotFound if the estate doesn't exist.
func (s *SQLiteStore) GetEstate(ctx context.Context, id string) (*Estate, error) {
	query := `
		SELECT id, name, address, description, date_added, is_featured, featured_details_json
		FROM estates
		WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)
	estate, err := s.scanEstate(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying estate: %w", err)
	}
	return estate, nil
}

// ListEstates returns estates ordered alphabetically by name, optionally
// filtered to featured (or non-featured) estates.
func (s *SQLiteStore) ListEstates(ctx context.Context, filter EstateFilter) ([]*Estate, error) {
	query := `
		SELECT id, name, address, description, date_added, is_featured, featured_details_json
		FROM estates
	`
	var args []any
	if filter.Featured != nil {
		query += " WHERE is_featured = ?"
		args = append(args, boolToInt(*filter.Featured))
	}
	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying estates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var estates []*Estate
	for rows.Next() {
		estate, err := s.scanEstate(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning estate row: %w", err)
		}
		estates = append(estates, estate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating estate rows: %w", err)
	}

	return estates, nil
}

// UpdateEstate updates an existing estate.
// Returns ErrNotFound if the estate doesn't exist. Featured details are
// cleared when the estate is no longer featured.
func (s *SQLiteStore) UpdateEstate(ctx context.Context, estate *Estate) error {
	if !estate.IsFeatured {
		estate.Featured = nil
	}

	featuredJSON, err := marshalFeatured(estate.Featured)
	if err != nil {
		return err
	}

	query := `
		UPDATE estates
		SET name = ?, address = ?, description = ?, is_featured = ?, featured_details_json = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		estate.Name,
		nullString(estate.Address),
		nullString(estate.Description),
		boolToInt(estate.IsFeatured),
		featuredJSON,
		estate.ID,
	)
	if err != nil {
		return fmt.Errorf("updating estate: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated estate", "id", estate.ID)
	return nil
}

// DeleteEstate removes an estate together with all of its properties and
// their visitors in one transaction, children before parents, so a
// mid-sequence failure cannot leave orphaned rows.
// Returns ErrNotFound if the estate doesn't exist.
func (s *SQLiteStore) DeleteEstate(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM visitors
		WHERE property_id IN (SELECT id FROM properties WHERE estate_id = ?)
	`, id); err != nil {
		return fmt.Errorf("deleting estate visitors: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM properties WHERE estate_id = ?`, id); err != nil {
		return fmt.Errorf("deleting estate properties: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM estates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting estate: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing estate delete: %w", err)
	}

	s.logger.Debug("deleted estate", "id", id)
	return nil
}

// scanEstate reads one estate row via the given scan function, so it works
// for both QueryRow and Rows.
func (s *SQLiteStore) scanEstate(scan func(dest ...any) error) (*Estate, error) {
	var estate Estate
	var address, description, featuredJSON sql.NullString
	var dateAddedStr string
	var isFeatured int

	if err := scan(
		&estate.ID,
		&estate.Name,
		&address,
		&description,
		&dateAddedStr,
		&isFeatured,
		&featuredJSON,
	); err != nil {
		return nil, err
	}

	estate.Address = address.String
	estate.Description = description.String
	estate.IsFeatured = isFeatured != 0

	dateAdded, err := time.Parse(time.RFC3339, dateAddedStr)
	if err != nil {
		return nil, fmt.Errorf("parsing date_added: %w", err)
	}
	estate.DateAdded = dateAdded

	if estate.IsFeatured && featuredJSON.Valid && featuredJSON.String != "" {
		var details FeaturedDetails
		if err := json.Unmarshal([]byte(featuredJSON.String), &details); err != nil {
			// Corrupt display data: log and treat as absent
			s.logger.Warn("malformed featured details, treating as empty", "estate_id", estate.ID, "error", err)
		} else {
			estate.Featured = &details
		}
	}

	return &estate, nil
}

// marshalFeatured serializes featured details, or nil for absent.
func marshalFeatured(details *FeaturedDetails) (any, error) {
	if details == nil {
		return nil, nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encoding featured details: %w", err)
	}
	return string(raw), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
