package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createV1Database hand-builds a version-1 database (estates and
// properties only) with existing rows, as an upgrade-path fixture.
func createV1Database(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(migrations[0].apply)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO estates (id, name, address, description, date_added, is_featured, featured_details_json)
		VALUES ('old-estate', 'Legacy Estate', NULL, NULL, ?, 0, NULL)
	`, time.Now().UTC().Format(time.RFC3339))
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO properties (id, estate_id, name, type, address, status, owner_id)
		VALUES ('old-property', 'old-estate', 'Legacy Unit', NULL, NULL, NULL, NULL)
	`)
	require.NoError(t, err)
}

func TestStore_MigrateV1ToV2(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "upgrade.db")
	createV1Database(t, dbPath)

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	// Existing rows are preserved unchanged
	estate, err := store.GetEstate(ctx, "old-estate")
	require.NoError(t, err)
	assert.Equal(t, "Legacy Estate", estate.Name)

	property, err := store.GetProperty(ctx, "old-property")
	require.NoError(t, err)
	assert.Equal(t, "Legacy Unit", property.Name)

	// The visitors table now exists and is empty
	visitors, err := store.ListVisitors(ctx, VisitorFilter{})
	require.NoError(t, err)
	assert.Empty(t, visitors)

	// And is usable
	require.NoError(t, store.AddVisitor(ctx, &Visitor{
		PropertyID:      "old-property",
		VisitorName:     "First Visitor",
		VisitorPhone:    "555",
		AddressVisiting: "Legacy Unit",
		ExpectedDate:    "2024-06-01",
		ExpectedTime:    "10:00",
	}))

	// An upgraded database was not fresh: the demo seed must not run
	estates, err := store.ListEstates(ctx, EstateFilter{})
	require.NoError(t, err)
	require.Len(t, estates, 1)
	assert.Equal(t, "Legacy Estate", estates[0].Name)
}

func TestStore_MigrateIsIdempotentAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening an up-to-date database must not fail or re-seed
	store, err = NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	estates, err := store.ListEstates(context.Background(), EstateFilter{})
	require.NoError(t, err)

	var seedCount int
	for _, e := range estates {
		if e.Name == seedEstateName {
			seedCount++
		}
	}
	assert.Equal(t, 1, seedCount)
}

func TestStore_RejectsNewerSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "future.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = NewSQLiteStore(dbPath)
	assert.Error(t, err)
}
