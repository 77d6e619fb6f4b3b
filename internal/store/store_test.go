package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
// The demo seed is removed so tests start from an empty hierarchy.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	ctx := context.Background()
	estates, err := store.ListEstates(ctx, EstateFilter{})
	require.NoError(t, err)
	for _, e := range estates {
		require.NoError(t, store.DeleteEstate(ctx, e.ID))
	}

	return store
}

func TestStore_InsertEstate_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	estate := &Estate{
		Name:        "Acme Gardens",
		Address:     "14 Acme Road",
		Description: "desc",
		IsFeatured:  true,
		Featured: &FeaturedDetails{
			CompanyProfile: "desc",
			PropertyTypes: []PropertyType{
				{Name: "2BR", Beds: 2, Baths: 2, Sqm: 80},
			},
		},
	}

	err := store.InsertEstate(ctx, estate)
	require.NoError(t, err)
	require.NotEmpty(t, estate.ID, "insert should generate an ID")
	require.False(t, estate.DateAdded.IsZero(), "insert should stamp date added")

	retrieved, err := store.GetEstate(ctx, estate.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Gardens", retrieved.Name)
	assert.Equal(t, "14 Acme Road", retrieved.Address)
	assert.True(t, retrieved.IsFeatured)
	require.NotNil(t, retrieved.Featured)
	assert.Equal(t, "desc", retrieved.Featured.CompanyProfile)
	require.Len(t, retrieved.Featured.PropertyTypes, 1)
	assert.Equal(t, PropertyType{Name: "2BR", Beds: 2, Baths: 2, Sqm: 80}, retrieved.Featured.PropertyTypes[0])
}

func TestStore_InsertEstate_NonFeaturedClearsDetails(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// Featured details supplied but isFeatured false: must not persist
	estate := &Estate{
		Name:       "Plain Estate",
		IsFeatured: false,
		Featured: &FeaturedDetails{
			CompanyProfile: "stale",
			PropertyTypes:  []PropertyType{{Name: "1BR", Beds: 1, Baths: 1, Sqm: 40}},
		},
	}

	require.NoError(t, store.InsertEstate(ctx, estate))

	retrieved, err := store.GetEstate(ctx, estate.ID)
	require.NoError(t, err)
	assert.False(t, retrieved.IsFeatured)
	assert.Nil(t, retrieved.Featured, "non-featured estates must serialize featured details as absent")
}

func TestStore_UpdateEstate_UnfeatureDropsDetails(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	estate := &Estate{
		Name:       "Toggle Estate",
		IsFeatured: true,
		Featured: &FeaturedDetails{
			CompanyProfile: "profile",
			PropertyTypes:  []PropertyType{{Name: "3BR", Beds: 3, Baths: 2, Sqm: 120}},
		},
	}
	require.NoError(t, store.InsertEstate(ctx, estate))

	estate.IsFeatured = false
	require.NoError(t, store.UpdateEstate(ctx, estate))

	retrieved, err := store.GetEstate(ctx, estate.ID)
	require.NoError(t, err)
	assert.False(t, retrieved.IsFeatured)
	assert.Nil(t, retrieved.Featured)
}

func TestStore_InsertEstate_UpsertReplacesNotDuplicates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	estate := &Estate{ID: "estate-1", Name: "First Name"}
	require.NoError(t, store.InsertEstate(ctx, estate))

	replacement := &Estate{ID: "estate-1", Name: "Second Name"}
	require.NoError(t, store.InsertEstate(ctx, replacement))

	estates, err := store.ListEstates(ctx, EstateFilter{})
	require.NoError(t, err)
	require.Len(t, estates, 1)
	assert.Equal(t, "Second Name", estates[0].Name)
}

func TestStore_GetEstate_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetEstate(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateEstate_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.UpdateEstate(ctx, &Estate{ID: "nonexistent", Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListEstates_OrderAndFilter(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	featured := &Estate{
		Name:       "Beta Heights",
		IsFeatured: true,
		Featured:   &FeaturedDetails{CompanyProfile: "p"},
	}
	require.NoError(t, store.InsertEstate(ctx, featured))
	require.NoError(t, store.InsertEstate(ctx, &Estate{Name: "Alpha Park"}))
	require.NoError(t, store.InsertEstate(ctx, &Estate{Name: "Gamma Close"}))

	estates, err := store.ListEstates(ctx, EstateFilter{})
	require.NoError(t, err)
	require.Len(t, estates, 3)
	assert.Equal(t, "Alpha Park", estates[0].Name)
	assert.Equal(t, "Beta Heights", estates[1].Name)
	assert.Equal(t, "Gamma Close", estates[2].Name)

	isFeatured := true
	onlyFeatured, err := store.ListEstates(ctx, EstateFilter{Featured: &isFeatured})
	require.NoError(t, err)
	require.Len(t, onlyFeatured, 1)
	assert.Equal(t, "Beta Heights", onlyFeatured[0].Name)
}

func TestStore_Properties_CRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	estate := &Estate{Name: "Host Estate"}
	require.NoError(t, store.InsertEstate(ctx, estate))

	property := &Property{
		EstateID: estate.ID,
		Name:     "Unit 1",
		Type:     "Apartment",
		Status:   "Available",
		OwnerID:  "owner@example.com",
	}
	require.NoError(t, store.InsertProperty(ctx, property))
	require.NotEmpty(t, property.ID)

	retrieved, err := store.GetProperty(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unit 1", retrieved.Name)
	assert.Equal(t, estate.ID, retrieved.EstateID)
	assert.Equal(t, "owner@example.com", retrieved.OwnerID)

	retrieved.Status = "Occupied"
	require.NoError(t, store.UpdateProperty(ctx, retrieved))

	updated, err := store.GetProperty(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, "Occupied", updated.Status)

	require.NoError(t, store.DeleteProperty(ctx, property.ID))
	_, err = store.GetProperty(ctx, property.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_InsertProperty_MissingEstate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.InsertProperty(ctx, &Property{Name: "Orphan Unit"})
	assert.ErrorIs(t, err, ErrEstateRequired)

	err = store.InsertProperty(ctx, &Property{EstateID: "nonexistent", Name: "Orphan Unit"})
	assert.ErrorIs(t, err, ErrMissingParent)
}

func TestStore_ListProperties_FilterByEstate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	estateA := &Estate{Name: "Estate A"}
	estateB := &Estate{Name: "Estate B"}
	require.NoError(t, store.InsertEstate(ctx, estateA))
	require.NoError(t, store.InsertEstate(ctx, estateB))

	require.NoError(t, store.InsertProperty(ctx, &Property{EstateID: estateA.ID, Name: "Zulu Unit"}))
	require.NoError(t, store.InsertProperty(ctx, &Property{EstateID: estateA.ID, Name: "Alpha Unit"}))
	require.NoError(t, store.InsertProperty(ctx, &Property{EstateID: estateB.ID, Name: "Bravo Unit"}))

	properties, err := store.ListProperties(ctx, estateA.ID)
	require.NoError(t, err)
	require.Len(t, properties, 2)
	assert.Equal(t, "Alpha Unit", properties[0].Name, "properties should be ordered by name")
	assert.Equal(t, "Zulu Unit", properties[1].Name)

	all, err := store.ListProperties(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_EstateDateAddedPreserved(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	added := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	estate := &Estate{Name: "Dated Estate", DateAdded: added}
	require.NoError(t, store.InsertEstate(ctx, estate))

	retrieved, err := store.GetEstate(ctx, estate.ID)
	require.NoError(t, err)
	assert.True(t, retrieved.DateAdded.Equal(added))
}
