// ABOUTME: One-time demo data seeding for a freshly created database
// ABOUTME: Idempotent by estate name lookup, never duplicates the seed rows

package store

import (
	"context"
	"fmt"
)

// seedEstateName is the natural key the seed checks before inserting.
const seedEstateName = "DIAMOND CITY GROUP LTD"

// Seed inserts the demo estate and its two example properties unless an
// estate with the seed name already exists. Running it again is a silent
// no-op, so it is safe to call on every fresh-create path.
func (s *SQLiteStore) Seed(ctx context.Context) error {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM estates WHERE name = ?`, seedEstateName).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking for seed estate: %w", err)
	}
	if count > 0 {
		return nil
	}

	estate := &Estate{
		Name:        seedEstateName,
		Address:     "1 Diamond City Avenue",
		Description: "Flagship development by Diamond City Group",
		IsFeatured:  true,
		Featured: &FeaturedDetails{
			CompanyProfile: "Diamond City Group builds and manages premium residential estates with gated access, round-the-clock security, and on-site facilities management.",
			PropertyTypes: []PropertyType{
				{Name: "2 Bedroom Apartment", Beds: 2, Baths: 2, Sqm: 85},
				{Name: "3 Bedroom Terrace", Beds: 3, Baths: 3, Sqm: 140},
				{Name: "4 Bedroom Detached Duplex", Beds: 4, Baths: 5, Sqm: 220},
			},
		},
	}

	if err := s.InsertEstate(ctx, estate); err != nil {
		return fmt.Errorf("seeding estate: %w", err)
	}

	properties := []*Property{
		{
			EstateID: estate.ID,
			Name:     "Emerald Court Block A",
			Type:     "Apartment",
			Address:  "Emerald Court, Diamond City",
			Status:   "Available",
		},
		{
			EstateID: estate.ID,
			Name:     "Sapphire Terrace 12",
			Type:     "Terrace",
			Address:  "Sapphire Close, Diamond City",
			Status:   "Occupied",
		},
	}
	for _, p := range properties {
		if err := s.InsertProperty(ctx, p); err != nil {
			return fmt.Errorf("seeding property %q: %w", p.Name, err)
		}
	}

	s.logger.Info("seeded demo data", "estate", seedEstateName, "properties", len(properties))
	return nil
}
