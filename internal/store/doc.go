// Package store provides persistent storage for estatedesk using SQLite.
//
// # Architecture
//
// Three repository interfaces cover the estate -> property -> visitor
// hierarchy:
//
//   - EstateStore: estates, with an optional featured-details sub-record
//   - PropertyStore: units belonging to exactly one estate
//   - VisitorStore: expected visitors of a property, with gate pass codes
//
// SQLiteStore implements all three in a single struct over one shared
// *sql.DB handle. The store is the only reader and writer of the database
// file; callers re-fetch affected listings after every mutation.
//
// # Schema versioning
//
// The schema version lives in PRAGMA user_version:
//
//   - version 1: estates and properties
//   - version 2: adds visitors
//
// On open, pending forward migrations are applied in order. Each step uses
// CREATE TABLE IF NOT EXISTS so re-applying is harmless. A brand-new
// database (version 0) is created at the current version and then seeded
// once with a demo estate and two properties; the seed is idempotent by
// estate name.
//
// # Cascading deletes
//
// The engine's foreign keys are declared without native cascade. Deleting
// an estate or property runs inside one transaction that removes children
// before parents, so a failure mid-sequence cannot orphan rows.
//
// # SQLite configuration
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// # Error handling
//
//   - ErrNotFound: requested entity does not exist
//   - ErrEstateRequired / ErrPropertyRequired: missing parent reference
//   - ErrMissingParent: parent reference points at no row
//
// All methods accept context.Context.
package store
