// ABOUTME: Property repository methods for the SQLite store
// ABOUTME: Deleting a property removes its visitors in the same transaction

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// InsertProperty inserts a property, generating an ID if the caller did
// not supply one. An existing row with the same ID is replaced, not
// duplicated. Returns ErrEstateRequired when no estate is set and
// ErrMissingParent when the estate does not exist.
func (s *SQLiteStore) InsertProperty(ctx context.Context, property *Property) error {
	if property.EstateID == "" {
		return ErrEstateRequired
	}
	if property.ID == "" {
		property.ID = uuid.New().String()
	}

	query := `
		INSERT INTO properties (id, estate_id, name, type, address, status, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			estate_id = excluded.estate_id,
			name = excluded.name,
			type = excluded.type,
			address = excluded.address,
			status = excluded.status,
			owner_id = excluded.owner_id
	`

	_, err := s.db.ExecContext(ctx, query,
		property.ID,
		property.EstateID,
		property.Name,
		nullString(property.Type),
		nullString(property.Address),
		nullString(property.Status),
		nullString(property.OwnerID),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrMissingParent
		}
		return fmt.Errorf("inserting property: %w", err)
	}

	s.logger.Debug("inserted property", "id", property.ID, "estate_id", property.EstateID)
	return nil
}

// GetProperty retrieves a property by ID.
// Returns ErrNotFound if the property doesn't exist.
func (s *SQLiteStore) GetProperty(ctx context.Context, id string) (*Property, error) {
	query := `
		SELECT id, estate_id, name, type, address, status, owner_id
		FROM properties
		WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)
	property, err := scanProperty(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying property: %w", err)
	}
	return property, nil
}

// ListProperties returns properties ordered alphabetically by name.
// An empty estateID lists all properties.
func (s *SQLiteStore) ListProperties(ctx context.Context, estateID string) ([]*Property, error) {
	query := `
		SELECT id, estate_id, name, type, address, status, owner_id
		FROM properties
	`
	var args []any
	if estateID != "" {
		query += " WHERE estate_id = ?"
		args = append(args, estateID)
	}
	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying properties: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var properties []*Property
	for rows.Next() {
		property, err := scanProperty(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning property row: %w", err)
		}
		properties = append(properties, property)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating property rows: %w", err)
	}

	return properties, nil
}

// UpdateProperty updates an existing property.
// Returns ErrNotFound if the property doesn't exist.
func (s *SQLiteStore) UpdateProperty(ctx context.Context, property *Property) error {
	if property.EstateID == "" {
		return ErrEstateRequired
	}

	query := `
		UPDATE properties
		SET estate_id = ?, name = ?, type = ?, address = ?, status = ?, owner_id = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		property.EstateID,
		property.Name,
		nullString(property.Type),
		nullString(property.Address),
		nullString(property.Status),
		nullString(property.OwnerID),
		property.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrMissingParent
		}
		return fmt.Errorf("updating property: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated property", "id", property.ID)
	return nil
}

// DeleteProperty removes a property and all of its visitors in one
// transaction, visitors first. Sibling properties and their visitors are
// untouched. Returns ErrNotFound if the property doesn't exist.
func (s *SQLiteStore) DeleteProperty(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM visitors WHERE property_id = ?`, id); err != nil {
		return fmt.Errorf("deleting property visitors: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing property delete: %w", err)
	}

	s.logger.Debug("deleted property", "id", id)
	return nil
}

// scanProperty reads one property row via the given scan function.
func scanProperty(scan func(dest ...any) error) (*Property, error) {
	var property Property
	var propType, address, status, ownerID sql.NullString

	if err := scan(
		&property.ID,
		&property.EstateID,
		&property.Name,
		&propType,
		&address,
		&status,
		&ownerID,
	); err != nil {
		return nil, err
	}

	property.Type = propType.String
	property.Address = address.String
	property.Status = status.String
	property.OwnerID = ownerID.String

	return &property, nil
}
