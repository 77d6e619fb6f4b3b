// ABOUTME: Visitor repository methods for the SQLite store
// ABOUTME: AddVisitor issues the 6-digit gate pass code at registration time only

package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// AddVisitor registers a new visitor: it defaults the status to Expected,
// stamps the registration time, and issues a random 6-digit gate pass
// code. The code is generated exactly once here; edits through
// UpdateVisitor never regenerate it. Codes are not guaranteed unique
// across visitors.
func (s *SQLiteStore) AddVisitor(ctx context.Context, visitor *Visitor) error {
	if visitor.Status == "" {
		visitor.Status = VisitorStatusExpected
	}
	if visitor.DateAdded.IsZero() {
		visitor.DateAdded = time.Now().UTC()
	}
	if visitor.GatePassCode == "" {
		code, err := generateGatePassCode()
		if err != nil {
			return fmt.Errorf("generating gate pass code: %w", err)
		}
		visitor.GatePassCode = code
	}

	return s.InsertVisitor(ctx, visitor)
}

// InsertVisitor inserts a visitor row as-is, generating an ID if the
// caller did not supply one. An existing row with the same ID is replaced,
// not duplicated. Returns ErrPropertyRequired when no property is set and
// ErrMissingParent when the property does not exist.
func (s *SQLiteStore) InsertVisitor(ctx context.Context, visitor *Visitor) error {
	if visitor.PropertyID == "" {
		return ErrPropertyRequired
	}
	if visitor.ID == "" {
		visitor.ID = uuid.New().String()
	}
	if visitor.Status == "" {
		visitor.Status = VisitorStatusExpected
	}
	if visitor.DateAdded.IsZero() {
		visitor.DateAdded = time.Now().UTC()
	}

	query := `
		INSERT INTO visitors (id, property_id, owner_id, visitor_name, visitor_phone,
			address_visiting, expected_date, expected_time, gate_pass_code, status, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			property_id = excluded.property_id,
			owner_id = excluded.owner_id,
			visitor_name = excluded.visitor_name,
			visitor_phone = excluded.visitor_phone,
			address_visiting = excluded.address_visiting,
			expected_date = excluded.expected_date,
			expected_time = excluded.expected_time,
			gate_pass_code = excluded.gate_pass_code,
			status = excluded.status,
			date_added = excluded.date_added
	`

	_, err := s.db.ExecContext(ctx, query,
		visitor.ID,
		visitor.PropertyID,
		nullString(visitor.OwnerID),
		visitor.VisitorName,
		visitor.VisitorPhone,
		visitor.AddressVisiting,
		visitor.ExpectedDate,
		visitor.ExpectedTime,
		nullString(visitor.GatePassCode),
		visitor.Status,
		visitor.DateAdded.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrMissingParent
		}
		return fmt.Errorf("inserting visitor: %w", err)
	}

	s.logger.Debug("inserted visitor", "id", visitor.ID, "property_id", visitor.PropertyID)
	return nil
}

// GetVisitor retrieves a visitor by ID.
// Returns ErrNotFound if the visitor doesn't exist.
func (s *SQLiteStore) GetVisitor(ctx context.Context, id string) (*Visitor, error) {
	query := `
		SELECT id, property_id, owner_id, visitor_name, visitor_phone, address_visiting,
			expected_date, expected_time, gate_pass_code, status, date_added
		FROM visitors
		WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)
	visitor, err := scanVisitor(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying visitor: %w", err)
	}
	return visitor, nil
}

// ListVisitors returns visitors ordered by expected date and time, most
// recent first, optionally filtered by property and status.
func (s *SQLiteStore) ListVisitors(ctx context.Context, filter VisitorFilter) ([]*Visitor, error) {
	query := `
		SELECT id, property_id, owner_id, visitor_name, visitor_phone, address_visiting,
			expected_date, expected_time, gate_pass_code, status, date_added
		FROM visitors
	`
	var conds []string
	var args []any
	if filter.PropertyID != "" {
		conds = append(conds, "property_id = ?")
		args = append(args, filter.PropertyID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY expected_date DESC, expected_time DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying visitors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var visitors []*Visitor
	for rows.Next() {
		visitor, err := scanVisitor(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning visitor row: %w", err)
		}
		visitors = append(visitors, visitor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visitor rows: %w", err)
	}

	return visitors, nil
}

// UpdateVisitor updates an existing visitor. The gate pass code column is
// deliberately not touched: the code issued at registration is permanent.
// Returns ErrNotFound if the visitor doesn't exist.
func (s *SQLiteStore) UpdateVisitor(ctx context.Context, visitor *Visitor) error {
	if visitor.PropertyID == "" {
		return ErrPropertyRequired
	}

	query := `
		UPDATE visitors
		SET property_id = ?, owner_id = ?, visitor_name = ?, visitor_phone = ?,
			address_visiting = ?, expected_date = ?, expected_time = ?, status = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		visitor.PropertyID,
		nullString(visitor.OwnerID),
		visitor.VisitorName,
		visitor.VisitorPhone,
		visitor.AddressVisiting,
		visitor.ExpectedDate,
		visitor.ExpectedTime,
		visitor.Status,
		visitor.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrMissingParent
		}
		return fmt.Errorf("updating visitor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated visitor", "id", visitor.ID)
	return nil
}

// DeleteVisitor removes a visitor by ID.
// Returns ErrNotFound if the visitor doesn't exist.
func (s *SQLiteStore) DeleteVisitor(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting visitor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted visitor", "id", id)
	return nil
}

// scanVisitor reads one visitor row via the given scan function.
func scanVisitor(scan func(dest ...any) error) (*Visitor, error) {
	var visitor Visitor
	var ownerID, gatePassCode sql.NullString
	var dateAddedStr string

	if err := scan(
		&visitor.ID,
		&visitor.PropertyID,
		&ownerID,
		&visitor.VisitorName,
		&visitor.VisitorPhone,
		&visitor.AddressVisiting,
		&visitor.ExpectedDate,
		&visitor.ExpectedTime,
		&gatePassCode,
		&visitor.Status,
		&dateAddedStr,
	); err != nil {
		return nil, err
	}

	visitor.OwnerID = ownerID.String
	visitor.GatePassCode = gatePassCode.String

	dateAdded, err := time.Parse(time.RFC3339, dateAddedStr)
	if err != nil {
		return nil, fmt.Errorf("parsing date_added: %w", err)
	}
	visitor.DateAdded = dateAdded

	return &visitor, nil
}

// generateGatePassCode returns 6 random decimal digits, zero-padded.
func generateGatePassCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
