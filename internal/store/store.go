// ABOUTME: Store interfaces and data types for estatedesk persistence
// ABOUTME: Defines Estate, Property, Visitor structs and the repository interfaces

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrEstateRequired is returned when a property is saved without an estate
var ErrEstateRequired = errors.New("property requires an estate")

// ErrPropertyRequired is returned when a visitor is saved without a property
var ErrPropertyRequired = errors.New("visitor requires a property")

// ErrMissingParent is returned when a row references an estate or property
// that does not exist
var ErrMissingParent = errors.New("referenced parent row does not exist")

// Visitor status values, tracked Expected -> Arrived -> Departed
const (
	VisitorStatusExpected = "Expected"
	VisitorStatusArrived  = "Arrived"
	VisitorStatusDeparted = "Departed"
)

// PropertyType describes one offering of a featured estate
type PropertyType struct {
	Name  string `json:"name"`
	Beds  int    `json:"beds"`
	Baths int    `json:"baths"`
	Sqm   int    `json:"sqm"`
}

// FeaturedDetails is the extended profile carried only by featured estates.
// It is serialized to a single JSON column at the storage boundary.
type FeaturedDetails struct {
	CompanyProfile string         `json:"company_profile"`
	PropertyTypes  []PropertyType `json:"property_types"`
}

// Estate is a top-level property-development site
type Estate struct {
	ID          string
	Name        string
	Address     string
	Description string
	DateAdded   time.Time
	IsFeatured  bool
	Featured    *FeaturedDetails // nil unless IsFeatured; cleared on save otherwise
}

// Property is an individually addressable unit belonging to one estate
type Property struct {
	ID       string
	EstateID string
	Name     string
	Type     string
	Address  string
	Status   string
	OwnerID  string
}

// Visitor is a person expected at a property on a given date and time
type Visitor struct {
	ID              string
	PropertyID      string
	OwnerID         string
	VisitorName     string
	VisitorPhone    string
	AddressVisiting string
	ExpectedDate    string // calendar date, YYYY-MM-DD
	ExpectedTime    string // wall-clock time, HH:MM, no timezone
	GatePassCode    string // 6 digits, issued once at registration
	Status          string // Expected, Arrived, Departed
	DateAdded       time.Time
}

// EstateFilter narrows estate listings
type EstateFilter struct {
	Featured *bool
}

// VisitorFilter narrows visitor listings
type VisitorFilter struct {
	PropertyID string
	Status     string
}

// EstateStore defines estate persistence
type EstateStore interface {
	InsertEstate(ctx context.Context, estate *Estate) error
	GetEstate(ctx context.Context, id string) (*Estate, error)
	ListEstates(ctx context.Context, filter EstateFilter) ([]*Estate, error)
	UpdateEstate(ctx context.Context, estate *Estate) error
	DeleteEstate(ctx context.Context, id string) error
}

// PropertyStore defines property persistence
type PropertyStore interface {
	InsertProperty(ctx context.Context, property *Property) error
	GetProperty(ctx context.Context, id string) (*Property, error)
	ListProperties(ctx context.Context, estateID string) ([]*Property, error)
	UpdateProperty(ctx context.Context, property *Property) error
	DeleteProperty(ctx context.Context, id string) error
}

// VisitorStore defines visitor persistence
type VisitorStore interface {
	AddVisitor(ctx context.Context, visitor *Visitor) error
	InsertVisitor(ctx context.Context, visitor *Visitor) error
	GetVisitor(ctx context.Context, id string) (*Visitor, error)
	ListVisitors(ctx context.Context, filter VisitorFilter) ([]*Visitor, error)
	UpdateVisitor(ctx context.Context, visitor *Visitor) error
	DeleteVisitor(ctx context.Context, id string) error
}
