// Package storage is the record store boundary: named collections of
// JSON-serializable records, always read in full and replaced in full.
package storage

import "context"

// Collection keys. They match the storage keys of the club's previous
// system so an exported data dump can be imported unchanged.
const (
	Members     = "club_members"
	Attendance  = "club_attendance"
	Guests      = "club_guests"
	Charges     = "club_charges"
	MonthlyFees = "club_monthly_fees"
)

// DateLayout is the serialization format for date-only fields.
const DateLayout = "2006-01-02"

// Tx reads and replaces whole collections. Get unmarshals the collection
// stored under key into v; a missing or unreadable collection leaves v
// untouched so callers start from an empty list.
type Tx interface {
	Get(ctx context.Context, key string, v any) error
	Put(ctx context.Context, key string, v any) error
}

// Store adds an atomic read-modify-write spanning multiple collections.
// Ledger operations that touch more than one collection go through Atomic
// so both writes commit or neither does.
type Store interface {
	Tx
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
