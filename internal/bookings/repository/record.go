package repository

import (
	"context"

	"busly/pkg/model"
)

// RecordStore is the durable, append-only table of committed seat-rows. It is
// the source of truth for seat occupancy. Implementations must make Append
// all-or-nothing and atomic with respect to concurrent appends.
type RecordStore interface {
	// Append durably persists all records or none of them. Existing rows are
	// never mutated or deleted.
	Append(ctx context.Context, records []*model.BookingRecord) error

	// FindByBus returns every stored record for the given bus, in storage
	// order. Each call reads the latest committed state.
	FindByBus(ctx context.Context, bus string) ([]*model.BookingRecord, error)

	// Scan returns all records in storage order.
	Scan(ctx context.Context) ([]*model.BookingRecord, error)

	Count(ctx context.Context) (int64, error)
}

// BusLockRepository provides the advisory lock serializing commits per bus.
// The lock spans re-check-availability through append, which closes the race
// where two commits both validate against the same pre-conflict snapshot.
type BusLockRepository interface {
	// Acquire takes the lock for the bus, returning a lock ID for release.
	// Returns bookingserrors.ErrLockHeld when another commit holds it.
	Acquire(ctx context.Context, bus string) (string, error)
	Release(ctx context.Context, lockID string) error
}
