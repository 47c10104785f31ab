// Package availability derives per-bus seat occupancy from the record store.
package availability

import (
	"context"

	"busly/internal/bookings/repository"
)

// Index answers "which seats are taken on this bus" by scanning the record
// store on every call. There is no cache: a result always reflects the
// latest committed state, including commits from concurrent sessions. Cost
// is O(records for the bus), which the commit path depends on for its
// fresh re-check.
type Index struct {
	store repository.RecordStore
}

func NewIndex(store repository.RecordStore) *Index {
	return &Index{store: store}
}

// BookedSeats returns the set of committed seat numbers for the bus.
func (i *Index) BookedSeats(ctx context.Context, bus string) (map[int]struct{}, error) {
	records, err := i.store.FindByBus(ctx, bus)
	if err != nil {
		return nil, err
	}

	booked := make(map[int]struct{}, len(records))
	for _, record := range records {
		booked[record.Seat] = struct{}{}
	}
	return booked, nil
}
