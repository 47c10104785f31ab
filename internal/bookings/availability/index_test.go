package availability

import (
	"context"
	"errors"
	"testing"

	"busly/pkg/model"
)

type mockRecordStore struct {
	findByBusFunc func(ctx context.Context, bus string) ([]*model.BookingRecord, error)
}

func (m *mockRecordStore) Append(ctx context.Context, records []*model.BookingRecord) error {
	return nil
}

func (m *mockRecordStore) FindByBus(ctx context.Context, bus string) ([]*model.BookingRecord, error) {
	return m.findByBusFunc(ctx, bus)
}

func (m *mockRecordStore) Scan(ctx context.Context) ([]*model.BookingRecord, error) {
	return nil, nil
}

func (m *mockRecordStore) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func TestBookedSeats(t *testing.T) {
	store := &mockRecordStore{
		findByBusFunc: func(ctx context.Context, bus string) ([]*model.BookingRecord, error) {
			return []*model.BookingRecord{
				{BookingID: "b-1", Bus: bus, Seat: 4},
				{BookingID: "b-1", Bus: bus, Seat: 7},
				{BookingID: "b-2", Bus: bus, Seat: 12},
			}, nil
		},
	}

	index := NewIndex(store)

	booked, err := index.BookedSeats(context.Background(), "Bus 1")
	if err != nil {
		t.Fatalf("failed to get booked seats: %v", err)
	}

	if len(booked) != 3 {
		t.Fatalf("expected 3 booked seats, got %d", len(booked))
	}
	for _, seat := range []int{4, 7, 12} {
		if _, ok := booked[seat]; !ok {
			t.Errorf("expected seat %d to be booked", seat)
		}
	}
	if _, ok := booked[5]; ok {
		t.Error("seat 5 should not be booked")
	}
}

func TestBookedSeats_EmptyBus(t *testing.T) {
	store := &mockRecordStore{
		findByBusFunc: func(ctx context.Context, bus string) ([]*model.BookingRecord, error) {
			return nil, nil
		},
	}

	index := NewIndex(store)

	booked, err := index.BookedSeats(context.Background(), "Bus 3")
	if err != nil {
		t.Fatalf("failed to get booked seats: %v", err)
	}
	if len(booked) != 0 {
		t.Errorf("expected no booked seats, got %d", len(booked))
	}
}

func TestBookedSeats_ReflectsLatestState(t *testing.T) {
	// No caching: each call re-reads the store, so a commit between two
	// calls shows up in the second result.
	records := []*model.BookingRecord{{BookingID: "b-1", Bus: "Bus 1", Seat: 4}}
	store := &mockRecordStore{
		findByBusFunc: func(ctx context.Context, bus string) ([]*model.BookingRecord, error) {
			return records, nil
		},
	}

	index := NewIndex(store)
	ctx := context.Background()

	before, err := index.BookedSeats(ctx, "Bus 1")
	if err != nil {
		t.Fatalf("failed to get booked seats: %v", err)
	}
	if len(before) != 1 {
		t.Fatalf("expected 1 booked seat, got %d", len(before))
	}

	records = append(records, &model.BookingRecord{BookingID: "b-2", Bus: "Bus 1", Seat: 9})

	after, err := index.BookedSeats(ctx, "Bus 1")
	if err != nil {
		t.Fatalf("failed to get booked seats: %v", err)
	}
	if _, ok := after[9]; !ok {
		t.Error("expected seat 9 to appear after the store changed")
	}
}

func TestBookedSeats_StoreError(t *testing.T) {
	storeErr := errors.New("store unavailable")
	store := &mockRecordStore{
		findByBusFunc: func(ctx context.Context, bus string) ([]*model.BookingRecord, error) {
			return nil, storeErr
		},
	}

	index := NewIndex(store)

	if _, err := index.BookedSeats(context.Background(), "Bus 1"); !errors.Is(err, storeErr) {
		t.Errorf("expected store error to propagate, got %v", err)
	}
}
