package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"busly/pkg/model"
)

func newTestRecord(bookingID, bus string, seat int) *model.BookingRecord {
	return &model.BookingRecord{
		BookingID:     bookingID,
		Bus:           bus,
		Seat:          seat,
		RiderName:     "Alice Tan",
		RiderMobile:   "+6591234567",
		BoardingPoint: "Tampines",
		PaymentTime:   "today 3pm",
		// Commits stamp createdAt at millisecond precision; the round trip
		// must not lose it.
		CreatedAt:     time.Date(2026, 8, 30, 10, 0, 0, 123*int(time.Millisecond), time.UTC),
	}
}

func newTestCSVStore(t *testing.T) RecordStore {
	t.Helper()

	store, err := NewCSVRecordStore(filepath.Join(t.TempDir(), "records.csv"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestCSVRecordStore_CreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.csv")

	if _, err := NewCSVRecordStore(path); err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read record file: %v", err)
	}

	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	expected := strings.Join(model.CSVHeader, ",")
	if firstLine != expected {
		t.Errorf("expected header %q, got %q", expected, firstLine)
	}
}

func TestCSVRecordStore_ReopenKeepsRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.csv")

	store, err := NewCSVRecordStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Append(ctx, []*model.BookingRecord{newTestRecord("b-1", "Bus 1", 4)}); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	// Opening the same path again must not truncate.
	reopened, err := NewCSVRecordStore(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}

	count, err := reopened.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 record after reopen, got %d", count)
	}
}

func TestCSVRecordStore_AppendScanRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestCSVStore(t)

	original := newTestRecord("b-1", "Bus 2", 7)
	original.AttachmentRef = "b-1.png"

	if err := store.Append(ctx, []*model.BookingRecord{original}); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	records, err := store.Scan(ctx)
	if err != nil {
		t.Fatalf("failed to scan: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.BookingID != original.BookingID {
		t.Errorf("expected booking ID %s, got %s", original.BookingID, got.BookingID)
	}
	if got.Bus != original.Bus || got.Seat != original.Seat {
		t.Errorf("expected %s seat %d, got %s seat %d", original.Bus, original.Seat, got.Bus, got.Seat)
	}
	if got.RiderName != original.RiderName || got.RiderMobile != original.RiderMobile {
		t.Errorf("rider details did not survive the round trip: %+v", got)
	}
	if got.BoardingPoint != original.BoardingPoint || got.PaymentTime != original.PaymentTime {
		t.Errorf("boarding/payment did not survive the round trip: %+v", got)
	}
	if got.AttachmentRef != original.AttachmentRef {
		t.Errorf("expected attachment ref %s, got %s", original.AttachmentRef, got.AttachmentRef)
	}
	if !got.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("expected created at %v, got %v", original.CreatedAt, got.CreatedAt)
	}
}

func TestCSVRecordStore_AppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestCSVStore(t)

	first := []*model.BookingRecord{
		newTestRecord("b-1", "Bus 1", 4),
		newTestRecord("b-1", "Bus 1", 7),
	}
	second := []*model.BookingRecord{newTestRecord("b-2", "Bus 1", 9)}

	if err := store.Append(ctx, first); err != nil {
		t.Fatalf("failed to append first batch: %v", err)
	}
	if err := store.Append(ctx, second); err != nil {
		t.Fatalf("failed to append second batch: %v", err)
	}

	records, err := store.Scan(ctx)
	if err != nil {
		t.Fatalf("failed to scan: %v", err)
	}

	expectedSeats := []int{4, 7, 9}
	if len(records) != len(expectedSeats) {
		t.Fatalf("expected %d records, got %d", len(expectedSeats), len(records))
	}
	for i, seat := range expectedSeats {
		if records[i].Seat != seat {
			t.Errorf("record %d: expected seat %d, got %d", i, seat, records[i].Seat)
		}
	}
}

func TestCSVRecordStore_FindByBus(t *testing.T) {
	ctx := context.Background()
	store := newTestCSVStore(t)

	records := []*model.BookingRecord{
		newTestRecord("b-1", "Bus 1", 4),
		newTestRecord("b-2", "Bus 2", 4),
		newTestRecord("b-3", "Bus 1", 9),
	}
	if err := store.Append(ctx, records); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	matched, err := store.FindByBus(ctx, "Bus 1")
	if err != nil {
		t.Fatalf("failed to find by bus: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 records for Bus 1, got %d", len(matched))
	}
	for _, record := range matched {
		if record.Bus != "Bus 1" {
			t.Errorf("expected only Bus 1 records, got %s", record.Bus)
		}
	}

	none, err := store.FindByBus(ctx, "Bus 4")
	if err != nil {
		t.Fatalf("failed to find by bus: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no records for Bus 4, got %d", len(none))
	}
}

func TestCSVRecordStore_EmptyAppendIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := newTestCSVStore(t)

	if err := store.Append(ctx, nil); err != nil {
		t.Fatalf("expected nil error for empty append, got %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 records, got %d", count)
	}
}

func TestCSVRecordStore_CancelledContext(t *testing.T) {
	store := newTestCSVStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Append(ctx, []*model.BookingRecord{newTestRecord("b-1", "Bus 1", 4)}); err == nil {
		t.Error("expected error appending with cancelled context")
	}
	if _, err := store.Scan(ctx); err == nil {
		t.Error("expected error scanning with cancelled context")
	}
}
