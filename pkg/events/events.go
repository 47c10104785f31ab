package events

import (
	"context"
	"time"
)

const (
	TypeBookingCommitted = "booking.committed"

	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

// BookingCommitted is emitted after a booking's records are durably appended.
// Consumers must treat the Record Store as the source of truth; this stream
// is best effort.
type BookingCommitted struct {
	BookingID     string    `json:"booking_id"`
	Bus           string    `json:"bus"`
	Seats         []int     `json:"seats"`
	BoardingPoint string    `json:"boarding_point"`
	CreatedAt     time.Time `json:"created_at"`
}

// Publisher emits booking lifecycle events.
type Publisher interface {
	PublishBookingCommitted(ctx context.Context, event BookingCommitted) error
	Close() error
}
