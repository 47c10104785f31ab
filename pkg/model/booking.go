package model

import (
	"time"
)

// SeatCapacity is the number of seats on every coach. Seat numbers run 1..49.
const SeatCapacity = 49

// BookingRecord is one seat-row of a committed booking. A booking of N seats
// is persisted as N records sharing one BookingID, so availability queries
// never join across bookings. Records are immutable once written.
type BookingRecord struct {
	BookingID     string    `json:"booking_id" bson:"booking_id" validate:"required"`
	Bus           string    `json:"bus" bson:"bus" validate:"required"`
	Seat          int       `json:"seat" bson:"seat" validate:"required,min=1,max=49"`
	RiderName     string    `json:"rider_name" bson:"rider_name" validate:"required"`
	RiderMobile   string    `json:"rider_mobile" bson:"rider_mobile" validate:"required"`
	BoardingPoint string    `json:"boarding_point" bson:"boarding_point" validate:"required"`
	PaymentTime   string    `json:"payment_time" bson:"payment_time" validate:"required"`
	AttachmentRef string    `json:"attachment_ref,omitempty" bson:"attachment_ref,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// RiderDetails is the contact and payment information submitted with a commit.
// PaymentTime is free text as the rider typed it; it is never parsed.
type RiderDetails struct {
	Name          string `json:"name" validate:"required"`
	Mobile        string `json:"mobile" validate:"required"`
	BoardingPoint string `json:"boarding_point" validate:"required,boarding_point"`
	PaymentTime   string `json:"payment_time" validate:"required"`
}

// Attachment is an optional proof-of-payment upload, stored opaquely.
type Attachment struct {
	Data      []byte
	Extension string
}

// CommitResult is returned to the shell after a successful commit.
type CommitResult struct {
	BookingID string `json:"booking_id"`
	Bus       string `json:"bus"`
	Seats     []int  `json:"seats"`
}
