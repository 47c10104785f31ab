package errors

import "errors"

var (
	// ErrSeatTaken is returned by the record store when an append collides
	// with an already committed (bus, seat) pair.
	ErrSeatTaken = errors.New("seat already booked")

	// ErrLockHeld is returned when the advisory bus lock is held by another
	// in-flight commit.
	ErrLockHeld = errors.New("bus lock held by another commit")

	ErrUnknownBus = errors.New("unknown bus")

	ErrBadExtension = errors.New("attachment extension not allowed")
)
