// Package session holds per-user provisional seat selections. Selections are
// purely in-memory and never persisted; the record store alone decides what
// is actually booked.
package session

import (
	"sync"

	"busly/pkg/model"
)

// Selection is one user's in-progress pick: a bus, how many seats they want,
// and the seats chosen so far in pick order. Each user interaction has its
// own Selection, so concurrent users never see each other's picks.
type Selection struct {
	mu             sync.Mutex
	bus            string
	requestedCount int
	chosenSeats    []int
}

// Snapshot is an immutable copy of the selection state handed to callers.
type Snapshot struct {
	Bus            string `json:"bus"`
	RequestedCount int    `json:"requested_count"`
	ChosenSeats    []int  `json:"chosen_seats"`
}

func NewSelection(bus string) *Selection {
	return &Selection{
		bus:            bus,
		requestedCount: 1,
	}
}

// SetBus switches the selection to another bus. Picks belong to a bus, so
// switching clears them.
func (s *Selection) SetBus(bus string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bus == s.bus {
		return
	}
	s.bus = bus
	s.chosenSeats = nil
}

// SetRequestedCount clamps n to [1, SeatCapacity]. If the user already
// picked more seats than the new count, the excess picks are silently
// dropped from the end, keeping the first n in pick order. Demoting instead
// of erroring matches how the seat grid behaves when the count shrinks.
func (s *Selection) SetRequestedCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 1 {
		n = 1
	}
	if n > model.SeatCapacity {
		n = model.SeatCapacity
	}

	s.requestedCount = n
	if len(s.chosenSeats) > n {
		s.chosenSeats = s.chosenSeats[:n]
	}
}

// ToggleSeat flips the seat's membership in the selection. Two deliberate
// no-ops, not errors: toggling a seat that is in bookedNow (a stale click on
// a seat someone else committed), and picking beyond the requested count
// (the grid disables further picks, but the core must stay silent too).
func (s *Selection) ToggleSeat(seat int, bookedNow map[int]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := bookedNow[seat]; taken {
		return
	}

	for i, chosen := range s.chosenSeats {
		if chosen == seat {
			s.chosenSeats = append(s.chosenSeats[:i], s.chosenSeats[i+1:]...)
			return
		}
	}

	if len(s.chosenSeats) < s.requestedCount {
		s.chosenSeats = append(s.chosenSeats, seat)
	}
}

// Clear drops all picks, keeping the bus and requested count.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chosenSeats = nil
}

func (s *Selection) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	seats := make([]int, len(s.chosenSeats))
	copy(seats, s.chosenSeats)

	return Snapshot{
		Bus:            s.bus,
		RequestedCount: s.requestedCount,
		ChosenSeats:    seats,
	}
}
