package session

import (
	"reflect"
	"testing"
)

func emptyBooked() map[int]struct{} {
	return map[int]struct{}{}
}

func TestToggleSeat_AddAndRemove(t *testing.T) {
	sel := NewSelection("Bus 1")
	sel.SetRequestedCount(3)

	sel.ToggleSeat(5, emptyBooked())
	sel.ToggleSeat(9, emptyBooked())

	snap := sel.Snapshot()
	if !reflect.DeepEqual(snap.ChosenSeats, []int{5, 9}) {
		t.Fatalf("expected chosen seats [5 9], got %v", snap.ChosenSeats)
	}

	// Toggling a chosen seat removes it.
	sel.ToggleSeat(5, emptyBooked())
	snap = sel.Snapshot()
	if !reflect.DeepEqual(snap.ChosenSeats, []int{9}) {
		t.Fatalf("expected chosen seats [9], got %v", snap.ChosenSeats)
	}
}

func TestToggleSeat_BookedSeatIsNoOp(t *testing.T) {
	sel := NewSelection("Bus 1")
	sel.SetRequestedCount(2)

	booked := map[int]struct{}{7: {}}
	sel.ToggleSeat(7, booked)

	if snap := sel.Snapshot(); len(snap.ChosenSeats) != 0 {
		t.Errorf("expected no seats chosen, got %v", snap.ChosenSeats)
	}
}

func TestToggleSeat_StaleChosenSeatStaysOut(t *testing.T) {
	sel := NewSelection("Bus 1")
	sel.SetRequestedCount(2)
	sel.ToggleSeat(7, emptyBooked())

	// Seat 7 was committed by someone else after the user picked it. A
	// toggle now treats the pick as stale and ignores it rather than
	// removing or re-adding.
	booked := map[int]struct{}{7: {}}
	sel.ToggleSeat(7, booked)

	snap := sel.Snapshot()
	if !reflect.DeepEqual(snap.ChosenSeats, []int{7}) {
		t.Errorf("expected chosen seats unchanged [7], got %v", snap.ChosenSeats)
	}
}

func TestToggleSeat_FullSelectionIsNoOp(t *testing.T) {
	sel := NewSelection("Bus 1")
	sel.SetRequestedCount(2)

	sel.ToggleSeat(1, emptyBooked())
	sel.ToggleSeat(2, emptyBooked())
	sel.ToggleSeat(3, emptyBooked())

	snap := sel.Snapshot()
	if !reflect.DeepEqual(snap.ChosenSeats, []int{1, 2}) {
		t.Errorf("expected chosen seats [1 2], got %v", snap.ChosenSeats)
	}
}

func TestSetRequestedCount_TruncatesStably(t *testing.T) {
	sel := NewSelection("Bus 1")
	sel.SetRequestedCount(3)
	sel.ToggleSeat(2, emptyBooked())
	sel.ToggleSeat(5, emptyBooked())
	sel.ToggleSeat(9, emptyBooked())

	sel.SetRequestedCount(1)

	snap := sel.Snapshot()
	if !reflect.DeepEqual(snap.ChosenSeats, []int{2}) {
		t.Errorf("expected truncation to [2], got %v", snap.ChosenSeats)
	}
	if snap.RequestedCount != 1 {
		t.Errorf("expected requested count 1, got %d", snap.RequestedCount)
	}
}

func TestSetRequestedCount_Clamps(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"below minimum", 0, 1},
		{"negative", -5, 1},
		{"at minimum", 1, 1},
		{"at maximum", 49, 49},
		{"above maximum", 50, 49},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := NewSelection("Bus 1")
			sel.SetRequestedCount(tt.input)
			if snap := sel.Snapshot(); snap.RequestedCount != tt.expected {
				t.Errorf("SetRequestedCount(%d): expected %d, got %d", tt.input, tt.expected, snap.RequestedCount)
			}
		})
	}
}

func TestSetBus_SwitchClearsSelection(t *testing.T) {
	sel := NewSelection("Bus 1")
	sel.SetRequestedCount(2)
	sel.ToggleSeat(4, emptyBooked())

	sel.SetBus("Bus 2")

	snap := sel.Snapshot()
	if snap.Bus != "Bus 2" {
		t.Errorf("expected bus 'Bus 2', got %s", snap.Bus)
	}
	if len(snap.ChosenSeats) != 0 {
		t.Errorf("expected selection cleared, got %v", snap.ChosenSeats)
	}
	if snap.RequestedCount != 2 {
		t.Errorf("expected requested count preserved, got %d", snap.RequestedCount)
	}
}

func TestSetBus_SameBusKeepsSelection(t *testing.T) {
	sel := NewSelection("Bus 1")
	sel.SetRequestedCount(2)
	sel.ToggleSeat(4, emptyBooked())

	sel.SetBus("Bus 1")

	if snap := sel.Snapshot(); !reflect.DeepEqual(snap.ChosenSeats, []int{4}) {
		t.Errorf("expected selection kept, got %v", snap.ChosenSeats)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	sel := NewSelection("Bus 1")
	sel.SetRequestedCount(2)
	sel.ToggleSeat(4, emptyBooked())

	snap := sel.Snapshot()
	snap.ChosenSeats[0] = 99

	if after := sel.Snapshot(); after.ChosenSeats[0] != 4 {
		t.Errorf("mutating a snapshot must not affect the selection, got %v", after.ChosenSeats)
	}
}

func TestClear(t *testing.T) {
	sel := NewSelection("Bus 1")
	sel.SetRequestedCount(3)
	sel.ToggleSeat(1, emptyBooked())
	sel.ToggleSeat(2, emptyBooked())

	sel.Clear()

	snap := sel.Snapshot()
	if len(snap.ChosenSeats) != 0 {
		t.Errorf("expected no seats after clear, got %v", snap.ChosenSeats)
	}
	if snap.Bus != "Bus 1" || snap.RequestedCount != 3 {
		t.Errorf("clear must keep bus and requested count, got %+v", snap)
	}
}
