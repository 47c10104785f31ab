package session

import (
	"testing"
	"time"
)

func TestManager_GetOrCreate(t *testing.T) {
	m := NewManager("Bus 1", time.Hour)
	defer m.Stop()

	first := m.GetOrCreate("sid-1")
	if snap := first.Snapshot(); snap.Bus != "Bus 1" {
		t.Errorf("expected new selection on default bus, got %s", snap.Bus)
	}

	first.SetRequestedCount(3)

	// Same session ID returns the same selection.
	again := m.GetOrCreate("sid-1")
	if again != first {
		t.Error("expected same selection instance for same session ID")
	}

	// A different session ID gets its own selection.
	other := m.GetOrCreate("sid-2")
	if other == first {
		t.Error("expected distinct selection per session ID")
	}
	if snap := other.Snapshot(); snap.RequestedCount != 1 {
		t.Errorf("expected fresh selection, got requested count %d", snap.RequestedCount)
	}
}

func TestManager_Remove(t *testing.T) {
	m := NewManager("Bus 1", time.Hour)
	defer m.Stop()

	sel := m.GetOrCreate("sid-1")
	sel.SetRequestedCount(2)

	m.Remove("sid-1")

	if snap := m.GetOrCreate("sid-1").Snapshot(); snap.RequestedCount != 1 {
		t.Errorf("expected a fresh selection after Remove, got requested count %d", snap.RequestedCount)
	}
}

func TestManager_EvictsIdleSessions(t *testing.T) {
	m := NewManager("Bus 1", 50*time.Millisecond)
	defer m.Stop()

	m.GetOrCreate("sid-1").SetRequestedCount(3)

	// The sweeper runs at the TTL for short TTLs, so the idle entry must be
	// gone well within a couple of seconds.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		time.Sleep(25 * time.Millisecond)

		m.mu.Lock()
		_, alive := m.sessions["sid-1"]
		m.mu.Unlock()
		if !alive {
			return
		}
	}
	t.Fatal("idle session still present well past its TTL")
}
