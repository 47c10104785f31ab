package session

import (
	"sync"
	"time"
)

type entry struct {
	selection *Selection
	lastSeen  time.Time
}

// Manager tracks one Selection per session ID handed in by the presentation
// shell. Idle selections are evicted after the TTL by a background sweeper,
// mirroring how the other in-memory stores in this service clean up.
type Manager struct {
	mu            sync.Mutex
	sessions      map[string]*entry
	defaultBus    string
	ttl           time.Duration
	sweepInterval time.Duration
	stopCh        chan struct{}
}

func NewManager(defaultBus string, ttl time.Duration) *Manager {
	// Sweep at the TTL when it is shorter than the default interval, so an
	// idle selection never outlives its TTL by more than one sweep.
	sweep := 5 * time.Minute
	if ttl < sweep {
		sweep = ttl
	}

	m := &Manager{
		sessions:      make(map[string]*entry),
		defaultBus:    defaultBus,
		ttl:           ttl,
		sweepInterval: sweep,
		stopCh:        make(chan struct{}),
	}

	go m.cleanup()

	return m
}

// GetOrCreate returns the session's selection, creating a fresh one on the
// default bus for first-time session IDs.
func (m *Manager) GetOrCreate(sessionID string) *Selection {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[sessionID]; ok {
		e.lastSeen = time.Now()
		return e.selection
	}

	e := &entry{
		selection: NewSelection(m.defaultBus),
		lastSeen:  time.Now(),
	}
	m.sessions[sessionID] = e
	return e.selection
}

// Remove drops the session entirely, e.g. after a successful commit.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) cleanup() {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			for id, e := range m.sessions {
				if time.Since(e.lastSeen) > m.ttl {
					delete(m.sessions, id)
				}
			}
			m.mu.Unlock()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Manager) Stop() {
	close(m.stopCh)
}
