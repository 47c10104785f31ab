package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	bookingserrors "busly/internal/bookings/errors"

	"github.com/google/uuid"
)

// LockTTL bounds how long a crashed commit can leave a bus locked.
const LockTTL = 10 * time.Second

type memoryLock struct {
	lockID    string
	bus       string
	expiresAt time.Time
}

// memoryBusLockRepository is the advisory lock for single-process
// deployments (the CSV backend). Locks auto-expire after LockTTL so a
// failed commit cannot wedge a bus.
type memoryBusLockRepository struct {
	mu    sync.Mutex
	locks map[string]*memoryLock
}

func NewMemoryBusLockRepository() BusLockRepository {
	return &memoryBusLockRepository{
		locks: make(map[string]*memoryLock),
	}
}

func (r *memoryBusLockRepository) Acquire(ctx context.Context, bus string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.locks[bus]; ok && time.Now().Before(existing.expiresAt) {
		return "", fmt.Errorf("%w: %s", bookingserrors.ErrLockHeld, bus)
	}

	lock := &memoryLock{
		lockID:    uuid.NewString(),
		bus:       bus,
		expiresAt: time.Now().Add(LockTTL),
	}
	r.locks[bus] = lock
	return lock.lockID, nil
}

func (r *memoryBusLockRepository) Release(ctx context.Context, lockID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for bus, lock := range r.locks {
		if lock.lockID == lockID {
			delete(r.locks, bus)
			return nil
		}
	}
	return nil
}
