package services

import (
	"sync"

	"github.com/google/uuid"
)

// OwnerLocks serializes mutating operations per owner. Two imports or merges
// against the same owner's graph never interleave; different owners proceed
// concurrently.
type OwnerLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewOwnerLocks() *OwnerLocks {
	return &OwnerLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the owner's mutex and returns the release function.
func (l *OwnerLocks) Lock(ownerID uuid.UUID) func() {
	l.mu.Lock()
	lock, ok := l.locks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[ownerID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
