package services

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestOwnerLocksSerializePerOwner(t *testing.T) {
	locks := NewOwnerLocks()
	ownerID := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(ownerID)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	require.Equal(t, 50, counter)
}

func TestOwnerLocksIndependentOwners(t *testing.T) {
	locks := NewOwnerLocks()

	unlockA := locks.Lock(uuid.New())
	defer unlockA()

	// A second owner's lock must not block while the first is held.
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock(uuid.New())
		unlockB()
		close(done)
	}()
	<-done
}
