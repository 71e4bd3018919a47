package services

import (
	"context"
	"sync"

	"github.com/arborfam/arbor/modules/genealogy/domain/entities/relationship"
	"github.com/arborfam/arbor/pkg/composables"
)

// RecoveryState runs a one-time integrity sweep before the first mutating
// operation of the process: relationship rows left dangling by an interrupted
// merge are deleted. It is injectable and resettable so tests can exercise
// both the first-request and subsequent-request branches.
type RecoveryState struct {
	mu      sync.Mutex
	checked bool
}

func NewRecoveryState() *RecoveryState {
	return &RecoveryState{}
}

func (s *RecoveryState) Ensure(ctx context.Context, rels relationship.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checked {
		return nil
	}

	removed, err := rels.DeleteDangling(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		composables.UseLogger(ctx).WithField("removed", removed).Warn("removed dangling relationships during recovery check")
	}
	s.checked = true
	return nil
}

func (s *RecoveryState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked = false
}
