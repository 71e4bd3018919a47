package ownerprofile

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores which person an owner has designated as themselves.
// That person is protected from being merged away.
type Repository interface {
	// GetProfilePersonID returns uuid.Nil when the owner has not designated
	// a profile person.
	GetProfilePersonID(ctx context.Context) (uuid.UUID, error)
	SetProfilePersonID(ctx context.Context, personID uuid.UUID) error
}
