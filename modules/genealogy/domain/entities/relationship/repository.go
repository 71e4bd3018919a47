package relationship

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetAll(ctx context.Context) ([]Relationship, error)
	GetByPerson(ctx context.Context, personID uuid.UUID) ([]Relationship, error)
	Create(ctx context.Context, rel Relationship) (Relationship, error)
	CreateMany(ctx context.Context, rels []Relationship) ([]Relationship, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByPerson(ctx context.Context, personID uuid.UUID) error
	// DeleteDangling removes rows whose endpoints no longer reference an
	// existing person, and returns how many were removed.
	DeleteDangling(ctx context.Context) (int64, error)
}
