package person

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Q      string
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Person, int64, error)
	GetAll(ctx context.Context) ([]Person, error)
	GetByID(ctx context.Context, id uuid.UUID) (Person, error)
	Create(ctx context.Context, p Person) (Person, error)
	CreateMany(ctx context.Context, ps []Person) ([]Person, error)
	Update(ctx context.Context, p Person) error
	Delete(ctx context.Context, id uuid.UUID) error
}
