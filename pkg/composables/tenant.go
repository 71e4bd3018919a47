package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/arborfam/arbor/pkg/constants"
)

var ErrNoTenant = errors.New("no tenant found in context")

// WithTenantID returns a new context scoped to the given owner. Every
// repository call reads the owner from context; rows belonging to other
// owners are invisible.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.TenantIDKey, tenantID)
}

func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	v := ctx.Value(constants.TenantIDKey)
	if v == nil {
		return uuid.Nil, ErrNoTenant
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoTenant
	}
	return id, nil
}
