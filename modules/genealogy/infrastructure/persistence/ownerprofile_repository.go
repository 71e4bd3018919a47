package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/arborfam/arbor/modules/genealogy/domain/entities/ownerprofile"
	"github.com/arborfam/arbor/pkg/composables"
)

type OwnerProfileRepository struct{}

func NewOwnerProfileRepository() ownerprofile.Repository {
	return &OwnerProfileRepository{}
}

func (r *OwnerProfileRepository) GetProfilePersonID(ctx context.Context) (uuid.UUID, error) {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	var personID pgtype.UUID
	err = tx.QueryRow(ctx, `
		SELECT profile_person_id FROM owner_settings WHERE tenant_id = $1`,
		pgTenantID,
	).Scan(&personID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return uuidFromPgUUID(personID), nil
}

func (r *OwnerProfileRepository) SetProfilePersonID(ctx context.Context, personID uuid.UUID) error {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO owner_settings (tenant_id, profile_person_id)
		VALUES ($1, $2)
		ON CONFLICT (tenant_id) DO UPDATE SET profile_person_id = EXCLUDED.profile_person_id`,
		pgTenantID, pgUUIDFromUUID(personID),
	)
	return err
}
