package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/arborfam/arbor/modules/genealogy/domain/entities/relationship"
	"github.com/arborfam/arbor/pkg/composables"
	"github.com/arborfam/arbor/pkg/serrors"
)

const relationshipColumns = `tenant_id, id, person1_id, person2_id, relation_type, parent_role, created_at`

type RelationshipRepository struct{}

func NewRelationshipRepository() relationship.Repository {
	return &RelationshipRepository{}
}

func (r *RelationshipRepository) GetAll(ctx context.Context) ([]relationship.Relationship, error) {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships
		WHERE tenant_id = $1
		ORDER BY created_at, id`,
		pgTenantID,
	)
	if err != nil {
		return nil, err
	}
	return scanRelationships(rows)
}

func (r *RelationshipRepository) GetByPerson(ctx context.Context, personID uuid.UUID) ([]relationship.Relationship, error) {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships
		WHERE tenant_id = $1 AND (person1_id = $2 OR person2_id = $2)
		ORDER BY created_at, id`,
		pgTenantID, pgUUIDFromUUID(personID),
	)
	if err != nil {
		return nil, err
	}
	return scanRelationships(rows)
}

func (r *RelationshipRepository) Create(ctx context.Context, rel relationship.Relationship) (relationship.Relationship, error) {
	created, err := r.CreateMany(ctx, []relationship.Relationship{rel})
	if err != nil {
		return relationship.Relationship{}, err
	}
	return created[0], nil
}

func (r *RelationshipRepository) CreateMany(ctx context.Context, rels []relationship.Relationship) ([]relationship.Relationship, error) {
	if len(rels) == 0 {
		return nil, nil
	}

	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]relationship.Relationship, 0, len(rels))
	for _, rel := range rels {
		role := ""
		if r := rel.Kind().Role(); r != "" {
			role = string(r)
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO relationships (tenant_id, id, person1_id, person2_id, relation_type, parent_role)
			VALUES ($1, gen_random_uuid(), $2, $3, $4, $5)
			RETURNING `+relationshipColumns,
			pgTenantID,
			pgUUIDFromUUID(rel.Person1ID()),
			pgUUIDFromUUID(rel.Person2ID()),
			rel.Kind().Type(),
			pgText(role),
		)
		created, err := scanRelationship(row)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return nil, serrors.ErrConstraint.WithMessage(
					"duplicate relationship between %s and %s", rel.Person1ID(), rel.Person2ID(),
				)
			}
			return nil, gerrors.Wrap(err, "failed to create relationship")
		}
		out = append(out, created)
	}
	return out, nil
}

func (r *RelationshipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM relationships WHERE tenant_id = $1 AND id = $2`, pgTenantID, pgUUIDFromUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return relationship.ErrNotFound
	}
	return nil
}

func (r *RelationshipRepository) DeleteByPerson(ctx context.Context, personID uuid.UUID) error {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM relationships
		WHERE tenant_id = $1 AND (person1_id = $2 OR person2_id = $2)`,
		pgTenantID, pgUUIDFromUUID(personID),
	)
	return err
}

func (r *RelationshipRepository) DeleteDangling(ctx context.Context) (int64, error) {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM relationships r
		WHERE r.tenant_id = $1
		  AND (NOT EXISTS (SELECT 1 FROM persons p WHERE p.id = r.person1_id)
		    OR NOT EXISTS (SELECT 1 FROM persons p WHERE p.id = r.person2_id))`,
		pgTenantID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanRelationships(rows pgx.Rows) ([]relationship.Relationship, error) {
	defer rows.Close()
	var out []relationship.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}

func scanRelationship(row pgx.Row) (relationship.Relationship, error) {
	var (
		tenantID  pgtype.UUID
		id        pgtype.UUID
		person1ID pgtype.UUID
		person2ID pgtype.UUID
		relType   string
		role      pgtype.Text
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&tenantID, &id, &person1ID, &person2ID, &relType, &role, &createdAt); err != nil {
		return relationship.Relationship{}, err
	}

	kind, err := relationship.KindFromStorage(relType, relationship.Role(textValue(role)))
	if err != nil {
		return relationship.Relationship{}, err
	}
	return relationship.Hydrate(
		uuidFromPgUUID(tenantID),
		uuidFromPgUUID(id),
		uuidFromPgUUID(person1ID),
		uuidFromPgUUID(person2ID),
		kind,
		createdAt.Time,
	), nil
}
