package persistence

import (
	"context"
	"errors"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
	"github.com/arborfam/arbor/pkg/composables"
)

const personColumns = `tenant_id, id, first_name, last_name, gender, birth_date, death_date,
	photo_url, birth_surname, nickname, created_at, updated_at`

type PersonRepository struct{}

func NewPersonRepository() person.Repository {
	return &PersonRepository{}
}

func (r *PersonRepository) GetPaginated(ctx context.Context, params *person.FindParams) ([]person.Person, int64, error) {
	if params == nil {
		params = &person.FindParams{}
	}

	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	q := strings.TrimSpace(params.Q)

	rows, err := tx.Query(ctx, `
		SELECT `+personColumns+`
		FROM persons
		WHERE tenant_id = $1
		  AND ($2 = '' OR first_name ILIKE '%' || $2 || '%' OR last_name ILIKE '%' || $2 || '%')
		ORDER BY last_name, first_name
		OFFSET $3 LIMIT $4`,
		pgTenantID, q, offset, limit,
	)
	if err != nil {
		return nil, 0, err
	}
	out, err := scanPersons(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM persons
		WHERE tenant_id = $1
		  AND ($2 = '' OR first_name ILIKE '%' || $2 || '%' OR last_name ILIKE '%' || $2 || '%')`,
		pgTenantID, q,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PersonRepository) GetAll(ctx context.Context) ([]person.Person, error) {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+personColumns+`
		FROM persons
		WHERE tenant_id = $1
		ORDER BY last_name, first_name`,
		pgTenantID,
	)
	if err != nil {
		return nil, err
	}
	return scanPersons(rows)
}

func (r *PersonRepository) GetByID(ctx context.Context, id uuid.UUID) (person.Person, error) {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return person.Person{}, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return person.Person{}, err
	}

	row := tx.QueryRow(ctx, `
		SELECT `+personColumns+`
		FROM persons
		WHERE tenant_id = $1 AND id = $2`,
		pgTenantID, pgUUIDFromUUID(id),
	)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return person.Person{}, person.ErrNotFound
		}
		return person.Person{}, err
	}
	return p, nil
}

func (r *PersonRepository) Create(ctx context.Context, p person.Person) (person.Person, error) {
	created, err := r.CreateMany(ctx, []person.Person{p})
	if err != nil {
		return person.Person{}, err
	}
	return created[0], nil
}

func (r *PersonRepository) CreateMany(ctx context.Context, ps []person.Person) ([]person.Person, error) {
	if len(ps) == 0 {
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

	out := make([]person.Person, 0, len(ps))
	for _, p := range ps {
		row := tx.QueryRow(ctx, `
			INSERT INTO persons (
				tenant_id, id, first_name, last_name, gender, birth_date, death_date,
				photo_url, birth_surname, nickname
			)
			VALUES ($1, gen_random_uuid(), $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+personColumns,
			pgTenantID,
			p.FirstName(),
			p.LastName(),
			string(p.Gender()),
			pgText(p.BirthDate().String()),
			pgText(p.DeathDate().String()),
			pgText(p.PhotoURL()),
			pgText(p.BirthSurname()),
			pgText(p.Nickname()),
		)
		created, err := scanPerson(row)
		if err != nil {
			return nil, gerrors.Wrap(err, "failed to create person")
		}
		out = append(out, created)
	}
	return out, nil
}

func (r *PersonRepository) Update(ctx context.Context, p person.Person) error {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE persons
		SET first_name = $3, last_name = $4, gender = $5, birth_date = $6, death_date = $7,
			photo_url = $8, birth_surname = $9, nickname = $10, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		pgTenantID,
		pgUUIDFromUUID(p.ID()),
		p.FirstName(),
		p.LastName(),
		string(p.Gender()),
		pgText(p.BirthDate().String()),
		pgText(p.DeathDate().String()),
		pgText(p.PhotoURL()),
		pgText(p.BirthSurname()),
		pgText(p.Nickname()),
	)
	if err != nil {
		return gerrors.Wrap(err, "failed to update person")
	}
	if tag.RowsAffected() == 0 {
		return person.ErrNotFound
	}
	return nil
}

func (r *PersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM persons WHERE tenant_id = $1 AND id = $2`, pgTenantID, pgUUIDFromUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return person.ErrNotFound
	}
	return nil
}

func scanPersons(rows pgx.Rows) ([]person.Person, error) {
	defer rows.Close()
	var out []person.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPerson(row pgx.Row) (person.Person, error) {
	var (
		tenantID     pgtype.UUID
		id           pgtype.UUID
		firstName    string
		lastName     string
		gender       string
		birthDate    pgtype.Text
		deathDate    pgtype.Text
		photoURL     pgtype.Text
		birthSurname pgtype.Text
		nickname     pgtype.Text
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)
	if err := row.Scan(
		&tenantID, &id, &firstName, &lastName, &gender, &birthDate, &deathDate,
		&photoURL, &birthSurname, &nickname, &createdAt, &updatedAt,
	); err != nil {
		return person.Person{}, err
	}

	return person.Hydrate(
		uuidFromPgUUID(tenantID),
		uuidFromPgUUID(id),
		firstName,
		lastName,
		person.Gender(gender),
		person.PartialDate(textValue(birthDate)),
		person.PartialDate(textValue(deathDate)),
		textValue(photoURL),
		textValue(birthSurname),
		textValue(nickname),
		createdAt.Time,
		updatedAt.Time,
	), nil
}
