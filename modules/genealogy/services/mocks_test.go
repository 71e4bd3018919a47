package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
	"github.com/arborfam/arbor/modules/genealogy/domain/entities/relationship"
	"github.com/arborfam/arbor/pkg/composables"
	"github.com/arborfam/arbor/pkg/constants"
)

// stubTx satisfies the transaction check in InTenantTx without a database.
// None of its methods are expected to be called by mock-backed tests.
type stubTx struct{ pgx.Tx }

func testContext(tenantID uuid.UUID) context.Context {
	ctx := composables.WithTenantID(context.Background(), tenantID)
	return context.WithValue(ctx, constants.TxKey, stubTx{})
}

type personRepositoryMock struct {
	mu      sync.Mutex
	persons map[uuid.UUID]person.Person
	order   []uuid.UUID
}

func newPersonRepositoryMock() *personRepositoryMock {
	return &personRepositoryMock{persons: make(map[uuid.UUID]person.Person)}
}

func (m *personRepositoryMock) add(p person.Person) person.Person {
	if p.ID() == uuid.Nil {
		p = rehydrate(p, uuid.New())
	}
	m.persons[p.ID()] = p
	m.order = append(m.order, p.ID())
	return p
}

func rehydrate(p person.Person, id uuid.UUID) person.Person {
	return person.Hydrate(
		p.TenantID(), id, p.FirstName(), p.LastName(), p.Gender(),
		p.BirthDate(), p.DeathDate(), p.PhotoURL(), p.BirthSurname(), p.Nickname(),
		time.Now(), time.Now(),
	)
}

func (m *personRepositoryMock) GetPaginated(ctx context.Context, params *person.FindParams) ([]person.Person, int64, error) {
	all, err := m.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	var out []person.Person
	for _, p := range all {
		if params.Q == "" || strings.Contains(strings.ToLower(p.DisplayName()), strings.ToLower(params.Q)) {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *personRepositoryMock) GetAll(_ context.Context) ([]person.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]person.Person, 0, len(m.order))
	for _, id := range m.order {
		if p, ok := m.persons[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *personRepositoryMock) GetByID(_ context.Context, id uuid.UUID) (person.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.persons[id]
	if !ok {
		return person.Person{}, person.ErrNotFound
	}
	return p, nil
}

func (m *personRepositoryMock) Create(_ context.Context, p person.Person) (person.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(p), nil
}

func (m *personRepositoryMock) CreateMany(_ context.Context, ps []person.Person) ([]person.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]person.Person, 0, len(ps))
	for _, p := range ps {
		out = append(out, m.add(p))
	}
	return out, nil
}

func (m *personRepositoryMock) Update(_ context.Context, p person.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.persons[p.ID()]; !ok {
		return person.ErrNotFound
	}
	m.persons[p.ID()] = p
	return nil
}

func (m *personRepositoryMock) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.persons[id]; !ok {
		return person.ErrNotFound
	}
	delete(m.persons, id)
	return nil
}

type relationshipRepositoryMock struct {
	mu            sync.Mutex
	rels          map[uuid.UUID]relationship.Relationship
	order         []uuid.UUID
	danglingCalls int
}

func newRelationshipRepositoryMock() *relationshipRepositoryMock {
	return &relationshipRepositoryMock{rels: make(map[uuid.UUID]relationship.Relationship)}
}

func (m *relationshipRepositoryMock) add(rel relationship.Relationship) relationship.Relationship {
	if rel.ID() == uuid.Nil {
		rel = relationship.Hydrate(rel.TenantID(), uuid.New(), rel.Person1ID(), rel.Person2ID(), rel.Kind(), time.Now())
	}
	m.rels[rel.ID()] = rel
	m.order = append(m.order, rel.ID())
	return rel
}

func (m *relationshipRepositoryMock) GetAll(_ context.Context) ([]relationship.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]relationship.Relationship, 0, len(m.order))
	for _, id := range m.order {
		if rel, ok := m.rels[id]; ok {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (m *relationshipRepositoryMock) GetByPerson(ctx context.Context, personID uuid.UUID) ([]relationship.Relationship, error) {
	all, err := m.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []relationship.Relationship
	for _, rel := range all {
		if rel.Person1ID() == personID || rel.Person2ID() == personID {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (m *relationshipRepositoryMock) Create(_ context.Context, rel relationship.Relationship) (relationship.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(rel), nil
}

func (m *relationshipRepositoryMock) CreateMany(_ context.Context, rels []relationship.Relationship) ([]relationship.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]relationship.Relationship, 0, len(rels))
	for _, rel := range rels {
		out = append(out, m.add(rel))
	}
	return out, nil
}

func (m *relationshipRepositoryMock) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rels[id]; !ok {
		return relationship.ErrNotFound
	}
	delete(m.rels, id)
	return nil
}

func (m *relationshipRepositoryMock) DeleteByPerson(ctx context.Context, personID uuid.UUID) error {
	rels, err := m.GetByPerson(ctx, personID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rel := range rels {
		delete(m.rels, rel.ID())
	}
	return nil
}

func (m *relationshipRepositoryMock) DeleteDangling(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.danglingCalls++
	return 0, nil
}

type profileRepositoryMock struct {
	personID uuid.UUID
}

func (m *profileRepositoryMock) GetProfilePersonID(_ context.Context) (uuid.UUID, error) {
	return m.personID, nil
}

func (m *profileRepositoryMock) SetProfilePersonID(_ context.Context, personID uuid.UUID) error {
	m.personID = personID
	return nil
}

type publisherMock struct {
	mu     sync.Mutex
	events []interface{}
}

func (m *publisherMock) Publish(args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, args...)
}

func (m *publisherMock) Subscribe(handler interface{})   {}
func (m *publisherMock) Unsubscribe(handler interface{}) {}
func (m *publisherMock) Clear()                          {}
func (m *publisherMock) SubscribersCount() int           { return 0 }
