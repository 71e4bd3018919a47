package relationship

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("relationship not found")
	ErrSelfRelation = errors.New("relationship endpoints must differ")
)

type Role string

const (
	RoleMother Role = "mother"
	RoleFather Role = "father"
)

// Kind is a closed set: a relationship is either a directed parent edge
// carrying a role, or one half of a symmetric spouse pair. Modelling it as a
// sealed interface keeps the dedup key and role-conflict rules exhaustive.
type Kind interface {
	isKind()
	// Type is the storage discriminator.
	Type() string
	// Role is the parent role, or "" for kinds that have none.
	Role() Role
}

type ParentOf struct {
	ParentRole Role
}

func (ParentOf) isKind()        {}
func (ParentOf) Type() string   { return "parentOf" }
func (k ParentOf) Role() Role   { return k.ParentRole }

type Spouse struct{}

func (Spouse) isKind()      {}
func (Spouse) Type() string { return "spouse" }
func (Spouse) Role() Role   { return "" }

// KindFromStorage rebuilds a Kind from its stored discriminator and role.
func KindFromStorage(typ string, role Role) (Kind, error) {
	switch typ {
	case "parentOf":
		if role != RoleMother && role != RoleFather && role != "" {
			return nil, errors.New("unknown parent role: " + string(role))
		}
		return ParentOf{ParentRole: role}, nil
	case "spouse":
		return Spouse{}, nil
	default:
		return nil, errors.New("unknown relationship type: " + typ)
	}
}

// Relationship is a directed edge between two persons of one owner. For
// parentOf, Person1 is the parent of Person2. Spouse relationships always
// exist as two mirrored rows.
type Relationship struct {
	tenantID  uuid.UUID
	id        uuid.UUID
	person1ID uuid.UUID
	person2ID uuid.UUID
	kind      Kind
	createdAt time.Time
}

func New(tenantID, person1ID, person2ID uuid.UUID, kind Kind) (Relationship, error) {
	if person1ID == person2ID {
		return Relationship{}, ErrSelfRelation
	}
	return Relationship{
		tenantID:  tenantID,
		person1ID: person1ID,
		person2ID: person2ID,
		kind:      kind,
	}, nil
}

// NewSpousePair returns both directions of a spouse relationship.
func NewSpousePair(tenantID, a, b uuid.UUID) ([]Relationship, error) {
	first, err := New(tenantID, a, b, Spouse{})
	if err != nil {
		return nil, err
	}
	second, err := New(tenantID, b, a, Spouse{})
	if err != nil {
		return nil, err
	}
	return []Relationship{first, second}, nil
}

func Hydrate(tenantID, id, person1ID, person2ID uuid.UUID, kind Kind, createdAt time.Time) Relationship {
	return Relationship{
		tenantID:  tenantID,
		id:        id,
		person1ID: person1ID,
		person2ID: person2ID,
		kind:      kind,
		createdAt: createdAt,
	}
}

func (r Relationship) TenantID() uuid.UUID  { return r.tenantID }
func (r Relationship) ID() uuid.UUID        { return r.id }
func (r Relationship) Person1ID() uuid.UUID { return r.person1ID }
func (r Relationship) Person2ID() uuid.UUID { return r.person2ID }
func (r Relationship) Kind() Kind           { return r.kind }
func (r Relationship) CreatedAt() time.Time { return r.createdAt }

// Key identifies a relationship up to duplication: two rows with equal keys
// describe the same edge. A parent edge without a role is distinct from one
// carrying mother or father.
type Key struct {
	Person1ID uuid.UUID
	Person2ID uuid.UUID
	Type      string
	Role      Role
}

func (r Relationship) DedupKey() Key {
	return Key{
		Person1ID: r.person1ID,
		Person2ID: r.person2ID,
		Type:      r.kind.Type(),
		Role:      r.kind.Role(),
	}
}

// Deduplicate collapses rows with equal dedup keys, keeping the first
// occurrence and preserving order. It is idempotent.
func Deduplicate(rels []Relationship) []Relationship {
	seen := make(map[Key]struct{}, len(rels))
	out := make([]Relationship, 0, len(rels))
	for _, rel := range rels {
		key := rel.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rel)
	}
	return out
}
