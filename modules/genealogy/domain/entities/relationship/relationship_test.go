package relationship_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arborfam/arbor/modules/genealogy/domain/entities/relationship"
)

func TestNewRejectsSelfRelation(t *testing.T) {
	id := uuid.New()
	_, err := relationship.New(uuid.New(), id, id, relationship.Spouse{})
	require.ErrorIs(t, err, relationship.ErrSelfRelation)
}

func TestKindFromStorage(t *testing.T) {
	kind, err := relationship.KindFromStorage("parentOf", relationship.RoleMother)
	require.NoError(t, err)
	require.Equal(t, relationship.ParentOf{ParentRole: relationship.RoleMother}, kind)

	kind, err = relationship.KindFromStorage("spouse", "")
	require.NoError(t, err)
	require.Equal(t, relationship.Spouse{}, kind)

	_, err = relationship.KindFromStorage("sibling", "")
	require.Error(t, err)

	_, err = relationship.KindFromStorage("parentOf", "uncle")
	require.Error(t, err)
}

func TestDedupKeyDistinguishesRoles(t *testing.T) {
	tenantID := uuid.New()
	parent, child := uuid.New(), uuid.New()

	withRole, err := relationship.New(tenantID, parent, child, relationship.ParentOf{ParentRole: relationship.RoleFather})
	require.NoError(t, err)
	withoutRole, err := relationship.New(tenantID, parent, child, relationship.ParentOf{})
	require.NoError(t, err)

	require.NotEqual(t, withRole.DedupKey(), withoutRole.DedupKey())

	out := relationship.Deduplicate([]relationship.Relationship{withRole, withoutRole})
	require.Len(t, out, 2)
}

func TestDeduplicateKeepsFirstOccurrence(t *testing.T) {
	tenantID := uuid.New()
	parent, child := uuid.New(), uuid.New()

	first, err := relationship.New(tenantID, parent, child, relationship.ParentOf{ParentRole: relationship.RoleMother})
	require.NoError(t, err)
	second, err := relationship.New(tenantID, parent, child, relationship.ParentOf{ParentRole: relationship.RoleMother})
	require.NoError(t, err)

	out := relationship.Deduplicate([]relationship.Relationship{first, second})
	require.Len(t, out, 1)
	require.Equal(t, first, out[0])

	// Idempotent: deduplicating again changes nothing.
	require.Equal(t, out, relationship.Deduplicate(out))
}

func TestBuildFromFamiliesFullFamily(t *testing.T) {
	tenantID := uuid.New()
	husband, wife := uuid.New(), uuid.New()
	child := uuid.New()

	rels := relationship.BuildFromFamilies(tenantID, []relationship.FamilyUnit{
		{Husband: husband, Wife: wife, Children: []uuid.UUID{child}},
	})

	// father→child, mother→child, and both directions of the spouse pair.
	require.Len(t, rels, 4)

	kinds := make(map[relationship.Key]struct{}, len(rels))
	for _, rel := range rels {
		kinds[rel.DedupKey()] = struct{}{}
	}
	require.Contains(t, kinds, relationship.Key{Person1ID: husband, Person2ID: child, Type: "parentOf", Role: relationship.RoleFather})
	require.Contains(t, kinds, relationship.Key{Person1ID: wife, Person2ID: child, Type: "parentOf", Role: relationship.RoleMother})
	require.Contains(t, kinds, relationship.Key{Person1ID: husband, Person2ID: wife, Type: "spouse"})
	require.Contains(t, kinds, relationship.Key{Person1ID: wife, Person2ID: husband, Type: "spouse"})
}

func TestBuildFromFamiliesUnresolvedWife(t *testing.T) {
	tenantID := uuid.New()
	husband, child := uuid.New(), uuid.New()

	rels := relationship.BuildFromFamilies(tenantID, []relationship.FamilyUnit{
		{Husband: husband, Wife: uuid.Nil, Children: []uuid.UUID{child}},
	})

	// No mother edge and no spouse pair: only the father edge survives.
	require.Len(t, rels, 1)
	require.Equal(t, husband, rels[0].Person1ID())
	require.Equal(t, child, rels[0].Person2ID())
	require.Equal(t, relationship.ParentOf{ParentRole: relationship.RoleFather}, rels[0].Kind())
}

func TestBuildFromFamiliesDeduplicatesAcrossFamilies(t *testing.T) {
	tenantID := uuid.New()
	husband, wife := uuid.New(), uuid.New()
	child := uuid.New()

	unit := relationship.FamilyUnit{Husband: husband, Wife: wife, Children: []uuid.UUID{child}}
	rels := relationship.BuildFromFamilies(tenantID, []relationship.FamilyUnit{unit, unit})
	require.Len(t, rels, 4)
}

func TestExcludedRelatives(t *testing.T) {
	tenantID := uuid.New()
	grandparent, parent, target, child := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	cousin := uuid.New()

	edge := func(p1, p2 uuid.UUID) relationship.Relationship {
		rel, err := relationship.New(tenantID, p1, p2, relationship.ParentOf{ParentRole: relationship.RoleFather})
		require.NoError(t, err)
		return rel
	}

	rels := []relationship.Relationship{
		edge(grandparent, parent),
		edge(parent, target),
		edge(target, child),
		edge(grandparent, cousin),
	}

	excluded := relationship.ExcludedRelatives(rels, target)
	require.Contains(t, excluded, target)
	require.Contains(t, excluded, parent)
	require.Contains(t, excluded, grandparent)
	require.Contains(t, excluded, child)
	// A cousin is neither ancestor nor descendant.
	require.NotContains(t, excluded, cousin)
}

func TestExcludedRelativesTerminatesOnCycle(t *testing.T) {
	tenantID := uuid.New()
	a, b := uuid.New(), uuid.New()

	ab, err := relationship.New(tenantID, a, b, relationship.ParentOf{ParentRole: relationship.RoleFather})
	require.NoError(t, err)
	ba, err := relationship.New(tenantID, b, a, relationship.ParentOf{ParentRole: relationship.RoleFather})
	require.NoError(t, err)

	excluded := relationship.ExcludedRelatives([]relationship.Relationship{ab, ba}, a)
	require.Contains(t, excluded, a)
	require.Contains(t, excluded, b)
}
