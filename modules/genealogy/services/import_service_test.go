package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
	"github.com/arborfam/arbor/modules/genealogy/domain/entities/importlog"
	"github.com/arborfam/arbor/modules/genealogy/domain/entities/relationship"
	"github.com/arborfam/arbor/modules/genealogy/gedcom"
	"github.com/arborfam/arbor/pkg/serrors"
)

func TestApplyResolutions(t *testing.T) {
	existingID := uuid.New()
	mergedID := uuid.New()
	individuals := []gedcom.Individual{
		{GedcomID: "I1"},
		{GedcomID: "I2"},
		{GedcomID: "I3"},
		{GedcomID: "I4"},
	}
	decisions := []ResolutionDecision{
		{GedcomID: "I1", Resolution: ResolutionSkip, ExistingPersonID: existingID},
		{GedcomID: "I2", Resolution: ResolutionMerge, ExistingPersonID: mergedID},
		{GedcomID: "I3", Resolution: ResolutionImportAsNew},
	}

	plan := applyResolutions(individuals, decisions)

	// I3 was explicitly imported as new; I4 had no decision at all.
	require.Len(t, plan.toInsert, 2)
	require.Equal(t, "I3", plan.toInsert[0].GedcomID)
	require.Equal(t, "I4", plan.toInsert[1].GedcomID)

	require.Equal(t, 1, plan.skipped)
	require.Equal(t, existingID, plan.idMap["I1"])

	require.Len(t, plan.toMerge, 1)
	require.Equal(t, "I2", plan.toMerge[0].individual.GedcomID)
	require.Equal(t, mergedID, plan.idMap["I2"])
}

func TestImportInsertsMergesAndBuildsRelationships(t *testing.T) {
	tenantID := uuid.New()
	persons := newPersonRepositoryMock()
	rels := newRelationshipRepositoryMock()
	publisher := &publisherMock{}

	mary := persons.add(person.New(tenantID, "Mary", "Jones", person.GenderFemale))
	junior := persons.add(person.New(tenantID, "Junior", "Smith", person.GenderMale))

	svc := NewImportService(persons, rels, publisher, NewOwnerLocks(), NewRecoveryState())

	parsed := &gedcom.Result{
		Individuals: []gedcom.Individual{
			{GedcomID: "I1", FirstName: "John", LastName: "Smith", Gender: person.GenderMale, BirthDate: "1950-03-15"},
			{GedcomID: "I2", FirstName: "Mary", LastName: "Jones", Gender: person.GenderFemale},
			{GedcomID: "I3", FirstName: "Junior", LastName: "Smith", Gender: person.GenderMale},
		},
		Families: []gedcom.Family{
			{ID: "F1", Husband: "I1", Wife: "I2", Children: []string{"I3"}},
		},
		Log: &importlog.Log{},
	}
	decisions := []ResolutionDecision{
		{GedcomID: "I2", Resolution: ResolutionMerge, ExistingPersonID: mary.ID()},
		{GedcomID: "I3", Resolution: ResolutionSkip, ExistingPersonID: junior.ID()},
	}

	summary, err := svc.Import(testContext(tenantID), parsed, decisions)
	require.NoError(t, err)

	require.Equal(t, 1, summary.PersonsImported)
	require.Equal(t, 1, summary.PersonsMerged)
	require.Equal(t, 1, summary.PersonsSkipped)
	require.Equal(t, 1, summary.FamiliesProcessed)
	// father, mother, and both spouse directions.
	require.Equal(t, 4, summary.RelationshipsCreated)

	stored, err := rels.GetAll(testContext(tenantID))
	require.NoError(t, err)
	require.Len(t, stored, 4)

	all, err := persons.GetAll(testContext(tenantID))
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.Len(t, publisher.events, 1)
	completed, ok := publisher.events[0].(*ImportCompleted)
	require.True(t, ok)
	require.Equal(t, tenantID, completed.TenantID)
}

func TestImportUnresolvedFamilyMembersDropOut(t *testing.T) {
	tenantID := uuid.New()
	persons := newPersonRepositoryMock()
	rels := newRelationshipRepositoryMock()
	svc := NewImportService(persons, rels, &publisherMock{}, NewOwnerLocks(), NewRecoveryState())

	// The wife appears in the family but not in the individual list, so she
	// never resolves to a person id.
	parsed := &gedcom.Result{
		Individuals: []gedcom.Individual{
			{GedcomID: "I1", FirstName: "John", LastName: "Smith", Gender: person.GenderMale},
			{GedcomID: "I3", FirstName: "Junior", LastName: "Smith", Gender: person.GenderMale},
		},
		Families: []gedcom.Family{
			{ID: "F1", Husband: "I1", Wife: "I2", Children: []string{"I3"}},
		},
		Log: &importlog.Log{},
	}

	summary, err := svc.Import(testContext(tenantID), parsed, nil)
	require.NoError(t, err)
	require.Equal(t, 2, summary.PersonsImported)
	// Only the father edge: no mother edge and no spouse pair.
	require.Equal(t, 1, summary.RelationshipsCreated)

	stored, _ := rels.GetAll(testContext(tenantID))
	require.Len(t, stored, 1)
	require.Equal(t, relationship.ParentOf{ParentRole: relationship.RoleFather}, stored[0].Kind())
}

func TestImportMergeGenderConflictIsLoggedAndSkipped(t *testing.T) {
	tenantID := uuid.New()
	persons := newPersonRepositoryMock()
	rels := newRelationshipRepositoryMock()
	svc := NewImportService(persons, rels, &publisherMock{}, NewOwnerLocks(), NewRecoveryState())

	existing := persons.add(person.New(tenantID, "Alex", "Smith", person.GenderFemale))

	parsed := &gedcom.Result{
		Individuals: []gedcom.Individual{
			{GedcomID: "I1", FirstName: "Alex", LastName: "Smith", Gender: person.GenderMale},
		},
		Log: &importlog.Log{},
	}
	decisions := []ResolutionDecision{
		{GedcomID: "I1", Resolution: ResolutionMerge, ExistingPersonID: existing.ID()},
	}

	summary, err := svc.Import(testContext(tenantID), parsed, decisions)
	require.NoError(t, err)
	require.Equal(t, 0, summary.PersonsMerged)

	errs := summary.Log.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, serrors.ErrValidation.Code, errs[0].Code)
	require.Equal(t, "I1", errs[0].GedcomID)

	// The existing record is untouched.
	unchanged, err := persons.GetByID(testContext(tenantID), existing.ID())
	require.NoError(t, err)
	require.Equal(t, person.GenderFemale, unchanged.Gender())
}

func TestImportToleratesMissingParseLog(t *testing.T) {
	tenantID := uuid.New()
	persons := newPersonRepositoryMock()
	rels := newRelationshipRepositoryMock()
	svc := NewImportService(persons, rels, &publisherMock{}, NewOwnerLocks(), NewRecoveryState())

	existing := persons.add(person.New(tenantID, "Alex", "Smith", person.GenderFemale))

	// No Log on the parse result; the gender conflict still has to be logged.
	parsed := &gedcom.Result{
		Individuals: []gedcom.Individual{
			{GedcomID: "I1", FirstName: "Alex", LastName: "Smith", Gender: person.GenderMale},
		},
	}
	decisions := []ResolutionDecision{
		{GedcomID: "I1", Resolution: ResolutionMerge, ExistingPersonID: existing.ID()},
	}

	summary, err := svc.Import(testContext(tenantID), parsed, decisions)
	require.NoError(t, err)
	require.NotNil(t, summary.Log)
	require.Len(t, summary.Log.Errors(), 1)
	require.Equal(t, 0, summary.PersonsMerged)
}

func TestImportMergeUpdatesFields(t *testing.T) {
	tenantID := uuid.New()
	persons := newPersonRepositoryMock()
	rels := newRelationshipRepositoryMock()
	svc := NewImportService(persons, rels, &publisherMock{}, NewOwnerLocks(), NewRecoveryState())

	existing := persons.add(person.New(tenantID, "John", "Smith", person.GenderMale).WithBirthDate("1950"))

	parsed := &gedcom.Result{
		Individuals: []gedcom.Individual{
			{GedcomID: "I1", FirstName: "John", LastName: "Smith", Gender: person.GenderMale, BirthDate: "1950-03-15"},
		},
		Log: &importlog.Log{},
	}
	decisions := []ResolutionDecision{
		{GedcomID: "I1", Resolution: ResolutionMerge, ExistingPersonID: existing.ID()},
	}

	summary, err := svc.Import(testContext(tenantID), parsed, decisions)
	require.NoError(t, err)
	require.Equal(t, 1, summary.PersonsMerged)

	updated, err := persons.GetByID(testContext(tenantID), existing.ID())
	require.NoError(t, err)
	require.Equal(t, person.PartialDate("1950-03-15"), updated.BirthDate())
}

func TestRecoveryStateRunsOnce(t *testing.T) {
	tenantID := uuid.New()
	rels := newRelationshipRepositoryMock()
	state := NewRecoveryState()

	require.NoError(t, state.Ensure(testContext(tenantID), rels))
	require.NoError(t, state.Ensure(testContext(tenantID), rels))
	require.Equal(t, 1, rels.danglingCalls)

	state.Reset()
	require.NoError(t, state.Ensure(testContext(tenantID), rels))
	require.Equal(t, 2, rels.danglingCalls)
}
