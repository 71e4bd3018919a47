package services

import (
	"context"
	"fmt"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
	"github.com/arborfam/arbor/modules/genealogy/domain/entities/importlog"
	"github.com/arborfam/arbor/modules/genealogy/domain/entities/relationship"
	"github.com/arborfam/arbor/modules/genealogy/gedcom"
	"github.com/arborfam/arbor/pkg/composables"
	"github.com/arborfam/arbor/pkg/eventbus"
	"github.com/arborfam/arbor/pkg/serrors"
)

type Resolution string

const (
	ResolutionSkip        Resolution = "skip"
	ResolutionMerge       Resolution = "merge"
	ResolutionImportAsNew Resolution = "import_as_new"
)

// ResolutionDecision is the user's verdict for one parsed individual.
type ResolutionDecision struct {
	GedcomID         string
	Resolution       Resolution
	ExistingPersonID uuid.UUID
}

// ImportSummary reports what one import run produced.
type ImportSummary struct {
	PersonsImported      int
	PersonsMerged        int
	PersonsSkipped       int
	FamiliesProcessed    int
	RelationshipsCreated int
	Log                  *importlog.Log
}

// ImportCompleted is published after a successful import transaction.
type ImportCompleted struct {
	TenantID uuid.UUID
	Summary  *ImportSummary
}

type ImportService struct {
	persons   person.Repository
	rels      relationship.Repository
	publisher eventbus.EventBus
	locks     *OwnerLocks
	recovery  *RecoveryState
}

func NewImportService(
	persons person.Repository,
	rels relationship.Repository,
	publisher eventbus.EventBus,
	locks *OwnerLocks,
	recovery *RecoveryState,
) *ImportService {
	return &ImportService{
		persons:   persons,
		rels:      rels,
		publisher: publisher,
		locks:     locks,
		recovery:  recovery,
	}
}

// importPlan partitions parsed individuals by resolution decision.
type importPlan struct {
	toInsert []gedcom.Individual
	toMerge  []mergeCandidate
	skipped  int
	// idMap resolves GEDCOM ids to person ids. Individuals inserted as new
	// are added once their ids are known.
	idMap map[string]uuid.UUID
}

type mergeCandidate struct {
	individual gedcom.Individual
	existingID uuid.UUID
}

// applyResolutions partitions the import set. Skip and merge map the GEDCOM
// id onto the chosen existing person; import_as_new and undecided individuals
// are inserted as fresh records.
func applyResolutions(individuals []gedcom.Individual, decisions []ResolutionDecision) importPlan {
	byID := make(map[string]ResolutionDecision, len(decisions))
	for _, d := range decisions {
		byID[d.GedcomID] = d
	}

	plan := importPlan{idMap: make(map[string]uuid.UUID, len(individuals))}
	for _, indi := range individuals {
		decision, ok := byID[indi.GedcomID]
		if !ok || decision.Resolution == ResolutionImportAsNew {
			plan.toInsert = append(plan.toInsert, indi)
			continue
		}
		switch decision.Resolution {
		case ResolutionSkip:
			plan.idMap[indi.GedcomID] = decision.ExistingPersonID
			plan.skipped++
		case ResolutionMerge:
			plan.idMap[indi.GedcomID] = decision.ExistingPersonID
			plan.toMerge = append(plan.toMerge, mergeCandidate{individual: indi, existingID: decision.ExistingPersonID})
		default:
			plan.toInsert = append(plan.toInsert, indi)
		}
	}
	return plan
}

// Import persists a parsed GEDCOM file under the user's resolution decisions
// as one atomic unit: person inserts, merge field updates, and derived
// relationships either all land or none do.
func (s *ImportService) Import(
	ctx context.Context,
	parsed *gedcom.Result,
	decisions []ResolutionDecision,
) (*ImportSummary, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(tenantID)
	defer unlock()

	if err := s.recovery.Ensure(ctx, s.rels); err != nil {
		return nil, err
	}

	summary := &ImportSummary{Log: parsed.Log, FamiliesProcessed: len(parsed.Families)}
	if summary.Log == nil {
		summary.Log = &importlog.Log{}
	}
	plan := applyResolutions(parsed.Individuals, decisions)
	summary.PersonsSkipped = plan.skipped

	err = composables.InTenantTx(ctx, func(txCtx context.Context) error {
		inserted, err := s.insertNewPersons(txCtx, tenantID, plan.toInsert, plan.idMap)
		if err != nil {
			return err
		}
		summary.PersonsImported = inserted

		merged, err := s.applyMergeUpdates(txCtx, plan.toMerge, summary.Log)
		if err != nil {
			return err
		}
		summary.PersonsMerged = merged

		rels := relationship.BuildFromFamilies(tenantID, resolveFamilies(parsed.Families, plan.idMap))
		created, err := s.rels.CreateMany(txCtx, rels)
		if err != nil {
			return gerrors.Wrap(err, "failed to insert relationships")
		}
		summary.RelationshipsCreated = len(created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(&ImportCompleted{TenantID: tenantID, Summary: summary})
	return summary, nil
}

func (s *ImportService) insertNewPersons(
	ctx context.Context,
	tenantID uuid.UUID,
	individuals []gedcom.Individual,
	idMap map[string]uuid.UUID,
) (int, error) {
	if len(individuals) == 0 {
		return 0, nil
	}

	persons := make([]person.Person, 0, len(individuals))
	for _, indi := range individuals {
		persons = append(persons, personFromIndividual(tenantID, indi))
	}

	created, err := s.persons.CreateMany(ctx, persons)
	if err != nil {
		return 0, gerrors.Wrap(err, "failed to insert imported persons")
	}
	if len(created) != len(individuals) {
		return 0, fmt.Errorf("expected %d inserted persons, got %d", len(individuals), len(created))
	}
	for i, indi := range individuals {
		idMap[indi.GedcomID] = created[i].ID()
	}
	return len(created), nil
}

// applyMergeUpdates reconciles each merge-resolved individual's fields into
// its existing person. The incoming individual has no stored relationships,
// so no transfer happens here. A reconciliation conflict (gender mismatch)
// keeps the existing record untouched and is logged against the individual.
func (s *ImportService) applyMergeUpdates(ctx context.Context, candidates []mergeCandidate, log *importlog.Log) (int, error) {
	merged := 0
	for _, c := range candidates {
		existing, err := s.persons.GetByID(ctx, c.existingID)
		if err != nil {
			return merged, gerrors.Wrapf(err, "merge target %s", c.existingID)
		}

		incoming := personFromIndividual(existing.TenantID(), c.individual)
		outcome := person.Reconcile(incoming, existing)
		if !outcome.CanMerge() {
			log.Add(importlog.Entry{
				Code:         serrors.ErrValidation.Code,
				GedcomID:     c.individual.GedcomID,
				Name:         c.individual.FullName(),
				Field:        "gender",
				Message:      outcome.Errors[0],
				SuggestedFix: "Resolve the gender conflict and re-import, or import as a new person",
			})
			continue
		}

		if err := s.persons.Update(ctx, outcome.Merged); err != nil {
			return merged, gerrors.Wrapf(err, "failed to update person %s", c.existingID)
		}
		merged++
	}
	return merged, nil
}

// resolveFamilies maps family member GEDCOM ids to person ids. Members with
// no mapping drop out entirely; a relationship must never reference an
// endpoint that does not exist.
func resolveFamilies(families []gedcom.Family, idMap map[string]uuid.UUID) []relationship.FamilyUnit {
	units := make([]relationship.FamilyUnit, 0, len(families))
	for _, fam := range families {
		unit := relationship.FamilyUnit{
			Husband: idMap[fam.Husband],
			Wife:    idMap[fam.Wife],
		}
		for _, child := range fam.Children {
			if id, ok := idMap[child]; ok {
				unit.Children = append(unit.Children, id)
			}
		}
		units = append(units, unit)
	}
	return units
}

func personFromIndividual(tenantID uuid.UUID, indi gedcom.Individual) person.Person {
	return person.New(tenantID, indi.FirstName, indi.LastName, indi.Gender).
		WithBirthDate(indi.BirthDate).
		WithDeathDate(indi.DeathDate).
		WithPhotoURL(indi.PhotoURL)
}
