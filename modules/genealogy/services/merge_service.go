package services

import (
	"context"
	"fmt"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
	"github.com/arborfam/arbor/modules/genealogy/domain/entities/ownerprofile"
	"github.com/arborfam/arbor/modules/genealogy/domain/entities/relationship"
	"github.com/arborfam/arbor/pkg/composables"
	"github.com/arborfam/arbor/pkg/eventbus"
	"github.com/arborfam/arbor/pkg/serrors"
)

// MergePreview is the read-only dry run of a merge.
type MergePreview struct {
	CanMerge                bool
	Errors                  []string
	Warnings                []string
	ConflictFields          []string
	Source                  person.Person
	Target                  person.Person
	Merged                  person.Person
	RelationshipsToTransfer []relationship.Relationship
	ExistingRelationships   []relationship.Relationship
}

// MergeResult reports an executed merge.
type MergeResult struct {
	SourceID                 uuid.UUID
	TargetID                 uuid.UUID
	MergedData               person.Person
	RelationshipsTransferred int
}

// PersonsMerged is published after a successful merge transaction.
type PersonsMerged struct {
	TenantID uuid.UUID
	Result   *MergeResult
}

type MergeService struct {
	persons   person.Repository
	rels      relationship.Repository
	profiles  ownerprofile.Repository
	publisher eventbus.EventBus
	locks     *OwnerLocks
	recovery  *RecoveryState
}

func NewMergeService(
	persons person.Repository,
	rels relationship.Repository,
	profiles ownerprofile.Repository,
	publisher eventbus.EventBus,
	locks *OwnerLocks,
	recovery *RecoveryState,
) *MergeService {
	return &MergeService{
		persons:   persons,
		rels:      rels,
		profiles:  profiles,
		publisher: publisher,
		locks:     locks,
		recovery:  recovery,
	}
}

// transferPlan is the relationship side of a merge, computed before writing
// anything so preview and execute cannot disagree.
type transferPlan struct {
	creates []relationship.Relationship
	// replaces pairs a target-side parent edge with the source-side edge
	// that wins its role.
	replaces []replacedEdge
	warnings []string
	conflict bool
}

type replacedEdge struct {
	old relationship.Relationship
	new relationship.Relationship
}

func (p transferPlan) transferred() int { return len(p.creates) + len(p.replaces) }

func (p transferPlan) toTransfer() []relationship.Relationship {
	out := make([]relationship.Relationship, 0, p.transferred())
	out = append(out, p.creates...)
	for _, r := range p.replaces {
		out = append(out, r.new)
	}
	return out
}

// planTransfer remaps every relationship touching source onto target,
// dropping edges that would now point at target itself, skipping edges the
// target already has, and resolving parent-role conflicts in the source's
// favor: the source's mother or father replaces a differing one on target.
// Planned rows are built fresh so they carry no identity; the store assigns
// new ids on insert.
func planTransfer(sourceID, targetID uuid.UUID, sourceRels, targetRels []relationship.Relationship) transferPlan {
	plan := transferPlan{}

	existing := make(map[relationship.Key]struct{}, len(targetRels))
	parentsOfTarget := make(map[relationship.Role]relationship.Relationship)
	for _, rel := range targetRels {
		existing[rel.DedupKey()] = struct{}{}
		if kind, ok := rel.Kind().(relationship.ParentOf); ok && rel.Person2ID() == targetID && kind.Role() != "" {
			parentsOfTarget[kind.Role()] = rel
		}
	}

	// Roles already claimed by an earlier source edge. A person has at most
	// one mother and one father, so later same-role edges from the source
	// are dropped rather than stacked onto the target.
	plannedParents := make(map[relationship.Role]struct{})

	for _, rel := range sourceRels {
		p1, p2 := rel.Person1ID(), rel.Person2ID()
		if p1 == sourceID {
			p1 = targetID
		}
		if p2 == sourceID {
			p2 = targetID
		}
		if p1 == p2 {
			// A relationship between source and target collapses into a
			// self-edge and is discarded.
			continue
		}
		fresh, err := relationship.New(rel.TenantID(), p1, p2, rel.Kind())
		if err != nil {
			continue
		}

		if kind, ok := fresh.Kind().(relationship.ParentOf); ok && fresh.Person2ID() == targetID && kind.Role() != "" {
			role := kind.Role()
			if _, taken := plannedParents[role]; taken {
				plan.warnings = append(plan.warnings, fmt.Sprintf(
					"Source has more than one %s; only the first is kept", role,
				))
				continue
			}
			plannedParents[role] = struct{}{}
			if current, has := parentsOfTarget[role]; has {
				if current.Person1ID() == fresh.Person1ID() {
					continue
				}
				plan.conflict = true
				plan.warnings = append(plan.warnings, fmt.Sprintf(
					"Target already has a %s; the source's %s will replace it", role, role,
				))
				plan.replaces = append(plan.replaces, replacedEdge{old: current, new: fresh})
				continue
			}
			plan.creates = append(plan.creates, fresh)
			continue
		}

		if _, ok := existing[fresh.DedupKey()]; ok {
			continue
		}
		existing[fresh.DedupKey()] = struct{}{}
		plan.creates = append(plan.creates, fresh)
	}
	return plan
}

// Preview runs the merge's field reconciliation and relationship planning
// without writing. Cross-owner ids surface as NotFound through the
// repository, never as Forbidden, so foreign record existence does not leak.
func (s *MergeService) Preview(ctx context.Context, sourceID, targetID uuid.UUID) (*MergePreview, error) {
	return s.preview(ctx, sourceID, targetID)
}

func (s *MergeService) preview(ctx context.Context, sourceID, targetID uuid.UUID) (*MergePreview, error) {
	source, err := s.persons.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.persons.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	out := &MergePreview{Source: source, Target: target}

	if sourceID == targetID {
		out.Errors = append(out.Errors, "Cannot merge a person into itself")
	}
	profileID, err := s.profiles.GetProfilePersonID(ctx)
	if err != nil {
		return nil, err
	}
	if profileID != uuid.Nil && profileID == sourceID {
		out.Errors = append(out.Errors, "Cannot merge away your profile person")
	}

	reconciled := person.Reconcile(source, target)
	out.Merged = reconciled.Merged
	out.Errors = append(out.Errors, reconciled.Errors...)
	out.Warnings = append(out.Warnings, reconciled.Warnings...)
	out.ConflictFields = append(out.ConflictFields, reconciled.ConflictFields...)

	// Repositories scope every read to the requesting owner, so foreign-owned
	// rows linked by a data anomaly never appear in these lists.
	sourceRels, err := s.rels.GetByPerson(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	targetRels, err := s.rels.GetByPerson(ctx, targetID)
	if err != nil {
		return nil, err
	}

	plan := planTransfer(sourceID, targetID, sourceRels, targetRels)
	out.Warnings = append(out.Warnings, plan.warnings...)
	if plan.conflict {
		out.ConflictFields = append(out.ConflictFields, "parents")
	}
	out.RelationshipsToTransfer = plan.toTransfer()
	out.ExistingRelationships = targetRels
	out.CanMerge = len(out.Errors) == 0
	return out, nil
}

// Execute performs the merge as one transaction: field reconciliation onto
// target, relationship transfer with tuple dedup and source-wins role
// conflicts, then removal of the source person. Any failure rolls the whole
// operation back.
func (s *MergeService) Execute(ctx context.Context, sourceID, targetID uuid.UUID) (*MergeResult, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(tenantID)
	defer unlock()

	if err := s.recovery.Ensure(ctx, s.rels); err != nil {
		return nil, err
	}

	result, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*MergeResult, error) {
		preview, err := s.preview(txCtx, sourceID, targetID)
		if err != nil {
			return nil, err
		}
		if !preview.CanMerge {
			return nil, serrors.ErrValidation.WithMessage("%s", preview.Errors[0])
		}

		if err := s.persons.Update(txCtx, preview.Merged); err != nil {
			return nil, gerrors.Wrap(err, "failed to update merge target")
		}

		sourceRels, err := s.rels.GetByPerson(txCtx, sourceID)
		if err != nil {
			return nil, err
		}
		targetRels, err := s.rels.GetByPerson(txCtx, targetID)
		if err != nil {
			return nil, err
		}
		finalPlan := planTransfer(sourceID, targetID, sourceRels, targetRels)

		for _, replaced := range finalPlan.replaces {
			if err := s.rels.Delete(txCtx, replaced.old.ID()); err != nil {
				return nil, gerrors.Wrap(err, "failed to remove replaced parent relationship")
			}
		}
		if err := s.rels.DeleteByPerson(txCtx, sourceID); err != nil {
			return nil, gerrors.Wrap(err, "failed to detach source relationships")
		}
		if _, err := s.rels.CreateMany(txCtx, finalPlan.toTransfer()); err != nil {
			return nil, gerrors.Wrap(err, "failed to transfer relationships")
		}
		if err := s.persons.Delete(txCtx, sourceID); err != nil {
			return nil, gerrors.Wrap(err, "failed to delete source person")
		}

		return &MergeResult{
			SourceID:                 sourceID,
			TargetID:                 targetID,
			MergedData:               preview.Merged,
			RelationshipsTransferred: finalPlan.transferred(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(&PersonsMerged{TenantID: tenantID, Result: result})
	return result, nil
}
