package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
	"github.com/arborfam/arbor/modules/genealogy/domain/entities/relationship"
	"github.com/arborfam/arbor/modules/genealogy/domain/matching"
	"github.com/arborfam/arbor/modules/genealogy/gedcom"
)

type DuplicateService struct {
	persons person.Repository
	rels    relationship.Repository
}

func NewDuplicateService(persons person.Repository, rels relationship.Repository) *DuplicateService {
	return &DuplicateService{persons: persons, rels: rels}
}

// FindImportDuplicates scores each parsed individual against the owner's
// stored persons. Stored persons carry no GEDCOM family ids, so the parent
// factor contributes only within one id space and scores zero here.
func (s *DuplicateService) FindImportDuplicates(
	ctx context.Context,
	individuals []gedcom.Individual,
	threshold int,
) ([]matching.Candidate, error) {
	if threshold <= 0 {
		threshold = matching.DefaultThreshold
	}

	existing, err := s.persons.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]matching.Record, 0, len(individuals))
	for _, indi := range individuals {
		candidates = append(candidates, recordFromIndividual(indi))
	}
	records := make([]matching.Record, 0, len(existing))
	for _, p := range existing {
		records = append(records, recordFromPerson(p, nil))
	}

	return matching.FindDuplicates(candidates, records, threshold), nil
}

// FindAllDuplicates scores every unordered pair of the owner's persons.
// Parent keys are parent person ids derived from the relationship graph.
func (s *DuplicateService) FindAllDuplicates(ctx context.Context, threshold, limit int) ([]matching.Candidate, error) {
	if threshold <= 0 {
		threshold = matching.DefaultThreshold
	}

	records, err := s.ownerRecords(ctx)
	if err != nil {
		return nil, err
	}

	out := matching.FindAllDuplicates(records, threshold)
	return capCandidates(out, limit), nil
}

// FindDuplicatesForPerson scores one stored person against all others.
func (s *DuplicateService) FindDuplicatesForPerson(
	ctx context.Context,
	personID uuid.UUID,
	threshold, limit int,
) ([]matching.Candidate, error) {
	if threshold <= 0 {
		threshold = matching.DefaultThreshold
	}

	target, err := s.persons.GetByID(ctx, personID)
	if err != nil {
		return nil, err
	}

	records, err := s.ownerRecords(ctx)
	if err != nil {
		return nil, err
	}

	parentsByChild, err := s.parentIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := matching.FindDuplicatesForPerson(recordFromPerson(target, parentsByChild), records, threshold)
	return capCandidates(out, limit), nil
}

// LinkCandidates returns the owner's persons that may be linked as a new
// relative of the given person, excluding the person's own ancestors and
// descendants so a link can never close a parent cycle.
func (s *DuplicateService) LinkCandidates(ctx context.Context, personID uuid.UUID) ([]person.Person, error) {
	all, err := s.persons.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	rels, err := s.rels.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	excluded := relationship.ExcludedRelatives(rels, personID)
	out := make([]person.Person, 0, len(all))
	for _, p := range all {
		if _, ok := excluded[p.ID()]; ok {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *DuplicateService) ownerRecords(ctx context.Context) ([]matching.Record, error) {
	all, err := s.persons.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	parentsByChild, err := s.parentIndex(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]matching.Record, 0, len(all))
	for _, p := range all {
		records = append(records, recordFromPerson(p, parentsByChild))
	}
	return records, nil
}

func (s *DuplicateService) parentIndex(ctx context.Context) (map[uuid.UUID][]string, error) {
	rels, err := s.rels.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	parentsByChild := make(map[uuid.UUID][]string)
	for _, rel := range rels {
		if _, ok := rel.Kind().(relationship.ParentOf); !ok {
			continue
		}
		parentsByChild[rel.Person2ID()] = append(parentsByChild[rel.Person2ID()], rel.Person1ID().String())
	}
	return parentsByChild, nil
}

func recordFromIndividual(indi gedcom.Individual) matching.Record {
	return matching.Record{
		ID:         indi.GedcomID,
		Name:       indi.FullName(),
		BirthDate:  indi.BirthDate,
		ParentKeys: indi.ChildOfFamilies,
	}
}

func recordFromPerson(p person.Person, parentsByChild map[uuid.UUID][]string) matching.Record {
	var parentKeys []string
	if parentsByChild != nil {
		parentKeys = parentsByChild[p.ID()]
	}
	return matching.Record{
		ID:         p.ID().String(),
		Name:       p.DisplayName(),
		BirthDate:  p.BirthDate(),
		ParentKeys: parentKeys,
	}
}

func capCandidates(candidates []matching.Candidate, limit int) []matching.Candidate {
	if limit > 0 && len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}
