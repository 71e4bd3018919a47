package mappers

import (
	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
	"github.com/arborfam/arbor/modules/genealogy/domain/entities/importlog"
	"github.com/arborfam/arbor/modules/genealogy/domain/entities/relationship"
	"github.com/arborfam/arbor/modules/genealogy/domain/matching"
	"github.com/arborfam/arbor/modules/genealogy/presentation/viewmodels"
	"github.com/arborfam/arbor/modules/genealogy/services"
)

func PersonToViewModel(p person.Person) viewmodels.Person {
	return viewmodels.Person{
		ID:           p.ID().String(),
		FirstName:    p.FirstName(),
		LastName:     p.LastName(),
		DisplayName:  p.DisplayName(),
		Gender:       string(p.Gender()),
		BirthDate:    p.BirthDate().String(),
		DeathDate:    p.DeathDate().String(),
		PhotoURL:     p.PhotoURL(),
		BirthSurname: p.BirthSurname(),
		Nickname:     p.Nickname(),
	}
}

func RelationshipToViewModel(rel relationship.Relationship) viewmodels.Relationship {
	return viewmodels.Relationship{
		ID:         rel.ID().String(),
		Person1ID:  rel.Person1ID().String(),
		Person2ID:  rel.Person2ID().String(),
		Type:       rel.Kind().Type(),
		ParentRole: string(rel.Kind().Role()),
	}
}

func RelationshipsToViewModels(rels []relationship.Relationship) []viewmodels.Relationship {
	out := make([]viewmodels.Relationship, 0, len(rels))
	for _, rel := range rels {
		out = append(out, RelationshipToViewModel(rel))
	}
	return out
}

func CandidateToViewModel(c matching.Candidate) viewmodels.DuplicateCandidate {
	return viewmodels.DuplicateCandidate{
		Person1: viewmodels.DuplicatePerson{
			ID:          c.A.ID,
			DisplayName: c.A.Name,
			BirthDate:   c.A.BirthDate.String(),
		},
		Person2: viewmodels.DuplicatePerson{
			ID:          c.B.ID,
			DisplayName: c.B.Name,
			BirthDate:   c.B.BirthDate.String(),
		},
		Confidence:     c.Confidence,
		MatchingFields: c.MatchingFields,
	}
}

func CandidatesToViewModels(candidates []matching.Candidate) []viewmodels.DuplicateCandidate {
	out := make([]viewmodels.DuplicateCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, CandidateToViewModel(c))
	}
	return out
}

func PreviewToViewModel(p *services.MergePreview) viewmodels.MergePreview {
	return viewmodels.MergePreview{
		CanMerge: p.CanMerge,
		Validation: viewmodels.MergeValidation{
			Errors:         emptyIfNil(p.Errors),
			Warnings:       emptyIfNil(p.Warnings),
			ConflictFields: emptyIfNil(p.ConflictFields),
		},
		Source:                  PersonToViewModel(p.Source),
		Target:                  PersonToViewModel(p.Target),
		Merged:                  PersonToViewModel(p.Merged),
		RelationshipsToTransfer: RelationshipsToViewModels(p.RelationshipsToTransfer),
		ExistingRelationships:   RelationshipsToViewModels(p.ExistingRelationships),
	}
}

func MergeResultToViewModel(r *services.MergeResult) viewmodels.MergeResult {
	return viewmodels.MergeResult{
		Success:                  true,
		SourceID:                 r.SourceID.String(),
		TargetID:                 r.TargetID.String(),
		RelationshipsTransferred: r.RelationshipsTransferred,
		MergedData:               PersonToViewModel(r.MergedData),
	}
}

func ImportSummaryToViewModel(s *services.ImportSummary) viewmodels.ImportSummary {
	vm := viewmodels.ImportSummary{
		PersonsImported:      s.PersonsImported,
		PersonsMerged:        s.PersonsMerged,
		PersonsSkipped:       s.PersonsSkipped,
		FamiliesProcessed:    s.FamiliesProcessed,
		RelationshipsCreated: s.RelationshipsCreated,
	}
	if s.Log != nil {
		vm.Errors = entryMessages(s.Log.Errors())
		vm.Warnings = entryMessages(s.Log.Warnings())
	}
	return vm
}

func entryMessages(entries []importlog.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
