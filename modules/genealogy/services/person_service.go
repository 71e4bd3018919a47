package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
	"github.com/arborfam/arbor/modules/genealogy/domain/entities/ownerprofile"
)

type PersonService struct {
	persons  person.Repository
	profiles ownerprofile.Repository
}

func NewPersonService(persons person.Repository, profiles ownerprofile.Repository) *PersonService {
	return &PersonService{persons: persons, profiles: profiles}
}

func (s *PersonService) GetPaginated(ctx context.Context, params *person.FindParams) ([]person.Person, int64, error) {
	return s.persons.GetPaginated(ctx, params)
}

func (s *PersonService) GetByID(ctx context.Context, id uuid.UUID) (person.Person, error) {
	return s.persons.GetByID(ctx, id)
}

func (s *PersonService) ProfilePersonID(ctx context.Context) (uuid.UUID, error) {
	return s.profiles.GetProfilePersonID(ctx)
}

// SetProfilePerson designates the owner's own record in the tree. The person
// must exist under the owner; a cross-owner id surfaces as NotFound.
func (s *PersonService) SetProfilePerson(ctx context.Context, personID uuid.UUID) error {
	if _, err := s.persons.GetByID(ctx, personID); err != nil {
		return err
	}
	return s.profiles.SetProfilePersonID(ctx, personID)
}
