package person

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("person not found")

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
	GenderUnspecified Gender = "unspecified"
)

// GenderFromSex maps a GEDCOM SEX value to a Gender. Unknown values map to
// other, absent values to unspecified.
func GenderFromSex(sex string) Gender {
	switch strings.ToUpper(strings.TrimSpace(sex)) {
	case "M":
		return GenderMale
	case "F":
		return GenderFemale
	case "U", "":
		return GenderUnspecified
	default:
		return GenderOther
	}
}

type Person struct {
	tenantID     uuid.UUID
	id           uuid.UUID
	firstName    string
	lastName     string
	gender       Gender
	birthDate    PartialDate
	deathDate    PartialDate
	photoURL     string
	birthSurname string
	nickname     string
	createdAt    time.Time
	updatedAt    time.Time
}

func New(tenantID uuid.UUID, firstName, lastName string, gender Gender) Person {
	if gender == "" {
		gender = GenderUnspecified
	}
	return Person{
		tenantID:  tenantID,
		firstName: strings.TrimSpace(firstName),
		lastName:  strings.TrimSpace(lastName),
		gender:    gender,
	}
}

func Hydrate(
	tenantID uuid.UUID,
	id uuid.UUID,
	firstName string,
	lastName string,
	gender Gender,
	birthDate PartialDate,
	deathDate PartialDate,
	photoURL string,
	birthSurname string,
	nickname string,
	createdAt time.Time,
	updatedAt time.Time,
) Person {
	return Person{
		tenantID:     tenantID,
		id:           id,
		firstName:    strings.TrimSpace(firstName),
		lastName:     strings.TrimSpace(lastName),
		gender:       gender,
		birthDate:    birthDate,
		deathDate:    deathDate,
		photoURL:     photoURL,
		birthSurname: birthSurname,
		nickname:     nickname,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (p Person) TenantID() uuid.UUID      { return p.tenantID }
func (p Person) ID() uuid.UUID            { return p.id }
func (p Person) FirstName() string        { return p.firstName }
func (p Person) LastName() string         { return p.lastName }
func (p Person) Gender() Gender           { return p.gender }
func (p Person) BirthDate() PartialDate   { return p.birthDate }
func (p Person) DeathDate() PartialDate   { return p.deathDate }
func (p Person) PhotoURL() string         { return p.photoURL }
func (p Person) BirthSurname() string     { return p.birthSurname }
func (p Person) Nickname() string         { return p.nickname }
func (p Person) CreatedAt() time.Time     { return p.createdAt }
func (p Person) UpdatedAt() time.Time     { return p.updatedAt }
func (p Person) IsZero() bool             { return p.id == uuid.Nil }

func (p Person) DisplayName() string {
	return strings.TrimSpace(strings.Join([]string{p.firstName, p.lastName}, " "))
}

// WithBirthDate and friends return modified copies; the aggregate itself is a value.

func (p Person) WithFirstName(v string) Person    { p.firstName = strings.TrimSpace(v); return p }
func (p Person) WithLastName(v string) Person     { p.lastName = strings.TrimSpace(v); return p }
func (p Person) WithGender(v Gender) Person       { p.gender = v; return p }
func (p Person) WithBirthDate(v PartialDate) Person { p.birthDate = v; return p }
func (p Person) WithDeathDate(v PartialDate) Person { p.deathDate = v; return p }
func (p Person) WithPhotoURL(v string) Person     { p.photoURL = v; return p }
func (p Person) WithBirthSurname(v string) Person { p.birthSurname = v; return p }
func (p Person) WithNickname(v string) Person     { p.nickname = v; return p }
