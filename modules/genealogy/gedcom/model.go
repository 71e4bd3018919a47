package gedcom

import (
	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
)

// Individual is the transient import-time view of one INDI record. It is
// discarded once mapped to a stored person.
type Individual struct {
	GedcomID        string
	FirstName       string
	LastName        string
	Gender          person.Gender
	BirthDate       person.PartialDate
	DeathDate       person.PartialDate
	Notes           string
	PhotoURL        string
	ChildOfFamilies []string
}

func (i Individual) FullName() string {
	if i.FirstName == "" {
		return i.LastName
	}
	if i.LastName == "" {
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

// Family is the transient view of one FAM record; member values are GEDCOM
// ids, resolved to person ids by the import pipeline.
type Family struct {
	ID       string
	Husband  string
	Wife     string
	Children []string
}
