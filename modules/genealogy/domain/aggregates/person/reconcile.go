package person

import "fmt"

// Reconciliation is the outcome of merging source's fields into target.
// Errors block the merge; ConflictFields list every field where both sides
// held differing values, whether or not the difference blocks.
type Reconciliation struct {
	Merged         Person
	Errors         []string
	Warnings       []string
	ConflictFields []string
}

func (r Reconciliation) CanMerge() bool { return len(r.Errors) == 0 }

// Reconcile merges source's fields into target. The target wins by default;
// the source contributes a field only when it is strictly more specific
// (longer surname, date with more components, non-empty against empty).
// A genuine gender disagreement is a blocking error, never auto-resolved.
func Reconcile(source, target Person) Reconciliation {
	merged := target
	out := Reconciliation{}

	if target.firstName == "" && source.firstName != "" {
		merged = merged.WithFirstName(source.firstName)
	} else if source.firstName != "" && target.firstName != "" && source.firstName != target.firstName {
		out.ConflictFields = append(out.ConflictFields, "firstName")
	}

	if len(source.lastName) > len(target.lastName) {
		merged = merged.WithLastName(source.lastName)
	}
	if source.lastName != "" && target.lastName != "" && source.lastName != target.lastName {
		out.ConflictFields = append(out.ConflictFields, "lastName")
	}

	sourceGendered := source.gender != "" && source.gender != GenderUnspecified
	targetGendered := target.gender != "" && target.gender != GenderUnspecified
	switch {
	case sourceGendered && targetGendered && source.gender != target.gender:
		out.ConflictFields = append(out.ConflictFields, "gender")
		out.Errors = append(out.Errors, fmt.Sprintf(
			"Gender mismatch: Cannot merge %s into %s", source.gender, target.gender,
		))
	case sourceGendered && !targetGendered:
		merged = merged.WithGender(source.gender)
	}

	merged = merged.WithBirthDate(moreSpecificDate(source.birthDate, target.birthDate, &out, "birthDate"))
	merged = merged.WithDeathDate(moreSpecificDate(source.deathDate, target.deathDate, &out, "deathDate"))

	merged = merged.WithPhotoURL(preferNonEmpty(source.photoURL, target.photoURL, &out, "photoUrl"))
	merged = merged.WithBirthSurname(preferNonEmpty(source.birthSurname, target.birthSurname, &out, "birthSurname"))
	merged = merged.WithNickname(preferNonEmpty(source.nickname, target.nickname, &out, "nickname"))

	out.Merged = merged
	return out
}

func moreSpecificDate(source, target PartialDate, out *Reconciliation, field string) PartialDate {
	if !source.IsZero() && !target.IsZero() && source != target {
		out.ConflictFields = append(out.ConflictFields, field)
	}
	if source.MoreSpecificThan(target) {
		return source
	}
	return target
}

func preferNonEmpty(source, target string, out *Reconciliation, field string) string {
	if source != "" && target != "" && source != target {
		out.ConflictFields = append(out.ConflictFields, field)
	}
	if target == "" {
		return source
	}
	return target
}
