package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
)

// DefaultThreshold is the confidence at or above which two records are
// considered duplicates unless the caller overrides it.
const DefaultThreshold = 70

const (
	weightName    = 0.5
	weightDate    = 0.3
	weightParents = 0.2
)

const (
	FieldName      = "name"
	FieldBirthDate = "birthDate"
	FieldParents   = "parents"
)

// Record is the comparison view of a person, whether it comes from a GEDCOM
// individual or from the store. ParentKeys are opaque: family ids for GEDCOM
// records, parent person ids for stored persons. Records from the two sides
// of a comparison must use the same key space.
type Record struct {
	ID         string
	Name       string
	BirthDate  person.PartialDate
	ParentKeys []string
}

// Candidate is a scored pair of potentially identical records.
type Candidate struct {
	A              Record
	B              Record
	Confidence     int
	MatchingFields []string
}

// CompareNames scores name similarity from 0 to 100. Matching is
// case-insensitive; an absent name on either side scores 0.
func CompareNames(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	distance := fuzzy.LevenshteinDistance(a, b)
	score := 100 * (1 - float64(distance)/float64(maxLen))
	return math.Min(100, math.Max(0, score))
}

// CompareDates scores two partial dates. A year mismatch disproves the
// match; a year-only date cannot disprove a fuller one, so it scores 100
// when the years agree. Matching year and month with differing days is 75,
// differing months 50.
func CompareDates(a, b person.PartialDate) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	if a == b {
		return 100
	}
	if a.Year() != b.Year() {
		return 0
	}
	if a.Components() == 1 || b.Components() == 1 {
		return 100
	}
	if a.Month() != b.Month() {
		return 50
	}
	if a.Components() < 3 || b.Components() < 3 {
		return 100
	}
	return 75
}

// CompareParents scores 100 when the two records share any parent key, and 0
// otherwise. Empty sets prove nothing.
func CompareParents(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	keys := make(map[string]struct{}, len(a))
	for _, k := range a {
		keys[k] = struct{}{}
	}
	for _, k := range b {
		if _, ok := keys[k]; ok {
			return 100
		}
	}
	return 0
}

// Score computes the weighted confidence and matching-field set for a pair.
func Score(a, b Record) (int, []string) {
	nameScore := CompareNames(a.Name, b.Name)
	dateScore := CompareDates(a.BirthDate, b.BirthDate)
	parentScore := CompareParents(a.ParentKeys, b.ParentKeys)

	confidence := int(math.Round(weightName*nameScore + weightDate*dateScore + weightParents*parentScore))

	var fields []string
	if nameScore > 70 {
		fields = append(fields, FieldName)
	}
	if dateScore > 70 {
		fields = append(fields, FieldBirthDate)
	}
	if parentScore > 0 {
		fields = append(fields, FieldParents)
	}
	return confidence, fields
}

// FindDuplicates compares every candidate against every existing record and
// returns the pairs at or above threshold, highest confidence first.
func FindDuplicates(candidates, existing []Record, threshold int) []Candidate {
	var out []Candidate
	for _, a := range candidates {
		for _, b := range existing {
			confidence, fields := Score(a, b)
			if confidence >= threshold {
				out = append(out, Candidate{A: a, B: b, Confidence: confidence, MatchingFields: fields})
			}
		}
	}
	sortByConfidence(out)
	return out
}

// FindAllDuplicates compares every unordered pair within one set exactly
// once, so (A,B) and (B,A) can never both appear.
func FindAllDuplicates(records []Record, threshold int) []Candidate {
	var out []Candidate
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			a, b := records[i], records[j]
			if b.ID < a.ID {
				a, b = b, a
			}
			confidence, fields := Score(a, b)
			if confidence >= threshold {
				out = append(out, Candidate{A: a, B: b, Confidence: confidence, MatchingFields: fields})
			}
		}
	}
	sortByConfidence(out)
	return out
}

// FindDuplicatesForPerson compares one target against all others, skipping
// the target itself.
func FindDuplicatesForPerson(target Record, others []Record, threshold int) []Candidate {
	var out []Candidate
	for _, other := range others {
		if other.ID == target.ID {
			continue
		}
		confidence, fields := Score(target, other)
		if confidence >= threshold {
			out = append(out, Candidate{A: target, B: other, Confidence: confidence, MatchingFields: fields})
		}
	}
	sortByConfidence(out)
	return out
}

func sortByConfidence(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
}
