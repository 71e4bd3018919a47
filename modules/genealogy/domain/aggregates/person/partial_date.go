package person

import "strings"

// PartialDate is an ISO-8601 date that may be truncated to a year ("1950")
// or a year and month ("1950-03"). The empty string means unknown.
type PartialDate string

func (d PartialDate) IsZero() bool { return d == "" }

func (d PartialDate) String() string { return string(d) }

// Components returns how many of year, month and day are present.
func (d PartialDate) Components() int {
	if d == "" {
		return 0
	}
	return len(strings.Split(string(d), "-"))
}

func (d PartialDate) part(i int) string {
	parts := strings.Split(string(d), "-")
	if i >= len(parts) {
		return ""
	}
	return parts[i]
}

func (d PartialDate) Year() string  { return d.part(0) }
func (d PartialDate) Month() string { return d.part(1) }
func (d PartialDate) Day() string   { return d.part(2) }

// MoreSpecificThan reports whether d carries strictly more information than
// other. A non-empty date always beats an empty one.
func (d PartialDate) MoreSpecificThan(other PartialDate) bool {
	return d.Components() > other.Components()
}
