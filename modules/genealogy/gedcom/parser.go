package gedcom

import (
	"bufio"
	"io"
	"strings"

	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
	"github.com/arborfam/arbor/modules/genealogy/domain/entities/importlog"
	"github.com/arborfam/arbor/pkg/serrors"
)

// Result is the structural model of one GEDCOM file plus everything the
// parser had to complain about.
type Result struct {
	Individuals []Individual
	Families    []Family
	Log         *importlog.Log
}

// dateModifierNotes maps GEDCOM date qualifiers to the note appended to the
// individual when one is present.
var dateModifierNotes = map[string]string{
	"ABT": "(Date approximate)",
	"BEF": "(Date before)",
	"AFT": "(Date after)",
	"CAL": "(Date calculated)",
	"EST": "(Date estimated)",
}

var gedcomMonths = map[string]string{
	"JAN": "01", "FEB": "02", "MAR": "03", "APR": "04",
	"MAY": "05", "JUN": "06", "JUL": "07", "AUG": "08",
	"SEP": "09", "OCT": "10", "NOV": "11", "DEC": "12",
}

type line struct {
	level int
	xref  string
	tag   string
	value string
}

// Parse walks a GEDCOM 5.5.x stream and extracts individuals and families.
// Structural problems with single records are collected in the result log;
// an unsupported version or unreadable stream is fatal.
func Parse(r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024), 1024*1024)

	result := &Result{Log: &importlog.Log{}}

	var currentIndividual *Individual
	var currentFamily *Family
	currentEvent := ""
	inHeader := false
	inGedc := false
	inObje := false
	photoSeen := false
	lineNum := 0

	flush := func() {
		if currentIndividual != nil {
			result.Individuals = append(result.Individuals, *currentIndividual)
			currentIndividual = nil
		}
		if currentFamily != nil {
			result.Families = append(result.Families, *currentFamily)
			currentFamily = nil
		}
		currentEvent = ""
		inObje = false
		photoSeen = false
	}

	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		lineNum++
		if raw == "" {
			continue
		}
		if lineNum == 1 {
			raw = strings.TrimPrefix(raw, "\uFEFF")
		}

		l, ok := parseLine(raw)
		if !ok {
			result.Log.Add(importlog.Entry{
				Code:         serrors.ErrParse.Code,
				Line:         lineNum,
				Message:      "malformed GEDCOM line: " + raw,
				SuggestedFix: serrors.ErrParse.SuggestedFix,
			})
			continue
		}

		if l.level == 0 {
			flush()
			inHeader = false
			inGedc = false
			switch l.tag {
			case "HEAD":
				inHeader = true
			case "INDI":
				currentIndividual = &Individual{GedcomID: l.xref, Gender: person.GenderUnspecified}
			case "FAM":
				currentFamily = &Family{ID: l.xref}
			}
			continue
		}

		if inHeader {
			switch {
			case l.level == 1:
				inGedc = l.tag == "GEDC"
			case l.level == 2 && inGedc && l.tag == "VERS":
				if !supportedVersion(l.value) {
					err := serrors.ErrUnsupportedVersion.WithMessage("unsupported GEDCOM version %q", l.value)
					result.Log.Add(importlog.Entry{
						Code:         err.Code,
						Line:         lineNum,
						Field:        "VERS",
						Message:      err.Message,
						SuggestedFix: err.SuggestedFix,
					})
					return result, err
				}
			}
			continue
		}

		if currentIndividual != nil {
			parseIndividualLine(l, lineNum, currentIndividual, &currentEvent, &inObje, &photoSeen, result.Log)
			continue
		}
		if currentFamily != nil {
			parseFamilyLine(l, currentFamily)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return result, serrors.ErrParse.WithMessage("failed to read GEDCOM input: %v", err)
	}
	return result, nil
}

func parseIndividualLine(l line, lineNum int, indi *Individual, currentEvent *string, inObje, photoSeen *bool, log *importlog.Log) {
	if l.level == 1 {
		*currentEvent = ""
		*inObje = false
		switch l.tag {
		case "NAME":
			indi.FirstName, indi.LastName = splitName(l.value)
		case "SEX":
			indi.Gender = person.GenderFromSex(l.value)
		case "BIRT", "DEAT":
			*currentEvent = l.tag
		case "NOTE":
			appendNote(indi, l.value)
		case "OBJE":
			*inObje = true
		case "FAMC":
			if id := trimXref(l.value); id != "" {
				indi.ChildOfFamilies = append(indi.ChildOfFamilies, id)
			}
		}
		return
	}

	if l.level == 2 {
		switch {
		case l.tag == "DATE" && *currentEvent != "":
			date, modifier, ok := parseDate(l.value)
			if !ok {
				log.Add(importlog.Entry{
					Code:         serrors.ErrValidationWarning.Code,
					Line:         lineNum,
					GedcomID:     indi.GedcomID,
					Name:         indi.FullName(),
					Field:        strings.ToLower(*currentEvent) + " date",
					Message:      "unrecognized date: " + l.value,
					SuggestedFix: "Use a GEDCOM date such as 15 JAN 1950",
				})
				return
			}
			if *currentEvent == "BIRT" {
				indi.BirthDate = date
			} else {
				indi.DeathDate = date
			}
			if note, hasNote := dateModifierNotes[modifier]; hasNote {
				appendNote(indi, note)
			}
		case l.tag == "FILE" && *inObje:
			// The first OBJE block's FILE is authoritative.
			if !*photoSeen && l.value != "" {
				indi.PhotoURL = l.value
				*photoSeen = true
			}
		}
	}
}

func parseFamilyLine(l line, fam *Family) {
	if l.level != 1 {
		return
	}
	switch l.tag {
	case "HUSB":
		fam.Husband = trimXref(l.value)
	case "WIFE":
		fam.Wife = trimXref(l.value)
	case "CHIL":
		if id := trimXref(l.value); id != "" {
			fam.Children = append(fam.Children, id)
		}
	}
}

// parseLine splits "LEVEL [@XREF@] TAG [VALUE]".
func parseLine(raw string) (line, bool) {
	fields := strings.SplitN(raw, " ", 3)
	if len(fields) < 2 {
		return line{}, false
	}
	level := -1
	switch fields[0] {
	case "0":
		level = 0
	case "1":
		level = 1
	case "2":
		level = 2
	case "3":
		level = 3
	default:
		return line{}, false
	}

	l := line{level: level}
	rest := fields[1]
	value := ""
	if len(fields) == 3 {
		value = fields[2]
	}

	if strings.HasPrefix(rest, "@") {
		l.xref = trimXref(rest)
		valueFields := strings.SplitN(value, " ", 2)
		l.tag = valueFields[0]
		if len(valueFields) == 2 {
			l.value = strings.TrimSpace(valueFields[1])
		}
	} else {
		l.tag = strings.ToUpper(rest)
		l.value = strings.TrimSpace(value)
	}
	if l.tag == "" {
		return line{}, false
	}
	return l, true
}

func supportedVersion(v string) bool {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if len(parts) < 2 || len(parts) > 3 {
		return false
	}
	return parts[0] == "5" && parts[1] == "5"
}

// parseDate converts a GEDCOM date to a partial ISO date. Year-only and
// year-month dates stay truncated rather than being padded out. Already-ISO
// values pass through unchanged.
func parseDate(value string) (person.PartialDate, string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", "", false
	}

	modifier := ""
	fields := strings.Fields(strings.ToUpper(value))
	if _, ok := dateModifierNotes[fields[0]]; ok {
		modifier = fields[0]
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return "", "", false
	}

	switch len(fields) {
	case 1:
		v := fields[0]
		if isISODate(v) {
			return person.PartialDate(v), modifier, true
		}
		if isYear(v) {
			return person.PartialDate(v), modifier, true
		}
	case 2: // MON YYYY
		if month, ok := gedcomMonths[fields[0]]; ok && isYear(fields[1]) {
			return person.PartialDate(fields[1] + "-" + month), modifier, true
		}
	case 3: // DD MON YYYY
		day := fields[0]
		if len(day) == 1 {
			day = "0" + day
		}
		month, monthOK := gedcomMonths[fields[1]]
		if monthOK && isDigits(day) && len(day) == 2 && isYear(fields[2]) {
			return person.PartialDate(fields[2] + "-" + month + "-" + day), modifier, true
		}
	}
	return "", "", false
}

func isYear(v string) bool {
	return len(v) == 4 && isDigits(v)
}

func isISODate(v string) bool {
	parts := strings.Split(v, "-")
	if len(parts) < 2 || len(parts) > 3 {
		return false
	}
	if !isYear(parts[0]) || len(parts[1]) != 2 || !isDigits(parts[1]) {
		return false
	}
	if len(parts) == 3 && (len(parts[2]) != 2 || !isDigits(parts[2])) {
		return false
	}
	return true
}

func isDigits(v string) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	if strings.Contains(name, "/") {
		parts := strings.Split(name, "/")
		given := strings.TrimSpace(parts[0])
		surname := ""
		if len(parts) > 1 {
			surname = strings.TrimSpace(parts[1])
		}
		return given, surname
	}
	return name, ""
}

func trimXref(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "@")
	raw = strings.TrimSuffix(raw, "@")
	return raw
}

func appendNote(indi *Individual, note string) {
	if note == "" {
		return
	}
	if indi.Notes == "" {
		indi.Notes = note
		return
	}
	indi.Notes += "\n" + note
}
