package importlog

import (
	"strconv"
	"strings"

	"github.com/arborfam/arbor/pkg/serrors"
)

// Entry is one import problem presented to the user: what went wrong, where
// in the file, which record and field, and what to do about it.
type Entry struct {
	Code         string
	Line         int
	GedcomID     string
	Name         string
	Field        string
	Message      string
	SuggestedFix string
}

func FromError(err *serrors.Error) Entry {
	return Entry{
		Code:         err.Code,
		Message:      err.Message,
		SuggestedFix: err.SuggestedFix,
	}
}

// IsFatal reports whether the entry blocks its individual from importing.
func (e Entry) IsFatal() bool {
	switch e.Code {
	case serrors.ErrValidationWarning.Code:
		return false
	default:
		return true
	}
}

// Log accumulates entries during an import run.
type Log struct {
	entries []Entry
}

func (l *Log) Add(entries ...Entry) {
	l.entries = append(l.entries, entries...)
}

func (l *Log) Entries() []Entry { return l.entries }

func (l *Log) Errors() []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.IsFatal() {
			out = append(out, e)
		}
	}
	return out
}

func (l *Log) Warnings() []Entry {
	var out []Entry
	for _, e := range l.entries {
		if !e.IsFatal() {
			out = append(out, e)
		}
	}
	return out
}

const csvHeader = "Severity,Line,GEDCOM ID,Name,Field,Error,Suggested Fix"

// CSV renders the log for download. Fields containing a comma, quote, colon
// or newline are wrapped in double quotes with inner quotes doubled.
func (l *Log) CSV() string {
	var sb strings.Builder
	sb.WriteString(csvHeader)
	sb.WriteString("\n")
	for _, e := range l.entries {
		line := ""
		if e.Line > 0 {
			line = strconv.Itoa(e.Line)
		}
		cells := []string{e.Code, line, e.GedcomID, e.Name, e.Field, e.Message, e.SuggestedFix}
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(escapeCSV(cell))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func escapeCSV(value string) string {
	if !strings.ContainsAny(value, ",\":\n") {
		return value
	}
	return "\"" + strings.ReplaceAll(value, "\"", "\"\"") + "\""
}
