package importlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arborfam/arbor/pkg/serrors"
)

func TestLog_CSVHeader(t *testing.T) {
	l := &Log{}
	csv := l.CSV()
	require.Equal(t, "Severity,Line,GEDCOM ID,Name,Field,Error,Suggested Fix\n", csv)
}

func TestLog_CSVEscaping(t *testing.T) {
	l := &Log{}
	l.Add(Entry{
		Code:         "VALIDATION_ERROR",
		Line:         12,
		GedcomID:     "I42",
		Name:         `Smith, John "Jack"`,
		Field:        "birthDate",
		Message:      "invalid date: 31 FEB 1900",
		SuggestedFix: "Use a real calendar date",
	})

	csv := l.CSV()
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t,
		`VALIDATION_ERROR,12,I42,"Smith, John ""Jack""",birthDate,"invalid date: 31 FEB 1900",Use a real calendar date`,
		lines[1],
	)
}

func TestLog_CSVQuotesColonAndNewline(t *testing.T) {
	l := &Log{}
	l.Add(Entry{Code: "PARSE_ERROR", Message: "line one\nline two"})

	csv := l.CSV()
	require.Contains(t, csv, "\"line one\nline two\"")
}

func TestEntry_Severity(t *testing.T) {
	require.True(t, FromError(serrors.ErrValidation).IsFatal())
	require.True(t, FromError(serrors.ErrParse).IsFatal())
	require.False(t, FromError(serrors.ErrValidationWarning).IsFatal())
}

func TestLog_SplitsErrorsAndWarnings(t *testing.T) {
	l := &Log{}
	l.Add(
		FromError(serrors.ErrValidation),
		FromError(serrors.ErrValidationWarning),
		FromError(serrors.ErrUnsupportedVersion),
	)

	require.Len(t, l.Errors(), 2)
	require.Len(t, l.Warnings(), 1)
	require.Len(t, l.Entries(), 3)
}
