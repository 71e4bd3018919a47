package gedcom_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
	"github.com/arborfam/arbor/modules/genealogy/gedcom"
	"github.com/arborfam/arbor/pkg/serrors"
)

const sampleFile = `0 HEAD
1 GEDC
2 VERS 5.5.1
0 @I1@ INDI
1 NAME John /Smith/
1 SEX M
1 BIRT
2 DATE 15 MAR 1950
1 FAMC @F1@
0 @I2@ INDI
1 NAME Mary /Jones/
1 SEX F
0 @I3@ INDI
1 NAME Junior /Smith/
1 FAMC @F2@
0 @F2@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
0 TRLR
`

func parse(t *testing.T, input string) *gedcom.Result {
	t.Helper()
	result, err := gedcom.Parse(strings.NewReader(input))
	require.NoError(t, err)
	return result
}

func TestParseIndividualsAndFamilies(t *testing.T) {
	result := parse(t, sampleFile)

	require.Len(t, result.Individuals, 3)
	require.Len(t, result.Families, 1)
	require.Empty(t, result.Log.Errors())

	john := result.Individuals[0]
	require.Equal(t, "I1", john.GedcomID)
	require.Equal(t, "John", john.FirstName)
	require.Equal(t, "Smith", john.LastName)
	require.Equal(t, person.GenderMale, john.Gender)
	require.Equal(t, person.PartialDate("1950-03-15"), john.BirthDate)
	require.Equal(t, []string{"F1"}, john.ChildOfFamilies)

	fam := result.Families[0]
	require.Equal(t, "F2", fam.ID)
	require.Equal(t, "I1", fam.Husband)
	require.Equal(t, "I2", fam.Wife)
	require.Equal(t, []string{"I3"}, fam.Children)
}

func TestParseSexMapping(t *testing.T) {
	input := `0 HEAD
1 GEDC
2 VERS 5.5
0 @I1@ INDI
1 SEX U
0 @I2@ INDI
1 SEX X
0 @I3@ INDI
`
	result := parse(t, input)
	require.Equal(t, person.GenderUnspecified, result.Individuals[0].Gender)
	require.Equal(t, person.GenderOther, result.Individuals[1].Gender)
	require.Equal(t, person.GenderUnspecified, result.Individuals[2].Gender)
}

func TestParseDateForms(t *testing.T) {
	input := `0 @I1@ INDI
1 BIRT
2 DATE 1950
0 @I2@ INDI
1 BIRT
2 DATE MAR 1950
0 @I3@ INDI
1 BIRT
2 DATE 5 MAR 1950
0 @I4@ INDI
1 DEAT
2 DATE 2001-12-31
`
	result := parse(t, input)
	require.Equal(t, person.PartialDate("1950"), result.Individuals[0].BirthDate)
	require.Equal(t, person.PartialDate("1950-03"), result.Individuals[1].BirthDate)
	require.Equal(t, person.PartialDate("1950-03-05"), result.Individuals[2].BirthDate)
	require.Equal(t, person.PartialDate("2001-12-31"), result.Individuals[3].DeathDate)
}

func TestParseDateModifierAppendsNote(t *testing.T) {
	input := `0 @I1@ INDI
1 NAME John /Smith/
1 BIRT
2 DATE ABT 1950
1 DEAT
2 DATE BEF 2001
`
	result := parse(t, input)
	indi := result.Individuals[0]
	require.Equal(t, person.PartialDate("1950"), indi.BirthDate)
	require.Equal(t, person.PartialDate("2001"), indi.DeathDate)
	require.Equal(t, "(Date approximate)\n(Date before)", indi.Notes)
}

func TestParseUnrecognizedDateLogsWarning(t *testing.T) {
	input := `0 @I1@ INDI
1 NAME John /Smith/
1 BIRT
2 DATE sometime in spring
`
	result := parse(t, input)
	indi := result.Individuals[0]
	require.True(t, indi.BirthDate.IsZero())

	warnings := result.Log.Warnings()
	require.Len(t, warnings, 1)
	require.Equal(t, serrors.ErrValidationWarning.Code, warnings[0].Code)
	require.Equal(t, "I1", warnings[0].GedcomID)
	require.Equal(t, "birt date", warnings[0].Field)
}

func TestParseFirstPhotoWins(t *testing.T) {
	input := `0 @I1@ INDI
1 OBJE
2 FILE https://example.com/first.jpg
1 OBJE
2 FILE https://example.com/second.jpg
`
	result := parse(t, input)
	require.Equal(t, "https://example.com/first.jpg", result.Individuals[0].PhotoURL)
}

func TestParseStripsLeadingByteOrderMark(t *testing.T) {
	result := parse(t, "\uFEFF"+sampleFile)
	require.Len(t, result.Individuals, 3)
	require.Empty(t, result.Log.Errors())
}

func TestParseVersionGate(t *testing.T) {
	cases := []struct {
		version string
		fatal   bool
	}{
		{"5.5", false},
		{"5.5.1", false},
		{"5.51", true},
		{"5.512", true},
		{"5", true},
		{"7.0", true},
	}
	for _, tc := range cases {
		input := "0 HEAD\n1 GEDC\n2 VERS " + tc.version + "\n0 TRLR\n"
		_, err := gedcom.Parse(strings.NewReader(input))
		if tc.fatal {
			require.ErrorIs(t, err, serrors.ErrUnsupportedVersion, tc.version)
		} else {
			require.NoError(t, err, tc.version)
		}
	}
}

func TestParseUnsupportedVersionIsFatal(t *testing.T) {
	input := `0 HEAD
1 GEDC
2 VERS 7.0
0 @I1@ INDI
`
	_, err := gedcom.Parse(strings.NewReader(input))
	require.ErrorIs(t, err, serrors.ErrUnsupportedVersion)
}

func TestParseMalformedLineIsNotFatal(t *testing.T) {
	input := `0 @I1@ INDI
garbage line
1 NAME John /Smith/
`
	result := parse(t, input)
	require.Len(t, result.Individuals, 1)
	require.Equal(t, "John", result.Individuals[0].FirstName)

	errs := result.Log.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, serrors.ErrParse.Code, errs[0].Code)
	require.Equal(t, 2, errs[0].Line)
}

func TestParseNameWithoutSurnameSlashes(t *testing.T) {
	input := `0 @I1@ INDI
1 NAME Madonna
`
	result := parse(t, input)
	require.Equal(t, "Madonna", result.Individuals[0].FirstName)
	require.Empty(t, result.Individuals[0].LastName)
}
