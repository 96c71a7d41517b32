package cfgxlsx

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	wb := Build(ParseString("[A]\nx=1\ny=2\n[B]\nz=3"))

	expected := &Workbook{
		Sheets: []Sheet{
			{Name: "A", Rows: [][2]string{{"x", "1"}, {"y", "2"}}},
			{Name: "B", Rows: [][2]string{{"z", "3"}}},
		},
	}
	assert.Equal(t, expected, wb)
	assert.Equal(t, 3, wb.Rows())
}

func TestBuildEmpty(t *testing.T) {
	for _, in := range []string{"", "x=1", "[A]\n[B]"} {
		assert.Empty(t, Build(ParseString(in)).Sheets, "input %q", in)
	}
}

func TestBuildKeepsDuplicates(t *testing.T) {
	long := strings.Repeat("n", 40)
	wb := Build(ParseString("[A]\nx=1\n[A]\ny=2\n[" + long + "1]\na=b\n[" + long + "2]\nc=d"))
	require.Len(t, wb.Sheets, 4)
	assert.Equal(t, wb.Sheets[0].Name, wb.Sheets[1].Name)
	assert.Equal(t, wb.Sheets[2].Name, wb.Sheets[3].Name)
}

func TestTruncateSheetName(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"", ""},
		{"short", "short"},
		{strings.Repeat("a", 31), strings.Repeat("a", 31)},
		{strings.Repeat("a", 32), strings.Repeat("a", 28) + "..."},
		{strings.Repeat("b", 40), strings.Repeat("b", 28) + "..."},
		{strings.Repeat("å", 31), strings.Repeat("å", 31)},
		{strings.Repeat("å", 35), strings.Repeat("å", 28) + "..."},
	}

	for _, tc := range cases {
		res := TruncateSheetName(tc.in)
		assert.Equal(t, tc.out, res, "truncate(%q)", tc.in)
		assert.LessOrEqual(t, utf8.RuneCountInString(res), MaxSheetNameLength)
		if utf8.RuneCountInString(tc.in) > MaxSheetNameLength {
			assert.Equal(t, MaxSheetNameLength, utf8.RuneCountInString(res))
			assert.True(t, strings.HasSuffix(res, "..."))
		}
	}
}

func TestWorkbookDocument(t *testing.T) {
	doc := ParseString("[A]\nx=1\n[B]\nz=3")
	assert.Equal(t, doc, Build(doc).Document())
}
