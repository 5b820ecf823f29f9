package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_FourSections(t *testing.T) {
	raw := "1. **OVERVIEW** - A\n2. **KEY FINDINGS** - B\n3. **METHODOLOGIES** - C\n4. **RECOMMENDATIONS** - D"

	got := Parse(raw)
	assert.Equal(t, StructuredSummary{
		Overview:        "A",
		KeyFindings:     "B",
		Methodologies:   "C",
		Recommendations: "D",
	}, got)
}

func TestParse_HeaderVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want StructuredSummary
	}{
		{
			name: "lower case and colon",
			raw:  "1. **overview**: Intro text\n2. **Key Findings**: Result",
			want: StructuredSummary{Overview: "Intro text", KeyFindings: "Result"},
		},
		{
			name: "em dash and extra whitespace",
			raw:  "3.  ** METHODOLOGIES ** — Survey\n4. **RECOMMENDATIONS** – Act",
			want: StructuredSummary{Methodologies: "Survey", Recommendations: "Act"},
		},
		{
			name: "colon inside bold",
			raw:  "1. **OVERVIEW:** Summary here",
			want: StructuredSummary{Overview: "Summary here"},
		},
		{
			name: "multi-word name split across spaces",
			raw:  "2. **KEY   FINDINGS** - x",
			want: StructuredSummary{KeyFindings: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestParse_KeepsBulletsAndMultilineContent(t *testing.T) {
	raw := `1. **OVERVIEW**
First paragraph.

Second paragraph.

2. **KEY FINDINGS**
- finding one
- finding two`

	got := Parse(raw)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", got.Overview)
	assert.Equal(t, "- finding one\n- finding two", got.KeyFindings)
}

func TestParse_UnrecognisedHeaderEndsSection(t *testing.T) {
	raw := "1. **OVERVIEW** - A\n2. **BACKGROUND** - X\n3. **KEY FINDINGS** - B"

	got := Parse(raw)
	assert.Equal(t, "A", got.Overview)
	assert.Equal(t, "B", got.KeyFindings)
	assert.Empty(t, got.Methodologies)
}

func TestParse_BoldBulletsStayInSection(t *testing.T) {
	raw := "1. **OVERVIEW** - intro\n1. **Transformer models** improve recall\n2. **Key Findings** - B"

	got := Parse(raw)
	assert.Equal(t, "intro\n1. **Transformer models** improve recall", got.Overview)
	assert.Equal(t, "B", got.KeyFindings)
}

func TestParse_InlineUpperCaseBoldStaysInSection(t *testing.T) {
	raw := "1. **OVERVIEW** - uses 2. **BERT** as a baseline\n2. **KEY FINDINGS** - B"

	got := Parse(raw)
	assert.Equal(t, "uses 2. **BERT** as a baseline", got.Overview)
	assert.Equal(t, "B", got.KeyFindings)
}

func TestParse_MissingSectionsStayEmpty(t *testing.T) {
	got := Parse("Just some prose without headers.")
	assert.Equal(t, StructuredSummary{}, got)
	assert.False(t, got.Complete())
}

func TestParse_LaterNonEmptyDuplicateWins(t *testing.T) {
	raw := "1. **OVERVIEW** - first\n1. **OVERVIEW** - second\n1. **OVERVIEW** -"

	assert.Equal(t, "second", Parse(raw).Overview)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 3))
	assert.Equal(t, "héé", Truncate("hééllo", 3))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestSectionNames(t *testing.T) {
	assert.Equal(t, "key_findings", KeyFindings.Key())
	assert.Equal(t, "KEY FINDINGS", KeyFindings.Title())
	assert.Equal(t, "key findings", KeyFindings.Label())
	assert.Len(t, Sections, 4)
}
