package summary

import (
	"regexp"
	"sort"
	"strings"
)

// headerPattern matches a numbered bold section header such as
// "2. **KEY FINDINGS** -". Only the four schema sections are recognised.
var headerPattern = regexp.MustCompile(
	`(?i)\d+\.\s*\*\*\s*(overview|key\s+findings|methodologies|recommendations)\s*:?\s*\*\*[ \t]*(?:[-–—:]+[ \t]*)?`,
)

// strayHeaderPattern matches an upper-case numbered bold heading at the start
// of a line, such as "2. **BACKGROUND** -". Mixed-case bold bullets like
// "1. **Transformer models** improve..." do not match and stay in the text.
var strayHeaderPattern = regexp.MustCompile(
	`(?m)^[ \t]*\d+\.[ \t]*\*\*[ \t]*([A-Z][A-Z0-9 &/,()'-]{2,}?)[ \t]*:?[ \t]*\*\*`,
)

var titleToSection = map[string]Section{
	"OVERVIEW":        Overview,
	"KEY FINDINGS":    KeyFindings,
	"METHODOLOGIES":   Methodologies,
	"RECOMMENDATIONS": Recommendations,
}

// boundary is a header position in raw output. Stray headers end the
// preceding section and their own block is dropped.
type boundary struct {
	start, contentStart int
	section             Section
	stray               bool
}

func normalizeTitle(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// Parse splits raw model output into schema fields. The text between one
// recognised header and the next header (or the end of the output) becomes
// that section's value, trimmed. An unknown upper-case numbered heading on its
// own line also ends a section. Sections without a header stay empty. When a
// section appears more than once, the last non-empty occurrence wins.
func Parse(raw string) StructuredSummary {
	var bounds []boundary
	for _, m := range headerPattern.FindAllStringSubmatchIndex(raw, -1) {
		sec, ok := titleToSection[normalizeTitle(raw[m[2]:m[3]])]
		if !ok {
			continue
		}
		bounds = append(bounds, boundary{start: m[0], contentStart: m[1], section: sec})
	}
	for _, m := range strayHeaderPattern.FindAllStringSubmatchIndex(raw, -1) {
		if _, known := titleToSection[normalizeTitle(raw[m[2]:m[3]])]; known {
			continue
		}
		bounds = append(bounds, boundary{start: m[0], contentStart: m[1], stray: true})
	}
	sort.SliceStable(bounds, func(i, j int) bool { return bounds[i].start < bounds[j].start })

	var out StructuredSummary
	for i, b := range bounds {
		if b.stray {
			continue
		}
		end := len(raw)
		if i+1 < len(bounds) {
			end = bounds[i+1].start
		}
		if content := strings.TrimSpace(raw[b.contentStart:end]); content != "" {
			out.Set(b.section, content)
		}
	}
	return out
}
