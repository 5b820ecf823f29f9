// Package summary produces the four-section structured summary of one document.
package summary

import (
	"errors"
	"strings"
)

// ErrGeneration marks a failed language model call during summary generation.
// It never escapes Generator.Generate; it is only logged.
var ErrGeneration = errors.New("summary generation")

// StructuredSummary is the closed four-field summary schema.
type StructuredSummary struct {
	Overview        string `json:"overview"`
	KeyFindings     string `json:"key_findings"`
	Methodologies   string `json:"methodologies"`
	Recommendations string `json:"recommendations"`
}

// Section names one field of StructuredSummary.
type Section int

const (
	Overview Section = iota
	KeyFindings
	Methodologies
	Recommendations
)

// Sections lists every section in schema order.
var Sections = []Section{Overview, KeyFindings, Methodologies, Recommendations}

var sectionInfo = [...]struct {
	key   string
	title string
}{
	Overview:        {"overview", "OVERVIEW"},
	KeyFindings:     {"key_findings", "KEY FINDINGS"},
	Methodologies:   {"methodologies", "METHODOLOGIES"},
	Recommendations: {"recommendations", "RECOMMENDATIONS"},
}

// Key returns the JSON field name, e.g. "key_findings".
func (s Section) Key() string { return sectionInfo[s].key }

// Title returns the heading used in prompts and model output, e.g. "KEY FINDINGS".
func (s Section) Title() string { return sectionInfo[s].title }

// Label returns the lower-case prose name, e.g. "key findings".
func (s Section) Label() string { return strings.ToLower(sectionInfo[s].title) }

func (s Section) String() string { return s.Key() }

// Get returns the value of section sec.
func (s *StructuredSummary) Get(sec Section) string {
	switch sec {
	case Overview:
		return s.Overview
	case KeyFindings:
		return s.KeyFindings
	case Methodologies:
		return s.Methodologies
	case Recommendations:
		return s.Recommendations
	}
	return ""
}

// Set replaces the value of section sec.
func (s *StructuredSummary) Set(sec Section, value string) {
	switch sec {
	case Overview:
		s.Overview = value
	case KeyFindings:
		s.KeyFindings = value
	case Methodologies:
		s.Methodologies = value
	case Recommendations:
		s.Recommendations = value
	}
}

// Complete reports whether every section holds non-blank text.
func (s StructuredSummary) Complete() bool {
	for _, sec := range Sections {
		if strings.TrimSpace(s.Get(sec)) == "" {
			return false
		}
	}
	return true
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
