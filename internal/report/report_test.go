package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/paper-digest/internal/metadata"
	"github.com/bull/paper-digest/internal/store"
	"github.com/bull/paper-digest/internal/summary"
)

func sampleSummary(tag string) summary.StructuredSummary {
	return summary.StructuredSummary{
		Overview:        tag + " overview",
		KeyFindings:     "- " + tag + " finding",
		Methodologies:   tag + " methods",
		Recommendations: tag + " recs",
	}
}

func sampleReport() Report {
	return Report{
		Title:     "Weekly Digest",
		Overall:   "Both papers study attention.",
		Generated: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Entries: []Entry{
			{
				Path:    "pdfs/a.pdf",
				Summary: sampleSummary("a"),
				Metadata: &metadata.Metadata{
					Title:   "Attention   Is All",
					Authors: []string{"V. One", "N. Two"},
					ArxivID: "1706.03762",
					PDFURL:  "http://arxiv.org/pdf/1706.03762.pdf",
				},
			},
			{Path: "pdfs/b.pdf", Summary: sampleSummary("b")},
		},
	}
}

func TestReport_Markdown(t *testing.T) {
	md := string(sampleReport().Markdown())

	assert.True(t, strings.HasPrefix(md, "# Weekly Digest\n\n_Generated 2024-05-01T12:00:00Z_\n\n## Overall Summary\n\nBoth papers"))
	assert.Contains(t, md, "## Attention Is All\n\n- **Authors**: V. One, N. Two\n- **arXiv ID**: 1706.03762\n")
	assert.Contains(t, md, "### Key Findings\n\n- a finding\n\n")
	assert.Contains(t, md, "## pdfs/b.pdf\n\n- **Document**: `pdfs/b.pdf`\n\n### Overview\n\nb overview")
	assert.Less(t, strings.Index(md, "pdfs/a.pdf"), strings.Index(md, "## pdfs/b.pdf"))
}

func TestReport_MarkdownDefaults(t *testing.T) {
	md := string(Report{}.Markdown())
	assert.Equal(t, "# Paper Digest\n\n", md)
}

func TestRenderer_HTML(t *testing.T) {
	r := NewRenderer()
	page, err := r.HTML("Weekly <Digest>", sampleReport().Markdown())
	require.NoError(t, err)

	out := string(page)
	assert.Contains(t, out, "<title>Weekly &lt;Digest&gt;</title>")
	assert.Contains(t, out, `<h2 id="overall-summary">Overall Summary</h2>`)
	assert.Contains(t, out, `href="#overall-summary"`)
	assert.Contains(t, out, "<h3 id=\"key-findings\">Key Findings</h3>")
	assert.Less(t, strings.Index(out, `href="#overall-summary"`), strings.Index(out, `<h1`))
}

func TestRenderer_Headings(t *testing.T) {
	headings, err := NewRenderer().Headings(sampleReport().Markdown())
	require.NoError(t, err)
	assert.Equal(t, []string{"Overall Summary", "Attention Is All", "pdfs/b.pdf"}, headings)
}

func TestCollect(t *testing.T) {
	s := store.New()
	s.Put("b.pdf", sampleSummary("b"))
	s.Put("a.pdf", sampleSummary("a"))
	s.Put("bad.pdf", sampleSummary("bad"))

	entries := Collect(s, func(path string) (*metadata.Metadata, error) {
		switch path {
		case "a.pdf":
			return &metadata.Metadata{Title: "A"}, nil
		case "bad.pdf":
			return nil, errors.New("corrupt")
		}
		return nil, nil
	})

	require.Len(t, entries, 3)
	assert.Equal(t, "b.pdf", entries[0].Path)
	assert.Nil(t, entries[0].Metadata)
	assert.Equal(t, "A", entries[1].Metadata.Title)
	assert.Nil(t, entries[2].Metadata)
	assert.Equal(t, "bad overview", entries[2].Summary.Overview)
}
