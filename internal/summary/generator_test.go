package summary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/paper-digest/internal/chunker"
)

// scriptedModel answers prompts with respond and records every prompt.
type scriptedModel struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (m *scriptedModel) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.respond(prompt)
}

func (m *scriptedModel) count(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.prompts {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

const (
	structuredPrefix = "Generate an EXTREMELY DETAILED structured summary"
	sectionPrefix    = "Generate an EXTREMELY DETAILED "
	enhancePrefix    = "Expand this "
	fallbackPrefix   = "Generate a comprehensive summary"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func longText(word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", 120))
}

func fourSections(overview, findings, methods, recs string) string {
	return fmt.Sprintf("1. **OVERVIEW** - %s\n2. **KEY FINDINGS** - %s\n3. **METHODOLOGIES** - %s\n4. **RECOMMENDATIONS** - %s",
		overview, findings, methods, recs)
}

func assertComplete(t *testing.T, s StructuredSummary) {
	t.Helper()
	for _, sec := range Sections {
		assert.NotEmpty(t, strings.TrimSpace(s.Get(sec)), sec.Key())
	}
}

func TestGenerate_CompleteResponseNeedsOneCall(t *testing.T) {
	model := &scriptedModel{respond: func(string) (string, error) {
		return fourSections(longText("a"), longText("b"), longText("c"), longText("d")), nil
	}}
	g := NewGenerator(model, WithLogger(quietLogger()))

	got := g.Generate(context.Background(), Input{Path: "p.pdf", FullText: "document text"})

	assert.Equal(t, longText("a"), got.Overview)
	assert.Equal(t, longText("d"), got.Recommendations)
	assert.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "document text")
}

func TestGenerate_RepairsMissingSection(t *testing.T) {
	model := &scriptedModel{respond: func(p string) (string, error) {
		switch {
		case strings.HasPrefix(p, structuredPrefix):
			return "1. **OVERVIEW** - o\n3. **METHODOLOGIES** - m\n4. **RECOMMENDATIONS** - r", nil
		case strings.HasPrefix(p, sectionPrefix+"key findings"):
			return "  repaired findings  ", nil
		}
		return "", errors.New("unexpected prompt")
	}}
	g := NewGenerator(model, WithLogger(quietLogger()), WithMinWords(0))

	got := g.Generate(context.Background(), Input{Path: "p.pdf", FullText: "body"})

	assert.Equal(t, StructuredSummary{
		Overview:        "o",
		KeyFindings:     "repaired findings",
		Methodologies:   "m",
		Recommendations: "r",
	}, got)
	assert.Len(t, model.prompts, 2)
}

func TestGenerate_EnhancesShortSections(t *testing.T) {
	model := &scriptedModel{respond: func(p string) (string, error) {
		switch {
		case strings.HasPrefix(p, structuredPrefix):
			return fourSections(longText("a"), "short", longText("c"), "tiny"), nil
		case strings.HasPrefix(p, enhancePrefix):
			return "expanded " + p[len(enhancePrefix):len(enhancePrefix)+4], nil
		}
		return "", errors.New("unexpected prompt")
	}}
	g := NewGenerator(model, WithLogger(quietLogger()))

	got := g.Generate(context.Background(), Input{Path: "p.pdf", FullText: "body"})

	assert.Equal(t, longText("a"), got.Overview)
	assert.Equal(t, "expanded key", got.KeyFindings)
	assert.Equal(t, longText("c"), got.Methodologies)
	assert.Equal(t, "expanded reco", got.Recommendations)
	assert.Equal(t, 2, model.count(enhancePrefix))
}

func TestGenerate_TotalFailureYieldsSentinels(t *testing.T) {
	model := &scriptedModel{respond: func(string) (string, error) {
		return "", errors.New("provider down")
	}}
	g := NewGenerator(model, WithLogger(quietLogger()))

	got := g.Generate(context.Background(), Input{Path: "p.pdf", FullText: "body"})

	assert.Equal(t, "Error generating summary", got.Overview)
	assert.Equal(t, "Error generating key findings", got.KeyFindings)
	assert.Equal(t, "Error generating methodologies", got.Methodologies)
	assert.Equal(t, "Error generating recommendations", got.Recommendations)
	assert.Equal(t, 1, model.count(structuredPrefix))
	assert.Equal(t, 1, model.count(fallbackPrefix))
}

func TestGenerate_FallbackAfterStructuredFailure(t *testing.T) {
	model := &scriptedModel{respond: func(p string) (string, error) {
		if strings.HasPrefix(p, fallbackPrefix) {
			return "plain summary", nil
		}
		return "", errors.New("rate limited")
	}}
	g := NewGenerator(model, WithLogger(quietLogger()))

	got := g.Generate(context.Background(), Input{Path: "p.pdf", FullText: "body"})

	assert.Equal(t, StructuredSummary{
		Overview:        "plain summary",
		KeyFindings:     "See overview for key findings",
		Methodologies:   "See overview for methodologies",
		Recommendations: "See overview for recommendations",
	}, got)
}

func TestGenerate_BlankRepairFallsBack(t *testing.T) {
	model := &scriptedModel{respond: func(p string) (string, error) {
		if strings.HasPrefix(p, fallbackPrefix) {
			return "fallback text", nil
		}
		return "   ", nil
	}}
	g := NewGenerator(model, WithLogger(quietLogger()))

	got := g.Generate(context.Background(), Input{Path: "p.pdf", FullText: "body"})

	assert.Equal(t, "fallback text", got.Overview)
	assert.Equal(t, "See overview for key findings", got.KeyFindings)
	assertComplete(t, got)
}

func TestGenerate_WhitespaceEverywhereNeverEmpty(t *testing.T) {
	model := &scriptedModel{respond: func(string) (string, error) { return "\n\t ", nil }}
	g := NewGenerator(model, WithLogger(quietLogger()))

	got := g.Generate(context.Background(), Input{Path: "p.pdf"})

	assert.Equal(t, errorSentinels, got)
}

func TestGenerate_TruncatesFullText(t *testing.T) {
	model := &scriptedModel{respond: func(string) (string, error) {
		return fourSections("o", "k", "m", "r"), nil
	}}
	g := NewGenerator(model, WithLogger(quietLogger()), WithMinWords(0), WithCaps(10, 5))

	g.Generate(context.Background(), Input{Path: "p.pdf", FullText: "0123456789ABCDEF"})

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "0123456789\n")
	assert.NotContains(t, model.prompts[0], "ABCDEF")
}

type fakeIndex struct {
	chunks  []chunker.Chunk
	queries []string
}

func (f *fakeIndex) TopK(_ context.Context, query string, k int) ([]chunker.Chunk, error) {
	f.queries = append(f.queries, query)
	return f.chunks[:min(k, len(f.chunks))], nil
}

func (f *fakeIndex) Len() int { return len(f.chunks) }

func TestGenerate_RepairUsesRetrievedContext(t *testing.T) {
	idx := &fakeIndex{chunks: []chunker.Chunk{
		{Index: 3, Start: 30, End: 40, Text: "third chunk"},
		{Index: 1, Start: 10, End: 20, Text: "first chunk"},
	}}
	model := &scriptedModel{respond: func(p string) (string, error) {
		if strings.HasPrefix(p, structuredPrefix) {
			return "", nil
		}
		return "section text", nil
	}}
	g := NewGenerator(model, WithLogger(quietLogger()), WithMinWords(0))

	got := g.Generate(context.Background(), Input{Path: "p.pdf", FullText: "UNRETRIEVED", Index: idx})

	assertComplete(t, got)
	assert.Len(t, idx.queries, 4)
	require.Equal(t, 4, model.count(sectionPrefix)-model.count(structuredPrefix))

	section := model.prompts[1]
	assert.Contains(t, section, "first chunk\n\nthird chunk")
	assert.NotContains(t, section, "UNRETRIEVED")
}

func TestGenerate_RepairWithoutIndexUsesDocumentStart(t *testing.T) {
	model := &scriptedModel{respond: func(p string) (string, error) {
		if strings.HasPrefix(p, structuredPrefix) {
			return fourSections("o", "", "m", "r"), nil
		}
		return "k", nil
	}}
	g := NewGenerator(model, WithLogger(quietLogger()), WithMinWords(0), WithCaps(100, 4))

	got := g.Generate(context.Background(), Input{Path: "p.pdf", FullText: "HEADTAIL"})

	assert.Equal(t, "k", got.KeyFindings)
	require.Len(t, model.prompts, 2)
	assert.True(t, strings.HasSuffix(model.prompts[1], "\n\nHEAD"))
}

func TestJoinChunks_DropsOverlap(t *testing.T) {
	chunks := []chunker.Chunk{
		{Index: 1, Start: 7, End: 17, Text: "hijklmnopq"},
		{Index: 0, Start: 0, End: 10, Text: "abcdefghij"},
		{Index: 5, Start: 50, End: 52, Text: "zz"},
	}

	assert.Equal(t, "abcdefghijklmnopq\n\nzz", joinChunks(chunks))
}
