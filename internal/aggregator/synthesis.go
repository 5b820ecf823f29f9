package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bull/paper-digest/internal/metadata"
	"github.com/bull/paper-digest/internal/summary"
)

// ErrEmptyStore is returned by SynthesizeOverall when there is nothing to synthesize.
var ErrEmptyStore = errors.New("no summaries to synthesize")

const synthesisTemplate = `You are given summaries of multiple documents. Provide a comprehensive overall summary synthesizing the information, highlighting common themes, differences, and key insights. Each document summary is preceded by citation metadata.

Summaries:
%s
`

// SynthesisPrompt wraps the combined per-document blocks in the synthesis instruction.
func SynthesisPrompt(combined string) string {
	return fmt.Sprintf(synthesisTemplate, combined)
}

// Citation renders the header that precedes a document's summary. Without
// metadata it names the document path.
func Citation(path string, meta *metadata.Metadata) string {
	if meta == nil {
		return "Document: " + path + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", meta.Title)
	fmt.Fprintf(&b, "Authors: %s\n", strings.Join(meta.Authors, ", "))
	fmt.Fprintf(&b, "arXiv ID: %s\n", meta.ArxivID)
	fmt.Fprintf(&b, "Published: %s\n", meta.Published)
	fmt.Fprintf(&b, "PDF: %s\n", meta.PDFURL)
	return b.String()
}

// SynthesisInput builds the combined text for every stored summary in store
// order: a citation block followed by the four labelled sections.
func (a *Aggregator) SynthesisInput() string {
	s := a.Summaries()

	var b strings.Builder
	for _, path := range s.Paths() {
		sum, _ := s.Get(path)

		meta, err := a.LoadMetadata(path)
		if err != nil {
			a.logger.Warn("Ignoring unreadable metadata", "path", path, "error", err)
			meta = nil
		}

		b.WriteString(Citation(path, meta))
		b.WriteString("\n")
		for _, sec := range summary.Sections {
			fmt.Fprintf(&b, "### %s:\n%s\n\n", sec.Title(), sum.Get(sec))
		}
	}
	return b.String()
}

// SynthesizeOverall asks the model for one summary across all stored
// documents and returns its text unchanged. The result is not stored.
func (a *Aggregator) SynthesizeOverall(ctx context.Context) (string, error) {
	if a.Summaries().Len() == 0 {
		return "", ErrEmptyStore
	}
	if a.model == nil {
		return "", errors.New("no language model configured")
	}

	combined := summary.Truncate(a.SynthesisInput(), summary.FullTextCap)
	a.logger.Info("Synthesizing overall summary", "documents", a.Summaries().Len(), "chars", len(combined))

	text, err := a.model.Generate(ctx, SynthesisPrompt(combined))
	if err != nil {
		return "", fmt.Errorf("synthesize overall summary: %w", err)
	}
	return text, nil
}
