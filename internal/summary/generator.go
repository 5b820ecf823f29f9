package summary

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/bull/paper-digest/internal/chunker"
	"github.com/bull/paper-digest/internal/llm"
	"github.com/bull/paper-digest/internal/vectorindex"
)

const (
	// FullTextCap bounds the document text sent in whole-document prompts.
	FullTextCap = 50000
	// ContextCap bounds the context sent when regenerating one section.
	ContextCap = 20000
	// MinWords is the length below which a section is expanded.
	MinWords = 100
)

var fallbackPlaceholders = map[Section]string{
	KeyFindings:     "See overview for key findings",
	Methodologies:   "See overview for methodologies",
	Recommendations: "See overview for recommendations",
}

var errorSentinels = StructuredSummary{
	Overview:        "Error generating summary",
	KeyFindings:     "Error generating key findings",
	Methodologies:   "Error generating methodologies",
	Recommendations: "Error generating recommendations",
}

// Input is one document handed to the generator. Index may be nil, in which
// case section context is taken from the start of FullText.
type Input struct {
	Path     string
	FullText string
	Index    vectorindex.Index
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMinWords sets the word count below which a section is enhanced.
func WithMinWords(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.minWords = n
		}
	}
}

// WithCaps sets the character caps for whole-document and section prompts.
func WithCaps(fullText, section int) Option {
	return func(g *Generator) {
		if fullText > 0 {
			g.fullTextCap = fullText
		}
		if section > 0 {
			g.contextCap = section
		}
	}
}

// WithRetrievalK sets how many chunks are retrieved per section.
func WithRetrievalK(k int) Option {
	return func(g *Generator) {
		if k > 0 {
			g.k = k
		}
	}
}

// Generator turns a document into a StructuredSummary with a fixed sequence of
// model calls. It is safe for concurrent use if the model is.
type Generator struct {
	model       llm.Model
	logger      *slog.Logger
	minWords    int
	fullTextCap int
	contextCap  int
	k           int
}

// NewGenerator creates a Generator backed by model.
func NewGenerator(model llm.Model, opts ...Option) *Generator {
	g := &Generator{
		model:       model,
		logger:      slog.Default(),
		minWords:    MinWords,
		fullTextCap: FullTextCap,
		contextCap:  ContextCap,
		k:           vectorindex.DefaultK,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type state int

const (
	stateGenerating state = iota
	stateParsing
	stateRepairing
	stateEnhancing
	stateDone
	stateErrored
)

func (s state) String() string {
	switch s {
	case stateGenerating:
		return "generating"
	case stateParsing:
		return "parsing"
	case stateRepairing:
		return "repairing"
	case stateEnhancing:
		return "enhancing"
	case stateDone:
		return "done"
	case stateErrored:
		return "errored"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// outcome is the result of one step: the state to move to and, when the step
// failed, the reason.
type outcome struct {
	next state
	err  error
}

// run carries the working values of one Generate call.
type run struct {
	in      Input
	raw     string
	summary StructuredSummary
}

// Generate always returns a summary with four non-empty fields. Provider
// failures are logged and resolved by the fallback chain, never returned.
func (g *Generator) Generate(ctx context.Context, in Input) StructuredSummary {
	r := &run{in: in}

	st := stateGenerating
	for st != stateDone && st != stateErrored {
		var out outcome
		switch st {
		case stateGenerating:
			out = g.generate(ctx, r)
		case stateParsing:
			out = g.parse(r)
		case stateRepairing:
			out = g.repair(ctx, r)
		case stateEnhancing:
			out = g.enhance(ctx, r)
		}

		if out.err != nil {
			g.logger.Warn("Summary step failed",
				"path", in.Path,
				"state", st.String(),
				"error", out.err)
		}
		g.logger.Debug("Summary state transition",
			"path", in.Path,
			"from", st.String(),
			"to", out.next.String())
		st = out.next
	}

	if st == stateErrored {
		return g.fallback(ctx, r)
	}
	return r.summary
}

func (g *Generator) generate(ctx context.Context, r *run) outcome {
	prompt := StructuredPrompt(Truncate(r.in.FullText, g.fullTextCap))
	raw, err := g.call(ctx, "structured", prompt, false)
	if err != nil {
		return outcome{next: stateErrored, err: err}
	}
	r.raw = raw
	return outcome{next: stateParsing}
}

func (g *Generator) parse(r *run) outcome {
	r.summary = Parse(r.raw)
	if r.summary.Complete() {
		return outcome{next: stateEnhancing}
	}
	return outcome{next: stateRepairing}
}

func (g *Generator) repair(ctx context.Context, r *run) outcome {
	for _, sec := range Sections {
		if strings.TrimSpace(r.summary.Get(sec)) != "" {
			continue
		}

		g.logger.Info("Regenerating missing section", "path", r.in.Path, "section", sec.Key())
		text, err := g.call(ctx, "section "+sec.Key(), SectionPrompt(sec, g.sectionContext(ctx, r.in, sec)), true)
		if err != nil {
			return outcome{next: stateErrored, err: err}
		}
		r.summary.Set(sec, text)
	}
	return outcome{next: stateEnhancing}
}

func (g *Generator) enhance(ctx context.Context, r *run) outcome {
	for _, sec := range Sections {
		current := r.summary.Get(sec)
		if wordCount(current) >= g.minWords {
			continue
		}

		g.logger.Debug("Enhancing short section", "path", r.in.Path, "section", sec.Key(), "words", wordCount(current))
		text, err := g.call(ctx, "enhance "+sec.Key(), EnhancePrompt(sec, current), true)
		if err != nil {
			return outcome{next: stateErrored, err: err}
		}
		r.summary.Set(sec, text)
	}

	if !r.summary.Complete() {
		return outcome{next: stateErrored, err: fmt.Errorf("%w: incomplete summary after enhancement", ErrGeneration)}
	}
	return outcome{next: stateDone}
}

// fallback makes one whole-document call and, if that also fails, returns the
// error sentinels.
func (g *Generator) fallback(ctx context.Context, r *run) StructuredSummary {
	text, err := g.call(ctx, "fallback", FallbackPrompt(Truncate(r.in.FullText, g.fullTextCap)), true)
	if err != nil {
		g.logger.Error("Fallback summary failed", "path", r.in.Path, "error", err)
		return errorSentinels
	}

	out := StructuredSummary{Overview: text}
	for sec, placeholder := range fallbackPlaceholders {
		out.Set(sec, placeholder)
	}
	return out
}

// call runs one model request. When requireText is set, a blank response
// counts as a failure.
func (g *Generator) call(ctx context.Context, step, prompt string, requireText bool) (string, error) {
	text, err := g.model.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrGeneration, step, err)
	}
	text = strings.TrimSpace(text)
	if requireText && text == "" {
		return "", fmt.Errorf("%w: %s: empty response", ErrGeneration, step)
	}
	return text, nil
}

// sectionContext gathers the text a section is regenerated from: the chunks
// nearest to the section's query, in document order, or the start of the full
// text when no index is available.
func (g *Generator) sectionContext(ctx context.Context, in Input, sec Section) string {
	if in.Index == nil || in.Index.Len() == 0 {
		return Truncate(in.FullText, g.contextCap)
	}

	chunks, err := in.Index.TopK(ctx, sectionQueries[sec], g.k)
	if err != nil || len(chunks) == 0 {
		g.logger.Warn("Section retrieval failed, using document start",
			"path", in.Path,
			"section", sec.Key(),
			"error", err)
		return Truncate(in.FullText, g.contextCap)
	}

	return Truncate(joinChunks(chunks), g.contextCap)
}

// joinChunks concatenates chunks in document order, dropping text that
// overlaps the previous chunk.
func joinChunks(chunks []chunker.Chunk) string {
	sorted := make([]chunker.Chunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	var b strings.Builder
	prevEnd := -1
	for _, c := range sorted {
		text := c.Text
		if prevEnd > c.Start {
			runes := []rune(text)
			skip := min(prevEnd-c.Start, len(runes))
			text = string(runes[skip:])
		} else if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
		prevEnd = max(prevEnd, c.End)
	}
	return b.String()
}
