// Package aggregator runs structured summarization over a batch of documents,
// owns the resulting summary store, and synthesizes an overall summary.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bull/paper-digest/internal/document"
	"github.com/bull/paper-digest/internal/llm"
	"github.com/bull/paper-digest/internal/metadata"
	"github.com/bull/paper-digest/internal/store"
	"github.com/bull/paper-digest/internal/summary"
	"github.com/bull/paper-digest/internal/vectorindex"
)

// Failure stages recorded in FailedDoc.Stage.
const (
	StageLoad      = "load"
	StageIndex     = "index"
	StageCancelled = "cancelled"
)

// DocumentLoader extracts and chunks one document.
type DocumentLoader interface {
	Load(ctx context.Context, path string) (*document.Document, error)
}

// SummaryGenerator produces the structured summary of one document.
type SummaryGenerator interface {
	Generate(ctx context.Context, in summary.Input) summary.StructuredSummary
}

// MetadataSource resolves citation metadata for a document path.
type MetadataSource interface {
	Load(docPath string) (*metadata.Metadata, error)
}

// Deps are the components an Aggregator drives. Builder and Metadata may be
// nil: without a Builder no retrieval index is built, without Metadata every
// citation falls back to the document path.
type Deps struct {
	Loader    DocumentLoader
	Builder   vectorindex.Builder
	Generator SummaryGenerator
	Model     llm.Model
	Metadata  MetadataSource
	Logger    *slog.Logger
}

// Result contains statistics about a ProcessAll run.
type Result struct {
	Summaries      *store.Store
	TotalDocs      int
	SuccessfulDocs int
	SkippedDocs    int
	TotalChunks    int
	FailedDocs     []FailedDoc
	Duration       time.Duration
}

// FailedDoc represents a document that produced no summary.
type FailedDoc struct {
	Path   string
	Stage  string
	Reason string
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWorkers sets how many documents are processed concurrently.
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithResume makes ProcessAll reuse summaries already in the store instead of
// regenerating them.
func WithResume(resume bool) Option {
	return func(a *Aggregator) {
		a.resume = resume
	}
}

// Aggregator orchestrates per-document summarization. The summary store is
// owned by the Aggregator and only changed by ProcessAll and Load.
type Aggregator struct {
	loader    DocumentLoader
	builder   vectorindex.Builder
	generator SummaryGenerator
	model     llm.Model
	metadata  MetadataSource
	logger    *slog.Logger

	workers int
	resume  bool

	mu    sync.Mutex
	store *store.Store
}

// New creates an Aggregator with an empty store.
func New(deps Deps, opts ...Option) *Aggregator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &Aggregator{
		loader:    deps.Loader,
		builder:   deps.Builder,
		generator: deps.Generator,
		model:     deps.Model,
		metadata:  deps.Metadata,
		logger:    logger,
		workers:   1,
		store:     store.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// docResult is the outcome of one document, collected by input position.
type docResult struct {
	summary *summary.StructuredSummary
	chunks  int
	skipped bool
	failed  *FailedDoc
}

// ProcessAll summarizes every path and adds the summaries to the store in
// input order. A failing document is recorded in Result.FailedDocs and never
// aborts the batch. Cancelling ctx stops new documents from starting; those
// are recorded with StageCancelled.
func (a *Aggregator) ProcessAll(ctx context.Context, paths []string) *Result {
	start := time.Now()
	paths = dedupe(paths)
	result := &Result{TotalDocs: len(paths)}
	a.logger.Info("Starting batch", "documents", len(paths), "workers", a.workers, "resume", a.resume)

	results := make([]docResult, len(paths))

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, path := range paths {
		if a.resume {
			if existing, ok := a.lookup(path); ok {
				a.logger.Info("Reusing stored summary", "path", path)
				results[i] = docResult{summary: &existing, skipped: true}
				continue
			}
		}
		if err := ctx.Err(); err != nil {
			results[i] = docResult{failed: &FailedDoc{Path: path, Stage: StageCancelled, Reason: err.Error()}}
			continue
		}

		g.Go(func() error {
			results[i] = a.processDocument(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	a.mu.Lock()
	for i, r := range results {
		switch {
		case r.failed != nil:
			a.logger.Warn("Failed to process document",
				"path", r.failed.Path,
				"stage", r.failed.Stage,
				"error", r.failed.Reason)
			result.FailedDocs = append(result.FailedDocs, *r.failed)
		case r.skipped:
			result.SkippedDocs++
		default:
			a.store.Put(paths[i], *r.summary)
			result.SuccessfulDocs++
			result.TotalChunks += r.chunks
		}
	}
	result.Summaries = a.store
	a.mu.Unlock()

	result.Duration = time.Since(start)
	a.logger.Info("Batch complete",
		"successful", result.SuccessfulDocs,
		"skipped", result.SkippedDocs,
		"failed", len(result.FailedDocs),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)
	return result
}

// processDocument loads, indexes, and summarizes one document.
func (a *Aggregator) processDocument(ctx context.Context, path string) docResult {
	fail := func(stage string, err error) docResult {
		return docResult{failed: &FailedDoc{Path: path, Stage: stage, Reason: err.Error()}}
	}

	if err := ctx.Err(); err != nil {
		return fail(StageCancelled, err)
	}

	doc, err := a.loader.Load(ctx, path)
	if err != nil {
		return fail(StageLoad, err)
	}
	a.logger.Debug("Loaded document", "path", path, "chars", len(doc.FullText), "chunks", len(doc.Chunks))

	var idx vectorindex.Index
	if a.builder != nil && len(doc.Chunks) > 0 {
		idx, err = a.builder.Build(ctx, path, doc.Chunks)
		if err != nil {
			return fail(StageIndex, err)
		}
	}

	sum := a.generator.Generate(ctx, summary.Input{Path: path, FullText: doc.FullText, Index: idx})
	if err := ctx.Err(); err != nil {
		return fail(StageCancelled, err)
	}

	a.logger.Info("Summarized document", "path", path, "chunks", len(doc.Chunks))
	return docResult{summary: &sum, chunks: len(doc.Chunks)}
}

func (a *Aggregator) lookup(path string) (summary.StructuredSummary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Get(path)
}

// Summaries returns the owned store. Callers must not modify it while
// ProcessAll or Load is running.
func (a *Aggregator) Summaries() *store.Store {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store
}

// Count returns the number of stored summaries. It does not wait for a
// running ProcessAll to finish.
func (a *Aggregator) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Len()
}

// Save writes the owned store to path.
func (a *Aggregator) Save(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.store.Save(path); err != nil {
		return fmt.Errorf("save summaries: %w", err)
	}
	a.logger.Info("Saved summaries", "path", path, "documents", a.store.Len())
	return nil
}

// Load replaces the owned store with the one saved at path.
func (a *Aggregator) Load(path string) error {
	s, err := store.Load(path)
	if err != nil {
		return fmt.Errorf("load summaries: %w", err)
	}
	a.mu.Lock()
	a.store = s
	a.mu.Unlock()
	a.logger.Info("Loaded summaries", "path", path, "documents", s.Len())
	return nil
}

// LoadExisting loads the store at path if the file exists and reports whether
// it did. A missing file leaves the owned store unchanged.
func (a *Aggregator) LoadExisting(path string) (bool, error) {
	err := a.Load(path)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LoadMetadata returns citation metadata for docPath, or nil when none exists.
func (a *Aggregator) LoadMetadata(docPath string) (*metadata.Metadata, error) {
	if a.metadata == nil {
		return nil, nil
	}
	return a.metadata.Load(docPath)
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

