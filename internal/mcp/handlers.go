package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/paper-digest/internal/aggregator"
	"github.com/bull/paper-digest/internal/metadata"
)

const defaultRecentLimit = 10

// makeSummarizeHandler creates the summarize_documents tool handler.
// Summaries are added to the aggregator's store, which is saved after the run.
func (s *Server) makeSummarizeHandler() func(
	context.Context, *mcp.CallToolRequest, SummarizeInput,
) (*mcp.CallToolResult, SummarizeOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SummarizeInput) (
		*mcp.CallToolResult, SummarizeOutput, error,
	) {
		if len(input.Paths) == 0 {
			return nil, SummarizeOutput{}, errors.New("paths must not be empty")
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		result := s.agg.ProcessAll(ctx, input.Paths)
		if s.storePath != "" {
			if err := s.agg.Save(s.storePath); err != nil {
				return nil, SummarizeOutput{}, fmt.Errorf("failed to save summaries: %w", err)
			}
		}

		out := SummarizeOutput{
			Documents:      []DocumentSummary{},
			Failed:         []FailedDocument{},
			SuccessfulDocs: result.SuccessfulDocs,
			SkippedDocs:    result.SkippedDocs,
			TotalChunks:    result.TotalChunks,
			DurationMillis: result.Duration.Milliseconds(),
		}
		seen := make(map[string]bool, len(input.Paths))
		for _, path := range input.Paths {
			if seen[path] {
				continue
			}
			seen[path] = true
			if sum, ok := result.Summaries.Get(path); ok {
				out.Documents = append(out.Documents, DocumentSummary{Path: path, Summary: sum})
			}
		}
		for _, f := range result.FailedDocs {
			out.Failed = append(out.Failed, FailedDocument{Path: f.Path, Stage: f.Stage, Reason: f.Reason})
		}
		return nil, out, nil
	}
}

// makeListHandler creates the list_summaries tool handler.
func (s *Server) makeListHandler() func(
	context.Context, *mcp.CallToolRequest, ListSummariesInput,
) (*mcp.CallToolResult, ListSummariesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListSummariesInput) (
		*mcp.CallToolResult, ListSummariesOutput, error,
	) {
		s.mu.Lock()
		defer s.mu.Unlock()

		paths := s.agg.Summaries().Paths()
		return nil, ListSummariesOutput{Paths: paths, Count: len(paths)}, nil
	}
}

// makeGetHandler creates the get_summary tool handler. An unknown path is
// reported with Found=false rather than an error.
func (s *Server) makeGetHandler() func(
	context.Context, *mcp.CallToolRequest, GetSummaryInput,
) (*mcp.CallToolResult, GetSummaryOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetSummaryInput) (
		*mcp.CallToolResult, GetSummaryOutput, error,
	) {
		s.mu.Lock()
		defer s.mu.Unlock()

		sum, ok := s.agg.Summaries().Get(input.Path)
		if !ok {
			return nil, GetSummaryOutput{Path: input.Path, Found: false}, nil
		}

		meta, err := s.agg.LoadMetadata(input.Path)
		if err != nil {
			s.logger.Warn("Ignoring unreadable metadata", "path", input.Path, "error", err)
			meta = nil
		}

		return nil, GetSummaryOutput{
			Path:     input.Path,
			Found:    true,
			Citation: aggregator.Citation(input.Path, meta),
			Summary:  &sum,
		}, nil
	}
}

// makeOverallHandler creates the overall_summary tool handler.
func (s *Server) makeOverallHandler() func(
	context.Context, *mcp.CallToolRequest, OverallSummaryInput,
) (*mcp.CallToolResult, OverallSummaryOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input OverallSummaryInput) (
		*mcp.CallToolResult, OverallSummaryOutput, error,
	) {
		s.mu.Lock()
		defer s.mu.Unlock()

		text, err := s.agg.SynthesizeOverall(ctx)
		if errors.Is(err, aggregator.ErrEmptyStore) {
			return nil, OverallSummaryOutput{
				Message: "No summaries available. Run summarize_documents first.",
			}, nil
		}
		if err != nil {
			return nil, OverallSummaryOutput{}, fmt.Errorf("failed to synthesize: %w", err)
		}

		return nil, OverallSummaryOutput{Text: text, Documents: s.agg.Summaries().Len()}, nil
	}
}

// makeRecentHandler creates the recent_metadata tool handler.
func (s *Server) makeRecentHandler() func(
	context.Context, *mcp.CallToolRequest, RecentMetadataInput,
) (*mcp.CallToolResult, RecentMetadataOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RecentMetadataInput) (
		*mcp.CallToolResult, RecentMetadataOutput, error,
	) {
		limit := input.Limit
		if limit <= 0 {
			limit = defaultRecentLimit
		}

		out := RecentMetadataOutput{Papers: []Paper{}}
		if s.metadata == nil {
			return nil, out, nil
		}

		entries, err := s.metadata.ListRecent(limit)
		if err != nil {
			return nil, RecentMetadataOutput{}, fmt.Errorf("failed to list metadata: %w", err)
		}
		for _, e := range entries {
			out.Papers = append(out.Papers, toPaper(e))
		}
		return nil, out, nil
	}
}

func toPaper(e metadata.Entry) Paper {
	m := e.Metadata
	authors := m.Authors
	if authors == nil {
		authors = []string{}
	}
	return Paper{
		File:      e.File,
		ArxivID:   m.ArxivID,
		Title:     m.Title,
		Authors:   authors,
		Published: m.Published,
		PDFURL:    m.PDFURL,
	}
}
