// Package mcp exposes paper summarization over the Model Context Protocol.
package mcp

import "github.com/bull/paper-digest/internal/summary"

// SummarizeInput defines the input parameters for the summarize_documents tool.
type SummarizeInput struct {
	// Paths are PDF file paths, processed in order.
	Paths []string `json:"paths" jsonschema:"PDF file paths to summarize, in order"`
}

// SummarizeOutput reports a summarize_documents run.
type SummarizeOutput struct {
	Documents      []DocumentSummary `json:"documents"`
	Failed         []FailedDocument  `json:"failed"`
	SuccessfulDocs int               `json:"successful_docs"`
	SkippedDocs    int               `json:"skipped_docs"`
	TotalChunks    int               `json:"total_chunks"`
	DurationMillis int64             `json:"duration_ms"`
}

// DocumentSummary is one stored summary.
type DocumentSummary struct {
	Path    string                    `json:"path"`
	Summary summary.StructuredSummary `json:"summary"`
}

// FailedDocument is a document that produced no summary.
type FailedDocument struct {
	Path   string `json:"path"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// ListSummariesInput takes no parameters.
type ListSummariesInput struct{}

// ListSummariesOutput lists stored document paths in store order.
type ListSummariesOutput struct {
	Paths []string `json:"paths"`
	Count int      `json:"count"`
}

// GetSummaryInput defines the input parameters for the get_summary tool.
type GetSummaryInput struct {
	Path string `json:"path" jsonschema:"Document path exactly as it was summarized"`
}

// GetSummaryOutput contains one stored summary and its citation.
type GetSummaryOutput struct {
	Path     string                     `json:"path"`
	Found    bool                       `json:"found"`
	Citation string                     `json:"citation,omitempty"`
	Summary  *summary.StructuredSummary `json:"summary,omitempty"`
}

// OverallSummaryInput takes no parameters.
type OverallSummaryInput struct{}

// OverallSummaryOutput contains the cross-document synthesis.
type OverallSummaryOutput struct {
	Text      string `json:"text"`
	Documents int    `json:"documents"`
	Message   string `json:"message,omitempty"`
}

// RecentMetadataInput defines the input parameters for the recent_metadata tool.
type RecentMetadataInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of papers to return, default 10"`
}

// RecentMetadataOutput lists recently scraped papers.
type RecentMetadataOutput struct {
	Papers []Paper `json:"papers"`
}

// Paper is the citation metadata of one scraped paper.
type Paper struct {
	File      string   `json:"file"`
	ArxivID   string   `json:"arxiv_id"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Published string   `json:"published"`
	PDFURL    string   `json:"pdf_url"`
}
