package mcp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/paper-digest/internal/aggregator"
	"github.com/bull/paper-digest/internal/metadata"
)

// Server wraps the MCP server with dependencies.
type Server struct {
	server    *mcp.Server
	agg       *aggregator.Aggregator
	metadata  *metadata.Loader
	storePath string
	logger    *slog.Logger

	// mu serializes tool calls that touch the aggregator's store.
	mu sync.Mutex
}

// Config holds server dependencies.
type Config struct {
	Aggregator *aggregator.Aggregator
	// Metadata backs recent_metadata; nil disables it.
	Metadata *metadata.Loader
	// StorePath is where summaries are saved after each summarize call.
	// Empty keeps summaries in memory only.
	StorePath string
	Logger    *slog.Logger
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	impl := &mcp.Implementation{
		Name:    "paper-digest-server",
		Version: "v0.1.0",
	}

	s := &Server{
		server:    mcp.NewServer(impl, nil),
		agg:       cfg.Aggregator,
		metadata:  cfg.Metadata,
		storePath: cfg.StorePath,
		logger:    logger,
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_documents",
		Description: "Generate structured summaries (overview, key findings, methodologies, recommendations) for PDF files and store them.",
	}, s.makeSummarizeHandler())

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_summaries",
		Description: "List the paths of all stored document summaries in processing order.",
	}, s.makeListHandler())

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_summary",
		Description: "Retrieve the stored structured summary and citation for one document path.",
	}, s.makeGetHandler())

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "overall_summary",
		Description: "Synthesize one overall summary across all stored documents, highlighting common themes, differences, and key insights with citations.",
	}, s.makeOverallHandler())

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recent_metadata",
		Description: "List the most recently scraped papers with title, authors, arXiv ID, publication date, and PDF URL.",
	}, s.makeRecentHandler())

	return s
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// SummaryCount returns the number of stored summaries without waiting for a
// tool call in flight.
func (s *Server) SummaryCount() int {
	return s.agg.Count()
}
