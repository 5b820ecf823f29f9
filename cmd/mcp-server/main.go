// Package main provides the MCP server entry point for paper summarization.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bull/paper-digest/internal/bootstrap"
	"github.com/bull/paper-digest/internal/config"
	mcpserver "github.com/bull/paper-digest/internal/mcp"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Stdout carries the stdio transport, so logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	configPath := os.Getenv("DIGEST_CONFIG")
	if configPath == "" {
		configPath = config.DefaultPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer rt.Close()

	agg := rt.Aggregator()
	loaded, err := agg.LoadExisting(cfg.Paths.SummaryStore)
	if err != nil {
		log.Fatalf("failed to load summaries: %v", err)
	}
	if loaded {
		logger.Info("Loaded summary store", "path", cfg.Paths.SummaryStore, "documents", agg.Summaries().Len())
	}

	server := mcpserver.NewServer(&mcpserver.Config{
		Aggregator: agg,
		Metadata:   rt.Metadata,
		StorePath:  cfg.Paths.SummaryStore,
		Logger:     logger,
	})

	var index mcpserver.HealthChecker
	if rt.Qdrant != nil {
		index = rt.Qdrant
	}
	mux := mcpserver.NewMux(server, index, nil)
	addr := "0.0.0.0:" + cfg.Server.Port

	if cfg.Server.HTTP {
		// HTTP mode: serve MCP over HTTP for remote clients
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			<-ctx.Done()
			srv.Shutdown(context.Background())
		}()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
		return
	}

	// Stdio mode: run MCP server over stdin/stdout for local clients,
	// with the health endpoint in the background for local testing
	go func() {
		log.Printf("Starting health server on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Health server error: %v", err)
		}
	}()

	log.Println("Starting Paper Digest MCP Server (stdio mode)...")
	if err := server.Run(ctx); err != nil {
		log.Printf("server error: %v", err)
		os.Exit(1)
	}
}
