package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bull/paper-digest/internal/aggregator"
	"github.com/bull/paper-digest/internal/bootstrap"
	"github.com/bull/paper-digest/internal/metadata"
	"github.com/bull/paper-digest/internal/pdf"
	"github.com/bull/paper-digest/internal/report"
)

var (
	storeFlag   string
	workersFlag int
	resumeFlag  bool
	outFlag     string
	formatFlag  string
	overallFlag bool
	titleFlag   string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [pdf or directory]...",
	Short: "Summarize PDF papers into the summary store",
	Long: `Generates a structured summary for every PDF and saves the store.

This command:
1. Extracts text with pdftotext and splits it into overlapping chunks
2. Embeds the chunks into a per-paper retrieval index
3. Generates overview, key findings, methodologies, and recommendations
4. Writes all summaries, in input order, to the summary store

A paper that cannot be read is reported and skipped; the batch continues.

Environment variables:
  LLM_PROVIDER     openai or ollama (default: openai)
  OPENAI_API_KEY   OpenAI API key (required for openai)
  OLLAMA_HOST      Ollama server URL (default: http://localhost:11434)
  INDEX_BACKEND    memory or qdrant (default: memory)
  QDRANT_HOST      Qdrant hostname (default: localhost)
  QDRANT_PORT      Qdrant gRPC port (default: 6334)
  DIGEST_WORKERS   papers processed concurrently (default: 1)
  METADATA_DIR     directory with arXiv metadata JSON files
  SUMMARY_STORE    summary store path (default: document_summaries.json)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummarize,
}

var overallCmd = &cobra.Command{
	Use:   "overall",
	Short: "Synthesize one cited summary across all stored papers",
	Args:  cobra.NoArgs,
	RunE:  runOverall,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render stored summaries as a Markdown or HTML digest",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	for _, cmd := range []*cobra.Command{summarizeCmd, overallCmd, reportCmd} {
		cmd.Flags().StringVar(&storeFlag, "store", "", "summary store path (overrides SUMMARY_STORE)")
	}

	summarizeCmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "papers processed concurrently (overrides DIGEST_WORKERS)")
	summarizeCmd.Flags().BoolVar(&resumeFlag, "resume", false, "reuse summaries already in the store")

	overallCmd.Flags().StringVarP(&outFlag, "out", "o", "", "write the summary to a file instead of stdout")

	reportCmd.Flags().StringVarP(&outFlag, "out", "o", "", "output file (default: stdout)")
	reportCmd.Flags().StringVarP(&formatFlag, "format", "f", "markdown", "markdown or html")
	reportCmd.Flags().BoolVar(&overallFlag, "overall", false, "include a synthesized overall summary")
	reportCmd.Flags().StringVar(&titleFlag, "title", report.DefaultTitle, "report title")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if storeFlag != "" {
		cfg.Paths.SummaryStore = storeFlag
	}
	if workersFlag > 0 {
		cfg.Workers = workersFlag
	}

	if err := pdf.CheckAvailable(); err != nil {
		fmt.Fprintln(os.Stderr, pdf.InstallInstructions())
		return err
	}

	paths, err := expandInputs(args)
	if err != nil {
		return fmt.Errorf("Failed to expand inputs: %w", err)
	}
	if len(paths) == 0 {
		return errors.New("no PDF files found")
	}

	fmt.Println("Starting summarization...")
	fmt.Println()

	rt, err := bootstrap.New(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("Failed to initialize: %w", err)
	}
	defer rt.Close()

	agg := rt.Aggregator(aggregator.WithResume(resumeFlag))
	if resumeFlag {
		loaded, err := agg.LoadExisting(cfg.Paths.SummaryStore)
		if err != nil {
			return fmt.Errorf("Failed to load existing summaries: %w", err)
		}
		if loaded {
			fmt.Printf("Resuming from %s (%d summaries)\n", cfg.Paths.SummaryStore, agg.Summaries().Len())
		}
	}

	fmt.Printf("Summarizing %d papers with %s (%s index, %d workers)...\n",
		len(paths), cfg.LLM.Provider, cfg.Index.Backend, cfg.Workers)
	result := agg.ProcessAll(ctx, paths)

	if err := agg.Save(cfg.Paths.SummaryStore); err != nil {
		return fmt.Errorf("Failed to save summaries: %w", err)
	}

	fmt.Println()
	fmt.Println("Summarization complete!")
	fmt.Printf("  Papers: %d/%d\n", result.SuccessfulDocs, result.TotalDocs)
	if result.SkippedDocs > 0 {
		fmt.Printf("  Reused: %d\n", result.SkippedDocs)
	}
	fmt.Printf("  Chunks: %d\n", result.TotalChunks)
	if rt.Qdrant != nil {
		if info, err := rt.Qdrant.GetCollectionInfo(ctx); err == nil {
			fmt.Printf("  Indexed points: %d\n", info.PointsCount)
		}
	}
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Second))
	fmt.Printf("  Store: %s\n", cfg.Paths.SummaryStore)

	if len(result.FailedDocs) > 0 {
		fmt.Println()
		fmt.Println("Failed papers:")
		for _, failed := range result.FailedDocs {
			fmt.Printf("  - %s [%s]: %s\n", failed.Path, failed.Stage, failed.Reason)
		}
	}

	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Second))
	return nil
}

func runOverall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if storeFlag != "" {
		cfg.Paths.SummaryStore = storeFlag
	}

	rt, err := bootstrap.New(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("Failed to initialize: %w", err)
	}
	defer rt.Close()

	agg := rt.Aggregator()
	if err := agg.Load(cfg.Paths.SummaryStore); err != nil {
		return err
	}

	text, err := agg.SynthesizeOverall(ctx)
	if err != nil {
		return err
	}
	return writeOutput(outFlag, []byte(text+"\n"))
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if storeFlag != "" {
		cfg.Paths.SummaryStore = storeFlag
	}

	format := strings.ToLower(formatFlag)
	if format != "markdown" && format != "md" && format != "html" {
		return fmt.Errorf("unknown format %q", formatFlag)
	}

	var agg *aggregator.Aggregator
	if overallFlag {
		rt, err := bootstrap.New(ctx, cfg, nil)
		if err != nil {
			return fmt.Errorf("Failed to initialize: %w", err)
		}
		defer rt.Close()
		agg = rt.Aggregator()
	} else {
		agg = aggregator.New(aggregator.Deps{Metadata: metadata.NewLoader(cfg.Paths.MetadataDir, nil)})
	}

	if err := agg.Load(cfg.Paths.SummaryStore); err != nil {
		return err
	}

	rep := report.Report{
		Title:     titleFlag,
		Entries:   report.Collect(agg.Summaries(), agg.LoadMetadata),
		Generated: time.Now(),
	}
	if overallFlag {
		text, err := agg.SynthesizeOverall(ctx)
		if err != nil {
			return err
		}
		rep.Overall = text
	}

	out := rep.Markdown()
	if format == "html" {
		out, err = report.NewRenderer().HTML(rep.Title, out)
		if err != nil {
			return err
		}
	}
	return writeOutput(outFlag, out)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("Failed to write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}
