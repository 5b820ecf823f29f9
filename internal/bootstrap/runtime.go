// Package bootstrap wires configured clients into the components the commands run.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bull/paper-digest/internal/aggregator"
	"github.com/bull/paper-digest/internal/chunker"
	"github.com/bull/paper-digest/internal/config"
	"github.com/bull/paper-digest/internal/document"
	"github.com/bull/paper-digest/internal/embedding"
	"github.com/bull/paper-digest/internal/llm"
	"github.com/bull/paper-digest/internal/metadata"
	"github.com/bull/paper-digest/internal/pdf"
	"github.com/bull/paper-digest/internal/storage"
	"github.com/bull/paper-digest/internal/summary"
	"github.com/bull/paper-digest/internal/vectorindex"
)

// Runtime holds every long-lived client for one command invocation.
// The command that creates it must call Close.
type Runtime struct {
	Config    *config.Config
	Logger    *slog.Logger
	Model     llm.Model
	Embedder  vectorindex.Embedder
	Builder   vectorindex.Builder
	Loader    *document.Loader
	Generator *summary.Generator
	Metadata  *metadata.Loader

	// Qdrant is set only for the qdrant index backend.
	Qdrant *storage.QdrantStorage
}

// New validates cfg and constructs the runtime.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		Metadata: metadata.NewLoader(cfg.Paths.MetadataDir, logger),
	}

	model, embedder, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.LLM.TimeoutSecs) * time.Second
	rt.Model = llm.WithTimeout(model, timeout)
	rt.Embedder = vectorindex.WithTimeout(embedder, timeout)

	switch cfg.Index.Backend {
	case config.BackendQdrant:
		if err := rt.connectQdrant(ctx); err != nil {
			return nil, err
		}
		rt.Builder = vectorindex.NewQdrantBuilder(rt.Embedder, rt.Qdrant)
	default:
		rt.Builder = vectorindex.NewMemoryBuilder(rt.Embedder)
	}

	c := chunker.New(
		chunker.WithChunkSize(cfg.Chunker.Size),
		chunker.WithOverlap(cfg.Chunker.Overlap),
	)
	rt.Loader = document.NewLoader(pdf.New(), c)

	rt.Generator = summary.NewGenerator(rt.Model,
		summary.WithLogger(logger),
		summary.WithMinWords(cfg.Summary.MinWords),
		summary.WithCaps(cfg.Summary.FullTextCap, cfg.Summary.ContextCap),
		summary.WithRetrievalK(cfg.Index.K),
	)

	logger.Debug("Runtime ready",
		"provider", cfg.LLM.Provider,
		"index", cfg.Index.Backend,
		"chunk_size", c.Size(),
		"overlap", c.Overlap())
	return rt, nil
}

func newProvider(cfg *config.Config) (llm.Model, vectorindex.Embedder, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOllama:
		model, err := llm.NewOllama(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.Model)
		if err != nil {
			return nil, nil, err
		}
		embedder, err := embedding.NewOllamaEmbedder(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.EmbeddingModel)
		if err != nil {
			return nil, nil, err
		}
		return model, embedder, nil
	default:
		client, err := embedding.NewClient(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.BaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create OpenAI client: %w", err)
		}
		model := llm.NewOpenAI(client.Client(), cfg.LLM.OpenAI.ChatModel)
		embedder := embedding.NewEmbedder(client, cfg.LLM.OpenAI.EmbeddingModel, cfg.LLM.OpenAI.BatchSize)
		return model, embedder, nil
	}
}

func (r *Runtime) connectQdrant(ctx context.Context) error {
	dim, err := r.embeddingDimension(ctx)
	if err != nil {
		return err
	}

	q := r.Config.Index.Qdrant
	store, err := storage.NewQdrantStorage(q.Host, q.Port, dim)
	if err != nil {
		return fmt.Errorf("connect to Qdrant: %w", err)
	}
	if err := store.Health(ctx); err != nil {
		store.Close()
		return err
	}
	if err := store.EnsureCollection(ctx); err != nil {
		store.Close()
		return fmt.Errorf("ensure collection: %w", err)
	}

	r.Logger.Info("Connected to Qdrant", "host", q.Host, "port", q.Port, "dimension", dim)
	r.Qdrant = store
	return nil
}

// embeddingDimension returns the vector size of the configured embedder. The
// OpenAI default model has a known size; other models are probed once.
func (r *Runtime) embeddingDimension(ctx context.Context) (int, error) {
	if r.Config.LLM.Provider == config.ProviderOpenAI && r.Config.LLM.OpenAI.EmbeddingModel == embedding.DefaultModel {
		return embedding.DefaultDimension, nil
	}

	vectors, err := r.Embedder.GenerateEmbeddings(ctx, []string{"dimension probe"})
	if err != nil {
		return 0, fmt.Errorf("probe embedding dimension: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return 0, fmt.Errorf("probe embedding dimension: empty vector")
	}
	return len(vectors[0]), nil
}

// Aggregator returns an aggregator over the runtime's components.
func (r *Runtime) Aggregator(opts ...aggregator.Option) *aggregator.Aggregator {
	opts = append([]aggregator.Option{aggregator.WithWorkers(r.Config.Workers)}, opts...)
	return aggregator.New(aggregator.Deps{
		Loader:    r.Loader,
		Builder:   r.Builder,
		Generator: r.Generator,
		Model:     r.Model,
		Metadata:  r.Metadata,
		Logger:    r.Logger,
	}, opts...)
}

// Close releases network connections.
func (r *Runtime) Close() error {
	if r.Qdrant != nil {
		return r.Qdrant.Close()
	}
	return nil
}
