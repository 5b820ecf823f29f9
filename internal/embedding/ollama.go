package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaEmbedder generates embeddings with a local Ollama model via langchaingo.
type OllamaEmbedder struct {
	embedder *embeddings.EmbedderImpl
}

// NewOllamaEmbedder connects to the Ollama server and uses model for embeddings.
func NewOllamaEmbedder(serverURL, model string) (*OllamaEmbedder, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	e, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("create ollama embedder: %w", err)
	}
	return &OllamaEmbedder{embedder: e}, nil
}

// GenerateEmbeddings generates one embedding per input text, in input order.
func (o *OllamaEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := o.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}
	return vectors, nil
}
