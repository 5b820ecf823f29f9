package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Ollama generates text with a locally served model through langchaingo.
type Ollama struct {
	llm *ollama.LLM
}

// NewOllama connects to the Ollama server at serverURL using the given model.
func NewOllama(serverURL, model string) (*Ollama, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return &Ollama{llm: client}, nil
}

// LLM returns the underlying langchaingo client, which also serves embeddings.
func (o *Ollama) LLM() *ollama.LLM {
	return o.llm
}

// Generate runs a single-prompt completion.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, o.llm, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}
	return text, nil
}
