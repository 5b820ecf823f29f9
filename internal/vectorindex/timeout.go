package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultEmbedTimeout bounds a single GenerateEmbeddings call.
const DefaultEmbedTimeout = 120 * time.Second

// ErrEmbedTimeout is returned when an embedding call exceeds its per-call deadline.
var ErrEmbedTimeout = errors.New("embedding call timed out")

// EmbedderFunc adapts an ordinary function to the Embedder interface.
type EmbedderFunc func(ctx context.Context, texts []string) ([][]float32, error)

// GenerateEmbeddings calls f(ctx, texts).
func (f EmbedderFunc) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}

type timeoutEmbedder struct {
	next    Embedder
	timeout time.Duration
}

// WithTimeout wraps e so every GenerateEmbeddings call runs under its own
// deadline. A non-positive timeout uses DefaultEmbedTimeout.
func WithTimeout(e Embedder, timeout time.Duration) Embedder {
	if timeout <= 0 {
		timeout = DefaultEmbedTimeout
	}
	return &timeoutEmbedder{next: e, timeout: timeout}
}

func (t *timeoutEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	vectors, err := t.next.GenerateEmbeddings(callCtx, texts)
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("%w after %s: %v", ErrEmbedTimeout, t.timeout, err)
	}
	return vectors, err
}
