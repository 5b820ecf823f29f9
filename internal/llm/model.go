// Package llm provides language model clients that turn a prompt into generated text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 120 * time.Second

var (
	// ErrEmptyResponse is returned when the provider answers without any text choice.
	ErrEmptyResponse = errors.New("model returned no choices")

	// ErrTimeout is returned when a call exceeds its per-call deadline.
	ErrTimeout = errors.New("model call timed out")
)

// Model generates text for a prompt. Implementations block on the network
// and must honour ctx cancellation.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts an ordinary function to the Model interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Generate calls f(ctx, prompt).
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type timeoutModel struct {
	next    Model
	timeout time.Duration
}

// WithTimeout wraps m so every Generate call runs under its own deadline.
// A non-positive timeout uses DefaultTimeout.
func WithTimeout(m Model, timeout time.Duration) Model {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &timeoutModel{next: m, timeout: timeout}
}

func (t *timeoutModel) Generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	text, err := t.next.Generate(callCtx, prompt)
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", fmt.Errorf("%w after %s: %v", ErrTimeout, t.timeout, err)
	}
	return text, err
}
