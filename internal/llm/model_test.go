package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunc_Generate(t *testing.T) {
	m := Func(func(_ context.Context, prompt string) (string, error) {
		return "echo: " + prompt, nil
	})

	out, err := m.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", out)
}

// TestWithTimeout_Expires verifies a slow model surfaces ErrTimeout.
func TestWithTimeout_Expires(t *testing.T) {
	slow := Func(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	m := WithTimeout(slow, 20*time.Millisecond)
	_, err := m.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

// TestWithTimeout_PassesThrough verifies fast responses and errors are untouched.
func TestWithTimeout_PassesThrough(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	m := WithTimeout(Func(func(ctx context.Context, prompt string) (string, error) {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "call should carry a deadline")
		if prompt == "fail" {
			return "", boom
		}
		return "ok", nil
	}), time.Second)

	out, err := m.Generate(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = m.Generate(context.Background(), "fail")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 2, calls)
}

// TestWithTimeout_ParentCancelled verifies caller cancellation is not reported as a timeout.
func TestWithTimeout_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := WithTimeout(Func(func(ctx context.Context, _ string) (string, error) {
		return "", ctx.Err()
	}), time.Second)

	_, err := m.Generate(ctx, "prompt")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestWithTimeout_DefaultDuration(t *testing.T) {
	m := WithTimeout(Func(nil), 0).(*timeoutModel)
	assert.Equal(t, DefaultTimeout, m.timeout)
}

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, isRateLimitError(errors.New("plain")))
	assert.False(t, isRateLimitError(nil))
}

func TestNewOpenAI_DefaultModel(t *testing.T) {
	m := NewOpenAI(nil, "")
	assert.Equal(t, DefaultChatModel, m.model)

	m = NewOpenAI(nil, "gpt-4o")
	assert.Equal(t, "gpt-4o", string(m.model))
}
