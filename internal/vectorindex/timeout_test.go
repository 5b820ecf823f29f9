package vectorindex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/paper-digest/internal/chunker"
)

func stalledEmbedder() EmbedderFunc {
	return func(ctx context.Context, _ []string) ([][]float32, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	e := WithTimeout(stalledEmbedder(), 20*time.Millisecond)
	_, err := e.GenerateEmbeddings(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbedTimeout)
}

func TestWithTimeout_PassesThrough(t *testing.T) {
	boom := errors.New("boom")
	e := WithTimeout(EmbedderFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "call should carry a deadline")
		if texts[0] == "fail" {
			return nil, boom
		}
		return [][]float32{{1, 0}}, nil
	}), time.Second)

	vectors, err := e.GenerateEmbeddings(context.Background(), []string{"ok"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}}, vectors)

	_, err = e.GenerateEmbeddings(context.Background(), []string{"fail"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrEmbedTimeout)
}

func TestWithTimeout_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithTimeout(stalledEmbedder(), time.Second).GenerateEmbeddings(ctx, []string{"text"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrEmbedTimeout)
}

func TestWithTimeout_DefaultDuration(t *testing.T) {
	e := WithTimeout(EmbedderFunc(nil), 0).(*timeoutEmbedder)
	assert.Equal(t, DefaultEmbedTimeout, e.timeout)
}

func TestMemoryBuilder_StalledEmbedderFailsBuild(t *testing.T) {
	b := NewMemoryBuilder(WithTimeout(stalledEmbedder(), 20*time.Millisecond))
	chunks := chunker.New().Chunk("some document text")

	idx, err := b.Build(context.Background(), "doc.pdf", chunks)
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, ErrIndex)
}
