package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestNewClient_WithKey(t *testing.T) {
	c, err := NewClient("sk-test", "http://localhost:1234/v1")
	require.NoError(t, err)
	assert.NotNil(t, c.Client())
}

func TestNewEmbedder_Defaults(t *testing.T) {
	e := NewEmbedder(nil, "", 0)
	assert.Equal(t, DefaultModel, e.model)
	assert.Equal(t, DefaultBatchSize, e.batchSize)

	e = NewEmbedder(nil, "text-embedding-3-large", 8)
	assert.Equal(t, "text-embedding-3-large", e.model)
	assert.Equal(t, 8, e.batchSize)
}

// TestGenerateEmbeddings_Empty verifies no request is made for empty input.
func TestGenerateEmbeddings_Empty(t *testing.T) {
	e := NewEmbedder(nil, "", 0)
	out, err := e.GenerateEmbeddings(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestToFloat32(t *testing.T) {
	out := toFloat32([]float64{0.5, -1.25, 0})
	assert.Equal(t, []float32{0.5, -1.25, 0}, out)
}

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, isRateLimitError(errors.New("network down")))
}
