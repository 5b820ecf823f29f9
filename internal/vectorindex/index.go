// Package vectorindex builds a per-document nearest-neighbour index over chunk embeddings.
//
// Similarity is cosine similarity in every backend. TopK returns chunks ordered
// by similarity descending; chunks with equal similarity keep document order.
package vectorindex

import (
	"context"
	"errors"

	"github.com/bull/paper-digest/internal/chunker"
)

// DefaultK is the number of chunks retrieved per query.
const DefaultK = 5

// ErrIndex marks a failed index build or query.
var ErrIndex = errors.New("vector index")

// Embedder converts texts into vectors, one per input, in input order.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Index retrieves the chunks of one document that are nearest to a query.
// An Index is read-only once built.
type Index interface {
	// TopK returns at most k chunks, never more than Len().
	TopK(ctx context.Context, query string, k int) ([]chunker.Chunk, error)
	// Len returns the number of indexed chunks.
	Len() int
}

// Builder embeds the chunks of one document and returns an Index over them.
// A failure of any embedding call fails the whole build.
type Builder interface {
	Build(ctx context.Context, docPath string, chunks []chunker.Chunk) (Index, error)
}

// clampK bounds k to the number of indexed chunks.
func clampK(k, n int) int {
	if k <= 0 {
		k = DefaultK
	}
	return min(k, n)
}
