package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/bull/paper-digest/internal/chunker"
)

// MemoryBuilder keeps embeddings in process memory and scores by brute force.
type MemoryBuilder struct {
	embedder Embedder
}

// NewMemoryBuilder creates a builder backed by embedder.
func NewMemoryBuilder(embedder Embedder) *MemoryBuilder {
	return &MemoryBuilder{embedder: embedder}
}

// Build embeds every chunk and returns an in-memory index.
func (b *MemoryBuilder) Build(ctx context.Context, docPath string, chunks []chunker.Chunk) (Index, error) {
	idx := &memoryIndex{embedder: b.embedder}
	if len(chunks) == 0 {
		return idx, nil
	}

	vectors, err := embedChunks(ctx, b.embedder, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s: %v", ErrIndex, docPath, err)
	}

	idx.chunks = append([]chunker.Chunk(nil), chunks...)
	idx.vectors = vectors
	return idx, nil
}

// embedChunks embeds chunk texts and checks one vector came back per chunk.
func embedChunks(ctx context.Context, embedder Embedder, chunks []chunker.Chunk) ([][]float32, error) {
	vectors, err := embedder.GenerateEmbeddings(ctx, chunker.Texts(chunks))
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(vectors))
	}
	return vectors, nil
}

type memoryIndex struct {
	embedder Embedder
	chunks   []chunker.Chunk
	vectors  [][]float32
}

func (m *memoryIndex) Len() int {
	return len(m.chunks)
}

func (m *memoryIndex) TopK(ctx context.Context, query string, k int) ([]chunker.Chunk, error) {
	k = clampK(k, len(m.chunks))
	if k == 0 {
		return nil, nil
	}

	embedded, err := m.embedder.GenerateEmbeddings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrIndex, err)
	}
	if len(embedded) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query embedding, got %d", ErrIndex, len(embedded))
	}
	q := embedded[0]

	order := make([]int, len(m.chunks))
	scores := make([]float64, len(m.chunks))
	for i, v := range m.vectors {
		order[i] = i
		scores[i] = cosine(q, v)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	out := make([]chunker.Chunk, k)
	for i := range k {
		out[i] = m.chunks[order[i]]
	}
	return out, nil
}

// cosine returns the cosine similarity of a and b, or 0 when either is a zero vector.
func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := range n {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
