package vectorindex

import (
	"context"
	"fmt"

	"github.com/bull/paper-digest/internal/chunker"
	"github.com/bull/paper-digest/internal/storage"
)

// QdrantBuilder stores chunk embeddings in Qdrant, one filterable path per document.
type QdrantBuilder struct {
	embedder Embedder
	store    *storage.QdrantStorage
}

// NewQdrantBuilder creates a builder that persists vectors through store.
func NewQdrantBuilder(embedder Embedder, store *storage.QdrantStorage) *QdrantBuilder {
	return &QdrantBuilder{embedder: embedder, store: store}
}

// Build embeds every chunk, replaces any points previously stored for
// docPath and returns an index that queries Qdrant.
func (b *QdrantBuilder) Build(ctx context.Context, docPath string, chunks []chunker.Chunk) (Index, error) {
	idx := &qdrantIndex{embedder: b.embedder, store: b.store, path: docPath, count: len(chunks)}

	if err := b.store.DeleteDocument(ctx, docPath); err != nil {
		return nil, fmt.Errorf("%w: build %s: %v", ErrIndex, docPath, err)
	}
	if len(chunks) == 0 {
		return idx, nil
	}

	vectors, err := embedChunks(ctx, b.embedder, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s: %v", ErrIndex, docPath, err)
	}

	points := make([]*storage.Chunk, len(chunks))
	for i, ch := range chunks {
		points[i] = &storage.Chunk{
			ID:         storage.ChunkID(docPath, ch.Index),
			Path:       docPath,
			ChunkIndex: ch.Index,
			Start:      ch.Start,
			End:        ch.End,
			Content:    ch.Text,
			Embedding:  vectors[i],
		}
	}
	if err := b.store.UpsertChunks(ctx, points); err != nil {
		return nil, fmt.Errorf("%w: build %s: %v", ErrIndex, docPath, err)
	}

	return idx, nil
}

type qdrantIndex struct {
	embedder Embedder
	store    *storage.QdrantStorage
	path     string
	count    int
}

func (q *qdrantIndex) Len() int {
	return q.count
}

func (q *qdrantIndex) TopK(ctx context.Context, query string, k int) ([]chunker.Chunk, error) {
	k = clampK(k, q.count)
	if k == 0 {
		return nil, nil
	}

	embedded, err := q.embedder.GenerateEmbeddings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrIndex, err)
	}
	if len(embedded) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query embedding, got %d", ErrIndex, len(embedded))
	}

	hits, err := q.store.SearchChunksWithScores(ctx, embedded[0], k, q.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndex, err)
	}

	out := make([]chunker.Chunk, 0, len(hits))
	for _, hit := range hits {
		out = append(out, chunker.Chunk{
			Index: hit.ChunkIndex,
			Start: hit.Start,
			End:   hit.End,
			Text:  hit.Content,
		})
	}
	return out, nil
}
