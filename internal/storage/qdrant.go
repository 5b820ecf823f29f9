package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantStorage wraps the Qdrant client with connection management and health checks.
type QdrantStorage struct {
	client    *qdrant.Client
	host      string
	port      int
	dimension int
}

// NewQdrantStorage creates a new Qdrant client with health validation.
// dimension is the embedding size every stored and queried vector must have.
// It performs health check with retry on startup and fails fast if Qdrant is unreachable.
func NewQdrantStorage(host string, port, dimension int) (*QdrantStorage, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	storage := &QdrantStorage{
		client:    client,
		host:      host,
		port:      port,
		dimension: dimension,
	}

	ctx := context.Background()
	err = storage.healthCheckWithRetry(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return storage, nil
}

// Dimension returns the configured vector size.
func (s *QdrantStorage) Dimension() int {
	return s.dimension
}

// newBackoff returns the retry policy shared by health checks and upserts.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}

func (s *QdrantStorage) healthCheckWithRetry(ctx context.Context) error {
	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(newBackoff(), ctx))
}

// Health performs a single health check against Qdrant.
// Returns nil if Qdrant is healthy, error otherwise.
func (s *QdrantStorage) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}

	return nil
}

// EnsureCollection ensures the chunk collection exists with cosine distance
// and a keyword index on path. Idempotent - safe to call multiple times.
func (s *QdrantStorage) EnsureCollection(ctx context.Context) error {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, name := range collections {
		if name == CollectionName {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: CollectionName,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			vectorName: {
				Size:     uint64(s.dimension),
				Distance: qdrant.Distance_Cosine,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Without this index every per-document query scans the whole collection.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: CollectionName,
		FieldName:      "path",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to create index for field path: %w", err)
	}

	return nil
}

// ClearCollection drops and recreates the collection.
func (s *QdrantStorage) ClearCollection(ctx context.Context) error {
	err := s.client.DeleteCollection(ctx, CollectionName)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	return s.EnsureCollection(ctx)
}

// Close closes the Qdrant client connection.
func (s *QdrantStorage) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// ChunkID derives a stable point ID so re-indexing a document overwrites its points.
func ChunkID(path string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "%s#%d", path, index)).String()
}

// DeleteDocument removes every chunk stored for path.
func (s *QdrantStorage) DeleteDocument(ctx context.Context, path string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: CollectionName,
		Wait:           qdrant.PtrOf(true),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("path", path),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to delete chunks for %s: %w", path, err)
	}
	return nil
}

func (s *QdrantStorage) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	operation := func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: CollectionName,
			Wait:           qdrant.PtrOf(true),
			Points:         points,
		})
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(newBackoff(), ctx))
}

// UpsertChunks stores multiple chunks with embeddings in Qdrant.
// Chunks are batched in groups of 100 for performance.
func (s *QdrantStorage) UpsertChunks(ctx context.Context, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	for i, chunk := range chunks {
		if len(chunk.Embedding) != s.dimension {
			return fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(chunk.Embedding), s.dimension)
		}
	}

	batchSize := 100
	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))

		batch := chunks[i:end]
		points := make([]*qdrant.PointStruct, len(batch))

		for j, chunk := range batch {
			id := chunk.ID
			if id == "" {
				id = ChunkID(chunk.Path, chunk.ChunkIndex)
			}
			points[j] = &qdrant.PointStruct{
				Id: qdrant.NewIDUUID(id),
				Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
					vectorName: qdrant.NewVector(chunk.Embedding...),
				}),
				Payload: qdrant.NewValueMap(map[string]any{
					"path":        chunk.Path,
					"chunk_index": chunk.ChunkIndex,
					"start":       chunk.Start,
					"end":         chunk.End,
					"content":     chunk.Content,
				}),
			}
		}

		err := s.upsertWithRetry(ctx, points)
		if err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// SearchChunksWithScores performs vector similarity search over the chunks of one document.
// Results are ordered by score descending; equal scores keep document order.
func (s *QdrantStorage) SearchChunksWithScores(ctx context.Context, embedding []float32, limit int, path string) ([]*ScoredChunk, error) {
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(embedding), s.dimension)
	}

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("path", path),
		},
	}

	using := vectorName
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CollectionName,
		Query:          qdrant.NewQuery(embedding...),
		Using:          &using,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	scoredChunks := make([]*ScoredChunk, 0, len(results))
	for _, result := range results {
		payload := result.Payload

		chunk := &Chunk{
			ID:         result.Id.GetUuid(),
			Path:       payload["path"].GetStringValue(),
			ChunkIndex: int(payload["chunk_index"].GetIntegerValue()),
			Start:      int(payload["start"].GetIntegerValue()),
			End:        int(payload["end"].GetIntegerValue()),
			Content:    payload["content"].GetStringValue(),
		}

		scoredChunks = append(scoredChunks, &ScoredChunk{
			Chunk: chunk,
			Score: float64(result.Score),
		})
	}

	sortByScore(scoredChunks)
	return scoredChunks, nil
}

// sortByScore orders hits by score descending, then by chunk index.
func sortByScore(hits []*ScoredChunk) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkIndex < hits[j].ChunkIndex
	})
}

// CollectionInfo contains collection statistics
type CollectionInfo struct {
	PointsCount uint64
}

// GetCollectionInfo retrieves collection statistics including total points count.
func (s *QdrantStorage) GetCollectionInfo(ctx context.Context) (*CollectionInfo, error) {
	collection, err := s.client.GetCollectionInfo(ctx, CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	return &CollectionInfo{
		PointsCount: collection.GetPointsCount(),
	}, nil
}
