package storage

// Chunk is one document span with its embedding, stored as a Qdrant point.
// Chunks of a document share Path, which is the filter used for retrieval.
type Chunk struct {
	ID         string    // UUID (deterministic per path and index)
	Path       string    // Source document path
	ChunkIndex int       // Position in document (0, 1, 2...)
	Start      int       // Character offset of the span start
	End        int       // Character offset of the span end
	Content    string    // Chunk text content
	Embedding  []float32 // Vector produced by the configured embedder
}

// ScoredChunk is a search hit with its cosine similarity.
type ScoredChunk struct {
	*Chunk
	Score float64
}

// CollectionName is the single Qdrant collection for all document chunks.
const CollectionName = "paper_chunks"

// vectorName is the named vector that holds chunk embeddings.
const vectorName = "content"
