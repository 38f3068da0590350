package port

import (
	"context"

	"contractqa/internal/domain"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorStore stores chunk vectors and answers nearest-neighbour queries.
type VectorStore interface {
	// Upsert adds or replaces vectors in the store.
	Upsert(items []VectorItem) error

	// Search returns at most k results ordered by decreasing similarity.
	Search(query []float32, k int) ([]VectorResult, error)

	// Count returns the number of vectors in the store.
	Count() (int, error)
}

// VectorItem is a vector together with the chunk it was computed from.
// The store keeps the chunk for display only; the vector is the lookup key.
type VectorItem struct {
	Vector []float32
	Chunk  domain.Chunk
}

type VectorResult struct {
	Chunk domain.Chunk
	Score float64 // cosine similarity, higher is better
}
