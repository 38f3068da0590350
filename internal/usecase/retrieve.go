package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contractqa/internal/domain"
	"contractqa/internal/port"
)

var _ port.Retriever = (*RetrieveUseCase)(nil)

// RetrieveUseCase embeds a query and returns the most similar chunks.
type RetrieveUseCase struct {
	embedder port.Embedder
	store    port.VectorStore
}

// NewRetrieveUseCase creates a new retrieve use case.
func NewRetrieveUseCase(embedder port.Embedder, store port.VectorStore) *RetrieveUseCase {
	return &RetrieveUseCase{
		embedder: embedder,
		store:    store,
	}
}

// Retrieve returns at most k chunks for the query in the order the store
// ranks them. An empty index yields an empty result.
func (u *RetrieveUseCase) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidTopK, k)
	}

	count, err := u.store.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count vectors: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	vectors, err := u.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, providerError("failed to embed query", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned for query", domain.ErrProvider)
	}

	results, err := u.store.Search(vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	chunks := make([]domain.ScoredChunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, domain.ScoredChunk{
			Chunk: r.Chunk,
			Score: r.Score,
		})
	}

	slog.Debug("retrieved chunks", "k", k, "found", len(chunks))
	return chunks, nil
}

// providerError tags err with domain.ErrProvider unless it already carries it.
func providerError(msg string, err error) error {
	if errors.Is(err, domain.ErrProvider) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrProvider, err)
}
