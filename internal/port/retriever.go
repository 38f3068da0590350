package port

import (
	"context"

	"contractqa/internal/domain"
)

// Retriever defines the interface for searching indexed content.
type Retriever interface {
	// Retrieve returns at most k chunks for the query, best first.
	Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)
}

// Answerer turns a question and its retrieved context into an answer.
type Answerer interface {
	Answer(ctx context.Context, question string, result []domain.ScoredChunk) domain.Answer
}
