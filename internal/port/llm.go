package port

import "context"

// LLM represents a hosted language model used for answer generation.
type LLM interface {
	// Generate returns the model's text reply to the given prompts.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
