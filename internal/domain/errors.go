package domain

import "errors"

var (
	// ErrConfiguration marks a missing or invalid setting found at startup.
	ErrConfiguration = errors.New("configuration error")

	// ErrChunking marks invalid chunk size or overlap parameters.
	ErrChunking = errors.New("chunking error")

	// ErrProvider wraps failures from the embedding or completion provider.
	ErrProvider = errors.New("provider error")

	ErrEmptyQuestion = errors.New("empty question")
	ErrInvalidTopK   = errors.New("top-k must be at least 1")
	ErrIndexNotReady = errors.New("index not built")
)

// EmptyQuestionText is shown instead of an answer when no question was asked.
const EmptyQuestionText = "Please enter a question."
