package domain

import "time"

// Document is a loaded source file. It is not modified after loading.
type Document struct {
	ID       string
	Path     string
	Content  string
	LoadedAt time.Time
}

// Chunk is a contiguous slice of a Document. StartOffset and Length are
// counted in runes.
type Chunk struct {
	ID          string `json:"id"`
	DocID       string `json:"doc_id"`
	Source      string `json:"source"`
	Index       int    `json:"index"`
	StartOffset int    `json:"start_offset"`
	Length      int    `json:"length"`
	Text        string `json:"text"`
}

// EndOffset returns the rune offset one past the last character of the chunk.
func (c Chunk) EndOffset() int {
	return c.StartOffset + c.Length
}

type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Answer is the outcome of answering one question. Exactly one of Text or
// Err is meaningful: when Err is set the model produced nothing usable.
type Answer struct {
	Question     string        `json:"question"`
	Text         string        `json:"answer"`
	Sources      []ScoredChunk `json:"sources,omitempty"`
	PromptTokens int           `json:"prompt_tokens,omitempty"`
	Guidance     bool          `json:"guidance,omitempty"`
	Err          error         `json:"-"`
}

// OK reports whether the answer came back from the model without error.
func (a Answer) OK() bool {
	return a.Err == nil && !a.Guidance
}

// String renders the answer for display. Failures use the
// "An error occurred: <message>" form older callers expect.
func (a Answer) String() string {
	if a.Err != nil {
		return "An error occurred: " + a.Err.Error()
	}
	return a.Text
}
