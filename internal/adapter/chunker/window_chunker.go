package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"contractqa/internal/domain"
)

// WindowChunker splits text into fixed-size character windows that overlap
// by a fixed amount. Boundaries are purely length based.
type WindowChunker struct {
	chunkSize int
	overlap   int
}

// NewWindowChunker validates the parameters and returns a chunker.
func NewWindowChunker(chunkSize, overlap int) (*WindowChunker, error) {
	if err := validate(chunkSize, overlap); err != nil {
		return nil, err
	}
	return &WindowChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// Chunk splits the document content using the configured size and overlap.
func (c *WindowChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	chunks, err := Split(doc.Content, c.chunkSize, c.overlap)
	if err != nil {
		return nil, err
	}
	for i := range chunks {
		chunks[i].DocID = doc.ID
		chunks[i].Source = doc.Path
		chunks[i].ID = generateChunkID(doc.ID, chunks[i].StartOffset, chunks[i].EndOffset())
	}
	return chunks, nil
}

// Split slides a window of chunkSize runes over text, advancing by
// chunkSize-overlap each step, and stops once a window reaches the end of
// the text. Only the last chunk can be shorter than chunkSize.
func Split(text string, chunkSize, overlap int) ([]domain.Chunk, error) {
	if err := validate(chunkSize, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	step := chunkSize - overlap
	chunks := make([]domain.Chunk, 0, len(runes)/step+1)

	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, domain.Chunk{
			ID:          generateChunkID("", start, end),
			Index:       len(chunks),
			StartOffset: start,
			Length:      end - start,
			Text:        string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

func validate(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrChunking, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d", domain.ErrChunking, chunkSize, overlap)
	}
	return nil
}

func generateChunkID(docID string, start, end int) string {
	data := fmt.Sprintf("%s:%d-%d", docID, start, end)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
