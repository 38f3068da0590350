package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contractqa/internal/domain"
	"contractqa/internal/port"
)

// ProgressFunc is called after each embedding batch with the number of
// chunks embedded so far and the total.
type ProgressFunc func(done, total int)

// IndexUseCase loads the source document, splits it, embeds every chunk and
// fills the vector store.
type IndexUseCase struct {
	loader    port.DocumentLoader
	chunker   port.Chunker
	embedder  port.Embedder
	store     port.VectorStore
	batchSize int
}

// NewIndexUseCase creates a new index use case.
func NewIndexUseCase(
	loader port.DocumentLoader,
	chunker port.Chunker,
	embedder port.Embedder,
	store port.VectorStore,
	batchSize int,
) *IndexUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &IndexUseCase{
		loader:    loader,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
	}
}

// IndexResult contains the results of an indexing operation.
type IndexResult struct {
	Document      domain.Document
	Chunks        []domain.Chunk
	ChunksIndexed int
	Model         string
	Duration      time.Duration
}

// Index builds the vector index for the document at path.
func (u *IndexUseCase) Index(ctx context.Context, path string, progress ProgressFunc) (*IndexResult, error) {
	start := time.Now()

	doc, err := u.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	slog.Debug("document loaded", "path", doc.Path, "id", doc.ID, "bytes", len(doc.Content))

	chunks, err := u.chunker.Chunk(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk document: %w", err)
	}
	slog.Debug("document split", "chunks", len(chunks))

	result := &IndexResult{
		Document: doc,
		Chunks:   chunks,
		Model:    u.embedder.ModelName(),
	}

	for i := 0; i < len(chunks); i += u.batchSize {
		end := i + u.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}

		vectors, err := u.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks %d-%d: %w", i, end, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: expected %d embeddings, got %d", domain.ErrProvider, len(batch), len(vectors))
		}

		items := make([]port.VectorItem, len(batch))
		for j, c := range batch {
			items[j] = port.VectorItem{Vector: vectors[j], Chunk: c}
		}
		if err := u.store.Upsert(items); err != nil {
			return nil, fmt.Errorf("failed to store vectors: %w", err)
		}

		result.ChunksIndexed += len(batch)
		if progress != nil {
			progress(result.ChunksIndexed, len(chunks))
		}
	}

	result.Duration = time.Since(start)
	slog.Info("index built",
		"document", doc.Path,
		"chunks", result.ChunksIndexed,
		"model", result.Model,
		"duration", result.Duration.Round(time.Millisecond))

	return result, nil
}
