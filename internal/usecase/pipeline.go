package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"contractqa/internal/domain"
	"contractqa/internal/port"
)

// Pipeline owns the index lifecycle: it is built on first use or by an
// explicit Build, and only read afterwards. A failed build is retried by the
// next caller. It is safe for concurrent use.
type Pipeline struct {
	documentPath string
	topK         int

	indexer   *IndexUseCase
	retriever port.Retriever
	answerer  port.Answerer

	progress ProgressFunc

	mu     sync.Mutex
	ready  atomic.Bool
	result *IndexResult
}

// NewPipeline wires the three use cases around one document.
func NewPipeline(documentPath string, topK int, indexer *IndexUseCase, retriever port.Retriever, answerer port.Answerer) *Pipeline {
	return &Pipeline{
		documentPath: documentPath,
		topK:         topK,
		indexer:      indexer,
		retriever:    retriever,
		answerer:     answerer,
	}
}

// OnProgress sets the callback used while embedding chunks. It must be
// called before the first Build.
func (p *Pipeline) OnProgress(fn ProgressFunc) {
	p.progress = fn
}

// Build indexes the document unless a previous call already succeeded.
// Concurrent callers wait for the build in progress. The build outlives the
// caller's cancellation, since the index is shared by every later request.
func (p *Pipeline) Build(ctx context.Context) (*IndexResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready.Load() {
		return p.result, nil
	}

	result, err := p.indexer.Index(context.WithoutCancel(ctx), p.documentPath, p.progress)
	if err != nil {
		slog.Error("index build failed", "document", p.documentPath, "error", err)
		return nil, err
	}

	p.result = result
	p.ready.Store(true)
	return result, nil
}

// Ready reports whether the index has been built successfully.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// TopK returns the default number of chunks used to answer a question.
func (p *Pipeline) TopK() int {
	return p.topK
}

// Retrieve builds the index if needed and returns the k best chunks.
func (p *Pipeline) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if _, err := p.Build(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexNotReady, err)
	}
	return p.retriever.Retrieve(ctx, query, k)
}

// Ask retrieves k chunks for question and answers from them. k <= 0 uses
// the configured default. Blank questions are answered with guidance
// without building the index or calling any provider.
func (p *Pipeline) Ask(ctx context.Context, question string, k int) domain.Answer {
	if strings.TrimSpace(question) == "" {
		return p.answerer.Answer(ctx, question, nil)
	}
	if k <= 0 {
		k = p.topK
	}

	result, err := p.Retrieve(ctx, question, k)
	if err != nil {
		return domain.Answer{Question: question, Err: err}
	}

	return p.answerer.Answer(ctx, question, result)
}
