package usecase

import (
	"context"
	"errors"
	"sync/atomic"

	"contractqa/internal/domain"
	"contractqa/internal/port"
)

// staticEmbedder maps known texts to fixed vectors and everything else to
// the zero vector.
type staticEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   atomic.Int32
}

func (e *staticEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := e.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0}
		}
	}
	return out, nil
}

func (e *staticEmbedder) Dimension() int    { return 2 }
func (e *staticEmbedder) ModelName() string { return "static" }

// flakyEmbedder fails its first failures calls with err, then behaves like
// a staticEmbedder.
type flakyEmbedder struct {
	staticEmbedder
	failures int32
	failErr  error
}

func (e *flakyEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.calls.Load() < e.failures {
		e.calls.Add(1)
		return nil, e.failErr
	}
	return e.staticEmbedder.Embed(ctx, texts)
}

type recordingLLM struct {
	reply  string
	err    error
	calls  int
	system string
	user   string
}

func (l *recordingLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	l.calls++
	l.system = systemPrompt
	l.user = userPrompt
	return l.reply, l.err
}

func (l *recordingLLM) ModelName() string { return "recording" }

type staticLoader struct {
	doc domain.Document
	err error
}

func (l staticLoader) Load(path string) (domain.Document, error) {
	if l.err != nil {
		return domain.Document{}, l.err
	}
	d := l.doc
	d.Path = path
	return d, nil
}

type failingStore struct{}

func (failingStore) Upsert(items []port.VectorItem) error { return errors.New("disk full") }
func (failingStore) Search(q []float32, k int) ([]port.VectorResult, error) {
	return nil, errors.New("unreachable")
}
func (failingStore) Count() (int, error) { return 0, nil }

func scored(texts ...string) []domain.ScoredChunk {
	out := make([]domain.ScoredChunk, len(texts))
	for i, t := range texts {
		out[i] = domain.ScoredChunk{
			Chunk: domain.Chunk{ID: t, Index: i, Text: t},
			Score: 1 - float64(i)*0.1,
		}
	}
	return out
}
