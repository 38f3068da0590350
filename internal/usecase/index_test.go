package usecase

import (
	"context"
	"errors"
	"testing"

	"contractqa/internal/adapter/chunker"
	"contractqa/internal/adapter/memstore"
	"contractqa/internal/domain"
)

func TestIndex_BatchesAndProgress(t *testing.T) {
	ch, err := chunker.NewWindowChunker(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	emb := &staticEmbedder{}
	st := memstore.NewVectorStore(2)
	uc := NewIndexUseCase(staticLoader{doc: domain.Document{ID: "d1", Content: "ABCDEFGHIJ"}}, ch, emb, st, 3)

	var progress [][2]int
	result, err := uc.Index(context.Background(), "contract.txt", func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ChunksIndexed != 4 || len(result.Chunks) != 4 {
		t.Errorf("expected 4 chunks indexed, got %d", result.ChunksIndexed)
	}
	if n, _ := st.Count(); n != 4 {
		t.Errorf("expected 4 vectors stored, got %d", n)
	}
	if emb.calls.Load() != 2 {
		t.Errorf("expected 2 embedding batches, got %d", emb.calls.Load())
	}
	want := [][2]int{{3, 4}, {4, 4}}
	if len(progress) != len(want) || progress[0] != want[0] || progress[1] != want[1] {
		t.Errorf("unexpected progress: %v", progress)
	}
	if result.Document.Path != "contract.txt" {
		t.Errorf("expected document path, got %q", result.Document.Path)
	}
}

func TestIndex_EmbeddingFailure(t *testing.T) {
	ch, _ := chunker.NewWindowChunker(4, 2)
	emb := &staticEmbedder{err: errors.New("unauthorized")}
	uc := NewIndexUseCase(staticLoader{doc: domain.Document{Content: "ABCDEFGHIJ"}}, ch, emb, memstore.NewVectorStore(2), 10)

	if _, err := uc.Index(context.Background(), "contract.txt", nil); err == nil {
		t.Error("expected embedding error")
	}
}

func TestIndex_LoadFailure(t *testing.T) {
	ch, _ := chunker.NewWindowChunker(4, 2)
	emb := &staticEmbedder{}
	uc := NewIndexUseCase(staticLoader{err: domain.ErrConfiguration}, ch, emb, memstore.NewVectorStore(2), 10)

	_, err := uc.Index(context.Background(), "missing.txt", nil)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected loader error to propagate, got %v", err)
	}
	if emb.calls.Load() != 0 {
		t.Error("expected no embedding calls after a load failure")
	}
}

func TestIndex_StoreFailure(t *testing.T) {
	ch, _ := chunker.NewWindowChunker(4, 2)
	uc := NewIndexUseCase(staticLoader{doc: domain.Document{Content: "ABCDEFGHIJ"}}, ch, &staticEmbedder{}, failingStore{}, 10)

	if _, err := uc.Index(context.Background(), "contract.txt", nil); err == nil {
		t.Error("expected store error")
	}
}
