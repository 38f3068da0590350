package chunker

import (
	"errors"
	"strings"
	"testing"

	"contractqa/internal/domain"
)

func texts(chunks []domain.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func TestSplitSlidingWindow(t *testing.T) {
	chunks, err := Split("ABCDEFGHIJ", 4, 2)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"ABCD", "CDEF", "EFGH", "GHIJ"}
	got := texts(chunks)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], got[i])
		}
		if chunks[i].StartOffset != i*2 {
			t.Errorf("chunk %d: expected start %d, got %d", i, i*2, chunks[i].StartOffset)
		}
		if chunks[i].Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, chunks[i].Index)
		}
	}
}

func TestSplitShortFinalChunk(t *testing.T) {
	chunks, err := Split("ABCDEFGHI", 4, 2)
	if err != nil {
		t.Fatal(err)
	}

	got := texts(chunks)
	want := []string{"ABCD", "CDEF", "EFGH", "GHI"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}
	if last := chunks[len(chunks)-1]; last.Length != 3 {
		t.Errorf("expected final chunk length 3, got %d", last.Length)
	}
}

func TestSplitShortText(t *testing.T) {
	content := "Just a short clause"

	chunks, err := Split(content, 500, 100)
	if err != nil {
		t.Fatal(err)
	}

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for short text, got %d", len(chunks))
	}
	if chunks[0].Text != content {
		t.Errorf("expected chunk text to match content")
	}
}

func TestSplitEmpty(t *testing.T) {
	chunks, err := Split("", 500, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestSplitInvalidParameters(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"overlap equals size", 4, 4},
		{"overlap larger than size", 4, 5},
		{"negative overlap", 4, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("ABCDEFGHIJ", tt.chunkSize, tt.overlap)
			if !errors.Is(err, domain.ErrChunking) {
				t.Errorf("expected ErrChunking, got %v", err)
			}
			if _, err := NewWindowChunker(tt.chunkSize, tt.overlap); !errors.Is(err, domain.ErrChunking) {
				t.Errorf("constructor: expected ErrChunking, got %v", err)
			}
		})
	}
}

func TestSplitReconstructsText(t *testing.T) {
	inputs := []string{
		"ABCDEFGHIJ",
		"The Service Provider agrees to provide maintenance services.\nPayment is due within 30 days.",
		strings.Repeat("clause ", 311),
		"Gebühren für Überstunden: 25 € pro Stunde — fällig am Monatsende.",
	}
	params := []struct{ size, overlap int }{
		{4, 2}, {5, 0}, {7, 6}, {50, 10}, {500, 100},
	}

	for _, text := range inputs {
		for _, p := range params {
			chunks, err := Split(text, p.size, p.overlap)
			if err != nil {
				t.Fatal(err)
			}

			var rebuilt strings.Builder
			for i, c := range chunks {
				r := []rune(c.Text)
				if i == 0 {
					rebuilt.WriteString(string(r))
					continue
				}
				prev := chunks[i-1]
				if got := prev.EndOffset() - c.StartOffset; got != p.overlap {
					t.Errorf("size=%d overlap=%d: chunks %d/%d overlap by %d", p.size, p.overlap, i-1, i, got)
				}
				rebuilt.WriteString(string(r[p.overlap:]))
			}

			if rebuilt.String() != text {
				t.Errorf("size=%d overlap=%d: reconstruction mismatch", p.size, p.overlap)
			}

			for i, c := range chunks[:max(0, len(chunks)-1)] {
				if c.Length != p.size {
					t.Errorf("size=%d overlap=%d: non-final chunk %d has length %d", p.size, p.overlap, i, c.Length)
				}
			}
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("The parties agree to the following terms. ", 40)

	first, err := Split(text, 120, 30)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Split(text, 120, 30)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestWindowChunkerAttachesDocument(t *testing.T) {
	chunker, err := NewWindowChunker(10, 2)
	if err != nil {
		t.Fatal(err)
	}

	doc := domain.Document{
		ID:      "doc1",
		Path:    "data/contract.txt",
		Content: "This agreement is made between the parties.",
	}

	chunks, err := chunker.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	ids := make(map[string]bool)
	for _, chunk := range chunks {
		if chunk.DocID != "doc1" {
			t.Errorf("expected DocID 'doc1', got '%s'", chunk.DocID)
		}
		if chunk.Source != "data/contract.txt" {
			t.Errorf("expected Source 'data/contract.txt', got '%s'", chunk.Source)
		}
		if ids[chunk.ID] {
			t.Errorf("duplicate chunk ID: %s", chunk.ID)
		}
		ids[chunk.ID] = true
	}
}
