package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"contractqa/config"
	"contractqa/internal/domain"
)

func mockConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.txt")
	content := "The Provider agrees to provide consulting services. The Client pays a monthly fee."
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Document.Path = path
	cfg.Chunker.ChunkSize = 40
	cfg.Chunker.Overlap = 10
	cfg.Embedding.Provider = "mock"
	cfg.Embedding.Dimension = 64
	cfg.Completion.Provider = "mock"
	return cfg
}

func TestNewPipeline_Mock(t *testing.T) {
	cfg := mockConfig(t)

	p, err := NewPipeline(cfg, config.Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	answer := p.Ask(context.Background(), "What services are provided?", 2)
	if !answer.OK() {
		t.Fatalf("unexpected failure: %v", answer.Err)
	}
	if len(answer.Sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(answer.Sources))
	}
}

func TestNewPipeline_UnknownProvider(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Embedding.Provider = "faiss"

	_, err := NewPipeline(cfg, config.Credentials{})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}

	cfg = mockConfig(t)
	cfg.Completion.Provider = "davinci"
	if _, err := NewPipeline(cfg, config.Credentials{}); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestNewPipeline_OpenAIRequiresKey(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Embedding.Provider = "openai"

	if _, err := NewPipeline(cfg, config.Credentials{}); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration without a key, got %v", err)
	}
	if _, err := NewPipeline(cfg, config.Credentials{APIKey: "sk-test"}); err != nil {
		t.Errorf("unexpected error with a key: %v", err)
	}
}

func TestNewPipeline_BadChunker(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Chunker.Overlap = cfg.Chunker.ChunkSize

	if _, err := NewPipeline(cfg, config.Credentials{}); !errors.Is(err, domain.ErrChunking) {
		t.Errorf("expected ErrChunking, got %v", err)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "<1s"},
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m5s"},
		{2*time.Hour + 10*time.Minute, "2h10m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo world", 5); got != "héllo..." {
		t.Errorf("unexpected truncation %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged, got %q", got)
	}
}
