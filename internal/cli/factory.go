package cli

import (
	"fmt"
	"time"

	"contractqa/config"
	"contractqa/internal/adapter/analyzer"
	"contractqa/internal/adapter/chunker"
	"contractqa/internal/adapter/embedding"
	"contractqa/internal/adapter/fs"
	"contractqa/internal/adapter/guard"
	"contractqa/internal/adapter/llm"
	"contractqa/internal/adapter/memstore"
	"contractqa/internal/domain"
	"contractqa/internal/port"
	"contractqa/internal/usecase"
)

// NewPipeline assembles the loader, chunker, providers and in-memory index
// described by cfg. Nothing is loaded or called until the pipeline is used.
func NewPipeline(cfg *config.Config, creds config.Credentials) (*usecase.Pipeline, error) {
	ch, err := chunker.NewWindowChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	if err != nil {
		return nil, err
	}

	g := guard.New(guard.Settings{
		Name:              "openai",
		RequestsPerMinute: cfg.Provider.RequestsPerMinute,
		MaxFailures:       uint32(cfg.Provider.BreakerFailures),
	})

	emb, err := newEmbedder(cfg, creds, g)
	if err != nil {
		return nil, err
	}

	model, err := newLLM(cfg, creds, g)
	if err != nil {
		return nil, err
	}

	answerer, err := usecase.NewAnswerUseCase(model, analyzer.NewTokenizer())
	if err != nil {
		return nil, err
	}

	st := memstore.NewVectorStore(0)

	return usecase.NewPipeline(
		cfg.Document.Path,
		cfg.Retrieve.TopK,
		usecase.NewIndexUseCase(fs.NewLoader(cfg.Document.Pattern), ch, emb, st, cfg.Embedding.BatchSize),
		usecase.NewRetrieveUseCase(emb, st),
		answerer,
	), nil
}

func newEmbedder(cfg *config.Config, creds config.Credentials, g *guard.Guard) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai", "":
		return embedding.NewOpenAIEmbedder(embedding.Options{
			APIKey:     creds.APIKey,
			BaseURL:    cfg.Provider.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimension:  cfg.Embedding.Dimension,
			BatchSize:  cfg.Embedding.BatchSize,
			Timeout:    time.Duration(cfg.Provider.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Provider.MaxRetries,
			Guard:      g,
		})
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, cfg.Embedding.Provider)
	}
}

func newLLM(cfg *config.Config, creds config.Credentials, g *guard.Guard) (port.LLM, error) {
	switch cfg.Completion.Provider {
	case "openai", "":
		return llm.NewOpenAIChat(llm.Options{
			APIKey:      creds.APIKey,
			BaseURL:     cfg.Provider.BaseURL,
			Model:       cfg.Completion.Model,
			Temperature: cfg.Completion.Temperature,
			MaxTokens:   cfg.Completion.MaxTokens,
			Timeout:     time.Duration(cfg.Provider.TimeoutSecs) * time.Second,
			MaxRetries:  cfg.Provider.MaxRetries,
			Guard:       g,
		})
	case "mock":
		return llm.NewMockLLM(), nil
	default:
		return nil, fmt.Errorf("%w: unknown completion provider %q", domain.ErrConfiguration, cfg.Completion.Provider)
	}
}
