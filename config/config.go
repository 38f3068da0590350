package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"contractqa/internal/domain"
)

// Config holds all configuration for the contract QA tool.
type Config struct {
	Document   DocumentConfig   `yaml:"document"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Provider   ProviderConfig   `yaml:"provider"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DocumentConfig points at the single source document.
type DocumentConfig struct {
	Path    string `yaml:"path"`
	Pattern string `yaml:"pattern"` // doublestar glob the path must match
}

// ChunkerConfig holds chunking configuration, in characters.
type ChunkerConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai", "mock"
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// CompletionConfig holds chat completion configuration.
type CompletionConfig struct {
	Provider    string  `yaml:"provider"` // "openai", "mock"
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// ProviderConfig is shared by the embedding and completion clients.
type ProviderConfig struct {
	BaseURL           string `yaml:"base_url"`
	APIKeyEnv         string `yaml:"api_key_env"`
	TimeoutSecs       int    `yaml:"timeout_secs"`
	MaxRetries        int    `yaml:"max_retries"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	BreakerFailures   int    `yaml:"breaker_failures"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK       int `yaml:"top_k"`       // chunks handed to the answer step
	PreviewK   int `yaml:"preview_k"`   // chunks printed by the demo similarity search
	RetrieverK int `yaml:"retriever_k"` // k used by the demo retriever check
}

// ServerConfig holds settings for the browser form.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"` // gin mode: debug, release, test
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Credentials carries secrets resolved from the environment. It is passed
// to provider constructors and never written back to the environment.
type Credentials struct {
	APIKey string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Document: DocumentConfig{
			Path:    filepath.Join("data", "unstructured_contract_sample.txt"),
			Pattern: "**/*.txt",
		},
		Chunker: ChunkerConfig{
			ChunkSize: 500,
			Overlap:   100,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-ada-002",
			Dimension: 1536,
			BatchSize: 100,
		},
		Completion: CompletionConfig{
			Provider:    "openai",
			Model:       "gpt-3.5-turbo",
			Temperature: 0,
			MaxTokens:   512,
		},
		Provider: ProviderConfig{
			BaseURL:           "https://api.openai.com/v1",
			APIKeyEnv:         "OPENAI_API_KEY",
			TimeoutSecs:       60,
			MaxRetries:        2,
			RequestsPerMinute: 3000,
			BreakerFailures:   5,
		},
		Retrieve: RetrieveConfig{
			TopK:       4,
			PreviewK:   3,
			RetrieverK: 2,
		},
		Server: ServerConfig{
			Addr: ":8501",
			Mode: "release",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for contractqa.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "contractqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".contractqa", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks settings that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	if c.Chunker.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrChunking, c.Chunker.ChunkSize)
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d", domain.ErrChunking, c.Chunker.ChunkSize, c.Chunker.Overlap)
	}
	if c.Retrieve.TopK < 1 {
		return fmt.Errorf("%w: retrieve.top_k=%d", domain.ErrInvalidTopK, c.Retrieve.TopK)
	}
	if c.Document.Path == "" {
		return fmt.Errorf("%w: document.path is empty", domain.ErrConfiguration)
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("%w: server.mode must be debug, release or test, got %q", domain.ErrConfiguration, c.Server.Mode)
	}
	return nil
}

// NeedsCredentials reports whether any configured provider calls a remote API.
func (c *Config) NeedsCredentials() bool {
	return c.Embedding.Provider != "mock" || c.Completion.Provider != "mock"
}

// LoadEnv reads a .env file from dir into the process environment if one
// exists. Variables already set take precedence.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// ResolveCredentials reads the provider API key. It fails when a remote
// provider is configured and the key is unset.
func (c *Config) ResolveCredentials() (Credentials, error) {
	if !c.NeedsCredentials() {
		return Credentials{}, nil
	}
	if c.Provider.APIKeyEnv == "" {
		return Credentials{}, fmt.Errorf("%w: provider.api_key_env is empty", domain.ErrConfiguration)
	}
	key := strings.TrimSpace(os.Getenv(c.Provider.APIKeyEnv))
	if key == "" {
		return Credentials{}, fmt.Errorf("%w: %s is not set", domain.ErrConfiguration, c.Provider.APIKeyEnv)
	}
	return Credentials{APIKey: key}, nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
