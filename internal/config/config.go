// Package config loads process settings from the environment and
// per-project settings from .jscontext.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "JSCONTEXT"

var ErrInvalidConfig = errors.New("invalid configuration")

// Embedding providers
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderJina   = "jina"
	ProviderLocal  = "local"
)

// Config holds process-wide settings. Every field is read from
// JSCONTEXT_<name>; API keys are also accepted without the prefix.
type Config struct {
	DBPath string `envconfig:"DB_PATH" default:"~/.jscontext/jscontext.db"`

	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER" default:"ollama"`
	OllamaURL         string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	EmbedModel        string `envconfig:"EMBED_MODEL"`
	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`
	JinaAPIKey        string `envconfig:"JINA_API_KEY"`
	Tiktoken          bool   `envconfig:"TIKTOKEN" default:"false"`

	// Retrieval
	TopK          int     `envconfig:"TOP_K" default:"5"`
	RerankEnabled bool    `envconfig:"RERANK_ENABLED" default:"true"`
	RerankTopN    int     `envconfig:"RERANK_TOP_N" default:"8"`
	VectorWeight  float64 `envconfig:"RERANK_VECTOR_WEIGHT" default:"0.4"`
	BM25Weight    float64 `envconfig:"RERANK_BM25_WEIGHT" default:"0.6"`

	// Indexing; zero workers means one per CPU
	Workers int `envconfig:"WORKERS" default:"0"`

	CacheSize int           `envconfig:"CACHE_SIZE" default:"100"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON  bool   `envconfig:"LOG_JSON" default:"false"`
}

// Load reads .env.local and .env from the working directory without
// overriding variables already set, then processes the environment.
func Load() (*Config, error) {
	for _, name := range []string{".env.local", ".env"} {
		_ = godotenv.Load(name)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.EmbeddingProvider = strings.ToLower(strings.TrimSpace(cfg.EmbeddingProvider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.EmbeddingProvider {
	case ProviderOllama, ProviderLocal:
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for provider %q", ErrInvalidConfig, c.EmbeddingProvider)
		}
	case ProviderJina:
		if c.JinaAPIKey == "" {
			return fmt.Errorf("%w: JINA_API_KEY is required for provider %q", ErrInvalidConfig, c.EmbeddingProvider)
		}
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidConfig, c.EmbeddingProvider)
	}

	if c.TopK < 1 {
		return fmt.Errorf("%w: TOP_K must be at least 1", ErrInvalidConfig)
	}
	if c.RerankTopN < 1 {
		return fmt.Errorf("%w: RERANK_TOP_N must be at least 1", ErrInvalidConfig)
	}
	if c.VectorWeight < 0 || c.BM25Weight < 0 {
		return fmt.Errorf("%w: rerank weights must not be negative", ErrInvalidConfig)
	}
	if c.VectorWeight+c.BM25Weight == 0 {
		return fmt.Errorf("%w: rerank weights must not both be zero", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: WORKERS must not be negative", ErrInvalidConfig)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: CACHE_SIZE must not be negative", ErrInvalidConfig)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// ResolveDBPath expands a leading "~" in DBPath and creates the parent
// directory
func (c *Config) ResolveDBPath() (string, error) {
	path := c.DBPath
	if path == ":memory:" {
		return path, nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return path, nil
}
