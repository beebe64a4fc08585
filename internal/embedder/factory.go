package embedder

import (
	"fmt"
	"strings"

	"github.com/dshills/jscontext-mcp/internal/config"
)

// DefaultCacheSize is the number of embeddings kept by the factory's cache
const DefaultCacheSize = 10000

// New creates the embedder selected by cfg.EmbeddingProvider, backed by an
// LRU cache of DefaultCacheSize embeddings
func New(cfg *config.Config) (Embedder, error) {
	cache := NewCache(DefaultCacheSize)

	switch strings.ToLower(cfg.EmbeddingProvider) {
	case ProviderOllama:
		opts := []Option{WithModel(cfg.EmbedModel)}
		if cfg.OllamaURL != "" {
			opts = append(opts, WithBaseURL(cfg.OllamaURL))
		}
		return NewOllamaProvider(cache, opts...), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cache, WithModel(cfg.EmbedModel))
	case ProviderJina:
		return NewJinaProvider(cfg.JinaAPIKey, cache, WithModel(cfg.EmbedModel))
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.EmbeddingProvider)
	}
}
