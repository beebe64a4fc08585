package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/jscontext-mcp/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		provider string
		model    string
		wantErr  error
	}{
		{"ollama default model", config.Config{EmbeddingProvider: "ollama"}, ProviderOllama, DefaultOllamaModel, nil},
		{"ollama custom model", config.Config{EmbeddingProvider: "ollama", EmbedModel: "nomic-embed-text"}, ProviderOllama, "nomic-embed-text", nil},
		{"openai", config.Config{EmbeddingProvider: "openai", OpenAIAPIKey: "k"}, ProviderOpenAI, DefaultOpenAIModel, nil},
		{"jina", config.Config{EmbeddingProvider: "JINA", JinaAPIKey: "k"}, ProviderJina, DefaultJinaModel, nil},
		{"local", config.Config{EmbeddingProvider: "local"}, ProviderLocal, LocalModel, nil},
		{"openai without key", config.Config{EmbeddingProvider: "openai"}, "", "", ErrNoProviderEnabled},
		{"unknown", config.Config{EmbeddingProvider: "cohere"}, "", "", ErrUnsupportedModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb, err := New(&tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer emb.Close()

			assert.Equal(t, tt.provider, emb.Provider())
			assert.Equal(t, tt.model, emb.Model())
		})
	}
}
