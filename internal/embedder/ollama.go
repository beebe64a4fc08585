package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
)

// OllamaProvider embeds text with a local Ollama server. Ollama's
// embeddings endpoint takes one prompt per request, so batches are sent
// sequentially.
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
	retry      RetryConfig
	cache      *Cache
	dimension  atomic.Int64
}

// NewOllamaProvider creates an Ollama embedder. The dimension reported
// before the first response is OllamaDimension.
func NewOllamaProvider(cache *Cache, opts ...Option) *OllamaProvider {
	o := buildOptions(DefaultOllamaURL, DefaultOllamaModel, opts)
	p := &OllamaProvider{
		baseURL:    strings.TrimRight(o.baseURL, "/"),
		model:      o.model,
		httpClient: o.httpClient,
		retry:      o.retry,
		cache:      cache,
	}
	p.dimension.Store(OllamaDimension)
	return p
}

func (p *OllamaProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	resp, err := p.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{req.Text}, Model: req.Model})
	if err != nil {
		return nil, err
	}
	return resp.Embeddings[0], nil
}

func (p *OllamaProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}
	if len(req.Texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	embeddings, err := cachedBatch(ctx, p.cache, ProviderOllama, model, req.Texts, func(ctx context.Context, texts []string, model string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vec, err := retryWithBackoff(ctx, p.retry, func() ([]float32, error) {
				return p.callAPI(ctx, text, model)
			})
			if err != nil {
				return nil, fmt.Errorf("%w: ollama: %v", ErrProviderFailed, err)
			}
			vectors[i] = vec
		}
		return vectors, nil
	})
	if err != nil {
		return nil, err
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   ProviderOllama,
		Model:      model,
	}, nil
}

func (p *OllamaProvider) callAPI(ctx context.Context, text, model string) ([]float32, error) {
	body, err := json.Marshal(map[string]string{
		"model":  model,
		"prompt": text,
	})
	if err != nil {
		return nil, permanent(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var apiResp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Embedding) == 0 {
		return nil, permanent(fmt.Errorf("empty embedding for model %s", model))
	}

	p.dimension.Store(int64(len(apiResp.Embedding)))
	return apiResp.Embedding, nil
}

// Dimension returns the length of the last vector received
func (p *OllamaProvider) Dimension() int {
	return int(p.dimension.Load())
}

func (p *OllamaProvider) Provider() string {
	return ProviderOllama
}

func (p *OllamaProvider) Model() string {
	return p.model
}

func (p *OllamaProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
