package embedder

import (
	"context"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/dshills/jscontext-mcp/internal/rerank"
)

// LocalModel names the feature-hashing model
const LocalModel = "feature-hash-v1"

// LocalProvider embeds text offline by hashing tokens into a fixed number
// of signed buckets. Texts sharing identifiers land close together, which
// is enough for tests and for indexing without an embedding service.
type LocalProvider struct {
	dimension int
	tokenizer rerank.Tokenizer
	cache     *Cache
}

// NewLocalProvider creates a feature-hashing embedder of LocalDimension
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{
		dimension: LocalDimension,
		tokenizer: rerank.RunTokenizer{},
		cache:     cache,
	}, nil
}

func (l *LocalProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	resp, err := l.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{req.Text}})
	if err != nil {
		return nil, err
	}
	return resp.Embeddings[0], nil
}

func (l *LocalProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	embeddings, err := cachedBatch(ctx, l.cache, ProviderLocal, LocalModel, req.Texts, func(ctx context.Context, texts []string, _ string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("embedding text %d: %w", i, err)
			}
			vectors[i] = l.hashVector(text)
		}
		return vectors, nil
	})
	if err != nil {
		return nil, err
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   ProviderLocal,
		Model:      LocalModel,
	}, nil
}

// hashVector sums one signed unit per token occurrence, damped by the
// log of its count, and normalizes the result
func (l *LocalProvider) hashVector(text string) []float32 {
	counts := make(map[string]int)
	for _, tok := range l.tokenizer.Tokenize(text) {
		counts[tok]++
	}

	vec := make([]float32, l.dimension)
	for tok, n := range counts {
		h := xxhash.Sum64String(tok)
		idx := int(h % uint64(l.dimension))
		weight := float32(1 + math.Log(float64(n)))
		if h>>63 == 1 {
			weight = -weight
		}
		vec[idx] += weight
	}
	return NormalizeVector(vec)
}

func (l *LocalProvider) Dimension() int {
	return l.dimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return LocalModel
}

func (l *LocalProvider) Close() error {
	return nil
}
