package embedder

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ComputeHash(""))
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", ComputeHash("hello world"))
	assert.Equal(t, ComputeHash("test"), ComputeHash("test"))
}

func TestValidateBatchRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     BatchEmbeddingRequest
		wantErr error
	}{
		{"valid", BatchEmbeddingRequest{Texts: []string{"a", "b"}}, nil},
		{"empty batch", BatchEmbeddingRequest{}, ErrInvalidInput},
		{"empty text", BatchEmbeddingRequest{Texts: []string{"a", ""}}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatchRequest(tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.ErrorIs(t, ValidateRequest(EmbeddingRequest{}), ErrEmptyText)
}

func TestCache(t *testing.T) {
	t.Run("get returns a copy", func(t *testing.T) {
		c := NewCache(2)
		c.Set("k", &Embedding{Vector: []float32{1, 2}, Dimension: 2})

		got, ok := c.Get("k")
		require.True(t, ok)
		got.Vector[0] = 99

		again, _ := c.Get("k")
		assert.Equal(t, float32(1), again.Vector[0])
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		c := NewCache(2)
		c.Set("a", &Embedding{})
		c.Set("b", &Embedding{})
		_, _ = c.Get("a")
		c.Set("c", &Embedding{})

		_, okA := c.Get("a")
		_, okB := c.Get("b")
		assert.True(t, okA)
		assert.False(t, okB)
		assert.Equal(t, 2, c.Size())

		c.Clear()
		assert.Zero(t, c.Size())
	})

	t.Run("keys separate models", func(t *testing.T) {
		assert.NotEqual(t, CacheKey("ollama", "bge-m3", "x"), CacheKey("ollama", "nomic", "x"))
	})
}

func TestCachedBatchFetchesOnlyMisses(t *testing.T) {
	cache := NewCache(10)
	cache.Set(CacheKey("p", "m", "hit"), &Embedding{Vector: []float32{7}})

	var fetched []string
	got, err := cachedBatch(context.Background(), cache, "p", "m", []string{"miss1", "hit", "miss2"},
		func(_ context.Context, texts []string, _ string) ([][]float32, error) {
			fetched = texts
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{float32(i)}
			}
			return out, nil
		})
	require.NoError(t, err)

	assert.Equal(t, []string{"miss1", "miss2"}, fetched)
	require.Len(t, got, 3)
	assert.Equal(t, []float32{0}, got[0].Vector)
	assert.Equal(t, []float32{7}, got[1].Vector)
	assert.Equal(t, []float32{1}, got[2].Vector)
	assert.Equal(t, ComputeHash("miss2"), got[2].Hash)
	assert.Equal(t, 3, cache.Size())
}

func TestCachedBatchCountMismatch(t *testing.T) {
	_, err := cachedBatch(context.Background(), nil, "p", "m", []string{"a", "b"},
		func(context.Context, []string, string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		})
	assert.ErrorIs(t, err, ErrProviderFailed)
}

// countingEmbedder records batch sizes
type countingEmbedder struct {
	LocalProvider
	batches []int
}

func (c *countingEmbedder) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	c.batches = append(c.batches, len(req.Texts))
	return c.LocalProvider.GenerateBatch(ctx, req)
}

func TestEmbedTextsBatches(t *testing.T) {
	local, err := NewLocalProvider(nil)
	require.NoError(t, err)
	emb := &countingEmbedder{LocalProvider: *local}

	texts := make([]string, 23)
	for i := range texts {
		texts[i] = fmt.Sprintf("function f%d() {}", i)
	}

	vectors, err := EmbedTexts(context.Background(), emb, texts, 10)
	require.NoError(t, err)

	assert.Len(t, vectors, 23)
	assert.Equal(t, []int{10, 10, 3}, emb.batches)
}

func TestRetryWithBackoff(t *testing.T) {
	fast := RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		got, err := retryWithBackoff(context.Background(), fast, func() (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("transient")
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		_, err := retryWithBackoff(context.Background(), fast, func() (int, error) {
			calls++
			return 0, errors.New("down")
		})
		assert.EqualError(t, err, "down")
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		_, err := retryWithBackoff(context.Background(), fast, func() (int, error) {
			calls++
			return 0, permanent(errors.New("bad request"))
		})
		assert.EqualError(t, err, "bad request")
		assert.Equal(t, 1, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := retryWithBackoff(ctx, fast, func() (int, error) {
			return 0, errors.New("down")
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNormalizeVector(t *testing.T) {
	assert.Equal(t, []float32{0.6, 0.8}, NormalizeVector([]float32{3, 4}))
	assert.Equal(t, []float32{0, 0}, NormalizeVector([]float32{0, 0}))
}

func BenchmarkComputeHash(b *testing.B) {
	text := "export function getSubjectList() { return request('/api/subject/list'); }"
	for i := 0; i < b.N; i++ {
		_ = ComputeHash(text)
	}
}

func BenchmarkLocalEmbedding(b *testing.B) {
	p, _ := NewLocalProvider(nil)
	req := EmbeddingRequest{Text: "File: src/api/subject.js\nFunctions: getSubjectList\n\nexport function getSubjectList() {}"}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.GenerateEmbedding(ctx, req)
	}
}
