package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dshills/jscontext-mcp/internal/embedder"
	"github.com/dshills/jscontext-mcp/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockEmbedder implements embedder.Embedder for testing
type mockEmbedder struct {
	dimension int
	failOn    string // texts containing this substring fail
	mu        sync.Mutex
	texts     int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dimension: 4}
}

func (m *mockEmbedder) vector(text string) []float32 {
	v := make([]float32, m.dimension)
	v[len(text)%m.dimension] = 1
	return v
}

func (m *mockEmbedder) GenerateEmbedding(ctx context.Context, req embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	resp, err := m.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: []string{req.Text}})
	if err != nil {
		return nil, err
	}
	return resp.Embeddings[0], nil
}

func (m *mockEmbedder) GenerateBatch(ctx context.Context, req embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	embeddings := make([]*embedder.Embedding, len(req.Texts))
	for i, text := range req.Texts {
		if m.failOn != "" && strings.Contains(text, m.failOn) {
			return nil, embedder.ErrProviderFailed
		}
		m.texts++
		embeddings[i] = &embedder.Embedding{
			Vector:    m.vector(text),
			Dimension: m.dimension,
			Provider:  "mock",
			Model:     "test-v1",
		}
	}
	return &embedder.BatchEmbeddingResponse{Embeddings: embeddings, Provider: "mock", Model: "test-v1"}, nil
}

func (m *mockEmbedder) Dimension() int   { return m.dimension }
func (m *mockEmbedder) Provider() string { return "mock" }
func (m *mockEmbedder) Model() string    { return "test-v1" }
func (m *mockEmbedder) Close() error     { return nil }

func (m *mockEmbedder) embedded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.texts
}

func setupTestStorage(t testing.TB) storage.Storage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

const userAPI = `import axios from 'axios';

export async function fetchUser(id) {
  const res = await axios.get('/users/' + id);
  return res.data;
}
`

const homePage = `import React from 'react';

export default function Home() {
  return <div className="home">home</div>;
}
`

func setupProject(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/api/user.js", userAPI)
	writeFile(t, root, "src/pages/Home.jsx", homePage)
	writeFile(t, root, "node_modules/lib/index.js", "module.exports = 1\n")
	return root
}

type eventLog struct {
	events []Event
}

func (l *eventLog) record(ev Event) { l.events = append(l.events, ev) }

func (l *eventLog) types() []EventType {
	out := make([]EventType, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Type
	}
	return out
}

func (l *eventLog) count(t EventType) int {
	n := 0
	for _, ev := range l.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func TestIndexProject_Success(t *testing.T) {
	store := setupTestStorage(t)
	emb := newMockEmbedder()
	idx := New(store, emb, WithWorkers(2))
	root := setupProject(t)
	ctx := context.Background()

	var log eventLog
	stats, err := idx.IndexProject(ctx, root, nil, log.record)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesScanned)
	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesSkipped)
	assert.Equal(t, 0, stats.FilesFailed)
	assert.Greater(t, stats.ChunksCreated, 0)
	assert.Equal(t, stats.ChunksCreated, stats.EmbeddingsCreated)
	assert.Equal(t, stats.ChunksCreated, emb.embedded())
	assert.NotEmpty(t, stats.RunID)
	assert.Empty(t, stats.ErrorMessages)

	// Event stream
	types := log.types()
	require.NotEmpty(t, types)
	assert.Equal(t, EventScanStart, types[0])
	assert.Equal(t, EventComplete, types[len(types)-1])
	assert.Equal(t, 2, log.count(EventIndexing))
	assert.Equal(t, 1, log.count(EventSaving))
	for _, ev := range log.events {
		assert.Equal(t, stats.RunID, ev.RunID)
	}

	// Stored state
	project, err := store.GetProject(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), project.Name)
	assert.Equal(t, 2, project.TotalFiles)
	assert.Equal(t, stats.ChunksCreated, project.TotalChunks)
	assert.Equal(t, stats.RunID, project.LastRunID)
	assert.Equal(t, "mock", project.EmbedProvider)
	assert.False(t, project.LastIndexedAt.IsZero())

	status, err := store.GetStatus(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, stats.ChunksCreated, status.EmbeddingsCount)

	file, err := store.GetFile(ctx, project.ID, "src/api/user.js")
	require.NoError(t, err)
	assert.Equal(t, "src", file.Module)
	assert.Equal(t, "api", file.SubModule)

	chunks, err := store.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "src/api/user.js#chunk_0", chunks[0].ChunkKey)
	assert.Contains(t, chunks[0].Functions, "fetchUser")
	assert.Contains(t, chunks[0].EmbedText, "File: src/api/user.js")
}

func TestIndexProject_IncrementalUpdate(t *testing.T) {
	store := setupTestStorage(t)
	emb := newMockEmbedder()
	idx := New(store, emb)
	root := setupProject(t)
	ctx := context.Background()

	first, err := idx.IndexProject(ctx, root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, first.FilesIndexed)

	// Unchanged files are skipped
	second, err := idx.IndexProject(ctx, root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesIndexed)
	assert.Equal(t, 2, second.FilesSkipped)
	assert.NotEqual(t, first.RunID, second.RunID)

	// A modified file is re-indexed and its chunks replaced
	writeFile(t, root, "src/api/user.js", userAPI+"\nexport function saveUser(u) {\n  return axios.post('/users', u);\n}\n")
	third, err := idx.IndexProject(ctx, root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, third.FilesIndexed)
	assert.Equal(t, 1, third.FilesSkipped)

	project, err := store.GetProject(ctx, root)
	require.NoError(t, err)
	file, err := store.GetFile(ctx, project.ID, "src/api/user.js")
	require.NoError(t, err)
	chunks, err := store.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Contains(t, chunks[0].Functions, "saveUser")

	// Force re-indexes everything
	cfg := DefaultConfig()
	cfg.Force = true
	forced, err := idx.IndexProject(ctx, root, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, forced.FilesIndexed)
	assert.Equal(t, 0, forced.FilesSkipped)

	status, err := store.GetStatus(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, forced.ChunksCreated, status.ChunksCount)
}

func TestIndexProject_RemovesDeletedFiles(t *testing.T) {
	store := setupTestStorage(t)
	idx := New(store, newMockEmbedder())
	root := setupProject(t)
	ctx := context.Background()

	_, err := idx.IndexProject(ctx, root, nil, nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "src", "pages", "Home.jsx")))
	stats, err := idx.IndexProject(ctx, root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesRemoved)
	assert.Equal(t, 1, stats.FilesSkipped)

	project, err := store.GetProject(ctx, root)
	require.NoError(t, err)
	files, err := store.ListFiles(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "src/api/user.js", files[0].FilePath)
	assert.Equal(t, 1, project.TotalFiles)
}

func TestIndexProject_EmptyProject(t *testing.T) {
	store := setupTestStorage(t)
	idx := New(store, newMockEmbedder())
	root := t.TempDir()
	writeFile(t, root, "notes.txt", "nothing to index\n")

	var log eventLog
	stats, err := idx.IndexProject(context.Background(), root, nil, log.record)
	assert.ErrorIs(t, err, ErrNoSourceFiles)
	assert.Nil(t, stats)

	types := log.types()
	require.NotEmpty(t, types)
	assert.Equal(t, EventError, types[len(types)-1])

	_, err = store.GetProject(context.Background(), root)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIndexProject_EmbeddingErrors(t *testing.T) {
	store := setupTestStorage(t)
	emb := newMockEmbedder()
	emb.failOn = "fetchUser"
	idx := New(store, emb)
	root := setupProject(t)
	ctx := context.Background()

	var log eventLog
	stats, err := idx.IndexProject(ctx, root, nil, log.record)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesFailed)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], "src/api/user.js")
	assert.Equal(t, 1, log.count(EventFileError))

	// The failed file is not recorded, so the next run retries it
	project, err := store.GetProject(ctx, root)
	require.NoError(t, err)
	_, err = store.GetFile(ctx, project.ID, "src/api/user.js")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	emb.mu.Lock()
	emb.failOn = ""
	emb.mu.Unlock()
	retry, err := idx.IndexProject(ctx, root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, retry.FilesIndexed)
	assert.Equal(t, 1, retry.FilesSkipped)
}

func TestIndexProject_WithoutEmbedder(t *testing.T) {
	store := setupTestStorage(t)
	idx := New(store, nil)
	root := setupProject(t)
	ctx := context.Background()

	stats, err := idx.IndexProject(ctx, root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Equal(t, 0, stats.EmbeddingsCreated)

	project, err := store.GetProject(ctx, root)
	require.NoError(t, err)
	assert.Empty(t, project.EmbedProvider)

	status, err := store.GetStatus(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, stats.ChunksCreated, status.ChunksCount)
	assert.Equal(t, 0, status.EmbeddingsCount)

	// Chunks remain reachable through keyword search
	hits, err := store.SearchText(ctx, project.ID, "fetchUser", 10, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, hits)
}

func TestIndexProject_BatchProcessing(t *testing.T) {
	store := setupTestStorage(t)
	idx := New(store, newMockEmbedder())
	root := setupProject(t)
	writeFile(t, root, "src/utils/format.ts", "export function formatDate(d: Date): string {\n  return d.toISOString();\n}\n")

	cfg := DefaultConfig()
	cfg.BatchSize = 1
	cfg.Workers = 1

	var log eventLog
	stats, err := idx.IndexProject(context.Background(), root, cfg, log.record)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FilesIndexed)
	assert.Equal(t, 3, log.count(EventSaving))
	assert.Equal(t, 3, log.count(EventIndexing))
}

func TestIndexProject_ProjectConfig(t *testing.T) {
	store := setupTestStorage(t)
	idx := New(store, newMockEmbedder())
	root := setupProject(t)

	cfg := DefaultConfig()
	cfg.Project.IgnoreGlobs = []string{"src/pages/**"}

	stats, err := idx.IndexProject(context.Background(), root, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesScanned)
	assert.Equal(t, 1, stats.FilesIndexed)
}

func TestIndexProject_ConcurrentCalls(t *testing.T) {
	store := setupTestStorage(t)
	idx := New(store, newMockEmbedder())
	root := setupProject(t)

	require.True(t, idx.lock.TryAcquire())
	_, err := idx.IndexProject(context.Background(), root, nil, nil)
	assert.ErrorIs(t, err, ErrIndexingInProgress)
	idx.lock.Release()

	_, err = idx.IndexProject(context.Background(), root, nil, nil)
	assert.NoError(t, err)
	assert.False(t, idx.lock.Held())
}

func TestIndexProject_ContextCancellation(t *testing.T) {
	store := setupTestStorage(t)
	idx := New(store, newMockEmbedder())
	root := setupProject(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := idx.IndexProject(ctx, root, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.False(t, idx.lock.Held())
}

func TestIndexLock_ConcurrentAcquisition(t *testing.T) {
	t.Run("second acquisition fails while held", func(t *testing.T) {
		var lock IndexLock
		require.True(t, lock.TryAcquire())
		assert.False(t, lock.TryAcquire())
		assert.True(t, lock.Held())
		lock.Release()
		assert.True(t, lock.TryAcquire())
		lock.Release()
	})

	t.Run("only one goroutine wins", func(t *testing.T) {
		var lock IndexLock
		const numGoroutines = 100

		acquired := make([]bool, numGoroutines)
		var wg sync.WaitGroup
		wg.Add(numGoroutines)
		for i := 0; i < numGoroutines; i++ {
			go func(i int) {
				defer wg.Done()
				acquired[i] = lock.TryAcquire()
			}(i)
		}
		wg.Wait()

		successCount := 0
		for _, ok := range acquired {
			if ok {
				successCount++
			}
		}
		assert.Equal(t, 1, successCount)
		lock.Release()
	})
}

func BenchmarkIndexProject(b *testing.B) {
	root := b.TempDir()
	for i := 0; i < 50; i++ {
		writeFile(b, root, filepath.Join("src", "mod", strings.Repeat("f", i%5+1)+string(rune('a'+i%26))+".js"), userAPI)
	}

	for i := 0; i < b.N; i++ {
		store, err := storage.NewSQLiteStorage(":memory:")
		require.NoError(b, err)
		idx := New(store, newMockEmbedder())
		_, err = idx.IndexProject(context.Background(), root, nil, nil)
		require.NoError(b, err)
		_ = store.Close()
	}
}
