package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/jscontext-mcp/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	t.Helper()
	// Use in-memory database for testing
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func createTestProject(t *testing.T, s Storage, root string) *Project {
	t.Helper()
	project := &Project{RootPath: root, Name: "web", IndexVersion: CurrentSchemaVersion}
	require.NoError(t, s.CreateProject(context.Background(), project))
	return project
}

func createTestFile(t *testing.T, s Storage, projectID int64, path, module string) *File {
	t.Helper()
	file := &File{
		ProjectID:   projectID,
		FilePath:    path,
		Module:      module,
		ContentHash: [32]byte{1, 2, 3},
		SizeBytes:   100,
	}
	require.NoError(t, s.UpsertFile(context.Background(), file))
	return file
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	assert.NotNil(t, storage.db)

	v, err := SchemaVersion(context.Background(), storage.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v.String())
}

func TestCreateProject(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	project := createTestProject(t, storage, "/test/path")
	assert.Greater(t, project.ID, int64(0))
	assert.False(t, project.CreatedAt.IsZero())

	// Duplicate root path violates the unique constraint
	err := storage.CreateProject(ctx, &Project{RootPath: "/test/path", IndexVersion: "1"})
	assert.Error(t, err)
}

func TestGetProject(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	created := createTestProject(t, storage, "/test/path")

	got, err := storage.GetProject(ctx, "/test/path")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "web", got.Name)
	assert.True(t, got.LastIndexedAt.IsZero())

	_, err = storage.GetProject(ctx, "/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProject(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	project := createTestProject(t, storage, "/test/path")
	indexedAt := time.UnixMilli(time.Now().UnixMilli())
	project.TotalFiles = 12
	project.TotalChunks = 40
	project.EmbedProvider = "local"
	project.EmbedModel = "feature-hash-v1"
	project.LastRunID = "run-1"
	project.LastIndexedAt = indexedAt
	require.NoError(t, storage.UpdateProject(ctx, project))

	got, err := storage.GetProject(ctx, "/test/path")
	require.NoError(t, err)
	assert.Equal(t, 12, got.TotalFiles)
	assert.Equal(t, 40, got.TotalChunks)
	assert.Equal(t, "local", got.EmbedProvider)
	assert.Equal(t, "feature-hash-v1", got.EmbedModel)
	assert.Equal(t, "run-1", got.LastRunID)
	assert.True(t, indexedAt.Equal(got.LastIndexedAt))

	missing := &Project{ID: 999, RootPath: "/nope", IndexVersion: "1"}
	assert.ErrorIs(t, storage.UpdateProject(ctx, missing), ErrNotFound)
}

func TestUpsertFile(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project := createTestProject(t, storage, "/test")

	file := createTestFile(t, storage, project.ID, "src/pages/Home.jsx", "src")
	firstID := file.ID
	assert.Greater(t, firstID, int64(0))

	// Same path updates in place and keeps the row ID
	again := &File{
		ProjectID:   project.ID,
		FilePath:    "src/pages/Home.jsx",
		Module:      "src",
		SubModule:   "pages",
		ContentHash: [32]byte{9},
		SizeBytes:   200,
	}
	require.NoError(t, storage.UpsertFile(ctx, again))
	assert.Equal(t, firstID, again.ID)

	got, err := storage.GetFile(ctx, project.ID, "src/pages/Home.jsx")
	require.NoError(t, err)
	assert.Equal(t, [32]byte{9}, got.ContentHash)
	assert.Equal(t, "pages", got.SubModule)
	assert.Equal(t, int64(200), got.SizeBytes)

	_, err = storage.GetFile(ctx, project.ID, "missing.js")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiles(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project := createTestProject(t, storage, "/test")

	createTestFile(t, storage, project.ID, "src/b.js", "src")
	createTestFile(t, storage, project.ID, "src/a.js", "src")

	files, err := storage.ListFiles(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "src/a.js", files[0].FilePath)
	assert.Equal(t, "src/b.js", files[1].FilePath)

	other, err := storage.ListFiles(ctx, project.ID+1)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func sampleChunk(fileID int64, path string, index int, content string) *Chunk {
	return ChunkFromCode(fileID, types.CodeChunk{
		ChunkID:    types.ChunkID(path, index),
		Index:      index,
		Content:    content,
		ChunkType:  types.ChunkFunction,
		Names:      "loadUser",
		EmbedText:  "File: " + path + "\n\n" + content,
		TokenCount: 12,
		StartLine:  1,
		EndLine:    3,
		FilePath:   path,
		Functions:  []string{"loadUser"},
		Imports:    []string{"axios"},
	})
}

func TestInsertAndListChunks(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project := createTestProject(t, storage, "/test")
	file := createTestFile(t, storage, project.ID, "src/api.js", "src")

	chunk := sampleChunk(file.ID, file.FilePath, 0, "function loadUser() { return axios.get('/u') }")
	require.NoError(t, storage.InsertChunk(ctx, chunk))
	assert.Greater(t, chunk.ID, int64(0))

	// Duplicate index within a file is rejected
	dup := sampleChunk(file.ID, file.FilePath, 0, "other")
	assert.Error(t, storage.InsertChunk(ctx, dup))

	chunks, err := storage.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	got := chunks[0]
	assert.Equal(t, "src/api.js#chunk_0", got.ChunkKey)
	assert.Equal(t, types.ChunkFunction, got.ChunkType)
	assert.Equal(t, []string{"loadUser"}, got.Functions)
	assert.Equal(t, []string{"axios"}, got.Imports)
	assert.Equal(t, []string{}, got.Classes)
	assert.Equal(t, 12, got.TokenCount)
}

func TestGetChunkRecords(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project := createTestProject(t, storage, "/test")
	file := &File{ProjectID: project.ID, FilePath: "src/user/api.js", Module: "src", SubModule: "user", ContentHash: [32]byte{1}}
	require.NoError(t, storage.UpsertFile(ctx, file))

	chunk := sampleChunk(file.ID, file.FilePath, 0, "function loadUser() {}")
	require.NoError(t, storage.InsertChunk(ctx, chunk))

	records, err := storage.GetChunkRecords(ctx, []int64{chunk.ID, 12345})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[chunk.ID]
	require.NotNil(t, rec)
	assert.Equal(t, "src/user/api.js", rec.FilePath)
	assert.Equal(t, "user", rec.SubModule)

	cc := rec.CodeChunk()
	assert.Equal(t, "src/user/api.js#chunk_0", cc.ChunkID)
	assert.Equal(t, "src", cc.Module)
	assert.NoError(t, cc.Validate())

	empty, err := storage.GetChunkRecords(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteFileCascades(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project := createTestProject(t, storage, "/test")
	file := createTestFile(t, storage, project.ID, "src/api.js", "src")

	chunk := sampleChunk(file.ID, file.FilePath, 0, "function loadUser() {}")
	require.NoError(t, storage.InsertChunk(ctx, chunk))
	require.NoError(t, storage.UpsertEmbedding(ctx, &Embedding{ChunkID: chunk.ID, Vector: []float32{1, 0}, Provider: "local", Model: "m"}))

	require.NoError(t, storage.DeleteFile(ctx, file.ID))

	chunks, err := storage.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	_, err = storage.GetEmbedding(ctx, chunk.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// FTS rows go with the chunk
	hits, err := storage.SearchText(ctx, project.ID, "loadUser", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestUpsertEmbedding(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project := createTestProject(t, storage, "/test")
	file := createTestFile(t, storage, project.ID, "src/api.js", "src")
	chunk := sampleChunk(file.ID, file.FilePath, 0, "function loadUser() {}")
	require.NoError(t, storage.InsertChunk(ctx, chunk))

	emb := &Embedding{ChunkID: chunk.ID, Vector: []float32{0.5, -0.25, 1}, Provider: "ollama", Model: "bge-m3"}
	require.NoError(t, storage.UpsertEmbedding(ctx, emb))
	assert.Equal(t, 3, emb.Dimension)

	// Second write replaces the vector
	emb2 := &Embedding{ChunkID: chunk.ID, Vector: []float32{1, 2}, Provider: "local", Model: "feature-hash-v1"}
	require.NoError(t, storage.UpsertEmbedding(ctx, emb2))

	got, err := storage.GetEmbedding(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, got.Vector)
	assert.Equal(t, 2, got.Dimension)
	assert.Equal(t, "local", got.Provider)
}

func TestGetStatus(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project := createTestProject(t, storage, "/test")
	file := createTestFile(t, storage, project.ID, "src/api.js", "src")

	c0 := sampleChunk(file.ID, file.FilePath, 0, "function a() {}")
	c1 := sampleChunk(file.ID, file.FilePath, 1, "const b = 1")
	c1.ChunkType = types.ChunkModuleScope
	require.NoError(t, storage.InsertChunk(ctx, c0))
	require.NoError(t, storage.InsertChunk(ctx, c1))
	require.NoError(t, storage.UpsertEmbedding(ctx, &Embedding{ChunkID: c0.ID, Vector: []float32{1}, Provider: "p", Model: "m"}))

	status, err := storage.GetStatus(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.FilesCount)
	assert.Equal(t, 2, status.ChunksCount)
	assert.Equal(t, 1, status.EmbeddingsCount)
	assert.Equal(t, map[string]int{"function": 1, "module_scope": 1}, status.ChunkTypes)
	assert.True(t, status.Health.DatabaseAccessible)
	assert.True(t, status.Health.EmbeddingsAvailable)
	assert.Equal(t, project.ID, status.Project.ID)

	_, err = storage.GetStatus(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBeginTx_CommitRollback(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)

	project := &Project{RootPath: "/test", IndexVersion: "1"}
	require.NoError(t, tx.CreateProject(ctx, project))

	// Reads inside the transaction see its own writes
	inTx, err := tx.GetProject(ctx, "/test")
	require.NoError(t, err)
	assert.Equal(t, project.ID, inTx.ID)

	_, err = tx.BeginTx(ctx)
	assert.ErrorIs(t, err, ErrNestedTx)

	require.NoError(t, tx.Commit())

	retrieved, err := storage.GetProject(ctx, "/test")
	require.NoError(t, err)
	assert.Equal(t, project.ID, retrieved.ID)

	tx2, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx2.CreateProject(ctx, &Project{RootPath: "/test2", IndexVersion: "1"}))
	require.NoError(t, tx2.Rollback())

	_, err = storage.GetProject(ctx, "/test2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReindexFileReplacesChunks(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project := createTestProject(t, storage, "/test")
	file := createTestFile(t, storage, project.ID, "src/api.js", "src")

	// Repeated re-indexing of one file keeps exactly one chunk set
	for i := 0; i < 10; i++ {
		tx, err := storage.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.DeleteChunksByFile(ctx, file.ID))
		require.NoError(t, tx.InsertChunk(ctx, sampleChunk(file.ID, file.FilePath, 0, "function loadUser() {}")))
		require.NoError(t, tx.InsertChunk(ctx, sampleChunk(file.ID, file.FilePath, 1, "function saveUser() {}")))
		require.NoError(t, tx.Commit(), "iteration %d", i)
	}

	chunks, err := storage.ListChunksByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)

	hits, err := storage.SearchText(ctx, project.ID, "saveUser", 10, nil)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
