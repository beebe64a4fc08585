package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/jscontext-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrNestedTx is returned when BeginTx is called on a transaction
	ErrNestedTx = errors.New("nested transactions not supported")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Single writer; also keeps a :memory: database on one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction. The pool holds a single connection, so
// callers must not use the parent storage until the transaction ends.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func millis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.UnixMilli(v.Int64)
}

func encodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(s sql.NullString) []string {
	out := []string{}
	if !s.Valid || s.String == "" {
		return out
	}
	if err := json.Unmarshal([]byte(s.String), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Project operations

func createProject(ctx context.Context, q querier, project *Project) error {
	query := `
		INSERT INTO projects (root_path, name, index_version, embed_provider, embed_model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		project.RootPath, project.Name, project.IndexVersion,
		project.EmbedProvider, project.EmbedModel, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	project.ID = id
	project.CreatedAt = time.UnixMilli(now.UnixMilli())
	project.UpdatedAt = project.CreatedAt
	return nil
}

const projectColumns = `id, root_path, name, total_files, total_chunks, index_version,
		       embed_provider, embed_model, last_run_id, last_indexed_at, created_at, updated_at`

func scanProject(row *sql.Row) (*Project, error) {
	var (
		project                       Project
		name, provider, model, runID  sql.NullString
		lastIndexed, created, updated sql.NullInt64
	)
	err := row.Scan(
		&project.ID, &project.RootPath, &name, &project.TotalFiles, &project.TotalChunks,
		&project.IndexVersion, &provider, &model, &runID, &lastIndexed, &created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	project.Name = name.String
	project.EmbedProvider = provider.String
	project.EmbedModel = model.String
	project.LastRunID = runID.String
	project.LastIndexedAt = fromMillis(lastIndexed)
	project.CreatedAt = fromMillis(created)
	project.UpdatedAt = fromMillis(updated)
	return &project, nil
}

func getProject(ctx context.Context, q querier, rootPath string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE root_path = ?`
	return scanProject(q.QueryRowContext(ctx, query, rootPath))
}

func getProjectByID(ctx context.Context, q querier, projectID int64) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	return scanProject(q.QueryRowContext(ctx, query, projectID))
}

func updateProject(ctx context.Context, q querier, project *Project) error {
	query := `
		UPDATE projects
		SET name = ?, total_files = ?, total_chunks = ?, index_version = ?,
		    embed_provider = ?, embed_model = ?, last_run_id = ?,
		    last_indexed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		project.Name, project.TotalFiles, project.TotalChunks, project.IndexVersion,
		project.EmbedProvider, project.EmbedModel, project.LastRunID,
		millis(project.LastIndexedAt), now.UnixMilli(), project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	project.UpdatedAt = time.UnixMilli(now.UnixMilli())
	return nil
}

func (s *SQLiteStorage) CreateProject(ctx context.Context, project *Project) error {
	return createProject(ctx, s.db, project)
}

func (s *SQLiteStorage) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	return getProject(ctx, s.db, rootPath)
}

func (s *SQLiteStorage) UpdateProject(ctx context.Context, project *Project) error {
	return updateProject(ctx, s.db, project)
}

// File operations

func upsertFile(ctx context.Context, q querier, file *File) error {
	query := `
		INSERT INTO files (project_id, file_path, module, sub_module, content_hash, size_bytes, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, file_path) DO UPDATE SET
			module = excluded.module,
			sub_module = excluded.sub_module,
			content_hash = excluded.content_hash,
			size_bytes = excluded.size_bytes,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now().UnixMilli()
	err := q.QueryRowContext(ctx, query,
		file.ProjectID, file.FilePath, file.Module, file.SubModule, file.ContentHash[:],
		file.SizeBytes, now, now, now).Scan(&file.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	file.LastIndexedAt = time.UnixMilli(now)
	file.UpdatedAt = file.LastIndexedAt
	return nil
}

const fileColumns = `id, project_id, file_path, module, sub_module, content_hash,
		       size_bytes, last_indexed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*File, error) {
	var (
		file                          File
		module, subModule             sql.NullString
		hash                          []byte
		size                          sql.NullInt64
		lastIndexed, created, updated sql.NullInt64
	)
	if err := row.Scan(&file.ID, &file.ProjectID, &file.FilePath, &module, &subModule,
		&hash, &size, &lastIndexed, &created, &updated); err != nil {
		return nil, err
	}
	file.Module = module.String
	file.SubModule = subModule.String
	copy(file.ContentHash[:], hash)
	file.SizeBytes = size.Int64
	file.LastIndexedAt = fromMillis(lastIndexed)
	file.CreatedAt = fromMillis(created)
	file.UpdatedAt = fromMillis(updated)
	return &file, nil
}

func getFile(ctx context.Context, q querier, projectID int64, filePath string) (*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE project_id = ? AND file_path = ?`
	file, err := scanFile(q.QueryRowContext(ctx, query, projectID, filePath))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return file, err
}

func deleteFile(ctx context.Context, q querier, fileID int64) error {
	_, err := q.ExecContext(ctx, "DELETE FROM files WHERE id = ?", fileID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func listFiles(ctx context.Context, q querier, projectID int64) ([]*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE project_id = ? ORDER BY file_path`
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	files := make([]*File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (s *SQLiteStorage) UpsertFile(ctx context.Context, file *File) error {
	return upsertFile(ctx, s.db, file)
}

func (s *SQLiteStorage) GetFile(ctx context.Context, projectID int64, filePath string) (*File, error) {
	return getFile(ctx, s.db, projectID, filePath)
}

func (s *SQLiteStorage) DeleteFile(ctx context.Context, fileID int64) error {
	return deleteFile(ctx, s.db, fileID)
}

func (s *SQLiteStorage) ListFiles(ctx context.Context, projectID int64) ([]*File, error) {
	return listFiles(ctx, s.db, projectID)
}

// Chunk operations

func insertChunk(ctx context.Context, q querier, chunk *Chunk) error {
	query := `
		INSERT INTO chunks (file_id, chunk_key, chunk_index, content, embed_text, chunk_type, names,
		                    start_line, end_line, token_count,
		                    functions, classes, components, exports, imports, types, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UnixMilli()
	result, err := q.ExecContext(ctx, query,
		chunk.FileID, chunk.ChunkKey, chunk.ChunkIndex, chunk.Content, chunk.EmbedText,
		string(chunk.ChunkType), chunk.Names, chunk.StartLine, chunk.EndLine, chunk.TokenCount,
		encodeList(chunk.Functions), encodeList(chunk.Classes), encodeList(chunk.Components),
		encodeList(chunk.Exports), encodeList(chunk.Imports), encodeList(chunk.Types), now)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	chunk.ID = id
	chunk.CreatedAt = time.UnixMilli(now)
	return nil
}

const chunkColumns = `c.id, c.file_id, c.chunk_key, c.chunk_index, c.content, c.embed_text, c.chunk_type, c.names,
		       c.start_line, c.end_line, c.token_count,
		       c.functions, c.classes, c.components, c.exports, c.imports, c.types, c.created_at`

func chunkDest(c *Chunk, chunkType, names *sql.NullString, tokens *sql.NullInt64,
	lists *[6]sql.NullString, created *sql.NullInt64) []any {
	return []any{
		&c.ID, &c.FileID, &c.ChunkKey, &c.ChunkIndex, &c.Content, &c.EmbedText, chunkType, names,
		&c.StartLine, &c.EndLine, tokens,
		&lists[0], &lists[1], &lists[2], &lists[3], &lists[4], &lists[5], created,
	}
}

func fillChunk(c *Chunk, chunkType, names sql.NullString, tokens sql.NullInt64,
	lists [6]sql.NullString, created sql.NullInt64) {
	c.ChunkType = types.ChunkType(chunkType.String)
	c.Names = names.String
	c.TokenCount = int(tokens.Int64)
	c.Functions = decodeList(lists[0])
	c.Classes = decodeList(lists[1])
	c.Components = decodeList(lists[2])
	c.Exports = decodeList(lists[3])
	c.Imports = decodeList(lists[4])
	c.Types = decodeList(lists[5])
	c.CreatedAt = fromMillis(created)
}

func listChunksByFile(ctx context.Context, q querier, fileID int64) ([]*Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks c WHERE c.file_id = ? ORDER BY c.chunk_index`
	rows, err := q.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	chunks := make([]*Chunk, 0)
	for rows.Next() {
		var (
			c                Chunk
			chunkType, names sql.NullString
			tokens, created  sql.NullInt64
			lists            [6]sql.NullString
		)
		if err := rows.Scan(chunkDest(&c, &chunkType, &names, &tokens, &lists, &created)...); err != nil {
			return nil, err
		}
		fillChunk(&c, chunkType, names, tokens, lists, created)
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

func deleteChunksByFile(ctx context.Context, q querier, fileID int64) error {
	_, err := q.ExecContext(ctx, "DELETE FROM chunks WHERE file_id = ?", fileID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

func getChunkRecords(ctx context.Context, q querier, chunkIDs []int64) (map[int64]*ChunkRecord, error) {
	records := make(map[int64]*ChunkRecord, len(chunkIDs))
	if len(chunkIDs) == 0 {
		return records, nil
	}

	query := `SELECT ` + chunkColumns + `, f.file_path, f.module, f.sub_module
		FROM chunks c
		JOIN files f ON c.file_id = f.id
		WHERE c.id IN (` + placeholders(len(chunkIDs)) + `)`
	args := make([]any, len(chunkIDs))
	for i, id := range chunkIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			r                 ChunkRecord
			chunkType, names  sql.NullString
			tokens, created   sql.NullInt64
			lists             [6]sql.NullString
			module, subModule sql.NullString
		)
		dest := chunkDest(&r.Chunk, &chunkType, &names, &tokens, &lists, &created)
		dest = append(dest, &r.FilePath, &module, &subModule)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		fillChunk(&r.Chunk, chunkType, names, tokens, lists, created)
		r.Module = module.String
		r.SubModule = subModule.String
		records[r.ID] = &r
	}
	return records, rows.Err()
}

func (s *SQLiteStorage) InsertChunk(ctx context.Context, chunk *Chunk) error {
	return insertChunk(ctx, s.db, chunk)
}

func (s *SQLiteStorage) ListChunksByFile(ctx context.Context, fileID int64) ([]*Chunk, error) {
	return listChunksByFile(ctx, s.db, fileID)
}

func (s *SQLiteStorage) DeleteChunksByFile(ctx context.Context, fileID int64) error {
	return deleteChunksByFile(ctx, s.db, fileID)
}

func (s *SQLiteStorage) GetChunkRecords(ctx context.Context, chunkIDs []int64) (map[int64]*ChunkRecord, error) {
	return getChunkRecords(ctx, s.db, chunkIDs)
}

// Embedding operations

func upsertEmbedding(ctx context.Context, q querier, embedding *Embedding) error {
	query := `
		INSERT INTO embeddings (chunk_id, vector, dimension, provider, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider,
			model = excluded.model,
			created_at = excluded.created_at
		RETURNING id
	`
	now := time.Now().UnixMilli()
	embedding.Dimension = len(embedding.Vector)
	err := q.QueryRowContext(ctx, query,
		embedding.ChunkID, serializeVector(embedding.Vector), embedding.Dimension,
		embedding.Provider, embedding.Model, now).Scan(&embedding.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}
	embedding.CreatedAt = time.UnixMilli(now)
	return nil
}

func getEmbedding(ctx context.Context, q querier, chunkID int64) (*Embedding, error) {
	query := `
		SELECT id, chunk_id, vector, dimension, provider, model, created_at
		FROM embeddings
		WHERE chunk_id = ?
	`
	var (
		e       Embedding
		blob    []byte
		created sql.NullInt64
	)
	err := q.QueryRowContext(ctx, query, chunkID).Scan(
		&e.ID, &e.ChunkID, &blob, &e.Dimension, &e.Provider, &e.Model, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Vector = deserializeVector(blob)
	e.CreatedAt = fromMillis(created)
	return &e, nil
}

func (s *SQLiteStorage) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return upsertEmbedding(ctx, s.db, embedding)
}

func (s *SQLiteStorage) GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error) {
	return getEmbedding(ctx, s.db, chunkID)
}

// Search operations

func (s *SQLiteStorage) SearchVector(ctx context.Context, projectID int64, queryVector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	return searchVector(ctx, s.db, projectID, queryVector, limit, filters)
}

func (s *SQLiteStorage) SearchText(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	return searchText(ctx, s.db, projectID, query, limit, filters)
}

// Status operations

func getStatus(ctx context.Context, q querier, projectID int64) (*ProjectStatus, error) {
	project, err := getProjectByID(ctx, q, projectID)
	if err != nil {
		return nil, err
	}

	status := &ProjectStatus{
		Project:    project,
		ChunkTypes: make(map[string]int),
	}

	err = q.QueryRowContext(ctx, "SELECT COUNT(*) FROM files WHERE project_id = ?", projectID).Scan(&status.FilesCount)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT c.chunk_type, COUNT(*) FROM chunks c
		JOIN files f ON c.file_id = f.id
		WHERE f.project_id = ?
		GROUP BY c.chunk_type
	`, projectID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var chunkType string
		var n int
		if err := rows.Scan(&chunkType, &n); err != nil {
			_ = rows.Close()
			return nil, err
		}
		status.ChunkTypes[chunkType] = n
		status.ChunksCount += n
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM embeddings e
		JOIN chunks c ON e.chunk_id = c.id
		JOIN files f ON c.file_id = f.id
		WHERE f.project_id = ?
	`, projectID).Scan(&status.EmbeddingsCount)
	if err != nil {
		return nil, err
	}

	var pageCount, pageSize int
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	status.Health = HealthStatus{
		DatabaseAccessible:  true,
		EmbeddingsAvailable: status.EmbeddingsCount > 0,
		FTSIndexesBuilt:     true, // created by migrations
	}
	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error) {
	return getStatus(ctx, s.db, projectID)
}

// Transaction implementations

func (t *sqliteTx) CreateProject(ctx context.Context, project *Project) error {
	return createProject(ctx, t.tx, project)
}

func (t *sqliteTx) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	return getProject(ctx, t.tx, rootPath)
}

func (t *sqliteTx) UpdateProject(ctx context.Context, project *Project) error {
	return updateProject(ctx, t.tx, project)
}

func (t *sqliteTx) UpsertFile(ctx context.Context, file *File) error {
	return upsertFile(ctx, t.tx, file)
}

func (t *sqliteTx) GetFile(ctx context.Context, projectID int64, filePath string) (*File, error) {
	return getFile(ctx, t.tx, projectID, filePath)
}

func (t *sqliteTx) DeleteFile(ctx context.Context, fileID int64) error {
	return deleteFile(ctx, t.tx, fileID)
}

func (t *sqliteTx) ListFiles(ctx context.Context, projectID int64) ([]*File, error) {
	return listFiles(ctx, t.tx, projectID)
}

func (t *sqliteTx) InsertChunk(ctx context.Context, chunk *Chunk) error {
	return insertChunk(ctx, t.tx, chunk)
}

func (t *sqliteTx) ListChunksByFile(ctx context.Context, fileID int64) ([]*Chunk, error) {
	return listChunksByFile(ctx, t.tx, fileID)
}

func (t *sqliteTx) DeleteChunksByFile(ctx context.Context, fileID int64) error {
	return deleteChunksByFile(ctx, t.tx, fileID)
}

func (t *sqliteTx) GetChunkRecords(ctx context.Context, chunkIDs []int64) (map[int64]*ChunkRecord, error) {
	return getChunkRecords(ctx, t.tx, chunkIDs)
}

func (t *sqliteTx) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return upsertEmbedding(ctx, t.tx, embedding)
}

func (t *sqliteTx) GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error) {
	return getEmbedding(ctx, t.tx, chunkID)
}

func (t *sqliteTx) SearchVector(ctx context.Context, projectID int64, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	return searchVector(ctx, t.tx, projectID, vector, limit, filters)
}

func (t *sqliteTx) SearchText(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	return searchText(ctx, t.tx, projectID, query, limit, filters)
}

func (t *sqliteTx) GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error) {
	return getStatus(ctx, t.tx, projectID)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, ErrNestedTx
}
