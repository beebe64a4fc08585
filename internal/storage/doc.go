// Package storage provides SQLite-based persistence for indexed front-end code.
//
// The storage layer manages:
//   - Project metadata and the last indexing run
//   - File information and content hashes
//   - Preprocessed chunks with their file-level metadata lists
//   - Vector embeddings
//   - An FTS5 index over chunk content and names
//
// # Database Schema
//
// Tables:
//   - projects: root path, totals, embedding provider/model, last run ID
//   - files: relative paths, module/sub-module, SHA-256 hashes
//   - chunks: chunk records keyed by (file_id, chunk_index)
//   - embeddings: little-endian float32 vectors, one per chunk
//   - chunks_fts: external-content FTS5 table kept in sync by triggers
//
// Migrations are ordered by semantic version and recorded in schema_version.
//
// # Transactions
//
// The connection pool holds a single connection. While a Tx is open, all
// reads and writes must go through it:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = tx.Rollback() }()
//
//	if err := tx.UpsertFile(ctx, file); err != nil {
//	    return err
//	}
//	_ = tx.DeleteChunksByFile(ctx, file.ID)
//	for _, c := range chunks {
//	    row := storage.ChunkFromCode(file.ID, c)
//	    _ = tx.InsertChunk(ctx, row)
//	}
//	return tx.Commit()
//
// # Search
//
// SearchVector ranks embeddings by cosine similarity computed in Go.
// SearchText runs a BM25 query over chunks_fts; free text is reduced to
// quoted terms joined by OR. Both honor SearchFilters: chunk types and
// modules in SQL, file patterns with doublestar globs.
//
// # Build Tags
//
// The default build uses modernc.org/sqlite (pure Go, FTS5 included).
// Building with -tags "sqlite_cgo sqlite_fts5" switches to
// github.com/mattn/go-sqlite3.
package storage
