// Package indexer coordinates the end-to-end indexing pipeline for front-end
// codebases.
//
// # Basic Usage
//
//	idx := indexer.New(store, emb)
//
//	stats, err := idx.IndexProject(ctx, "/path/to/project", nil, func(ev indexer.Event) {
//	    fmt.Println(ev.Type, ev.Current, ev.Total)
//	})
//
// # Indexing Pipeline
//
//  1. Scan: walk the project, keep configured extensions, skip ignored
//     directories and globs, truncate oversized files
//  2. Incremental decision: compare SHA-256 content hashes, skip unchanged files
//  3. Preprocess & embed: clean, chunk and build embed text per file, then
//     embed the chunk texts in batches (parallel across files)
//  4. Store: write files, chunks and vectors, one transaction per batch
//  5. Cleanup: drop files that no longer exist on disk
//
// Project settings come from .jscontext.toml (see config.LoadProjectConfig).
// Force re-indexes every file regardless of its hash.
//
// # Error Handling
//
// IndexProject only returns an error for failures that stop the run: a
// missing root, no matching files, storage errors or cancellation. A file
// whose embedding fails is reported as a file_error event, counted in
// Statistics.FilesFailed and left out of the index so the next run retries it.
//
// # Concurrency
//
// One run may be active per Indexer; a second call returns
// ErrIndexingInProgress. Progress callbacks are serialized.
package indexer
