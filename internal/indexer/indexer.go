package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/jscontext-mcp/internal/config"
	"github.com/dshills/jscontext-mcp/internal/embedder"
	"github.com/dshills/jscontext-mcp/internal/logger"
	"github.com/dshills/jscontext-mcp/internal/preprocessor"
	"github.com/dshills/jscontext-mcp/internal/storage"
	"github.com/dshills/jscontext-mcp/pkg/types"
)

var (
	// ErrIndexingInProgress is returned when another run holds the index lock
	ErrIndexingInProgress = errors.New("indexing already in progress")
	// ErrNoSourceFiles is returned when a scan finds nothing to index
	ErrNoSourceFiles = errors.New("no matching source files found")
)

// Indexer coordinates the indexing pipeline: scan -> preprocess -> embed -> store
type Indexer struct {
	storage  storage.Storage
	embedder embedder.Embedder // nil stores chunks without vectors
	tokens   *embedder.TokenCounter

	lock    IndexLock
	workers int
}

// Option configures an Indexer
type Option func(*Indexer)

// WithWorkers sets the default number of files preprocessed and embedded concurrently
func WithWorkers(n int) Option {
	return func(idx *Indexer) {
		if n > 0 {
			idx.workers = n
		}
	}
}

// WithTokenCounter makes the indexer recount chunk tokens with a model tokenizer
func WithTokenCounter(tc *embedder.TokenCounter) Option {
	return func(idx *Indexer) {
		idx.tokens = tc
	}
}

// Config contains configuration for one indexing run
type Config struct {
	Project        config.ProjectConfig
	Force          bool // Re-index files whose content hash is unchanged
	Workers        int  // Concurrent files (default: indexer workers)
	BatchSize      int  // Files committed per transaction (default: 20)
	EmbedBatchSize int  // Texts per embedding request (default: embedder.DefaultBatchSize)
}

// DefaultConfig returns a run configuration using the project defaults
func DefaultConfig() *Config {
	return &Config{
		Project:   config.DefaultProjectConfig(),
		BatchSize: 20,
	}
}

// EventType names a stage of an indexing run
type EventType string

const (
	EventScanStart     EventType = "scan_start"
	EventScanComplete  EventType = "scan_complete"
	EventPreprocessing EventType = "preprocessing"
	EventIndexing      EventType = "indexing"
	EventFileError     EventType = "file_error"
	EventSaving        EventType = "saving"
	EventComplete      EventType = "complete"
	EventError         EventType = "error"
)

// Event reports progress of an indexing run
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message,omitempty"`
	Current int       `json:"current,omitempty"`
	Total   int       `json:"total,omitempty"`
	File    string    `json:"file,omitempty"`
	RunID   string    `json:"run_id"`
}

// ProgressFunc receives events in order. It is never called concurrently.
type ProgressFunc func(Event)

// Statistics contains statistics about the indexing operation
type Statistics struct {
	RunID             string        `json:"run_id"`
	FilesScanned      int           `json:"files_scanned"`
	FilesIndexed      int           `json:"files_indexed"`
	FilesSkipped      int           `json:"files_skipped"`
	FilesFailed       int           `json:"files_failed"`
	FilesRemoved      int           `json:"files_removed"`
	ChunksCreated     int           `json:"chunks_created"`
	EmbeddingsCreated int           `json:"embeddings_created"`
	Duration          time.Duration `json:"duration_ns"`
	ErrorMessages     []string      `json:"errors,omitempty"`
}

// New creates a new Indexer. emb may be nil, in which case only keyword
// search is available for the indexed chunks.
func New(store storage.Storage, emb embedder.Embedder, opts ...Option) *Indexer {
	idx := &Indexer{
		storage:  store,
		embedder: emb,
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// run carries the state of one IndexProject call
type run struct {
	id       string
	progress ProgressFunc
	mu       sync.Mutex
	stats    *Statistics
}

func (r *run) emit(ev Event) {
	if r.progress == nil {
		return
	}
	ev.RunID = r.id
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress(ev)
}

func (r *run) fail(file string, err error) {
	r.stats.FilesFailed++
	r.stats.ErrorMessages = append(r.stats.ErrorMessages, fmt.Sprintf("%s: %v", file, err))
	r.emit(Event{Type: EventFileError, File: file, Message: err.Error()})
}

// prepared is one preprocessed, embedded file awaiting storage
type prepared struct {
	file    SourceFile
	chunks  []types.CodeChunk
	vectors [][]float32
	err     error
}

// IndexProject indexes every matching file under rootPath. Only one run may
// be active per Indexer.
func (idx *Indexer) IndexProject(ctx context.Context, rootPath string, cfg *Config, progress ProgressFunc) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrIndexingInProgress
	}
	defer idx.lock.Release()

	if cfg == nil {
		cfg = DefaultConfig()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = idx.workers
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}

	startTime := time.Now()
	r := &run{
		id:       uuid.NewString(),
		progress: progress,
		stats:    &Statistics{ErrorMessages: make([]string, 0)},
	}
	r.stats.RunID = r.id
	log := logger.FromContext(ctx).With("run_id", r.id, "root", rootPath)

	stats, err := idx.indexProject(ctx, r, rootPath, cfg, workers, batchSize)
	if err != nil {
		log.Error("indexing failed", "error", err)
		r.emit(Event{Type: EventError, Message: err.Error()})
		return nil, err
	}

	stats.Duration = time.Since(startTime)
	log.Info("indexing complete",
		"indexed", stats.FilesIndexed, "skipped", stats.FilesSkipped,
		"failed", stats.FilesFailed, "removed", stats.FilesRemoved,
		"chunks", stats.ChunksCreated, "duration", stats.Duration)
	r.emit(Event{
		Type:    EventComplete,
		Message: fmt.Sprintf("indexed %d files, %d chunks", stats.FilesIndexed, stats.ChunksCreated),
		Current: stats.FilesScanned,
		Total:   stats.FilesScanned,
	})
	return stats, nil
}

func (idx *Indexer) indexProject(ctx context.Context, r *run, rootPath string, cfg *Config, workers, batchSize int) (*Statistics, error) {
	stats := r.stats

	r.emit(Event{Type: EventScanStart, Message: "scanning source directory"})
	files, err := ScanFiles(rootPath, cfg.Project)
	if err != nil {
		return nil, fmt.Errorf("failed to scan files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoSourceFiles
	}
	stats.FilesScanned = len(files)
	r.emit(Event{Type: EventScanComplete, Total: len(files)})

	project, err := idx.getOrCreateProject(ctx, rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create project: %w", err)
	}

	existing, err := idx.storage.ListFiles(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed files: %w", err)
	}
	known := make(map[string]*storage.File, len(existing))
	for _, f := range existing {
		known[f.FilePath] = f
	}

	pending := make([]SourceFile, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[f.Path] = true
		if old, ok := known[f.Path]; ok && !cfg.Force && old.ContentHash == f.Hash {
			stats.FilesSkipped++
			continue
		}
		pending = append(pending, f)
	}

	r.emit(Event{Type: EventPreprocessing, Total: len(pending),
		Message: fmt.Sprintf("preprocessing %d files (%d unchanged)", len(pending), stats.FilesSkipped)})

	var done atomic.Int32
	for start := 0; start < len(pending); start += batchSize {
		end := min(start+batchSize, len(pending))
		batch, err := idx.prepareBatch(ctx, r, pending[start:end], cfg, workers, &done, len(pending))
		if err != nil {
			return nil, err
		}

		r.emit(Event{Type: EventSaving, Current: end, Total: len(pending),
			Message: fmt.Sprintf("saving %d files", len(batch))})
		if err := idx.storeBatch(ctx, r, project, batch); err != nil {
			return nil, err
		}
	}

	var removed []*storage.File
	for path, f := range known {
		if !seen[path] {
			removed = append(removed, f)
		}
	}
	if err := idx.removeFiles(ctx, removed); err != nil {
		return nil, err
	}
	stats.FilesRemoved = len(removed)

	if err := idx.updateProjectStats(ctx, project, r.id); err != nil {
		return nil, fmt.Errorf("failed to update project stats: %w", err)
	}
	return stats, nil
}

// prepareBatch preprocesses and embeds files concurrently. Per-file failures
// are carried in the result; only cancellation aborts the batch.
func (idx *Indexer) prepareBatch(ctx context.Context, r *run, files []SourceFile, cfg *Config,
	workers int, done *atomic.Int32, total int) ([]prepared, error) {

	results := make([]prepared, len(files))
	semaphore := make(chan struct{}, workers)
	g, gctx := errgroup.WithContext(ctx)

	for i := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[i] = idx.prepareFile(gctx, files[i], cfg)
			if err := gctx.Err(); err != nil {
				return err
			}
			r.emit(Event{Type: EventIndexing, File: files[i].Path, Current: int(done.Add(1)), Total: total})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (idx *Indexer) prepareFile(ctx context.Context, file SourceFile, cfg *Config) prepared {
	p := prepared{file: file}
	p.chunks = preprocessor.PreprocessFile(file.FileInput, cfg.Project.Preprocessor)

	if idx.tokens != nil {
		for i := range p.chunks {
			p.chunks[i].TokenCount = idx.tokens.Count(p.chunks[i].EmbedText)
		}
	}

	if idx.embedder == nil || len(p.chunks) == 0 {
		return p
	}

	texts := make([]string, len(p.chunks))
	for i, c := range p.chunks {
		texts[i] = c.EmbedText
	}
	vectors, err := embedder.EmbedTexts(ctx, idx.embedder, texts, cfg.EmbedBatchSize)
	if err != nil {
		p.err = fmt.Errorf("embedding failed: %w", err)
		return p
	}
	p.vectors = vectors
	return p
}

// storeBatch writes one batch of files in a single transaction
func (idx *Indexer) storeBatch(ctx context.Context, r *run, project *storage.Project, batch []prepared) error {
	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var indexed, chunks, embeddings int
	for _, p := range batch {
		if p.err != nil {
			r.fail(p.file.Path, p.err)
			continue
		}
		if err := idx.storeFile(ctx, tx, project, p); err != nil {
			return fmt.Errorf("failed to store %s: %w", p.file.Path, err)
		}
		indexed++
		chunks += len(p.chunks)
		embeddings += len(p.vectors)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.stats.FilesIndexed += indexed
	r.stats.ChunksCreated += chunks
	r.stats.EmbeddingsCreated += embeddings
	return nil
}

func (idx *Indexer) storeFile(ctx context.Context, tx storage.Tx, project *storage.Project, p prepared) error {
	file := &storage.File{
		ProjectID:   project.ID,
		FilePath:    p.file.Path,
		Module:      p.file.Module,
		SubModule:   p.file.SubModule,
		ContentHash: p.file.Hash,
		SizeBytes:   p.file.Size,
	}
	if err := tx.UpsertFile(ctx, file); err != nil {
		return err
	}

	// Replace the previous chunk set; embeddings and FTS rows cascade
	if err := tx.DeleteChunksByFile(ctx, file.ID); err != nil {
		return err
	}

	for i, c := range p.chunks {
		row := storage.ChunkFromCode(file.ID, c)
		if err := tx.InsertChunk(ctx, row); err != nil {
			return err
		}
		if i >= len(p.vectors) {
			continue
		}
		emb := &storage.Embedding{
			ChunkID:  row.ID,
			Vector:   p.vectors[i],
			Provider: idx.embedder.Provider(),
			Model:    idx.embedder.Model(),
		}
		if err := tx.UpsertEmbedding(ctx, emb); err != nil {
			return err
		}
	}
	return nil
}

// removeFiles drops index entries for files no longer on disk
func (idx *Indexer) removeFiles(ctx context.Context, files []*storage.File) error {
	if len(files) == 0 {
		return nil
	}
	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range files {
		if err := tx.DeleteFile(ctx, f.ID); err != nil {
			return fmt.Errorf("failed to remove %s: %w", f.FilePath, err)
		}
	}
	return tx.Commit()
}

// getOrCreateProject retrieves an existing project or creates a new one
func (idx *Indexer) getOrCreateProject(ctx context.Context, rootPath string) (*storage.Project, error) {
	project, err := idx.storage.GetProject(ctx, rootPath)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	project = &storage.Project{
		RootPath:     rootPath,
		Name:         filepath.Base(rootPath),
		IndexVersion: storage.CurrentSchemaVersion,
	}
	if err := idx.storage.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// updateProjectStats records totals and the run on the project row
func (idx *Indexer) updateProjectStats(ctx context.Context, project *storage.Project, runID string) error {
	status, err := idx.storage.GetStatus(ctx, project.ID)
	if err != nil {
		return err
	}

	project.TotalFiles = status.FilesCount
	project.TotalChunks = status.ChunksCount
	project.IndexVersion = storage.CurrentSchemaVersion
	project.LastRunID = runID
	project.LastIndexedAt = time.Now()
	if idx.embedder != nil {
		project.EmbedProvider = idx.embedder.Provider()
		project.EmbedModel = idx.embedder.Model()
	}
	return idx.storage.UpdateProject(ctx, project)
}
