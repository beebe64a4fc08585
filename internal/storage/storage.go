package storage

import (
	"context"
	"time"

	"github.com/dshills/jscontext-mcp/pkg/types"
)

// Storage defines the interface for persisting and querying indexed chunks
type Storage interface {
	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, rootPath string) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error

	// File operations
	UpsertFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, projectID int64, filePath string) (*File, error)
	DeleteFile(ctx context.Context, fileID int64) error
	ListFiles(ctx context.Context, projectID int64) ([]*File, error)

	// Chunk operations
	InsertChunk(ctx context.Context, chunk *Chunk) error
	ListChunksByFile(ctx context.Context, fileID int64) ([]*Chunk, error)
	DeleteChunksByFile(ctx context.Context, fileID int64) error
	GetChunkRecords(ctx context.Context, chunkIDs []int64) (map[int64]*ChunkRecord, error)

	// Embedding operations
	UpsertEmbedding(ctx context.Context, embedding *Embedding) error
	GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error)

	// Search operations
	SearchVector(ctx context.Context, projectID int64, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error)
	SearchText(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error)

	// Status operations
	GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage
}

// Project represents an indexed front-end codebase
type Project struct {
	ID            int64
	RootPath      string
	Name          string
	TotalFiles    int
	TotalChunks   int
	IndexVersion  string
	EmbedProvider string
	EmbedModel    string
	LastRunID     string
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// File represents a tracked source file
type File struct {
	ID            int64
	ProjectID     int64
	FilePath      string // Relative to project root, forward slashes
	Module        string
	SubModule     string
	ContentHash   [32]byte
	SizeBytes     int64
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Chunk is a stored preprocessed chunk. Metadata lists are file-level.
type Chunk struct {
	ID         int64
	FileID     int64
	ChunkKey   string // {file_path}#chunk_{index}
	ChunkIndex int
	Content    string
	EmbedText  string
	ChunkType  types.ChunkType
	Names      string
	StartLine  int
	EndLine    int
	TokenCount int

	Functions  []string
	Classes    []string
	Components []string
	Exports    []string
	Imports    []string
	Types      []string

	CreatedAt time.Time
}

// ChunkRecord is a chunk joined with the file it belongs to
type ChunkRecord struct {
	Chunk
	FilePath  string
	Module    string
	SubModule string
}

// Embedding represents a vector embedding for a chunk
type Embedding struct {
	ID        int64
	ChunkID   int64
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	CreatedAt time.Time
}

// SearchFilters narrows vector and text search results
type SearchFilters struct {
	ChunkTypes   []string // Filter by chunk type tag
	Modules      []string // Filter by top-level module
	FilePattern  string   // Doublestar glob over file paths
	MinRelevance float64  // Minimum relevance score
}

// VectorResult represents a result from vector similarity search
type VectorResult struct {
	ChunkID         int64
	SimilarityScore float64
}

// TextResult represents a result from full-text search
type TextResult struct {
	ChunkID   int64
	BM25Score float64
}

// ProjectStatus contains statistics about an indexed project
type ProjectStatus struct {
	Project         *Project
	FilesCount      int
	ChunksCount     int
	EmbeddingsCount int
	ChunkTypes      map[string]int
	IndexSizeMB     float64
	Health          HealthStatus
}

// HealthStatus represents the health of the index
type HealthStatus struct {
	DatabaseAccessible  bool
	EmbeddingsAvailable bool
	FTSIndexesBuilt     bool
}

// ChunkFromCode converts a preprocessed chunk into its stored form
func ChunkFromCode(fileID int64, c types.CodeChunk) *Chunk {
	return &Chunk{
		FileID:     fileID,
		ChunkKey:   c.ChunkID,
		ChunkIndex: c.Index,
		Content:    c.Content,
		EmbedText:  c.EmbedText,
		ChunkType:  c.ChunkType,
		Names:      c.Names,
		StartLine:  c.StartLine,
		EndLine:    c.EndLine,
		TokenCount: c.TokenCount,
		Functions:  c.Functions,
		Classes:    c.Classes,
		Components: c.Components,
		Exports:    c.Exports,
		Imports:    c.Imports,
		Types:      c.Types,
	}
}

// CodeChunk rebuilds the pipeline record for a stored chunk
func (r *ChunkRecord) CodeChunk() types.CodeChunk {
	return types.CodeChunk{
		ChunkID:    r.ChunkKey,
		Index:      r.ChunkIndex,
		Content:    r.Content,
		ChunkType:  r.ChunkType,
		Names:      r.Names,
		EmbedText:  r.EmbedText,
		TokenCount: r.TokenCount,
		StartLine:  r.StartLine,
		EndLine:    r.EndLine,
		FilePath:   r.FilePath,
		Module:     r.Module,
		SubModule:  r.SubModule,
		Functions:  r.Functions,
		Classes:    r.Classes,
		Components: r.Components,
		Exports:    r.Exports,
		Imports:    r.Imports,
		Types:      r.Types,
	}
}
