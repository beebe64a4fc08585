package types

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

// ChunkType tags what kind of declaration a chunk represents
type ChunkType string

const (
	ChunkImports     ChunkType = "imports"
	ChunkFunction    ChunkType = "function"
	ChunkClass       ChunkType = "class"
	ChunkComponent   ChunkType = "component"
	ChunkModuleScope ChunkType = "module_scope"
	ChunkTypeDecl    ChunkType = "type"
	ChunkStyle       ChunkType = "style"
	ChunkFile        ChunkType = "file"
)

// Valid reports whether t is one of the known chunk type tags
func (t ChunkType) Valid() bool {
	switch t {
	case ChunkImports, ChunkFunction, ChunkClass, ChunkComponent,
		ChunkModuleScope, ChunkTypeDecl, ChunkStyle, ChunkFile:
		return true
	default:
		return false
	}
}

// FileInput is a single source file handed to the preprocessing pipeline
type FileInput struct {
	Path      string // Relative to project root, forward slashes
	Module    string
	SubModule string
	Content   string
}

// RawBlock is a boundary-aligned fragment produced by the chunker before
// truncation. Lines are 1-based and inclusive.
type RawBlock struct {
	Content   string
	Type      ChunkType
	StartLine int
	EndLine   int
	Name      string
}

// Metadata holds the symbol lists extracted from a file. Lists are never nil.
type Metadata struct {
	Functions  []string
	Classes    []string
	Components []string
	Imports    []string
	Exports    []string
	Types      []string
}

// EmptyMetadata returns metadata with every list allocated and empty
func EmptyMetadata() Metadata {
	return Metadata{
		Functions:  []string{},
		Classes:    []string{},
		Components: []string{},
		Imports:    []string{},
		Exports:    []string{},
		Types:      []string{},
	}
}

// CodeChunk is one preprocessed, size-bounded fragment of a source file,
// ready to be embedded and stored.
type CodeChunk struct {
	// Identification
	ChunkID string `json:"chunk_id"` // {file_path}#chunk_{index}
	Index   int    `json:"index"`

	// Content
	Content   string    `json:"content"`
	ChunkType ChunkType `json:"chunk_type"`
	Names     string    `json:"names,omitempty"`
	EmbedText string    `json:"embed_text"`

	// TokenCount is an estimate of EmbedText length in model tokens
	TokenCount int `json:"token_count"`

	// Location
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	FilePath  string `json:"file_path"`
	Module    string `json:"module"`
	SubModule string `json:"sub_module"`

	// File-level metadata, identical for every chunk of a file
	Functions  []string `json:"functions"`
	Classes    []string `json:"classes"`
	Components []string `json:"components"`
	Exports    []string `json:"exports"`
	Imports    []string `json:"imports"`
	Types      []string `json:"types"`
}

// ChunkID formats the identifier of the index-th chunk of a file
func ChunkID(filePath string, index int) string {
	return fmt.Sprintf("%s#chunk_%d", filePath, index)
}

// Validate checks the structural invariants of a chunk
func (c *CodeChunk) Validate() error {
	if c.ChunkID == "" {
		return ErrInvalidChunkID
	}
	if c.FilePath == "" {
		return ErrMissingFilePath
	}
	if !c.ChunkType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidChunkType, c.ChunkType)
	}
	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}
	if c.StartLine > c.EndLine {
		return ErrInvalidLineRange
	}
	return nil
}

// ContentHash computes the SHA-256 hash of the chunk content
func (c *CodeChunk) ContentHash() [32]byte {
	return sha256.Sum256([]byte(c.Content))
}
