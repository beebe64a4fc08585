package types

import "errors"

// Domain errors for type validation
var (
	// Chunk errors
	ErrInvalidChunkID   = errors.New("invalid chunk ID")
	ErrInvalidChunkType = errors.New("invalid chunk type")
	ErrInvalidLineRange = errors.New("start line must be before or equal to end line")
	ErrMissingFilePath  = errors.New("file path is required")

	// Config errors
	ErrInvalidStrategy = errors.New("invalid chunk strategy")

	// Search result errors
	ErrInvalidRank           = errors.New("rank must be >= 1")
	ErrInvalidRelevanceScore = errors.New("relevance score must be between 0 and 1")
	ErrEmptyContent          = errors.New("content cannot be empty")
)
