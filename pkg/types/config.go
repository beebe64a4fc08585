package types

import "fmt"

// Chunk strategies
const (
	StrategySemantic = "semantic"
	StrategyNone     = "none"
)

// PreprocessorConfig controls every stage of the preprocessing pipeline.
// It is passed by value and never mutated by the pipeline.
type PreprocessorConfig struct {
	// Cleaner stages
	RemoveComments        bool `toml:"remove_comments" json:"remove_comments"`
	RemoveDebugStatements bool `toml:"remove_debug_statements" json:"remove_debug_statements"`
	RemoveLintDirectives  bool `toml:"remove_eslint_comments" json:"remove_eslint_comments"`
	NormalizeWhitespace   bool `toml:"normalize_whitespace" json:"normalize_whitespace"`

	// Chunking
	ChunkStrategy     string `toml:"chunk_strategy" json:"chunk_strategy"`
	ChunkMaxChars     int    `toml:"chunk_max_chars" json:"chunk_max_chars"`
	ChunkMinChars     int    `toml:"chunk_min_chars" json:"chunk_min_chars"`
	ChunkOverlapLines int    `toml:"chunk_overlap_lines" json:"chunk_overlap_lines"`

	// Truncation bound applied to every emitted chunk
	MaxChunkChars int `toml:"max_chunk_chars" json:"max_chunk_chars"`

	ExtractMetadata bool `toml:"extract_metadata" json:"extract_metadata"`
}

// DefaultPreprocessorConfig returns the configuration used when a project
// does not override anything.
func DefaultPreprocessorConfig() PreprocessorConfig {
	return PreprocessorConfig{
		RemoveComments:        true,
		RemoveDebugStatements: true,
		RemoveLintDirectives:  true,
		NormalizeWhitespace:   true,
		ChunkStrategy:         StrategySemantic,
		ChunkMaxChars:         1500,
		ChunkMinChars:         200,
		ChunkOverlapLines:     3,
		MaxChunkChars:         2000,
		ExtractMetadata:       true,
	}
}

// Validate checks the configuration for values the pipeline cannot work with.
// The pipeline itself does not call this; loaders do.
func (c PreprocessorConfig) Validate() error {
	if c.ChunkStrategy != StrategySemantic && c.ChunkStrategy != StrategyNone {
		return fmt.Errorf("%w: %q", ErrInvalidStrategy, c.ChunkStrategy)
	}
	if c.ChunkMaxChars <= 0 || c.MaxChunkChars <= 0 {
		return fmt.Errorf("chunk_max_chars and max_chunk_chars must be positive")
	}
	if c.ChunkMinChars < 0 || c.ChunkMinChars > c.ChunkMaxChars {
		return fmt.Errorf("chunk_min_chars must be between 0 and chunk_max_chars")
	}
	if c.ChunkOverlapLines < 0 || c.ChunkOverlapLines >= 50 {
		return fmt.Errorf("chunk_overlap_lines must be between 0 and 49")
	}
	return nil
}
