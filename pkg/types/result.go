package types

// RerankCandidate is a retrieved chunk awaiting (or after) hybrid reranking.
// Score holds the similarity on input and the hybrid score on output.
type RerankCandidate struct {
	Path    string  `json:"path"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`

	// Set by the reranker
	VectorScore float64 `json:"vector_score"`
	BM25Score   float64 `json:"bm25_score"`

	// Pass-through fields, untouched by the reranker
	ChunkID   string    `json:"chunk_id,omitempty"`
	ChunkType ChunkType `json:"chunk_type,omitempty"`
	Names     string    `json:"names,omitempty"`
	Module    string    `json:"module,omitempty"`
	StartLine int       `json:"start_line,omitempty"`
	EndLine   int       `json:"end_line,omitempty"`
}

// SearchResult is a single ranked search hit
type SearchResult struct {
	Rank int `json:"rank"` // Position in result set (1-based)

	// Scoring
	RelevanceScore float64 `json:"relevance_score"`
	VectorScore    float64 `json:"vector_score"`
	BM25Score      float64 `json:"bm25_score"`

	ChunkID   string    `json:"chunk_id"`
	FilePath  string    `json:"file_path"`
	Module    string    `json:"module,omitempty"`
	ChunkType ChunkType `json:"chunk_type"`
	Names     string    `json:"names,omitempty"`
	StartLine int       `json:"start_line"`
	EndLine   int       `json:"end_line"`
	Content   string    `json:"content"`
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if sr.ChunkID == "" {
		return ErrInvalidChunkID
	}
	if sr.Rank < 1 {
		return ErrInvalidRank
	}
	if sr.RelevanceScore < 0 || sr.RelevanceScore > 1 {
		return ErrInvalidRelevanceScore
	}
	if sr.FilePath == "" {
		return ErrMissingFilePath
	}
	if sr.Content == "" {
		return ErrEmptyContent
	}
	return nil
}
