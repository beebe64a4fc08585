// Package preprocessor turns one source file into embeddable chunk records.
//
// The pipeline is strictly sequential per file:
//
//	raw content ──> cleaner ──> chunker ──> Truncate ──> BuildEmbedText
//	raw content ──> metadata extractor ──────────────────────┘
//
// PreprocessFile is pure: it does no I/O and holds no state between calls,
// so callers may fan out across files freely.
//
//	chunks := preprocessor.PreprocessFile(types.FileInput{
//	    Path:    "src/api/subject.js",
//	    Module:  "src",
//	    Content: source,
//	}, types.DefaultPreprocessorConfig())
package preprocessor

import (
	"path"
	"strings"

	"github.com/dshills/jscontext-mcp/internal/chunker"
	"github.com/dshills/jscontext-mcp/internal/cleaner"
	"github.com/dshills/jscontext-mcp/internal/metadata"
	"github.com/dshills/jscontext-mcp/pkg/types"
)

// PreprocessFile cleans, chunks and annotates a single file. Chunks are
// returned in emission order; their IDs are {path}#chunk_{index}.
func PreprocessFile(file types.FileInput, config types.PreprocessorConfig) []types.CodeChunk {
	ext := strings.ToLower(path.Ext(file.Path))

	cleaned := cleaner.New(config).Clean(file.Content, ext)
	md := metadata.New(config).Extract(file.Content)
	blocks := chunker.New(config).Chunk(cleaned, ext)

	chunks := make([]types.CodeChunk, 0, len(blocks))
	for i, block := range blocks {
		chunk := types.CodeChunk{
			ChunkID:    types.ChunkID(file.Path, i),
			Index:      i,
			Content:    Truncate(block.Content, config.MaxChunkChars),
			ChunkType:  block.Type,
			Names:      block.Name,
			StartLine:  block.StartLine,
			EndLine:    block.EndLine,
			FilePath:   file.Path,
			Module:     file.Module,
			SubModule:  file.SubModule,
			Functions:  md.Functions,
			Classes:    md.Classes,
			Components: md.Components,
			Exports:    md.Exports,
			Imports:    md.Imports,
			Types:      md.Types,
		}
		chunk.EmbedText = BuildEmbedText(chunk)
		chunk.TokenCount = EstimateTokens(chunk.EmbedText)
		chunks = append(chunks, chunk)
	}
	return chunks
}

// EstimateTokens approximates a token count as one token per four bytes
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
