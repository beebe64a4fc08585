// Package types provides shared type definitions for the jscontext MCP server.
//
// # Core Types
//
// CodeChunk is the unit that gets embedded and stored. It is produced by the
// preprocessing pipeline from a FileInput under a PreprocessorConfig:
//
//	cfg := types.DefaultPreprocessorConfig()
//	chunks := preprocessor.PreprocessFile(types.FileInput{
//	    Path:    "src/pages/Home.tsx",
//	    Module:  "src",
//	    Content: source,
//	}, cfg)
//
// Every chunk carries a ChunkType tag (function, class, component,
// module_scope, type, style, file) and the file-level Metadata lists.
//
// RerankCandidate is the shape consumed and produced by the hybrid reranker.
// SearchResult is what the searcher returns to callers.
package types
