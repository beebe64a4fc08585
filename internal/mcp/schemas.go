package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// chunkTypeNames lists the chunk type tags accepted by filters
var chunkTypeNames = []string{"imports", "function", "class", "component", "module_scope", "type", "style", "file"}

// indexCodebaseTool returns the tool definition for index_codebase
func indexCodebaseTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_codebase",
		Description: "Index a JavaScript/TypeScript front-end codebase to make it searchable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root (must contain .js/.jsx/.ts/.tsx/.vue/.css/.less/.scss files, or the extensions set in .jscontext.toml)",
				},
				"force_reindex": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-index all files ignoring file hashes (full rebuild)",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchCodeTool returns the tool definition for search_code
func searchCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_code",
		Description: "Search an indexed codebase with natural language (any language, including Chinese) or keyword queries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the indexed project",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or identifiers)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100). Defaults to the rerank top N, or top K when reranking is off",
					"minimum":     1,
					"maximum":     100,
				},
				"rerank": map[string]interface{}{
					"type":        "boolean",
					"description": "Blend retrieval scores with BM25 keyword scores before cutting to limit (default from server config)",
				},
				"filters": map[string]interface{}{
					"type":        "object",
					"description": "Optional filters to narrow search",
					"properties": map[string]interface{}{
						"chunk_types": map[string]interface{}{
							"type":        "array",
							"description": "Filter by chunk type",
							"items": map[string]interface{}{
								"type": "string",
								"enum": chunkTypeNames,
							},
						},
						"file_pattern": map[string]interface{}{
							"type":        "string",
							"description": "Glob pattern for file paths (e.g., 'src/pages/**')",
						},
						"modules": map[string]interface{}{
							"type":        "array",
							"description": "Filter by module (first directory under the project root)",
							"items": map[string]interface{}{
								"type": "string",
							},
						},
						"min_relevance": map[string]interface{}{
							"type":        "number",
							"description": "Minimum retrieval score threshold (0.0-1.0)",
							"minimum":     0.0,
							"maximum":     1.0,
						},
					},
				},
				"search_mode": map[string]interface{}{
					"type":        "string",
					"description": "Search strategy: hybrid (vector + keyword), vector (semantic only), or keyword (BM25 only)",
					"enum":        []string{"hybrid", "vector", "keyword"},
					"default":     "hybrid",
				},
			},
			Required: []string{"path", "query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing status and statistics for a project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project",
				},
			},
			Required: []string{"path"},
		},
	}
}

// preprocessFileTool returns the tool definition for preprocess_file
func preprocessFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "preprocess_file",
		Description: "Show the chunks one file would be indexed as, without storing anything",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root",
				},
				"file": map[string]interface{}{
					"type":        "string",
					"description": "File to preprocess, relative to the project root or absolute",
				},
			},
			Required: []string{"path", "file"},
		},
	}
}
