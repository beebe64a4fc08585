// Package mcp implements the Model Context Protocol (MCP) server for
// jscontext.
//
// The server exposes four tools to AI coding assistants:
//   - index_codebase: index a front-end project for search
//   - search_code: hybrid search over an indexed project
//   - get_status: indexing status and statistics
//   - preprocess_file: show the chunks of one file without storing them
//
// MCP is JSON-RPC 2.0 over stdio. Logs therefore go to stderr only.
//
// # Tool: index_codebase
//
//	{"name": "index_codebase", "arguments": {"path": "/work/web", "force_reindex": false}}
//
// Files are selected by the project's .jscontext.toml (or the defaults) and
// unchanged files are skipped unless force_reindex is set. When the client
// supplies a progress token, indexing events are sent as
// notifications/progress.
//
// # Tool: search_code
//
//	{
//	  "name": "search_code",
//	  "arguments": {
//	    "path": "/work/web",
//	    "query": "科目列表从哪里获取",
//	    "limit": 8,
//	    "search_mode": "hybrid",
//	    "filters": {"chunk_types": ["function"], "modules": ["src"], "file_pattern": "src/api/**"}
//	  }
//	}
//
// Results carry the file path, line range, chunk type, names, content and
// the relevance, vector and BM25 scores.
//
// # Errors
//
// Failures are returned as MCPError with JSON-RPC codes:
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32001  path has no files with an indexed extension
//	-32002  indexing already in progress
//	-32003  project not indexed
//	-32004  empty query
package mcp
