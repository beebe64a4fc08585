package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/jscontext-mcp/internal/config"
	"github.com/dshills/jscontext-mcp/internal/indexer"
	"github.com/dshills/jscontext-mcp/internal/logger"
	"github.com/dshills/jscontext-mcp/internal/preprocessor"
	"github.com/dshills/jscontext-mcp/internal/searcher"
	"github.com/dshills/jscontext-mcp/internal/storage"
	"github.com/dshills/jscontext-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeProjectNotFound    = -32001 // Path contains no files with an indexed extension
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed         = -32003 // Project not indexed
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
)

// handleIndexCodebase handles the index_codebase tool invocation
func (s *Server) handleIndexCodebase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, projectCfg, err := s.projectArg(args)
	if err != nil {
		return nil, err
	}

	cfg := indexer.DefaultConfig()
	cfg.Project = projectCfg
	cfg.Force = getBoolDefault(args, "force_reindex", false)
	cfg.Workers = s.cfg.Workers

	log := logger.FromContext(ctx).With("tool", "index_codebase", "path", path)
	ctx = logger.ContextWithLogger(ctx, log)

	progress := s.progressReporter(ctx, request)
	stats, err := s.indexer.IndexProject(ctx, path, cfg, progress)
	switch {
	case errors.Is(err, indexer.ErrIndexingInProgress):
		return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", map[string]interface{}{
			"path": path,
		})
	case errors.Is(err, indexer.ErrNoSourceFiles):
		return nil, newMCPError(ErrorCodeProjectNotFound, "no source files to index", map[string]interface{}{
			"path":       path,
			"extensions": projectCfg.Extensions,
		})
	case err != nil:
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if project, err := s.storage.GetProject(ctx, path); err == nil {
		s.searcher.InvalidateProject(project.ID)
	}

	response := map[string]interface{}{
		"indexed":            true,
		"run_id":             stats.RunID,
		"files_scanned":      stats.FilesScanned,
		"files_indexed":      stats.FilesIndexed,
		"files_skipped":      stats.FilesSkipped,
		"files_failed":       stats.FilesFailed,
		"files_removed":      stats.FilesRemoved,
		"chunks_created":     stats.ChunksCreated,
		"embeddings_created": stats.EmbeddingsCreated,
		"duration_ms":        stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// progressReporter logs indexing events and, when the client sent a
// progress token, forwards them as progress notifications
func (s *Server) progressReporter(ctx context.Context, request mcp.CallToolRequest) indexer.ProgressFunc {
	log := logger.FromContext(ctx)

	var token mcp.ProgressToken
	if request.Params.Meta != nil {
		token = request.Params.Meta.ProgressToken
	}
	srv := server.ServerFromContext(ctx)

	return func(ev indexer.Event) {
		switch ev.Type {
		case indexer.EventFileError:
			log.Warn("file failed", "file", ev.File, "error", ev.Message)
		case indexer.EventIndexing:
			log.Debug("file indexed", "file", ev.File, "current", ev.Current, "total", ev.Total)
		default:
			log.Info(string(ev.Type), "message", ev.Message, "current", ev.Current, "total", ev.Total)
		}

		if token == nil || srv == nil {
			return
		}
		params := map[string]any{
			"progressToken": token,
			"progress":      ev.Current,
			"message":       fmt.Sprintf("%s: %s", ev.Type, ev.Message),
		}
		if ev.Total > 0 {
			params["total"] = ev.Total
		}
		if err := srv.SendNotificationToClient(ctx, "notifications/progress", params); err != nil {
			log.Debug("progress notification dropped", "error", err)
		}
	}
}

// handleSearchCode handles the search_code tool invocation
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	path, _, err := s.projectArg(args)
	if err != nil {
		return nil, err
	}

	limit := getIntDefault(args, "limit", 0)
	if _, set := args["limit"]; set && (limit < 1 || limit > searcher.MaxLimit) {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	searchMode := getStringDefault(args, "search_mode", string(searcher.SearchModeHybrid))
	switch searcher.SearchMode(searchMode) {
	case searcher.SearchModeHybrid, searcher.SearchModeVector, searcher.SearchModeKeyword:
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid search_mode", map[string]interface{}{
			"param":   "search_mode",
			"value":   searchMode,
			"allowed": []string{"hybrid", "vector", "keyword"},
		})
	}

	filters, err := parseFilters(args)
	if err != nil {
		return nil, err
	}

	req := searcher.SearchRequest{
		ProjectPath: path,
		Query:       query,
		Limit:       limit,
		Mode:        searcher.SearchMode(searchMode),
		Filters:     filters,
		UseCache:    true,
	}
	if rr, ok := args["rerank"].(bool); ok {
		req.Rerank = &rr
	}

	resp, err := s.searcher.Search(ctx, req)
	switch {
	case errors.Is(err, searcher.ErrNotIndexed):
		return nil, newMCPError(ErrorCodeNotIndexed, "project not indexed", map[string]interface{}{
			"path": path,
			"hint": "use the index_codebase tool first",
		})
	case errors.Is(err, searcher.ErrEmptyQuery):
		return nil, newMCPError(ErrorCodeEmptyQuery, "query cannot be empty", nil)
	case errors.Is(err, searcher.ErrNoEmbedder), errors.Is(err, searcher.ErrUnsupportedMode):
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{
			"param": "search_mode",
		})
	case err != nil:
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"query":          query,
		"search_mode":    resp.SearchMode,
		"reranked":       resp.Reranked,
		"total_results":  resp.TotalResults,
		"vector_results": resp.VectorResults,
		"text_results":   resp.TextResults,
		"cache_hit":      resp.CacheHit,
		"duration_ms":    resp.Duration.Milliseconds(),
		"results":        resp.Results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// parseFilters converts the filters argument into storage filters
func parseFilters(args map[string]interface{}) (*storage.SearchFilters, error) {
	raw, ok := args["filters"].(map[string]interface{})
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	filters := &storage.SearchFilters{
		ChunkTypes:  getStringSlice(raw, "chunk_types"),
		Modules:     getStringSlice(raw, "modules"),
		FilePattern: getStringDefault(raw, "file_pattern", ""),
	}
	for _, ct := range filters.ChunkTypes {
		if !types.ChunkType(ct).Valid() {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunk type", map[string]interface{}{
				"param": "filters.chunk_types",
				"value": ct,
			})
		}
	}
	if v, ok := raw["min_relevance"].(float64); ok {
		if v < 0 || v > 1 {
			return nil, newMCPError(ErrorCodeInvalidParams, "min_relevance must be between 0 and 1", map[string]interface{}{
				"param": "filters.min_relevance",
				"value": v,
			})
		}
		filters.MinRelevance = v
	}
	return filters, nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	project, err := s.storage.GetProject(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"indexed": false,
			"path":    path,
			"message": "Project not indexed. Use index_codebase tool to index this project.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get project status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	status, err := s.storage.GetStatus(ctx, project.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(statusResponse(status))), nil
}

// statusResponse renders a project status for tool and CLI output
func statusResponse(status *storage.ProjectStatus) map[string]interface{} {
	project := status.Project
	lastIndexed := ""
	if !project.LastIndexedAt.IsZero() {
		lastIndexed = project.LastIndexedAt.Format(time.RFC3339)
	}

	return map[string]interface{}{
		"indexed": true,
		"project": map[string]interface{}{
			"path":            project.RootPath,
			"name":            project.Name,
			"index_version":   project.IndexVersion,
			"embed_provider":  project.EmbedProvider,
			"embed_model":     project.EmbedModel,
			"last_run_id":     project.LastRunID,
			"last_indexed_at": lastIndexed,
		},
		"statistics": map[string]interface{}{
			"files_count":      status.FilesCount,
			"chunks_count":     status.ChunksCount,
			"embeddings_count": status.EmbeddingsCount,
			"chunk_types":      status.ChunkTypes,
			"index_size_mb":    fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible":  status.Health.DatabaseAccessible,
			"embeddings_available": status.Health.EmbeddingsAvailable,
			"fts_indexes_built":    status.Health.FTSIndexesBuilt,
		},
	}
}

// StatusJSON renders a project status the way get_status does
func StatusJSON(status *storage.ProjectStatus) string {
	return formatJSON(statusResponse(status))
}

// handlePreprocessFile handles the preprocess_file tool invocation
func (s *Server) handlePreprocessFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, projectCfg, err := s.projectArg(args)
	if err != nil {
		return nil, err
	}

	file, ok := args["file"].(string)
	if !ok || file == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file parameter is required", map[string]interface{}{
			"param":  "file",
			"reason": "missing or empty",
		})
	}

	src, err := indexer.ReadSourceFile(path, file, projectCfg)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid file", map[string]interface{}{
			"param":  "file",
			"reason": err.Error(),
		})
	}

	chunks := preprocessor.PreprocessFile(src.FileInput, projectCfg.Preprocessor)
	response := map[string]interface{}{
		"file":        src.Path,
		"module":      src.Module,
		"sub_module":  src.SubModule,
		"chunk_count": len(chunks),
		"chunks":      chunks,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// projectArg validates the path argument and loads its project config
func (s *Server) projectArg(args map[string]interface{}) (string, config.ProjectConfig, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", config.ProjectConfig{}, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	path = filepath.Clean(path)

	projectCfg, err := config.LoadProjectConfig(path)
	if err != nil {
		return "", config.ProjectConfig{}, newMCPError(ErrorCodeInvalidParams, "invalid project config", map[string]interface{}{
			"file":   config.ProjectFileName,
			"reason": err.Error(),
		})
	}

	if err := validatePath(path, projectCfg); err != nil {
		code := ErrorCodeInvalidParams
		if errors.Is(err, ErrNoSourceFiles) {
			code = ErrorCodeProjectNotFound
		}
		return "", config.ProjectConfig{}, newMCPError(code, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}
	return path, projectCfg, nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that path is an absolute, readable directory holding
// at least one file the project config would index
func validatePath(path string, cfg config.ProjectConfig) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	found := false
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != path && cfg.IgnoresDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if cfg.HasExtension(filepath.Ext(p)) {
			found = true
			return fs.SkipAll
		}
		return nil
	})

	if !found {
		return ErrNoSourceFiles
	}
	return nil
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter, skipping non-strings
func getStringSlice(args map[string]interface{}, key string) []string {
	switch val := args[key].(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, v := range val {
			if s, ok := v.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNoSourceFiles   = errors.New("directory does not contain files with an indexed extension")
)
