package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/jscontext-mcp/internal/config"
	"github.com/dshills/jscontext-mcp/internal/embedder"
	"github.com/dshills/jscontext-mcp/internal/indexer"
	"github.com/dshills/jscontext-mcp/internal/logger"
	"github.com/dshills/jscontext-mcp/internal/rerank"
	"github.com/dshills/jscontext-mcp/internal/searcher"
	"github.com/dshills/jscontext-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "jscontext-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	storage  storage.Storage
	embedder embedder.Embedder
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
}

// NewServer opens the database and embedding provider named by cfg and
// creates a server that owns both
func NewServer(cfg *config.Config) (*Server, error) {
	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	emb, err := embedder.New(cfg)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	s, err := NewServerWith(cfg, store, emb)
	if err != nil {
		_ = emb.Close()
		_ = store.Close()
		return nil, err
	}
	return s, nil
}

// NewServerWith creates a server over existing components. The embedder is
// shared by the indexer and the searcher so the embedding cache serves both.
// emb may be nil, which limits search to keywords.
func NewServerWith(cfg *config.Config, store storage.Storage, emb embedder.Embedder) (*Server, error) {
	idxOpts := []indexer.Option{indexer.WithWorkers(cfg.Workers)}
	if cfg.Tiktoken {
		tc, err := embedder.NewTokenCounter(cfg.EmbedModel)
		if err != nil {
			logger.GetDefault().Warn("tiktoken unavailable, keeping estimated token counts", "error", err)
		} else {
			idxOpts = append(idxOpts, indexer.WithTokenCounter(tc))
		}
	}
	idx := indexer.New(store, emb, idxOpts...)

	srch, err := searcher.NewSearcher(store, emb, SearchOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize searcher: %w", err)
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		cfg:      cfg,
		storage:  store,
		embedder: emb,
		indexer:  idx,
		searcher: srch,
	}
	s.registerTools()
	return s, nil
}

// SearchOptions maps process configuration onto searcher options
func SearchOptions(cfg *config.Config) searcher.Options {
	return searcher.Options{
		TopK:          cfg.TopK,
		RerankEnabled: cfg.RerankEnabled,
		Rerank: rerank.Options{
			TopN:         cfg.RerankTopN,
			VectorWeight: cfg.VectorWeight,
			BM25Weight:   cfg.BM25Weight,
		},
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	}
}

// Indexer exposes the server's indexer to the CLI
func (s *Server) Indexer() *indexer.Indexer { return s.indexer }

// Searcher exposes the server's searcher to the CLI
func (s *Server) Searcher() *searcher.Searcher { return s.searcher }

// Storage exposes the server's store to the CLI
func (s *Server) Storage() storage.Storage { return s.storage }

// Serve runs the MCP server on stdio until the client disconnects or ctx
// is cancelled
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// Close releases the embedder and the database
func (s *Server) Close() error {
	var errs []error
	if s.embedder != nil {
		errs = append(errs, s.embedder.Close())
	}
	errs = append(errs, s.storage.Close())
	return errors.Join(errs...)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(indexCodebaseTool(), s.handleIndexCodebase)
	s.mcp.AddTool(searchCodeTool(), s.handleSearchCode)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	s.mcp.AddTool(preprocessFileTool(), s.handlePreprocessFile)
}
