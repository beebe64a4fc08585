package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/jscontext-mcp/internal/config"
	"github.com/dshills/jscontext-mcp/internal/logger"
	"github.com/dshills/jscontext-mcp/internal/mcp"
	"github.com/dshills/jscontext-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logFlags holds the persistent logging flags
type logFlags struct {
	level  string
	json   bool
	source bool
}

func rootCmd() *cobra.Command {
	var logs logFlags

	root := &cobra.Command{
		Use:           "jscontext",
		Short:         "Semantic code search over JavaScript/TypeScript front-end projects",
		Long:          "jscontext indexes front-end codebases and serves hybrid code search to AI assistants over MCP (stdio).",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := logger.SetupLogger(logs.level, logs.json, logs.source); err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
			return nil
		},
		RunE: runServe,
	}

	flags := root.PersistentFlags()
	flags.String("db", "", "database path (overrides JSCONTEXT_DB_PATH)")
	flags.StringVar(&logs.level, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&logs.json, "log-json", false, "emit logs as JSON")
	flags.BoolVar(&logs.source, "log-source", false, "include source location in logs")

	root.AddCommand(
		serveCmd(),
		indexCmd(),
		searchCmd(),
		statusCmd(),
		preprocessCmd(),
		versionCmd(),
	)
	return root
}

// loadConfig reads the environment and applies the --db flag
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}
	return cfg, nil
}

// openServer builds the full component graph from the environment
func openServer(cmd *cobra.Command) (*mcp.Server, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return mcp.NewServer(cfg)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.GetDefault()

	// stdout is reserved for the MCP protocol
	log.Info("jscontext MCP server starting",
		"version", version, "build_mode", storage.BuildMode, "driver", storage.DriverName)

	srv, err := openServer(cmd)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Warn("close failed", "error", err)
		}
	}()

	log.Info("MCP server ready, listening on stdio")
	err = srv.Serve(cmd.Context())
	if err != nil && cmd.Context().Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "jscontext MCP Server\n")
			fmt.Fprintf(out, "Version: %s\n", version)
			fmt.Fprintf(out, "Build Time: %s\n", buildTime)
			fmt.Fprintf(out, "Build Mode: %s\n", storage.BuildMode)
			fmt.Fprintf(out, "SQLite Driver: %s\n", storage.DriverName)
		},
	}
}
