package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/jscontext-mcp/internal/config"
	"github.com/dshills/jscontext-mcp/internal/indexer"
	"github.com/dshills/jscontext-mcp/internal/logger"
	"github.com/dshills/jscontext-mcp/internal/mcp"
	"github.com/dshills/jscontext-mcp/internal/preprocessor"
	"github.com/dshills/jscontext-mcp/internal/searcher"
	"github.com/dshills/jscontext-mcp/internal/storage"
)

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <dir>",
		Short: "Index a project directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")

			projectCfg, err := config.LoadProjectConfig(root)
			if err != nil {
				return err
			}

			srv, err := openServer(cmd)
			if err != nil {
				return err
			}
			defer srv.Close()

			cfg := indexer.DefaultConfig()
			cfg.Project = projectCfg
			cfg.Force = force

			log := logger.GetDefault().With("path", root)
			stats, err := srv.Indexer().IndexProject(cmd.Context(), root, cfg, func(ev indexer.Event) {
				switch ev.Type {
				case indexer.EventFileError:
					log.Warn("file failed", "file", ev.File, "error", ev.Message)
				case indexer.EventIndexing:
					log.Debug("file indexed", "file", ev.File, "current", ev.Current, "total", ev.Total)
				default:
					log.Info(string(ev.Type), "message", ev.Message, "current", ev.Current, "total", ev.Total)
				}
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		},
	}
	cmd.Flags().Bool("force", false, "re-index every file regardless of hashes")
	return cmd
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <dir> <query>",
		Short: "Search an indexed project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			mode, _ := cmd.Flags().GetString("mode")
			noRerank, _ := cmd.Flags().GetBool("no-rerank")

			srv, err := openServer(cmd)
			if err != nil {
				return err
			}
			defer srv.Close()

			req := searcher.SearchRequest{
				ProjectPath: root,
				Query:       args[1],
				Limit:       limit,
				Mode:        searcher.SearchMode(mode),
			}
			if noRerank {
				off := false
				req.Rerank = &off
			}

			resp, err := srv.Searcher().Search(cmd.Context(), req)
			if errors.Is(err, searcher.ErrNotIndexed) {
				return fmt.Errorf("%s is not indexed, run `jscontext index %s` first", root, args[0])
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	cmd.Flags().Int("limit", 0, "maximum number of results (default: rerank top N or top K)")
	cmd.Flags().String("mode", string(searcher.SearchModeHybrid), "search mode: hybrid, vector or keyword")
	cmd.Flags().Bool("no-rerank", false, "disable hybrid reranking")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <dir>",
		Short: "Show indexing status for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			srv, err := openServer(cmd)
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx := cmd.Context()
			project, err := srv.Storage().GetProject(ctx, root)
			if errors.Is(err, storage.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not indexed\n", root)
				return nil
			}
			if err != nil {
				return err
			}
			status, err := srv.Storage().GetStatus(ctx, project.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mcp.StatusJSON(status))
			return nil
		},
	}
}

func preprocessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preprocess <dir> <file>",
		Short: "Print the chunks a file would be indexed as",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			projectCfg, err := config.LoadProjectConfig(root)
			if err != nil {
				return err
			}

			src, err := indexer.ReadSourceFile(root, args[1], projectCfg)
			if err != nil {
				return err
			}
			return printJSON(cmd, preprocessor.PreprocessFile(src.FileInput, projectCfg.Preprocessor))
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
