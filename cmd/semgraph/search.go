package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"semgraph/internal/crawler"
	"semgraph/internal/knowledge"
	"semgraph/internal/server"
)

var (
	searchGlob   string
	contextGlob  string
	contextLimit int
)

func init() {
	searchCmd.Flags().StringVarP(&searchGlob, "glob", "g", "", "Only keep files matching this pattern")
	contextCmd.Flags().StringVarP(&contextGlob, "glob", "g", "", "Only keep files matching this pattern")
	contextCmd.Flags().IntVarP(&contextLimit, "limit", "n", 0, "Max files to report (default from config)")
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed new and changed files into the search index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		return runIndex(cmd, a)
	},
}

func runIndex(cmd *cobra.Command, a *app) error {
	engine, store, err := a.openEngine(cmd.Context(), a.root)
	if err != nil {
		return err
	}
	defer store.Close()

	c := crawler.NewCrawler(a.cfg.ExcludeSet(), knowledge.Indexable).WithLogger(a.logger)
	if a.cfg.Project.RespectGitignore {
		if c, err = c.WithGitignore(a.root); err != nil {
			return err
		}
	}
	abs, err := c.ListFiles(a.root)
	if err != nil {
		return err
	}
	files := make([]string, 0, len(abs))
	for _, p := range abs {
		if rel, err := filepath.Rel(a.root, p); err == nil {
			files = append(files, filepath.ToSlash(rel))
		}
	}

	stats, err := engine.Sync(cmd.Context(), a.root, files)
	if err != nil {
		return err
	}
	total, err := store.ChunkCount(cmd.Context())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files (%d chunks), %d unchanged, %d removed, %d failed; %d chunks stored\n",
		stats.Indexed, stats.Chunks, stats.Unchanged, stats.Deleted, stats.Failed, total)
	return err
}

// pinnedServer answers tool calls for the configured root.
func pinnedServer(a *app) *server.Server {
	return server.NewServer(a.cfg, nil, a.openRanker, a.logger).WithRepo(a.root)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantic search over the indexed files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		out, err := pinnedServer(a).Semsearch(cmd.Context(), server.SemsearchArgs{Query: args[0], Glob: searchGlob})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

var contextCmd = &cobra.Command{
	Use:   "context <query>",
	Short: "Semantic search with dependency graph context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		limit := contextLimit
		if limit <= 0 {
			limit = a.cfg.Search.Limit
		}
		out, err := pinnedServer(a).Semgraph(cmd.Context(), server.SemgraphArgs{Query: args[0], Glob: contextGlob, Limit: limit})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}
