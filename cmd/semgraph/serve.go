package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"semgraph/internal/api"
	"semgraph/internal/knowledge"
	"semgraph/internal/prefs"
	"semgraph/internal/server"
)

var (
	serveAddr string
	initIndex bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	initCmd.Flags().BoolVar(&initIndex, "index", false, "Also build the search index")
}

func settings(a *app) (*prefs.Settings, error) {
	path, err := prefs.DefaultSettingsPath()
	if err != nil {
		return nil, err
	}
	return prefs.NewSettings(path, a.logger), nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Make the repository the current context",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		s, err := settings(a)
		if err != nil {
			return err
		}
		if err := s.UpdateContext(a.root); err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Context set to %s (%s)\n", a.root, s.Path())

		changed, err := prefs.EnsureGitignore(a.root, a.cfg.Project.StateDir)
		if err != nil {
			return fmt.Errorf("update .gitignore: %w", err)
		}
		if changed {
			fmt.Fprintf(out, "Added %s to .gitignore\n", a.cfg.Project.StateDir)
		}

		if initIndex {
			return runIndex(cmd, a)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the graph API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		analyzer, err := a.analyzer()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var ranker knowledge.Ranker
		engine, store, err := a.openEngine(ctx, a.root)
		if err != nil {
			a.logger.Warn("semantic search disabled", "error", err)
		} else {
			defer store.Close()
			ranker = engine
		}

		addr := serveAddr
		if addr == "" {
			addr = a.cfg.Server.Addr
		}
		important, hidden := a.prefs()
		return api.NewServer(analyzer, ranker, important, hidden, a.logger).Run(ctx, addr)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		s, err := settings(a)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.NewServer(a.cfg, s, a.openRanker, a.logger).Run(ctx)
	},
}
