package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"semgraph/internal/config"
	"semgraph/internal/index"
	"semgraph/internal/knowledge"
	"semgraph/internal/logging"
	"semgraph/internal/prefs"
	"semgraph/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:           "semgraph",
		Short:         "Dependency graph and semantic search for Python and JavaScript repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cfgPath      string
	rootOverride string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultFile, "Path to the config file")
	rootCmd.PersistentFlags().StringVarP(&rootOverride, "root", "r", "", "Repository root (overrides project.root)")

	rootCmd.AddCommand(initCmd, graphCmd, detailsCmd, treeCmd, pathCmd, impactCmd)
	rootCmd.AddCommand(indexCmd, searchCmd, contextCmd, serveCmd, mcpCmd)
}

// app holds what every command needs: config, absolute root and logger.
type app struct {
	cfg    *config.Config
	root   string
	logger *slog.Logger
}

func loadApp() (*app, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	root := cfg.Project.Root
	if rootOverride != "" {
		root = rootOverride
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		root:   abs,
		logger: logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format),
	}, nil
}

func (a *app) analyzer() (*index.Analyzer, error) {
	return index.NewAnalyzer(a.root, index.Options{
		Exclude:          a.cfg.ExcludeSet(),
		RespectGitignore: a.cfg.Project.RespectGitignore,
		Logger:           a.logger,
	})
}

func (a *app) prefs() (important, hidden *prefs.ListStore) {
	return prefs.ForRepo(a.root, a.cfg.Project.StateDir, a.logger)
}

// storePath places a relative storage path inside repo's state dir.
func (a *app) storePath(repo string) string {
	if filepath.IsAbs(a.cfg.Storage.Path) {
		return a.cfg.Storage.Path
	}
	return filepath.Join(repo, a.cfg.Project.StateDir, a.cfg.Storage.Path)
}

// openEngine builds the configured embedder over the store of repo.
func (a *app) openEngine(ctx context.Context, repo string) (*knowledge.Engine, storage.Store, error) {
	em, err := knowledge.NewEmbedder(ctx, knowledge.EmbedderOptions{
		Provider:  a.cfg.AI.Provider,
		APIKey:    a.cfg.AI.APIKey,
		Model:     a.cfg.AI.Model,
		Dimension: a.cfg.AI.Dimension,
		BaseURL:   a.cfg.AI.BaseURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	store, err := storage.Open(a.storePath(repo))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open index: %w", err)
	}
	return knowledge.NewEngine(em, store, a.logger), store, nil
}

func (a *app) openRanker(ctx context.Context, repo string) (knowledge.Ranker, io.Closer, error) {
	engine, store, err := a.openEngine(ctx, repo)
	if err != nil {
		return nil, nil, err
	}
	return engine, store, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
