package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"semgraph/internal/analysis"
	"semgraph/internal/generator"
	"semgraph/internal/git"
	"semgraph/internal/graph"
	"semgraph/internal/index"
	"semgraph/internal/prefs"
	"semgraph/internal/retrieval"
)

var (
	graphFormat        string
	graphIncludeHidden bool
	graphFocus         []string
	graphHops          int
	impactBase         string
)

func init() {
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "json", "Output format: json, mermaid or summary")
	graphCmd.Flags().BoolVar(&graphIncludeHidden, "include-hidden", false, "Keep files on the hidden list")
	graphCmd.Flags().StringSliceVar(&graphFocus, "focus", nil, "Only show files within --hops of these files")
	graphCmd.Flags().IntVar(&graphHops, "hops", retrieval.DefaultConfig().MaxHops, "Neighborhood radius used with --focus")

	impactCmd.Flags().StringVar(&impactBase, "git", "", "Take changed files from git diff against this ref")
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the file dependency graph",
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
		g, err := analyzer.BuildGraph()
		if err != nil {
			return err
		}

		important, hidden := a.prefs()
		if !graphIncludeHidden {
			ids, err := prefs.InitDefaultHidden(hidden, g.Nodes)
			if err != nil {
				a.logger.Warn("could not save default hidden list", "error", err)
			}
			hiddenSet := make(map[string]bool, len(ids))
			for _, id := range ids {
				hiddenSet[id] = true
			}
			g = g.Filter(func(n graph.Node) bool { return !hiddenSet[n.ID] })
		}
		if len(graphFocus) > 0 {
			sub := retrieval.ExtractNeighborhood(g, graphFocus, retrieval.Config{MaxHops: graphHops})
			g = sub.Graph(g)
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(graphFormat) {
		case "json":
			return writeJSON(out, g)
		case "summary":
			return writeJSON(out, g.Summarize())
		case "mermaid":
			m := &generator.MermaidGenerator{Direction: "LR"}
			_, err := fmt.Fprint(out, m.Generate(g, important.AsSet()))
			return err
		default:
			return fmt.Errorf("unknown format %q", graphFormat)
		}
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details <path>",
	Short: "List the functions and classes of one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		analyzer, err := a.analyzer()
		if err != nil {
			return err
		}
		details, err := analyzer.FileDetails(args[0])
		if errors.Is(err, index.ErrFileNotFound) {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), details)
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <path>...",
	Short: "Render file paths as a tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), generator.FormatAsTree(args))
		return err
	},
}

var pathCmd = &cobra.Command{
	Use:   "path <start> <end>",
	Short: "Find how two files are connected through other files",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		analyzer, err := a.analyzer()
		if err != nil {
			return err
		}
		g, err := analyzer.BuildGraph()
		if err != nil {
			return err
		}

		start, end := args[0], args[1]
		adj := g.Adjacency()
		out := cmd.OutOrStdout()
		if adj[start][end] {
			_, err := fmt.Fprintf(out, "%s → %s (direct)\n", start, end)
			return err
		}

		intermediaries := make(map[string]bool, len(g.Nodes))
		for _, n := range g.Nodes {
			if n.ID != start && n.ID != end {
				intermediaries[n.ID] = true
			}
		}
		via := retrieval.FindIndirectPath(start, end, adj, intermediaries)
		if len(via) == 0 {
			_, err := fmt.Fprintln(out, "No indirect path.")
			return err
		}
		hops := append(append([]string{start}, via...), end)
		_, err = fmt.Fprintln(out, strings.Join(hops, " → "))
		return err
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact [path]...",
	Short: "List the files that depend on the given or changed files",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		changed := args
		if impactBase != "" {
			changes, err := git.ChangedFiles(cmd.Context(), a.root, impactBase)
			if err != nil {
				return err
			}
			changed = append(changed, git.Paths(changes)...)
		}
		if len(changed) == 0 {
			return errors.New("no files given; pass paths or --git <ref>")
		}

		analyzer, err := a.analyzer()
		if err != nil {
			return err
		}
		g, err := analyzer.BuildGraph()
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), analysis.Impact(g, changed))
	},
}
