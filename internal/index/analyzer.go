package index

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"semgraph/internal/analysis"
	"semgraph/internal/crawler"
	"semgraph/internal/extractor"
	"semgraph/internal/graph"
	"semgraph/internal/logging"
	"semgraph/internal/resolver"
)

// ErrFileNotFound is returned by FileDetails for paths that do not name a
// file under the repository root.
var ErrFileNotFound = errors.New("file not found")

type Options struct {
	// Exclude holds directory names pruned during enumeration.
	Exclude map[string]bool
	// RespectGitignore also prunes paths matched by the root .gitignore.
	RespectGitignore bool
	Logger           *slog.Logger
}

// Analyzer builds dependency graphs and file details for one repository.
// Its configuration is fixed at construction; every call re-reads the tree.
type Analyzer struct {
	root      string
	crawler   *crawler.Crawler
	resolver  *resolver.Resolver
	extractor *extractor.Extractor
	logger    *slog.Logger
}

// FileDetails lists the symbols declared in one file.
type FileDetails struct {
	Path     string               `json:"path"`
	Language string               `json:"language,omitempty"`
	Items    []extractor.CodeItem `json:"items"`
	Error    string               `json:"error,omitempty"`
}

// NewAnalyzer discovers the source roots of root once and prepares the
// enumeration and resolution stages.
func NewAnalyzer(root string, opts Options) (*Analyzer, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	logger := logging.OrDefault(opts.Logger)

	c := crawler.NewCrawler(opts.Exclude, extractor.Supported).WithLogger(logger)
	if opts.RespectGitignore {
		if c, err = c.WithGitignore(absRoot); err != nil {
			return nil, fmt.Errorf("load gitignore: %w", err)
		}
	}

	roots, err := resolver.DiscoverSourceRoots(absRoot, opts.Exclude)
	if err != nil {
		logger.Debug("source root discovery failed", "root", absRoot, "error", err)
		roots = resolver.SourceRoots{absRoot}
	}
	res, err := resolver.NewResolver(absRoot, roots)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		root:      absRoot,
		crawler:   c,
		resolver:  res,
		extractor: extractor.NewExtractor(),
		logger:    logger,
	}, nil
}

// Root returns the absolute repository root.
func (a *Analyzer) Root() string { return a.root }

// SourceRoots returns the directories searched for absolute imports.
func (a *Analyzer) SourceRoots() resolver.SourceRoots { return a.resolver.Roots() }

// Files enumerates the analyzable files as root-relative slash paths.
func (a *Analyzer) Files() ([]string, error) {
	abs, err := a.crawler.ListFiles(a.root)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(abs))
	for _, p := range abs {
		if rel, ok := a.rel(p); ok {
			out = append(out, rel)
		}
	}
	return out, nil
}

// BuildGraph enumerates every file, resolves its imports and links the
// results into a fresh graph.
func (a *Analyzer) BuildGraph() (*graph.Graph, error) {
	files, err := a.crawler.ListFiles(a.root)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	type fileImports struct {
		id      string
		family  extractor.Family
		targets []string
	}
	rules := make(map[string]int)
	scanned := make([]fileImports, 0, len(files))

	for _, abs := range files {
		id, ok := a.rel(abs)
		if !ok {
			continue
		}
		raw, err := a.extractor.ImportsFromFile(abs)
		if err != nil {
			a.logger.Debug("skipping unreadable file", "path", id, "error", err)
		}
		scanned = append(scanned, fileImports{
			id:      id,
			family:  extractor.FamilyOf(abs),
			targets: a.resolveAll(abs, raw, rules),
		})
	}

	g := graph.NewGraph()
	for _, f := range scanned {
		g.AddNode(graph.NewNode(f.id, f.family.Language()))
	}
	for _, f := range scanned {
		for _, target := range f.targets {
			if target == f.id || !g.HasNode(target) {
				continue
			}
			g.AddEdge(f.id, target)
		}
	}

	a.logger.Debug("graph built", "nodes", len(g.Nodes), "edges", len(g.Edges), "rules", rules)
	return g, nil
}

// optionalImports is the rules key counting imports guarded by a try block.
const optionalImports = "optional"

// resolveAll maps raw imports to unique root-relative targets in order of
// first appearance. rules counts the deciding rule of each reference, plus
// optional imports under their own key.
func (a *Analyzer) resolveAll(fromAbs string, raw []extractor.RawImport, rules map[string]int) []string {
	var targets []string
	seen := make(map[string]bool)
	for _, imp := range raw {
		if imp.Optional {
			rules[optionalImports]++
		}
		ref := imp.Token
		if imp.Level > 0 {
			path, ok := a.resolver.ResolveRelative(fromAbs, imp.Token, imp.Level)
			if !ok {
				rules[resolver.RuleRelative]++
				continue
			}
			ref = path
		}
		res := a.resolver.Explain(fromAbs, ref)
		rules[res.Rule]++
		if !res.Resolved() || seen[res.Path] {
			continue
		}
		seen[res.Path] = true
		targets = append(targets, res.Path)
	}
	return targets
}

// FileDetails extracts the declarations of the file at rel. Python items
// carry unused flags; a file that fails to parse reports the error with no
// items.
func (a *Analyzer) FileDetails(rel string) (*FileDetails, error) {
	abs, ok := a.abs(rel)
	if !ok {
		return nil, ErrFileNotFound
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return nil, ErrFileNotFound
	}

	details := &FileDetails{Path: rel, Items: []extractor.CodeItem{}}
	family := extractor.FamilyOf(abs)
	if family == extractor.FamilyUnknown {
		return details, nil
	}
	details.Language = family.Language()

	items, err := a.extractor.ItemsFromFile(abs)
	if err != nil {
		details.Error = err.Error()
		return details, nil
	}
	if family == extractor.FamilyPython {
		a.markUnused(abs, items)
	}
	if items != nil {
		details.Items = items
	}
	return details, nil
}

func (a *Analyzer) markUnused(abs string, items []extractor.CodeItem) {
	var names []string
	for _, item := range items {
		names = append(names, item.Name)
		for _, m := range item.Methods {
			names = append(names, m.Name)
		}
	}
	if len(analysis.Candidates(names)) == 0 {
		return
	}

	files, err := a.crawler.ListFiles(a.root)
	if err != nil {
		a.logger.Debug("unused scan skipped", "error", err)
		return
	}
	unused := analysis.FindUnused(names, abs, files)
	for i := range items {
		items[i].Unused = unused[items[i].Name]
		for j := range items[i].Methods {
			items[i].Methods[j].Unused = unused[items[i].Methods[j].Name]
		}
	}
}

// rel converts an absolute path under the root to a slash-separated id.
func (a *Analyzer) rel(abs string) (string, bool) {
	rel, err := filepath.Rel(a.root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// abs converts a root-relative id to an absolute path, refusing ids that
// escape the root.
func (a *Analyzer) abs(rel string) (string, bool) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", false
	}
	abs := filepath.Join(a.root, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	if _, ok := a.rel(abs); !ok {
		return "", false
	}
	return abs, true
}
