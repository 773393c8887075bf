package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"semgraph/internal/generator"
	"semgraph/internal/index"
	"semgraph/internal/knowledge"
	"semgraph/internal/prefs"
	"semgraph/internal/retrieval"
)

type SemsearchArgs struct {
	Query string `json:"query" jsonschema:"Natural language query, in English"`
	Glob  string `json:"glob,omitempty" jsonschema:"Optional glob pattern to filter files, e.g. *.md"`
}

type SemgraphArgs struct {
	Query string `json:"query" jsonschema:"Natural language query, in English"`
	Glob  string `json:"glob,omitempty" jsonschema:"Optional glob pattern to filter files"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max files to return (default 10)"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "semsearch",
		Description: "Semantic search across the codebase. Returns a tree of matching files, " +
			"the most relevant files, and their best snippets with line ranges. " +
			"Use the glob argument to narrow results, e.g. '*.md' for documentation. " +
			"The query must be written in English.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SemsearchArgs) (*mcp.CallToolResult, any, error) {
		text, err := s.Semsearch(ctx, args)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "semgraph",
		Description: "Semantic search with dependency graph context. For each matching file returns " +
			"imports, importers, indirect connections with the files in between, code structure " +
			"with docstrings, unused symbols, and whether the file is marked important. " +
			"The query must be written in English.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SemgraphArgs) (*mcp.CallToolResult, any, error) {
		text, err := s.Semgraph(ctx, args)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return textResult(text), nil, nil
	})
}

// search resolves the current repository and runs the ranked query.
func (s *Server) search(ctx context.Context, query, glob string) (string, []knowledge.Hit, error) {
	if query == "" {
		return "", nil, errors.New("query is required")
	}
	repo := s.repo
	if repo == "" {
		var err error
		if repo, err = s.settings.CurrentContext(); err != nil {
			return "", nil, err
		}
	}

	ranker, closer, err := s.openRanker(ctx, repo)
	if err != nil {
		return "", nil, fmt.Errorf("%w. Please run init and index first", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	hits, err := ranker.Search(ctx, query, searchCandidates)
	if err != nil {
		return "", nil, fmt.Errorf("search failed: %w", err)
	}
	return repo, filterHits(hits, glob), nil
}

// Semsearch renders ranked hits grouped by file.
func (s *Server) Semsearch(ctx context.Context, args SemsearchArgs) (string, error) {
	_, hits, err := s.search(ctx, args.Query, args.Glob)
	if err != nil {
		return "", err
	}
	return generator.SearchReport(hits, reportFiles), nil
}

// Semgraph renders the dependency context of the best matching files.
func (s *Server) Semgraph(ctx context.Context, args SemgraphArgs) (string, error) {
	repo, hits, err := s.search(ctx, args.Query, args.Glob)
	if err != nil {
		return "", err
	}
	limit := args.Limit
	if limit <= 0 {
		limit = reportFiles
	}
	files := generator.GroupHits(hits, limit)
	if len(files) == 0 {
		return generator.ContextReport(args.Query, nil, nil), nil
	}

	analyzer, err := index.NewAnalyzer(repo, index.Options{
		Exclude:          s.cfg.ExcludeSet(),
		RespectGitignore: s.cfg.Project.RespectGitignore,
		Logger:           s.logger,
	})
	if err != nil {
		return "", err
	}
	g, err := analyzer.BuildGraph()
	if err != nil {
		return "", err
	}

	important, _ := prefs.ForRepo(repo, s.cfg.Project.StateDir, s.logger)
	importantSet := important.AsSet()

	contexts := retrieval.BuildContexts(g, files, importantSet)
	reports := make([]generator.FileReport, 0, len(contexts))
	for _, fc := range contexts {
		report := generator.FileReport{FileContext: fc}
		if details, err := analyzer.FileDetails(fc.Path); err == nil {
			report.Items = details.Items
		}
		reports = append(reports, report)
	}
	return generator.ContextReport(args.Query, reports, importantSet), nil
}
