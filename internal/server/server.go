package server

import (
	"context"
	"io"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"semgraph/internal/config"
	"semgraph/internal/knowledge"
	"semgraph/internal/logging"
	"semgraph/internal/prefs"
)

const (
	serverName    = "semgraph"
	serverVersion = "0.1.0"

	searchCandidates = 50
	reportFiles      = 10
)

// RankerFactory opens the ranking oracle of a repository. The returned
// closer is released after each tool call.
type RankerFactory func(ctx context.Context, repo string) (knowledge.Ranker, io.Closer, error)

// Server answers MCP tool calls against the repository recorded in the
// user settings.
type Server struct {
	mcpServer  *mcp.Server
	cfg        *config.Config
	settings   *prefs.Settings
	openRanker RankerFactory
	logger     *slog.Logger
	// repo, when set, replaces the settings lookup.
	repo string
}

func NewServer(cfg *config.Config, settings *prefs.Settings, open RankerFactory, logger *slog.Logger) *Server {
	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		}, nil),
		cfg:        cfg,
		settings:   settings,
		openRanker: open,
		logger:     logging.OrDefault(logger),
	}
	s.registerTools()
	return s
}

// WithRepo pins every call to root instead of the recorded context.
func (s *Server) WithRepo(root string) *Server {
	s.repo = root
	return s
}

// Run serves over stdio until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + text}},
		IsError: true,
	}
}
