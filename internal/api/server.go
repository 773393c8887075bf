package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"semgraph/internal/index"
	"semgraph/internal/knowledge"
	"semgraph/internal/logging"
	"semgraph/internal/prefs"
)

const maxSearchResults = 20

// Server exposes the dependency graph and preference lists over HTTP.
type Server struct {
	analyzer  *index.Analyzer
	ranker    knowledge.Ranker
	important *prefs.ListStore
	hidden    *prefs.ListStore
	logger    *slog.Logger
}

// NewServer wires the handlers. ranker may be nil, in which case search
// only matches on paths.
func NewServer(a *index.Analyzer, ranker knowledge.Ranker, important, hidden *prefs.ListStore, logger *slog.Logger) *Server {
	return &Server{
		analyzer:  a,
		ranker:    ranker,
		important: important,
		hidden:    hidden,
		logger:    logging.OrDefault(logger),
	}
}

// Router returns the gin engine serving every route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		needsAnalyzer := api.Group("", s.requireAnalyzer())
		needsAnalyzer.GET("/graph", s.handleGraph)
		needsAnalyzer.GET("/graph/hidden", s.handleHiddenGraph)
		needsAnalyzer.GET("/file/*path", s.handleFile)
		needsAnalyzer.POST("/search", s.handleSearch)

		api.GET("/important", listHandler(s.important))
		api.POST("/important", toggleHandler(s.important, "important", s.logger))
		api.GET("/hidden", listHandler(s.hidden))
		api.POST("/hidden", toggleHandler(s.hidden, "hidden", s.logger))
	}
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requireAnalyzer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.analyzer == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "Analyzer not initialized"})
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
