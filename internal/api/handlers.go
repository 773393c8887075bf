package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"semgraph/internal/graph"
	"semgraph/internal/index"
	"semgraph/internal/prefs"
)

// NodeView is a graph node annotated with the preference lists.
type NodeView struct {
	graph.Node
	Important bool `json:"important"`
	Hidden    bool `json:"hidden"`
}

type GraphView struct {
	Nodes []NodeView   `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

type SearchRequest struct {
	Query    string `json:"query" binding:"required"`
	Semantic *bool  `json:"semantic"`
}

type SearchResult struct {
	Path  string  `json:"path"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type ToggleRequest struct {
	Path      string `json:"path" binding:"required"`
	Important *bool  `json:"important"`
	Hidden    *bool  `json:"hidden"`
}

// annotate builds the view of g, keeping only nodes accepted by keep and the
// edges between them.
func annotate(g *graph.Graph, important, hidden map[string]bool, keep func(NodeView) bool) GraphView {
	view := GraphView{Nodes: []NodeView{}, Edges: []graph.Edge{}}
	kept := make(map[string]bool)
	for _, n := range g.Nodes {
		nv := NodeView{Node: n, Important: important[n.ID], Hidden: hidden[n.ID]}
		if !keep(nv) {
			continue
		}
		kept[n.ID] = true
		view.Nodes = append(view.Nodes, nv)
	}
	for _, e := range g.Edges {
		if kept[e.Source] && kept[e.Target] {
			view.Edges = append(view.Edges, e)
		}
	}
	return view
}

func (s *Server) handleGraph(c *gin.Context) {
	includeHidden, _ := strconv.ParseBool(c.DefaultQuery("include_hidden", "false"))

	g, err := s.analyzer.BuildGraph()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	hiddenIDs, err := prefs.InitDefaultHidden(s.hidden, g.Nodes)
	if err != nil {
		s.logger.Warn("could not save default hidden list", "error", err)
		hiddenIDs = s.hidden.Load()
	}
	hidden := toSet(hiddenIDs)

	view := annotate(g, s.important.AsSet(), hidden, func(n NodeView) bool {
		return includeHidden || !n.Hidden
	})
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleHiddenGraph(c *gin.Context) {
	g, err := s.analyzer.BuildGraph()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	view := annotate(g, s.important.AsSet(), s.hidden.AsSet(), func(n NodeView) bool {
		return n.Hidden
	})
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleFile(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	details, err := s.analyzer.FileDetails(path)
	if errors.Is(err, index.ErrFileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "File not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, details)
}

// handleSearch maps ranked hits onto visible nodes. Without a ranker, or
// when it finds nothing, nodes whose path contains the query match instead.
func (s *Server) handleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	semantic := req.Semantic == nil || *req.Semantic

	g, err := s.analyzer.BuildGraph()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	hidden := s.hidden.AsSet()

	var results []SearchResult
	if semantic && s.ranker != nil {
		hits, err := s.ranker.Search(c.Request.Context(), req.Query, maxSearchResults)
		if err != nil {
			s.logger.Debug("ranked search failed, using text match", "error", err)
		}
		seen := make(map[string]bool)
		for _, h := range hits {
			if h.FilePath == "" || seen[h.FilePath] || hidden[h.FilePath] {
				continue
			}
			seen[h.FilePath] = true
			if n, ok := g.Node(h.FilePath); ok {
				results = append(results, SearchResult{Path: n.ID, Label: n.Label, Score: 0.9})
			}
		}
	}

	if len(results) == 0 {
		q := strings.ToLower(req.Query)
		for _, n := range g.Nodes {
			if hidden[n.ID] {
				continue
			}
			label := strings.ToLower(n.Label)
			if !strings.Contains(strings.ToLower(n.ID), q) && !strings.Contains(label, q) {
				continue
			}
			score := 0.7
			if label == q {
				score = 1.0
			}
			results = append(results, SearchResult{Path: n.ID, Label: n.Label, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	if results == nil {
		results = []SearchResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func listHandler(store *prefs.ListStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"nodes": store.Load()})
	}
}

// toggleHandler flips membership of a path. field names the boolean in the
// request body.
func toggleHandler(store *prefs.ListStore, field string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ToggleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		flag := req.Important
		if field == "hidden" {
			flag = req.Hidden
		}
		if flag == nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "missing field: " + field})
			return
		}

		nodes, err := store.Set(req.Path, *flag)
		if err != nil {
			logger.Error("saving preference list failed", "list", field, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "nodes": nodes})
	}
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
