package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semgraph/internal/config"
	"semgraph/internal/index"
	"semgraph/internal/knowledge"
	"semgraph/internal/logging"
	"semgraph/internal/prefs"
)

type stubRanker struct {
	hits []knowledge.Hit
	err  error
}

func (s *stubRanker) Search(ctx context.Context, query string, limit int) ([]knowledge.Hit, error) {
	return s.hits, s.err
}

type testEnv struct {
	root      string
	router    *gin.Engine
	important *prefs.ListStore
	hidden    *prefs.ListStore
}

func newTestEnv(t *testing.T, ranker knowledge.Ranker) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	files := map[string]string{
		"pkg/__init__.py": "",
		"pkg/core.py":     "from pkg import helpers\n\ndef run():\n    pass\n",
		"pkg/helpers.py":  "def assist():\n    pass\n",
		"main.py":         "import pkg.core\n",
	}
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	a, err := index.NewAnalyzer(root, index.Options{Exclude: config.DefaultConfig().ExcludeSet(), Logger: logging.Discard()})
	require.NoError(t, err)
	important, hidden := prefs.ForRepo(root, ".semgraph", logging.Discard())

	srv := NewServer(a, ranker, important, hidden, logging.Discard())
	return &testEnv{root: root, router: srv.Router(), important: important, hidden: hidden}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func nodeIDs(view GraphView) []string {
	var ids []string
	for _, n := range view.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGraphEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("package markers are hidden by default", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/graph", nil)
		require.Equal(t, http.StatusOK, w.Code)
		view := decode[GraphView](t, w)
		assert.ElementsMatch(t, []string{"main.py", "pkg/core.py", "pkg/helpers.py"}, nodeIDs(view))
		for _, e := range view.Edges {
			assert.NotEqual(t, "pkg/__init__.py", e.Target)
		}
		assert.Equal(t, []string{"pkg/__init__.py"}, env.hidden.Load())
	})

	t.Run("include_hidden returns everything annotated", func(t *testing.T) {
		_, err := env.important.Set("pkg/core.py", true)
		require.NoError(t, err)

		w := env.do(t, http.MethodGet, "/api/graph?include_hidden=true", nil)
		view := decode[GraphView](t, w)
		require.Len(t, view.Nodes, 4)
		for _, n := range view.Nodes {
			assert.Equal(t, n.ID == "pkg/__init__.py", n.Hidden, n.ID)
			assert.Equal(t, n.ID == "pkg/core.py", n.Important, n.ID)
		}
	})

	t.Run("hidden graph has only hidden nodes", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/graph/hidden", nil)
		view := decode[GraphView](t, w)
		assert.Equal(t, []string{"pkg/__init__.py"}, nodeIDs(view))
		assert.Empty(t, view.Edges)
	})
}

func TestFileEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/file/pkg/helpers.py", nil)
	require.Equal(t, http.StatusOK, w.Code)
	details := decode[index.FileDetails](t, w)
	assert.Equal(t, "pkg/helpers.py", details.Path)
	require.Len(t, details.Items, 1)
	assert.True(t, details.Items[0].Unused)

	w = env.do(t, http.MethodGet, "/api/file/pkg/nope.py", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"File not found"}`, w.Body.String())
}

func TestSearchEndpoint(t *testing.T) {
	type response struct {
		Results []SearchResult `json:"results"`
	}

	t.Run("text match scores exact labels higher", func(t *testing.T) {
		env := newTestEnv(t, nil)
		w := env.do(t, http.MethodPost, "/api/search", gin.H{"query": "core.py"})
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[response](t, w)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "pkg/core.py", res.Results[0].Path)
		assert.Equal(t, 1.0, res.Results[0].Score)

		w = env.do(t, http.MethodPost, "/api/search", gin.H{"query": "pkg"})
		res = decode[response](t, w)
		for _, r := range res.Results {
			assert.Equal(t, 0.7, r.Score)
		}
	})

	t.Run("ranked hits map to nodes", func(t *testing.T) {
		env := newTestEnv(t, &stubRanker{hits: []knowledge.Hit{
			{FilePath: "pkg/helpers.py"}, {FilePath: "pkg/helpers.py"}, {FilePath: "docs/notes.md"},
		}})
		w := env.do(t, http.MethodPost, "/api/search", gin.H{"query": "assist"})
		res := decode[response](t, w)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "pkg/helpers.py", res.Results[0].Path)
		assert.Equal(t, 0.9, res.Results[0].Score)
	})

	t.Run("ranker failure falls back to text", func(t *testing.T) {
		env := newTestEnv(t, &stubRanker{err: errors.New("offline")})
		w := env.do(t, http.MethodPost, "/api/search", gin.H{"query": "main"})
		res := decode[response](t, w)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "main.py", res.Results[0].Path)
	})

	t.Run("semantic false skips the ranker", func(t *testing.T) {
		env := newTestEnv(t, &stubRanker{hits: []knowledge.Hit{{FilePath: "pkg/helpers.py"}}})
		w := env.do(t, http.MethodPost, "/api/search", gin.H{"query": "main", "semantic": false})
		res := decode[response](t, w)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "main.py", res.Results[0].Path)
	})

	t.Run("missing query is rejected", func(t *testing.T) {
		env := newTestEnv(t, nil)
		w := env.do(t, http.MethodPost, "/api/search", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPreferenceEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/important", gin.H{"path": "main.py", "important": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"nodes":["main.py"]}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/important", nil)
	assert.JSONEq(t, `{"nodes":["main.py"]}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/hidden", gin.H{"path": "pkg/core.py", "hidden": true})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/hidden", gin.H{"path": "pkg/core.py", "hidden": false})
	assert.JSONEq(t, `{"success":true,"nodes":[]}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/hidden", gin.H{"path": "pkg/core.py"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNoAnalyzer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	important, hidden := prefs.ForRepo(t.TempDir(), ".semgraph", logging.Discard())
	router := NewServer(nil, nil, important, hidden, logging.Discard()).Router()

	req := httptest.NewRequest(http.MethodGet, "/api/graph", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
