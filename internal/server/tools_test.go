package server

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semgraph/internal/config"
	"semgraph/internal/knowledge"
	"semgraph/internal/logging"
	"semgraph/internal/prefs"
)

type stubRanker struct {
	hits []knowledge.Hit
}

func (s *stubRanker) Search(ctx context.Context, query string, limit int) ([]knowledge.Hit, error) {
	return s.hits, nil
}

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return root
}

func newTestServer(t *testing.T, repo string, hits []knowledge.Hit) *Server {
	t.Helper()
	settings := prefs.NewSettings(filepath.Join(t.TempDir(), "settings.json"), logging.Discard())
	if repo != "" {
		require.NoError(t, settings.UpdateContext(repo))
	}
	open := func(ctx context.Context, repo string) (knowledge.Ranker, io.Closer, error) {
		return &stubRanker{hits: hits}, nil, nil
	}
	return NewServer(config.DefaultConfig(), settings, open, logging.Discard())
}

func TestFilterHits(t *testing.T) {
	hits := []knowledge.Hit{{FilePath: "docs/guide.md"}, {FilePath: "app/main.py"}, {FilePath: "README.md"}}

	assert.Len(t, filterHits(hits, ""), 3)

	got := filterHits(hits, "*.md")
	require.Len(t, got, 2)
	assert.Equal(t, "docs/guide.md", got[0].FilePath)
	assert.Equal(t, "README.md", got[1].FilePath)

	assert.Len(t, filterHits(hits, "app/"), 1)
	assert.Len(t, hits, 3)
}

func TestSemsearch(t *testing.T) {
	hits := []knowledge.Hit{
		{FilePath: "app/core.py", StartLine: 1, EndLine: 10, Content: "def run(): ..."},
		{FilePath: "docs/notes.md", StartLine: 4, EndLine: 9, Content: "notes"},
		{FilePath: "app/core.py", StartLine: 20, EndLine: 30, Content: "class Core: ..."},
	}

	t.Run("groups hits by file", func(t *testing.T) {
		s := newTestServer(t, t.TempDir(), hits)
		out, err := s.Semsearch(context.Background(), SemsearchArgs{Query: "run"})
		require.NoError(t, err)
		assert.Contains(t, out, "1. `app/core.py`")
		assert.Contains(t, out, "2. `docs/notes.md`")
		assert.Contains(t, out, "*Lines: 1-10 (Also relevant at: 1-10, 20-30)*")
	})

	t.Run("glob narrows results", func(t *testing.T) {
		s := newTestServer(t, t.TempDir(), hits)
		out, err := s.Semsearch(context.Background(), SemsearchArgs{Query: "run", Glob: "*.md"})
		require.NoError(t, err)
		assert.Contains(t, out, "docs/notes.md")
		assert.NotContains(t, out, "app/core.py")
	})

	t.Run("missing context is an error", func(t *testing.T) {
		s := newTestServer(t, "", hits)
		_, err := s.Semsearch(context.Background(), SemsearchArgs{Query: "run"})
		assert.ErrorIs(t, err, prefs.ErrNoContext)
	})

	t.Run("ranker open failure is reported", func(t *testing.T) {
		s := newTestServer(t, t.TempDir(), hits)
		s.openRanker = func(ctx context.Context, repo string) (knowledge.Ranker, io.Closer, error) {
			return nil, nil, errors.New("index missing")
		}
		_, err := s.Semsearch(context.Background(), SemsearchArgs{Query: "run"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "index missing")
	})
}

func TestSemgraph(t *testing.T) {
	repo := writeRepo(t, map[string]string{
		"app/__init__.py": "",
		"app/api.py":      "from app import service\n\ndef handle():\n    return service.serve()\n",
		"app/service.py":  "from app import store\n\ndef serve():\n    return store.fetch()\n",
		"app/store.py":    "def fetch():\n    \"\"\"Load rows.\"\"\"\n    return []\n\ndef stale():\n    pass\n",
	})
	important, _ := prefs.ForRepo(repo, ".semgraph", logging.Discard())
	_, err := important.Set("app/store.py", true)
	require.NoError(t, err)

	hits := []knowledge.Hit{{FilePath: "app/api.py"}, {FilePath: "app/store.py"}, {FilePath: "app/api.py"}}
	s := newTestServer(t, repo, hits)

	out, err := s.Semgraph(context.Background(), SemgraphArgs{Query: "rows"})
	require.NoError(t, err)

	assert.Contains(t, out, "Found **2** files.")
	assert.Contains(t, out, "## `app/store.py` ⭐ IMPORTANT")
	assert.Contains(t, out, "- `app/store.py` via [`app/service.py`]")
	assert.Contains(t, out, "#### func `stale()` (L5) 🔴 UNUSED")
	assert.Contains(t, out, "> Load rows.")

	t.Run("limit caps the files", func(t *testing.T) {
		out, err := s.Semgraph(context.Background(), SemgraphArgs{Query: "rows", Limit: 1})
		require.NoError(t, err)
		assert.Contains(t, out, "Found **1** files.")
	})

	t.Run("no matches", func(t *testing.T) {
		out, err := s.Semgraph(context.Background(), SemgraphArgs{Query: "rows", Glob: "*.rs"})
		require.NoError(t, err)
		assert.Equal(t, "No files found matching query.", out)
	})
}

func TestWithRepo(t *testing.T) {
	repo := t.TempDir()
	s := newTestServer(t, "", []knowledge.Hit{{FilePath: "a.py", StartLine: 1, EndLine: 2, Content: "x"}}).WithRepo(repo)
	out, err := s.Semsearch(context.Background(), SemsearchArgs{Query: "x"})
	require.NoError(t, err)
	assert.Contains(t, out, "1. `a.py`")
}
