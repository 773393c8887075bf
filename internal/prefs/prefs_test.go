package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"semgraph/internal/graph"
	"semgraph/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListStore(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is empty", func(t *testing.T) {
		s := NewListStore(filepath.Join(dir, "none.json"), logging.Discard())
		assert.Equal(t, []string{}, s.Load())
		assert.False(t, s.Exists())
	})

	t.Run("set appends and removes", func(t *testing.T) {
		s := NewListStore(filepath.Join(dir, "state", ImportantFile), logging.Discard())

		ids, err := s.Set("a.py", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.py"}, ids)

		_, err = s.Set("b.py", true)
		require.NoError(t, err)
		ids, err = s.Set("a.py", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.py", "b.py"}, ids)

		ids, err = s.Set("a.py", false)
		require.NoError(t, err)
		assert.Equal(t, []string{"b.py"}, ids)

		ids, err = s.Set("zzz.py", false)
		require.NoError(t, err)
		assert.Equal(t, []string{"b.py"}, ids)

		assert.True(t, s.Exists())
		assert.Equal(t, map[string]bool{"b.py": true}, s.AsSet())
	})

	t.Run("malformed documents read as empty", func(t *testing.T) {
		cases := map[string]string{
			"bad json":       "[\"a.py\"",
			"wrong type":     `{"nodes": ["a.py"]}`,
			"non string ids": `["a.py", 3]`,
		}
		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "list.json")
				require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
				assert.Equal(t, []string{}, NewListStore(path, logging.Discard()).Load())
			})
		}
	})
}

func TestInitDefaultHidden(t *testing.T) {
	nodes := []graph.Node{
		graph.NewNode("pkg/__init__.py", "python"),
		graph.NewNode("pkg/core.py", "python"),
		graph.NewNode("pkg/sub/__init__.py", "python"),
	}

	t.Run("first run hides package markers", func(t *testing.T) {
		_, hidden := ForRepo(t.TempDir(), ".semgraph", logging.Discard())
		ids, err := InitDefaultHidden(hidden, nodes)
		require.NoError(t, err)
		assert.Equal(t, []string{"pkg/__init__.py", "pkg/sub/__init__.py"}, ids)
		assert.Equal(t, ids, hidden.Load())
	})

	t.Run("existing list is left alone", func(t *testing.T) {
		_, hidden := ForRepo(t.TempDir(), ".semgraph", logging.Discard())
		require.NoError(t, hidden.Save([]string{"pkg/core.py"}))
		ids, err := InitDefaultHidden(hidden, nodes)
		require.NoError(t, err)
		assert.Equal(t, []string{"pkg/core.py"}, ids)
	})

	t.Run("nothing to hide writes nothing", func(t *testing.T) {
		_, hidden := ForRepo(t.TempDir(), ".semgraph", logging.Discard())
		ids, err := InitDefaultHidden(hidden, nodes[1:2])
		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.False(t, hidden.Exists())
	})
}

func TestSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsDirName, SettingsFileName)
	s := NewSettings(path, logging.Discard())

	_, err := s.CurrentContext()
	assert.ErrorIs(t, err, ErrNoContext)

	require.NoError(t, s.UpdateContext("/work/repo"))
	ctx, err := s.CurrentContext()
	require.NoError(t, err)
	assert.Equal(t, "/work/repo", ctx)

	t.Run("unknown keys survive an update", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`{"current_context":"/old","theme":"dark"}`), 0o644))
		require.NoError(t, s.UpdateContext("/new"))
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"theme": "dark"`)
		assert.Contains(t, string(raw), `"current_context": "/new"`)
	})

	t.Run("malformed settings have no context", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`{"current_context": 7}`), 0o644))
		_, err := s.CurrentContext()
		assert.ErrorIs(t, err, ErrNoContext)
	})
}

func TestEnsureGitignore(t *testing.T) {
	t.Run("creates the file", func(t *testing.T) {
		root := t.TempDir()
		changed, err := EnsureGitignore(root, ".semgraph")
		require.NoError(t, err)
		assert.True(t, changed)
		raw, _ := os.ReadFile(filepath.Join(root, ".gitignore"))
		assert.Equal(t, ".semgraph\n", string(raw))
	})

	t.Run("appends after a missing newline", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("dist"), 0o644))
		changed, err := EnsureGitignore(root, ".semgraph")
		require.NoError(t, err)
		assert.True(t, changed)
		raw, _ := os.ReadFile(filepath.Join(root, ".gitignore"))
		assert.Equal(t, "dist\n.semgraph\n", string(raw))
	})

	t.Run("existing entry is kept as is", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte(".semgraph/\n"), 0o644))
		changed, err := EnsureGitignore(root, ".semgraph")
		require.NoError(t, err)
		assert.False(t, changed)
	})
}
