package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semgraph/internal/graph"
	"semgraph/internal/index"
)

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

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath, rootOverride = "", ""
	graphFormat, graphIncludeHidden, graphFocus, graphHops = "json", false, nil, 2
	impactBase = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

var chain = map[string]string{
	"a.py": "import b\n",
	"b.py": "import c\n",
	"c.py": "def run():\n    pass\n",
	"d.py": "X = 1\n",
}

func TestTreeCommand(t *testing.T) {
	out, err := execute(t, "tree", "pkg/b.py", "pkg/c.py")
	require.NoError(t, err)
	assert.Contains(t, out, "pkg")
	assert.Contains(t, out, "b.py")
	assert.Contains(t, out, "c.py")
}

func TestPathCommand(t *testing.T) {
	root := writeRepo(t, chain)

	t.Run("indirect", func(t *testing.T) {
		out, err := execute(t, "--root", root, "path", "a.py", "c.py")
		require.NoError(t, err)
		assert.Equal(t, "a.py → b.py → c.py\n", out)
	})

	t.Run("direct", func(t *testing.T) {
		out, err := execute(t, "--root", root, "path", "a.py", "b.py")
		require.NoError(t, err)
		assert.Contains(t, out, "(direct)")
	})

	t.Run("unconnected", func(t *testing.T) {
		out, err := execute(t, "--root", root, "path", "a.py", "d.py")
		require.NoError(t, err)
		assert.Equal(t, "No indirect path.\n", out)
	})
}

func TestGraphCommand(t *testing.T) {
	root := writeRepo(t, chain)

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "--root", root, "graph")
		require.NoError(t, err)

		var g graph.Graph
		require.NoError(t, json.Unmarshal([]byte(out), &g))
		assert.Len(t, g.Nodes, 4)
		assert.ElementsMatch(t, []graph.Edge{
			{Source: "a.py", Target: "b.py"},
			{Source: "b.py", Target: "c.py"},
		}, g.Edges)
	})

	t.Run("mermaid", func(t *testing.T) {
		out, err := execute(t, "--root", root, "graph", "--format", "mermaid")
		require.NoError(t, err)
		assert.Contains(t, out, "graph LR")
	})

	t.Run("summary", func(t *testing.T) {
		out, err := execute(t, "--root", root, "graph", "--format", "summary")
		require.NoError(t, err)

		var sum graph.Summary
		require.NoError(t, json.Unmarshal([]byte(out), &sum))
		assert.Equal(t, 4, sum.Nodes)
		assert.Equal(t, 2, sum.Edges)
		assert.Equal(t, 1, sum.Isolated)
	})

	t.Run("focus limits the neighborhood", func(t *testing.T) {
		out, err := execute(t, "--root", root, "graph", "--focus", "a.py", "--hops", "1")
		require.NoError(t, err)

		var g graph.Graph
		require.NoError(t, json.Unmarshal([]byte(out), &g))
		ids := make([]string, 0, len(g.Nodes))
		for _, n := range g.Nodes {
			ids = append(ids, n.ID)
		}
		assert.ElementsMatch(t, []string{"a.py", "b.py"}, ids)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, "--root", root, "graph", "--format", "dot")
		assert.Error(t, err)
	})
}

func TestDetailsCommand(t *testing.T) {
	root := writeRepo(t, chain)

	out, err := execute(t, "--root", root, "details", "c.py")
	require.NoError(t, err)
	var details index.FileDetails
	require.NoError(t, json.Unmarshal([]byte(out), &details))
	require.Len(t, details.Items, 1)
	assert.Equal(t, "run", details.Items[0].Name)

	_, err = execute(t, "--root", root, "details", "missing.py")
	assert.ErrorIs(t, err, index.ErrFileNotFound)
}

func TestImpactCommand(t *testing.T) {
	root := writeRepo(t, chain)

	out, err := execute(t, "--root", root, "impact", "c.py")
	require.NoError(t, err)
	assert.Contains(t, out, "b.py")
	assert.Contains(t, out, "a.py")

	_, err = execute(t, "--root", root, "impact")
	assert.Error(t, err)
}
