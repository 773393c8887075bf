package crawler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(absRoot, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func pyOrJS(name string) bool {
	return strings.HasSuffix(name, ".py") || strings.HasSuffix(name, ".js")
}

func TestCrawler_ListFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":                 "",
		"pkg/util.py":             "",
		"pkg/readme.md":           "",
		"web/app.js":              "",
		"node_modules/lib/x.js":   "",
		".venv/lib/site.py":       "",
		"pkg/__pycache__/util.py": "",
	})

	c := NewCrawler(map[string]bool{"node_modules": true, ".venv": true, "__pycache__": true}, pyOrJS)
	files, err := c.ListFiles(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"main.py", "pkg/util.py", "web/app.js"}, relAll(t, root, files))
}

func TestCrawler_Gitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":        "generated/\nscratch.py\n",
		"keep.py":           "",
		"scratch.py":        "",
		"generated/auto.py": "",
	})

	c, err := NewCrawler(nil, pyOrJS).WithGitignore(root)
	require.NoError(t, err)
	files, err := c.ListFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.py"}, relAll(t, root, files))

	t.Run("missing gitignore is fine", func(t *testing.T) {
		empty := t.TempDir()
		_, err := NewCrawler(nil, pyOrJS).WithGitignore(empty)
		assert.NoError(t, err)
	})
}

func TestCrawler_MissingRoot(t *testing.T) {
	c := NewCrawler(nil, pyOrJS)
	files, err := c.ListFiles(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCrawler_UnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":       "",
		"locked/hid.py": "",
		"open/after.py": "",
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	files, err := NewCrawler(nil, pyOrJS).ListFiles(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main.py", "open/after.py"}, relAll(t, root, files))
}
