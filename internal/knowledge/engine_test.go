package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder maps text onto counts of a fixed vocabulary.
type keywordEmbedder struct {
	vocab []string
	calls int
}

func (m *keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(m.vocab)+1)
		for j, word := range m.vocab {
			vec[j] = float32(strings.Count(text, word))
		}
		vec[len(m.vocab)] = 0.1
		results[i] = vec
	}
	return results, nil
}

func (m *keywordEmbedder) Dimension() int { return len(m.vocab) + 1 }

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestEngine_Sync(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, root, "pkg/a.py", "def alpha():\n    return 'alpha'\n")
	writeFile(t, root, "docs/b.md", "# beta\nbeta notes\n")
	writeFile(t, root, "notes.txt", "alpha beta\n")

	store := NewMemoryStore()
	em := &keywordEmbedder{vocab: []string{"alpha", "beta"}}
	engine := NewEngine(em, store, nil)
	files := []string{"pkg/a.py", "docs/b.md", "notes.txt"}

	t.Run("first sync indexes supported files", func(t *testing.T) {
		stats, err := engine.Sync(ctx, root, files)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Indexed)
		assert.Equal(t, 2, stats.Chunks)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("unchanged files are skipped", func(t *testing.T) {
		stats, err := engine.Sync(ctx, root, files)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Indexed)
		assert.Equal(t, 2, stats.Unchanged)
	})

	t.Run("modified file is re-indexed without duplicates", func(t *testing.T) {
		writeFile(t, root, "pkg/a.py", "def alpha():\n    return 'alpha alpha'\n")
		later := time.Now().Add(time.Hour)
		require.NoError(t, os.Chtimes(filepath.Join(root, "pkg/a.py"), later, later))

		stats, err := engine.Sync(ctx, root, files)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Indexed)
		assert.Equal(t, 1, stats.Unchanged)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("vanished file is deleted", func(t *testing.T) {
		stats, err := engine.Sync(ctx, root, []string{"pkg/a.py"})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Deleted)
		assert.Equal(t, 1, store.Len())

		states, err := store.FileStates(ctx)
		require.NoError(t, err)
		assert.Contains(t, states, "pkg/a.py")
		assert.NotContains(t, states, "docs/b.md")
	})
}

func TestEngine_Search(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, root, "a.py", "alpha alpha alpha\n")
	writeFile(t, root, "b.py", "beta beta\n")

	engine := NewEngine(&keywordEmbedder{vocab: []string{"alpha", "beta"}}, NewMemoryStore(), nil)
	_, err := engine.Sync(ctx, root, []string{"a.py", "b.py"})
	require.NoError(t, err)

	hits, err := engine.Search(ctx, "beta", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b.py", hits[0].FilePath)
	assert.Equal(t, 1, hits[0].StartLine)

	hits, err = engine.Search(ctx, "alpha", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a.py", hits[0].FilePath)
	assert.Greater(t, hits[0].Score, hits[1].Score)

	hits, err = engine.Search(ctx, "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEngine_NoEmbedder(t *testing.T) {
	engine := NewEngine(nil, NewMemoryStore(), nil)
	_, err := engine.Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, ErrNoEmbedder)
	_, err = engine.Sync(context.Background(), t.TempDir(), nil)
	assert.ErrorIs(t, err, ErrNoEmbedder)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}

func TestNewEmbedder_Dimension(t *testing.T) {
	em, err := NewEmbedder(context.Background(), EmbedderOptions{Model: "nomic-embed-text"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaEmbedder{}, em)

	em, err = NewEmbedder(context.Background(), EmbedderOptions{Provider: "OpenAI", APIKey: "k", Model: "m", Dimension: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, em.Dimension())

	_, err = NewEmbedder(context.Background(), EmbedderOptions{Provider: "nope"})
	assert.Error(t, err)
}
