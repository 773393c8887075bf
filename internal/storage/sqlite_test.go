package storage

import (
	"context"
	"path/filepath"
	"testing"

	"semgraph/internal/knowledge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func item(path string, start int, vec ...float32) knowledge.VectorItem {
	return knowledge.VectorItem{
		Chunk: knowledge.Chunk{
			ID:        knowledge.ChunkID(path, start, 0),
			FilePath:  path,
			StartLine: start,
			EndLine:   start + 9,
			Content:   path + " content",
		},
		Embedding: vec,
	}
}

func TestSQLiteStore_Search(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Add(ctx, []knowledge.VectorItem{
		item("a.py", 1, 1, 0),
		item("b.py", 1, 0, 1),
		item("c.py", 1, 1, 1),
	}))

	hits, err := store.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a.py", hits[0].FilePath)
	assert.Equal(t, "c.py", hits[1].FilePath)
	assert.Equal(t, 10, hits[0].EndLine)
	assert.Equal(t, "a.py content", hits[0].Content)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestSQLiteStore_AddIsUpsert(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Add(ctx, []knowledge.VectorItem{item("a.py", 1, 1, 0)}))
	require.NoError(t, store.Add(ctx, []knowledge.VectorItem{item("a.py", 1, 0, 1)}))

	n, err := store.ChunkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hits, err := store.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestSQLiteStore_FileStates(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Add(ctx, []knowledge.VectorItem{item("a.py", 1, 1), item("b.py", 1, 1)}))
	require.NoError(t, store.SetFileState(ctx, "a.py", 100))
	require.NoError(t, store.SetFileState(ctx, "b.py", 200))
	require.NoError(t, store.SetFileState(ctx, "a.py", 150))

	states, err := store.FileStates(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a.py": 150, "b.py": 200}, states)

	t.Run("delete drops chunks and state", func(t *testing.T) {
		require.NoError(t, store.DeleteFile(ctx, "a.py"))
		states, err := store.FileStates(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"b.py": 200}, states)

		n, err := store.ChunkCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".semgraph", "index.db")
	store, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}
