package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"semgraph/internal/knowledge"
)

// Store is a knowledge.VectorStore backed by a closable resource.
type Store interface {
	knowledge.VectorStore
	ChunkCount(ctx context.Context) (int, error)
	Close() error
}

// Open creates the parent directory of path if needed and opens the
// SQLite store there.
func Open(path string) (Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return NewSQLiteStore(path)
}
