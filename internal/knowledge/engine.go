package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"semgraph/internal/logging"
)

// IndexedExtensions lists the file extensions the engine embeds.
var IndexedExtensions = map[string]bool{
	".py": true, ".md": true, ".js": true, ".ts": true,
	".c": true, ".cpp": true, ".h": true, ".go": true, ".rs": true,
}

// Indexable reports whether path has an indexed extension.
func Indexable(path string) bool {
	return IndexedExtensions[strings.ToLower(filepath.Ext(path))]
}

// SyncStats summarizes one Sync run.
type SyncStats struct {
	Indexed   int `json:"indexed"`
	Unchanged int `json:"unchanged"`
	Deleted   int `json:"deleted"`
	Failed    int `json:"failed"`
	Chunks    int `json:"chunks"`
}

// Engine chunks files, embeds the chunks and answers similarity queries.
type Engine struct {
	embedder Embedder
	store    VectorStore
	chunker  *Chunker
	logger   *slog.Logger
}

// NewEngine creates an engine over store. embedder may be nil, in which case
// indexing and search return ErrNoEmbedder.
func NewEngine(em Embedder, store VectorStore, logger *slog.Logger) *Engine {
	return &Engine{
		embedder: em,
		store:    store,
		chunker:  NewChunker(),
		logger:   logging.OrDefault(logger),
	}
}

// IndexFile replaces the stored chunks of rel (relative to root) and records
// its modification time. It returns the number of chunks written.
func (e *Engine) IndexFile(ctx context.Context, root, rel string) (int, error) {
	if e.embedder == nil {
		return 0, ErrNoEmbedder
	}
	abs := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return 0, err
	}

	if err := e.store.DeleteFile(ctx, rel); err != nil {
		return 0, fmt.Errorf("clear %s: %w", rel, err)
	}

	chunks := e.chunker.Split(rel, string(data))
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		vectors, err := e.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed %s: %w", rel, err)
		}
		if len(vectors) != len(chunks) {
			return 0, fmt.Errorf("embed %s: got %d vectors for %d chunks", rel, len(vectors), len(chunks))
		}
		items := make([]VectorItem, len(chunks))
		for i, c := range chunks {
			items[i] = VectorItem{Chunk: c, Embedding: vectors[i]}
		}
		if err := e.store.Add(ctx, items); err != nil {
			return 0, fmt.Errorf("store %s: %w", rel, err)
		}
	}

	if err := e.store.SetFileState(ctx, rel, info.ModTime().UnixNano()); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// DeleteFile drops everything stored for rel.
func (e *Engine) DeleteFile(ctx context.Context, rel string) error {
	return e.store.DeleteFile(ctx, rel)
}

// Sync brings the store in line with files: new or modified files are
// re-indexed and files no longer present are removed. Failures on single
// files are logged and counted, not returned.
func (e *Engine) Sync(ctx context.Context, root string, files []string) (SyncStats, error) {
	var stats SyncStats
	if e.embedder == nil {
		return stats, ErrNoEmbedder
	}

	states, err := e.store.FileStates(ctx)
	if err != nil {
		return stats, fmt.Errorf("load file states: %w", err)
	}

	current := make(map[string]bool, len(files))
	for _, rel := range files {
		if !Indexable(rel) {
			continue
		}
		current[rel] = true

		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			e.logger.Debug("skipping unreadable file", "path", rel, "error", err)
			stats.Failed++
			continue
		}
		if prev, ok := states[rel]; ok && prev == info.ModTime().UnixNano() {
			stats.Unchanged++
			continue
		}

		n, err := e.IndexFile(ctx, root, rel)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				e.logger.Debug("skipping unreadable file", "path", rel, "error", err)
			} else {
				e.logger.Warn("indexing failed", "path", rel, "error", err)
			}
			stats.Failed++
			continue
		}
		stats.Indexed++
		stats.Chunks += n
	}

	for rel := range states {
		if current[rel] {
			continue
		}
		if err := e.store.DeleteFile(ctx, rel); err != nil {
			return stats, fmt.Errorf("delete %s: %w", rel, err)
		}
		stats.Deleted++
	}

	e.logger.Info("index synced",
		"indexed", stats.Indexed, "unchanged", stats.Unchanged,
		"deleted", stats.Deleted, "failed", stats.Failed, "chunks", stats.Chunks)
	return stats, nil
}

// Search embeds query and returns the closest stored chunks.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if e.embedder == nil {
		return nil, ErrNoEmbedder
	}
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, nil
	}
	vectors, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil
	}
	return e.store.Search(ctx, vectors[0], limit)
}
