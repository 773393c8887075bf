package knowledge

import (
	"context"
	"errors"
)

// ErrNoEmbedder is returned when a search or index call has no embedder.
var ErrNoEmbedder = errors.New("no embedder configured")

// Embedder defines the interface for converting text to vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Chunk is a contiguous line range of one file.
type Chunk struct {
	ID        string `json:"id"`
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Content   string `json:"content"`
}

// VectorItem represents a chunk paired with its embedding.
type VectorItem struct {
	Chunk     Chunk
	Embedding []float32
}

// Hit is one ranked search result.
type Hit struct {
	FilePath  string  `json:"file_path"`
	StartLine int     `json:"start_line"`
	EndLine   int     `json:"end_line"`
	Content   string  `json:"content"`
	Score     float32 `json:"score"`
}

// Ranker returns hits for a free-text query, best first.
type Ranker interface {
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}

// VectorStore persists chunk vectors and per-file modification times.
type VectorStore interface {
	Add(ctx context.Context, items []VectorItem) error
	// DeleteFile drops the chunks and the recorded state of one file.
	DeleteFile(ctx context.Context, path string) error
	Search(ctx context.Context, queryVector []float32, topK int) ([]Hit, error)
	FileStates(ctx context.Context) (map[string]int64, error)
	SetFileState(ctx context.Context, path string, modTime int64) error
}
