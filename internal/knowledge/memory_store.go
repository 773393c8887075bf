package knowledge

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore.
type MemoryStore struct {
	mu     sync.RWMutex
	items  []VectorItem
	states map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]int64)}
}

func (m *MemoryStore) Add(ctx context.Context, items []VectorItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, items...)
	return nil
}

func (m *MemoryStore) DeleteFile(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	for _, item := range m.items {
		if item.Chunk.FilePath != path {
			kept = append(kept, item)
		}
	}
	m.items = kept
	delete(m.states, path)
	return nil
}

func (m *MemoryStore) Search(ctx context.Context, queryVector []float32, topK int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := make([]Hit, 0, len(m.items))
	for _, item := range m.items {
		hits = append(hits, Hit{
			FilePath:  item.Chunk.FilePath,
			StartLine: item.Chunk.StartLine,
			EndLine:   item.Chunk.EndLine,
			Content:   item.Chunk.Content,
			Score:     CosineSimilarity(queryVector, item.Embedding),
		})
	}
	return TopHits(hits, topK), nil
}

func (m *MemoryStore) FileStates(ctx context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64, len(m.states))
	for k, v := range m.states {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) SetFileState(ctx context.Context, path string, modTime int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[path] = modTime
	return nil
}

// Len returns the number of stored chunks.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// CosineSimilarity returns 0 for mismatched or zero-length vectors.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// TopHits sorts hits by descending score, ties by path then line, and keeps
// at most topK.
func TopHits(hits []Hit, topK int) []Hit {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].FilePath != hits[j].FilePath {
			return hits[i].FilePath < hits[j].FilePath
		}
		return hits[i].StartLine < hits[j].StartLine
	})
	if topK >= 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}
