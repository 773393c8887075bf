package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	geminiEmbedBatchSize = 50
	geminiEmbedDelay     = 700 * time.Millisecond
	geminiRetryDelay     = 6 * time.Second
	geminiMaxRetries     = 5
)

// GeminiEmbedder implements Embedder using Google's Gemini API.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
}

func NewGeminiEmbedder(ctx context.Context, apiKey string, modelName string, dim int) (*GeminiEmbedder, error) {
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: modelName, dimension: dim}, nil
}

func (g *GeminiEmbedder) Dimension() int { return g.dimension }

// Close releases the underlying client.
func (g *GeminiEmbedder) Close() error { return g.client.Close() }

func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	em := g.client.EmbeddingModel(g.model)

	out, err := inBatches(ctx, texts, geminiEmbedBatchSize, geminiEmbedDelay, func(batch []string) ([][]float32, error) {
		b := em.NewBatch()
		for _, text := range batch {
			b.AddContent(genai.Text(text))
		}

		var res *genai.BatchEmbedContentsResponse
		var err error
		for attempt := 0; attempt <= geminiMaxRetries; attempt++ {
			res, err = em.BatchEmbedContents(ctx, b)
			if err == nil {
				break
			}
			if !isRateLimitError(err) || attempt == geminiMaxRetries {
				return nil, fmt.Errorf("failed to embed text: %w", err)
			}
			if !waitOrCancel(ctx, geminiRetryDelay) {
				return nil, ctx.Err()
			}
		}

		vecs := make([][]float32, 0, len(res.Embeddings))
		for _, emb := range res.Embeddings {
			vecs = append(vecs, emb.Values)
		}
		return vecs, nil
	})
	if err != nil {
		return nil, err
	}
	if g.dimension <= 0 && len(out) > 0 {
		g.dimension = len(out[0])
	}
	return out, nil
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "RESOURCE_EXHAUSTED") || strings.Contains(s, "quota")
}
