package knowledge

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	ollamaEmbedBatchSize = 64
	ollamaEmbedDelay     = 200 * time.Millisecond
)

// OllamaEmbedder calls a local Ollama server's /api/embed endpoint.
type OllamaEmbedder struct {
	client    *http.Client
	model     string
	dimension int
	endpoint  string
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func NewOllamaEmbedder(model string, dim int, baseURL string) *OllamaEmbedder {
	url := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if url == "" {
		url = "http://127.0.0.1:11434"
	}
	if !strings.HasSuffix(url, "/api/embed") {
		url += "/api/embed"
	}
	return &OllamaEmbedder{
		client:    &http.Client{Timeout: 90 * time.Second},
		model:     model,
		dimension: dim,
		endpoint:  url,
	}
}

func (o *OllamaEmbedder) Dimension() int { return o.dimension }

func (o *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if strings.TrimSpace(o.model) == "" {
		return nil, fmt.Errorf("ollama embedding model is required")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out, err := inBatches(ctx, texts, ollamaEmbedBatchSize, ollamaEmbedDelay, func(batch []string) ([][]float32, error) {
		var parsed ollamaEmbedResponse
		err := postJSON(ctx, o.client, o.endpoint, nil,
			ollamaEmbedRequest{Model: o.model, Input: batch}, &parsed,
			retryPolicy{attempts: 2, delay: time.Second}, nil)
		if err != nil {
			return nil, fmt.Errorf("ollama embed: %w", err)
		}
		return parsed.Embeddings, nil
	})
	if err != nil {
		return nil, err
	}
	if o.dimension <= 0 && len(out) > 0 {
		o.dimension = len(out[0])
	}
	return out, nil
}
