package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	openAIEmbedBatchSize = 64
	openAIEmbedDelay     = 400 * time.Millisecond
	openAIEmbedRetries   = 5
	openAIRetryDelay     = 3 * time.Second

	openAIDefaultEndpoint = "https://api.openai.com/v1/embeddings"
)

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client    *http.Client
	apiKey    string
	model     string
	dimension int
	endpoint  string
}

type openAIEmbeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions *int     `json:"dimensions,omitempty"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func NewOpenAIEmbedder(apiKey, model string, dim int, baseURL string) *OpenAIEmbedder {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = openAIDefaultEndpoint
	}
	return &OpenAIEmbedder{
		client:    &http.Client{Timeout: 60 * time.Second},
		apiKey:    apiKey,
		model:     model,
		dimension: dim,
		endpoint:  endpoint,
	}
}

func (o *OpenAIEmbedder) Dimension() int { return o.dimension }

func (o *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if strings.TrimSpace(o.apiKey) == "" && o.endpoint == openAIDefaultEndpoint {
		return nil, fmt.Errorf("openai api key is required")
	}
	if strings.TrimSpace(o.model) == "" {
		return nil, fmt.Errorf("openai embedding model is required")
	}
	if len(texts) == 0 {
		return nil, nil
	}
	return inBatches(ctx, texts, openAIEmbedBatchSize, openAIEmbedDelay, func(batch []string) ([][]float32, error) {
		return o.embedBatch(ctx, batch)
	})
}

func (o *OpenAIEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	payload := openAIEmbeddingRequest{Model: o.model, Input: batch}
	if o.dimension > 0 {
		payload.Dimensions = &o.dimension
	}

	var headers map[string]string
	if o.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + o.apiKey}
	}

	var parsed openAIEmbeddingResponse
	err := postJSON(ctx, o.client, o.endpoint, headers, payload, &parsed,
		retryPolicy{attempts: openAIEmbedRetries, delay: openAIRetryDelay},
		openAIErrorMessage)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}

	out := make([][]float32, len(batch))
	for _, item := range parsed.Data {
		if item.Index >= 0 && item.Index < len(batch) {
			out[item.Index] = item.Embedding
		}
	}
	for i := range out {
		if len(out[i]) == 0 {
			return nil, fmt.Errorf("embedding missing at index %d", i)
		}
	}
	return out, nil
}

func openAIErrorMessage(body []byte) string {
	var errBody struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &errBody) != nil {
		return ""
	}
	return strings.TrimSpace(errBody.Error.Message)
}
