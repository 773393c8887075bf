package knowledge

import (
	"context"
	"fmt"
	"strings"
)

// Embedding providers accepted in ai.provider.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var defaultModels = map[string]string{
	ProviderOllama: "nomic-embed-text",
	ProviderOpenAI: "text-embedding-3-small",
	ProviderGemini: "text-embedding-004",
}

// EmbedderOptions mirrors the ai config section. Empty Provider means
// ollama, empty Model means the provider's default model.
type EmbedderOptions struct {
	Provider  string
	APIKey    string
	Model     string
	Dimension int
	BaseURL   string
}

func (o EmbedderOptions) normalized() EmbedderOptions {
	o.Provider = strings.ToLower(strings.TrimSpace(o.Provider))
	if o.Provider == "" {
		o.Provider = ProviderOllama
	}
	o.Model = strings.TrimSpace(o.Model)
	if o.Model == "" {
		o.Model = defaultModels[o.Provider]
	}
	o.APIKey = strings.TrimSpace(o.APIKey)
	return o
}

// NewEmbedder builds the embedder for opts. Hosted providers fail here
// rather than on the first request when no key is configured; an openai
// base URL (a compatible local server) lifts that requirement.
func NewEmbedder(ctx context.Context, opts EmbedderOptions) (Embedder, error) {
	opts = opts.normalized()
	if _, ok := defaultModels[opts.Provider]; !ok {
		return nil, fmt.Errorf("unsupported embedder provider: %s", opts.Provider)
	}

	switch opts.Provider {
	case ProviderOllama:
		return NewOllamaEmbedder(opts.Model, opts.Dimension, opts.BaseURL), nil
	case ProviderOpenAI:
		if opts.APIKey == "" && opts.BaseURL == "" {
			return nil, fmt.Errorf("openai embeddings need ai.api_key or SEMGRAPH_API_KEY")
		}
		return NewOpenAIEmbedder(opts.APIKey, opts.Model, opts.Dimension, opts.BaseURL), nil
	default:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("gemini embeddings need ai.api_key or SEMGRAPH_API_KEY")
		}
		return NewGeminiEmbedder(ctx, opts.APIKey, opts.Model, opts.Dimension)
	}
}
