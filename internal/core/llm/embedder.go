package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/genserve-ai/rag-ingestion/internal/config"
)

// NewEmbedder builds the configured embedding provider. Both providers sit
// behind langchaingo's embeddings.Embedder so the indexing sink never knows
// which model is in use.
func NewEmbedder(ctx context.Context, cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.EmbedProvider {
	case "", "azure":
		return NewAzureOpenAIEmbedder(cfg.AzureAPIKey, cfg.AzureDeployment, cfg.AzureAPIVersion, cfg.AzureEndpoint)
	case "gemini":
		client, err := NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return embeddings.NewEmbedder(client, embeddings.WithStripNewLines(false))
	default:
		return nil, fmt.Errorf("unknown EMBED_PROVIDER %q", cfg.EmbedProvider)
	}
}

// NewAzureOpenAIEmbedder targets an Azure OpenAI embedding deployment.
func NewAzureOpenAIEmbedder(apiKey, deployment, apiVersion, endpoint string) (*embeddings.EmbedderImpl, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing AZURE_OPENAI_API_KEY")
	}
	if apiVersion == "" {
		return nil, fmt.Errorf("missing AZURE_OPENAI_TEXTEMBEDDER_API_VERSION")
	}
	if endpoint == "" {
		return nil, fmt.Errorf("missing AZURE_OPENAI_TEXTEMBEDDER_ENDPOINT")
	}

	client, err := openai.New(
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithToken(apiKey),
		openai.WithBaseURL(endpoint),
		openai.WithAPIVersion(apiVersion),
		openai.WithEmbeddingModel(deployment),
		openai.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("create azure openai client: %w", err)
	}

	return embeddings.NewEmbedder(client, embeddings.WithStripNewLines(false))
}
