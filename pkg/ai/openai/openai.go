package openai

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultModel = "text-embedding-3-small"

// GraphOpenAIClient creates embeddings through the OpenAI API or any
// endpoint that speaks the same protocol.
//
// A GraphOpenAIClient should be created using NewGraphOpenAIClient.
type GraphOpenAIClient struct {
	embeddingModel string
	dimensions     int

	EmbeddingClient *openai.Client
}

// NewGraphOpenAIClientParams defines the configuration parameters for creating
// a new GraphOpenAIClient.
//
// EmbeddingURL is optional and overrides the API base URL.
// Dimensions is optional; zero keeps the model's native size.
type NewGraphOpenAIClientParams struct {
	EmbeddingModel string
	EmbeddingURL   string
	EmbeddingKey   string
	Dimensions     int
}

// NewGraphOpenAIClient creates a client, or returns nil when no key is set.
//
// Example:
//
//	client := openai.NewGraphOpenAIClient(openai.NewGraphOpenAIClientParams{
//		EmbeddingModel: "text-embedding-3-small",
//		EmbeddingKey:   os.Getenv("AI_EMBED_KEY"),
//		Dimensions:     768,
//	})
func NewGraphOpenAIClient(params NewGraphOpenAIClientParams) *GraphOpenAIClient {
	embedClient := newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey)
	if embedClient == nil {
		return nil
	}
	model := params.EmbeddingModel
	if model == "" {
		model = defaultModel
	}

	return &GraphOpenAIClient{
		embeddingModel:  model,
		dimensions:      params.Dimensions,
		EmbeddingClient: embedClient,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}

func (c *GraphOpenAIClient) Model() string {
	return c.embeddingModel
}
