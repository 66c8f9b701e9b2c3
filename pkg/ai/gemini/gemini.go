package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	DefaultModel     = "text-embedding-004"
	DefaultDimension = 768
)

// contentEmbedder is the subset of *genai.Models the client uses.
type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GraphGeminiClient creates embeddings through the Gemini API.
type GraphGeminiClient struct {
	model      string
	dimensions int

	models contentEmbedder
}

// NewGraphGeminiClientParams configures a GraphGeminiClient.
//
// Dimensions is optional; zero keeps the model's native size.
type NewGraphGeminiClientParams struct {
	APIKey     string
	Model      string
	Dimensions int
}

// NewGraphGeminiClient creates a Gemini embedding client.
func NewGraphGeminiClient(ctx context.Context, params NewGraphGeminiClientParams) (*GraphGeminiClient, error) {
	if params.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if params.Model == "" {
		params.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  params.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GraphGeminiClient{
		model:      params.Model,
		dimensions: params.Dimensions,
		models:     client.Models,
	}, nil
}

func (c *GraphGeminiClient) Model() string {
	return c.model
}
