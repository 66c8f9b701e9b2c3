package ollama

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/graphlift/pkg/ai"

	"github.com/ollama/ollama/api"
)

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model on Ollama. Task types and dimension
// hints are ignored.
func (c *GraphOllamaClient) GenerateEmbedding(
	ctx context.Context,
	input []byte,
	opts ...ai.EmbedOption,
) ([]float32, error) {
	if err := ai.CheckInput(input); err != nil {
		return nil, err
	}

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: string(input),
	}

	res, err := c.Client.Embed(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(res.Embeddings) == 0 || len(res.Embeddings[0]) == 0 {
		return nil, ai.ErrEmptyEmbedding
	}

	return res.Embeddings[0], nil
}
