package openai

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/graphlift/pkg/ai"

	"github.com/openai/openai-go/v3"
)

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model. OpenAI has no task types, so
// ai.WithTaskType is ignored.
//
// Example:
//
//	embedding, err := client.GenerateEmbedding(ctx, []byte("Graph RAG systems"))
//	if err != nil {
//		return err
//	}
//	fmt.Println("Embedding length:", len(embedding))
func (c *GraphOpenAIClient) GenerateEmbedding(ctx context.Context, input []byte, opts ...ai.EmbedOption) ([]float32, error) {
	if err := ai.CheckInput(input); err != nil {
		return nil, err
	}
	o := ai.ApplyOptions(opts...)

	body := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{string(input)}},
		Model: c.embeddingModel,
	}
	dims := o.Dimensions
	if dims == 0 {
		dims = c.dimensions
	}
	if dims > 0 {
		body.Dimensions = openai.Int(int64(dims))
	}

	response, err := c.EmbeddingClient.Embeddings.New(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		return nil, ai.ErrEmptyEmbedding
	}

	vec := make([]float32, len(response.Data[0].Embedding))
	for i, v := range response.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
