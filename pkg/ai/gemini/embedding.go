package gemini

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/graphlift/pkg/ai"

	"google.golang.org/genai"
)

// GenerateEmbedding embeds input with the configured model. The task type
// defaults to RETRIEVAL_DOCUMENT; queries pass ai.WithTaskType.
func (c *GraphGeminiClient) GenerateEmbedding(ctx context.Context, input []byte, opts ...ai.EmbedOption) ([]float32, error) {
	if err := ai.CheckInput(input); err != nil {
		return nil, err
	}
	o := ai.ApplyOptions(opts...)

	cfg := &genai.EmbedContentConfig{
		TaskType: string(o.TaskType),
	}
	dims := o.Dimensions
	if dims == 0 {
		dims = c.dimensions
	}
	if dims > 0 {
		d := int32(dims)
		cfg.OutputDimensionality = &d
	}

	res, err := c.models.EmbedContent(ctx, c.model, genai.Text(string(input)), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if res == nil || len(res.Embeddings) == 0 || len(res.Embeddings[0].Values) == 0 {
		return nil, ai.ErrEmptyEmbedding
	}
	return res.Embeddings[0].Values, nil
}
