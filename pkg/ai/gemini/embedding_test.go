package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/OFFIS-RIT/graphlift/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	calls   int
	model   string
	text    string
	config  *genai.EmbedContentConfig
	values  []float32
	failure error
}

func (f *fakeModels) EmbedContent(_ context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.calls++
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.text = contents[0].Parts[0].Text
	}
	if f.failure != nil {
		return nil, f.failure
	}
	return &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{Values: f.values}}}, nil
}

func TestGenerateEmbedding(t *testing.T) {
	fake := &fakeModels{values: []float32{0.1, 0.2, 0.3}}
	c := &GraphGeminiClient{model: DefaultModel, models: fake}

	vec, err := c.GenerateEmbedding(context.Background(), []byte("Acme (ORG): A company"))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "text-embedding-004", fake.model)
	assert.Equal(t, "Acme (ORG): A company", fake.text)
	assert.Equal(t, "RETRIEVAL_DOCUMENT", fake.config.TaskType)
	assert.Nil(t, fake.config.OutputDimensionality)

	_, err = c.GenerateEmbedding(context.Background(), []byte("who is acme"), ai.WithTaskType(ai.TaskRetrievalQuery), ai.WithDimensions(256))
	require.NoError(t, err)
	assert.Equal(t, "RETRIEVAL_QUERY", fake.config.TaskType)
	require.NotNil(t, fake.config.OutputDimensionality)
	assert.Equal(t, int32(256), *fake.config.OutputDimensionality)
}

func TestGenerateEmbeddingFailures(t *testing.T) {
	fake := &fakeModels{failure: errors.New("quota exceeded")}
	c := &GraphGeminiClient{model: DefaultModel, models: fake}

	_, err := c.GenerateEmbedding(context.Background(), []byte("text"))
	assert.ErrorContains(t, err, "quota exceeded")
	assert.Equal(t, 1, fake.calls, "no retries")

	_, err = c.GenerateEmbedding(context.Background(), []byte("   "))
	assert.ErrorIs(t, err, ai.ErrEmptyInput)
	assert.Equal(t, 1, fake.calls)

	fake.failure = nil
	fake.values = nil
	_, err = c.GenerateEmbedding(context.Background(), []byte("text"))
	assert.ErrorIs(t, err, ai.ErrEmptyEmbedding)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewGraphGeminiClient(context.Background(), NewGraphGeminiClientParams{})
	assert.Error(t, err)
}
