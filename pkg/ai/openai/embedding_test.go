package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/OFFIS-RIT/graphlift/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEmbedding(t *testing.T) {
	var got map[string]any
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",` +
			`"data":[{"object":"embedding","index":0,"embedding":[0.5,-0.25]}],` +
			`"usage":{"prompt_tokens":3,"total_tokens":3}}`))
	}))
	defer srv.Close()

	c := NewGraphOpenAIClient(NewGraphOpenAIClientParams{
		EmbeddingURL: srv.URL,
		EmbeddingKey: "sk-test",
		Dimensions:   2,
	})
	require.NotNil(t, c)

	vec, err := c.GenerateEmbedding(context.Background(), []byte("Acme (ORG): A company"))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.25}, vec)
	assert.Equal(t, "text-embedding-3-small", got["model"])
	assert.Equal(t, []any{"Acme (ORG): A company"}, got["input"])
	assert.Equal(t, float64(2), got["dimensions"])
	assert.Equal(t, 1, calls)
}

func TestGenerateEmbeddingDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewGraphOpenAIClient(NewGraphOpenAIClientParams{EmbeddingURL: srv.URL, EmbeddingKey: "sk-test"})
	_, err := c.GenerateEmbedding(context.Background(), []byte("text"))
	assert.Error(t, err)
	assert.Equal(t, 1, calls)

	_, err = c.GenerateEmbedding(context.Background(), nil)
	assert.ErrorIs(t, err, ai.ErrEmptyInput)
}

func TestNewClientWithoutKey(t *testing.T) {
	assert.Nil(t, NewGraphOpenAIClient(NewGraphOpenAIClientParams{}))
}
