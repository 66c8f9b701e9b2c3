package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Neo4j.Database)
	assert.Equal(t, "entity_embeddings", cfg.Neo4j.EntityIndex)
	assert.Equal(t, "relationship_embeddings", cfg.Neo4j.RelationshipIndex)
	assert.Equal(t, "gemini", cfg.Embedding.Adapter)
	assert.Equal(t, 768, cfg.Embedding.Dimension)
	assert.Equal(t, 150*time.Millisecond, cfg.Embedding.Delay)
	assert.Equal(t, "output", cfg.Source.URI)
	assert.Equal(t, "parquet", cfg.Source.Format)
	assert.False(t, cfg.Embedding.IsEnabled())
}

func TestEmbeddingKeyFallback(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		key     string
		enabled bool
	}{
		{name: "explicit key", vars: map[string]string{"AI_EMBED_KEY": "a", "GOOGLE_API_KEY": "b"}, key: "a", enabled: true},
		{name: "google key", vars: map[string]string{"GOOGLE_API_KEY": "b"}, key: "b", enabled: true},
		{name: "graphrag key", vars: map[string]string{"GRAPHRAG_API_KEY": "c"}, key: "c", enabled: true},
		{name: "ollama without key", vars: map[string]string{"AI_ADAPTER": "ollama"}, key: "", enabled: true},
		{name: "disabled wins", vars: map[string]string{"AI_EMBED_KEY": "a", "AI_EMBED_DISABLED": "true"}, key: "a", enabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.key, cfg.Embedding.APIKey())
			assert.Equal(t, tt.enabled, cfg.Embedding.IsEnabled())
		})
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := LoadFrom(map[string]string{"SOURCE_FORMAT": "xlsx"})
	assert.Error(t, err)

	_, err = LoadFrom(map[string]string{"AI_EMBED_DIM": "0"})
	assert.Error(t, err)

	_, err = LoadFrom(map[string]string{"AI_EMBED_DELAY": "soon"})
	assert.Error(t, err)
}
