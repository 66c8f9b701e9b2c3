package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Debug     bool   `env:"DEBUG" envDefault:"false"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	Port      string `env:"PORT" envDefault:"8080"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Neo4j     Neo4jConfig
	Embedding EmbeddingConfig
	Source    SourceConfig
	Import    ImportConfig
}

// Neo4jConfig holds the graph database connection settings
type Neo4jConfig struct {
	URI      string `env:"NEO4J_URI" envDefault:"bolt://localhost:7687"`
	Username string `env:"NEO4J_USERNAME" envDefault:"neo4j"`
	Password string `env:"NEO4J_PASSWORD" envDefault:"password"`
	Database string `env:"NEO4J_DATABASE" envDefault:"neo4j"`

	EntityIndex       string `env:"NEO4J_ENTITY_INDEX" envDefault:"entity_embeddings"`
	RelationshipIndex string `env:"NEO4J_RELATIONSHIP_INDEX" envDefault:"relationship_embeddings"`
}

// EmbeddingConfig holds embedding provider settings.
//
// Adapter is one of "gemini", "openai" or "ollama".
type EmbeddingConfig struct {
	Adapter   string        `env:"AI_ADAPTER" envDefault:"gemini"`
	Model     string        `env:"AI_EMBED_MODEL"`
	URL       string        `env:"AI_EMBED_URL"`
	Key       string        `env:"AI_EMBED_KEY"`
	Dimension int           `env:"AI_EMBED_DIM" envDefault:"768"`
	Delay     time.Duration `env:"AI_EMBED_DELAY" envDefault:"150ms"`
	Disabled  bool          `env:"AI_EMBED_DISABLED" envDefault:"false"`

	GoogleAPIKey   string `env:"GOOGLE_API_KEY"`
	GraphRAGAPIKey string `env:"GRAPHRAG_API_KEY"`
}

// APIKey returns the first configured key, preferring AI_EMBED_KEY.
func (e *EmbeddingConfig) APIKey() string {
	for _, k := range []string{e.Key, e.GoogleAPIKey, e.GraphRAGAPIKey} {
		if k != "" {
			return k
		}
	}
	return ""
}

// IsEnabled reports whether an embedding client can be built. Ollama runs
// without a key, the hosted adapters need one.
func (e *EmbeddingConfig) IsEnabled() bool {
	if e.Disabled {
		return false
	}
	if strings.EqualFold(e.Adapter, "ollama") {
		return true
	}
	return e.APIKey() != ""
}

// SourceConfig describes where the GraphRAG output tables are read from.
//
// URI is a local directory, "s3://bucket/prefix" or a "postgres://" DSN.
type SourceConfig struct {
	URI    string `env:"SOURCE_URI" envDefault:"output"`
	Format string `env:"SOURCE_FORMAT" envDefault:"parquet"`
	Schema string `env:"SOURCE_SCHEMA" envDefault:"public"`

	S3 S3Config
}

// S3Config holds S3 / MinIO credentials for s3:// sources
type S3Config struct {
	Region    string `env:"AWS_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"AWS_ENDPOINT"`
	AccessKey string `env:"AWS_ACCESS_KEY"`
	SecretKey string `env:"AWS_SECRET_KEY"`
}

type ImportConfig struct {
	TextUnits bool `env:"IMPORT_TEXT_UNITS" envDefault:"false"`
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Embedding.Dimension <= 0 {
		return nil, fmt.Errorf("AI_EMBED_DIM must be positive, got %d", cfg.Embedding.Dimension)
	}
	switch strings.ToLower(cfg.Source.Format) {
	case "parquet", "csv":
	default:
		return nil, fmt.Errorf("unsupported SOURCE_FORMAT %q", cfg.Source.Format)
	}
	return cfg, nil
}
