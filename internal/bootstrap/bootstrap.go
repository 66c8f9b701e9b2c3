// Package bootstrap builds the graph store, embedding client and table
// reader selected by the configuration.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/graphlift/internal/config"
	"github.com/OFFIS-RIT/graphlift/internal/storage"
	"github.com/OFFIS-RIT/graphlift/pkg/ai"
	"github.com/OFFIS-RIT/graphlift/pkg/ai/gemini"
	"github.com/OFFIS-RIT/graphlift/pkg/ai/ollama"
	"github.com/OFFIS-RIT/graphlift/pkg/ai/openai"
	"github.com/OFFIS-RIT/graphlift/pkg/loader"
	"github.com/OFFIS-RIT/graphlift/pkg/loader/csv"
	"github.com/OFFIS-RIT/graphlift/pkg/loader/io"
	"github.com/OFFIS-RIT/graphlift/pkg/loader/parquet"
	"github.com/OFFIS-RIT/graphlift/pkg/loader/postgres"
	s3loader "github.com/OFFIS-RIT/graphlift/pkg/loader/s3"
	"github.com/OFFIS-RIT/graphlift/pkg/store"
	neo4jstore "github.com/OFFIS-RIT/graphlift/pkg/store/neo4j"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewGraphStorage connects to the configured Neo4j database.
func NewGraphStorage(ctx context.Context, cfg *config.Config) (store.GraphStorage, error) {
	client, err := neo4jstore.NewClient(ctx, neo4jstore.NewClientParams{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
		Database: cfg.Neo4j.Database,
	})
	if err != nil {
		return nil, err
	}
	return neo4jstore.NewGraphStorage(client,
		neo4jstore.WithVectorIndexNames(cfg.Neo4j.EntityIndex, cfg.Neo4j.RelationshipIndex)), nil
}

// NewEmbeddingClient returns the configured embedding adapter. It returns
// nil without an error when embeddings are disabled or no key is set.
func NewEmbeddingClient(ctx context.Context, cfg *config.Config) (ai.EmbeddingClient, error) {
	ec := cfg.Embedding
	if !ec.IsEnabled() {
		return nil, nil
	}

	switch strings.ToLower(ec.Adapter) {
	case "gemini":
		client, err := gemini.NewGraphGeminiClient(ctx, gemini.NewGraphGeminiClientParams{
			APIKey:     ec.APIKey(),
			Model:      ec.Model,
			Dimensions: ec.Dimension,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "ollama":
		client, err := ollama.NewGraphOllamaClient(ollama.NewGraphOllamaClientParams{
			EmbeddingModel: ec.Model,
			BaseURL:        ec.URL,
			ApiKey:         ec.APIKey(),
		})
		if err != nil {
			return nil, fmt.Errorf("could not create ollama client: %w", err)
		}
		return client, nil
	case "openai":
		client := openai.NewGraphOpenAIClient(openai.NewGraphOpenAIClientParams{
			EmbeddingModel: ec.Model,
			EmbeddingURL:   ec.URL,
			EmbeddingKey:   ec.APIKey(),
			Dimensions:     ec.Dimension,
		})
		if client == nil {
			return nil, nil
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported AI_ADAPTER %q", ec.Adapter)
	}
}

// NewTableReader opens the GraphRAG output named by uri. The returned close
// function releases connections held by the reader and is never nil.
//
// uri is an "s3://bucket/prefix" location, a "postgres://" DSN or a local
// directory. format selects the file decoder and is ignored for Postgres.
func NewTableReader(ctx context.Context, cfg *config.Config, uri, format string) (loader.TableReader, func(), error) {
	noop := func() {}

	switch {
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		pool, err := pgxpool.New(ctx, uri)
		if err != nil {
			return nil, noop, fmt.Errorf("unable to connect to database: %w", err)
		}
		return postgres.NewPostgresTableReader(pool, cfg.Source.Schema), pool.Close, nil
	}

	decoder, err := newDecoder(format)
	if err != nil {
		return nil, noop, err
	}

	if strings.HasPrefix(uri, "s3://") {
		bucket, prefix, err := s3loader.ParseURI(uri)
		if err != nil {
			return nil, noop, err
		}
		client, err := storage.NewS3Client(ctx, cfg.Source.S3)
		if err != nil {
			return nil, noop, err
		}
		return loader.NewFileTableReader(s3loader.NewS3Fetcher(client, bucket, prefix), decoder), noop, nil
	}

	return loader.NewFileTableReader(io.NewIOFetcher(uri), decoder), noop, nil
}

func newDecoder(format string) (loader.Decoder, error) {
	switch strings.ToLower(format) {
	case "", "parquet":
		return parquet.NewParquetDecoder(), nil
	case "csv":
		return csv.NewCSVDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
