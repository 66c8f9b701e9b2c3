// Package cli implements the graphlift command line.
package cli

import (
	"context"

	"github.com/OFFIS-RIT/graphlift/internal/bootstrap"
	"github.com/OFFIS-RIT/graphlift/internal/config"
	"github.com/OFFIS-RIT/graphlift/internal/util"
	"github.com/OFFIS-RIT/graphlift/pkg/ai"
	"github.com/OFFIS-RIT/graphlift/pkg/loader"
	"github.com/OFFIS-RIT/graphlift/pkg/logger"
	"github.com/OFFIS-RIT/graphlift/pkg/logger/console"
	"github.com/OFFIS-RIT/graphlift/pkg/store"

	"github.com/spf13/cobra"
)

// Deps opens the resources a command needs. Tests swap them for fakes.
type Deps struct {
	LoadConfig   func() (*config.Config, error)
	OpenStorage  func(ctx context.Context, cfg *config.Config) (store.GraphStorage, error)
	OpenEmbedder func(ctx context.Context, cfg *config.Config) (ai.EmbeddingClient, error)
	OpenReader   func(ctx context.Context, cfg *config.Config, uri, format string) (loader.TableReader, func(), error)
}

// DefaultDeps reads .env and the environment and connects to real services.
func DefaultDeps() Deps {
	return Deps{
		LoadConfig: func() (*config.Config, error) {
			util.LoadEnv()
			return config.Load()
		},
		OpenStorage:  bootstrap.NewGraphStorage,
		OpenEmbedder: bootstrap.NewEmbeddingClient,
		OpenReader:   bootstrap.NewTableReader,
	}
}

type rootOptions struct {
	debug     bool
	logFormat string

	cfg *config.Config
}

// NewRootCommand builds the graphlift command tree.
func NewRootCommand(deps Deps) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "graphlift",
		Short: "Load GraphRAG output into Neo4j and enrich it with embeddings",
		Long: `graphlift imports the tables produced by a GraphRAG indexing run into a
Neo4j knowledge graph, adds embeddings to entities and relationships and
reports on the result.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = opts.debug
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = opts.logFormat
			}
			logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
				Debug:  cfg.Debug,
				Format: cfg.LogFormat,
				Output: cmd.ErrOrStderr(),
			}))
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging (overrides DEBUG)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text, json or logfmt (overrides LOG_FORMAT)")

	cmd.AddCommand(newImportCommand(deps, opts))
	cmd.AddCommand(newEmbedCommand(deps, opts))
	cmd.AddCommand(newStatsCommand(deps, opts))
	return cmd
}
