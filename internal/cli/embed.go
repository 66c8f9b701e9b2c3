package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/graphlift/pkg/graph"
	"github.com/OFFIS-RIT/graphlift/pkg/logger"
	"github.com/OFFIS-RIT/graphlift/pkg/query"
	"github.com/OFFIS-RIT/graphlift/pkg/store"

	"github.com/spf13/cobra"
)

// verifyLimit is the number of neighbours the similarity check prints.
const verifyLimit = 3

var errNoEmbedder = errors.New("no embedding provider configured, set AI_EMBED_KEY or use AI_ADAPTER=ollama")

type embedOptions struct {
	kind   string
	force  bool
	delay  time.Duration
	verify string
}

func newEmbedCommand(deps Deps, root *rootOptions) *cobra.Command {
	opts := &embedOptions{}

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Add embeddings to entities and relationships",
		Long: `Embed entities and relationships that have no embedding yet and create
the matching vector indexes. --force re-embeds everything.

Examples:
  graphlift embed
  graphlift embed --kind entities --delay 500ms
  graphlift embed --force
  graphlift embed --verify "CEO of Tesla"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			ctx := cmd.Context()

			var kinds []store.ElementKind
			switch opts.kind {
			case "all":
				kinds = []store.ElementKind{store.ElementEntities, store.ElementRelationships}
			case string(store.ElementEntities), string(store.ElementRelationships):
				kinds = []store.ElementKind{store.ElementKind(opts.kind)}
			default:
				return fmt.Errorf("unknown kind %q, use entities, relationships or all", opts.kind)
			}
			if !cmd.Flags().Changed("delay") {
				opts.delay = cfg.Embedding.Delay
			}

			client, err := deps.OpenEmbedder(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to create embedding client: %w", err)
			}
			if client == nil {
				return errNoEmbedder
			}

			storage, err := deps.OpenStorage(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to graph: %w", err)
			}
			defer storage.Close(ctx)

			enricher, err := graph.NewEnricher(graph.NewEnricherParams{
				Storage:    storage,
				Client:     client,
				Delay:      opts.delay,
				Force:      opts.force,
				Dimensions: cfg.Embedding.Dimension,
			})
			if err != nil {
				return err
			}

			logger.Info("[Embed] Using model", "adapter", cfg.Embedding.Adapter, "model", client.Model())
			var reports []graph.EnrichReport
			for _, kind := range kinds {
				report, err := enricher.Enrich(ctx, kind)
				reports = append(reports, report)
				if err != nil {
					printEnrichReports(cmd.OutOrStdout(), reports)
					return err
				}
			}
			printEnrichReports(cmd.OutOrStdout(), reports)

			stats, err := storage.EmbeddingStats(ctx)
			if err != nil {
				return fmt.Errorf("failed to read embedding stats: %w", err)
			}
			printEmbeddingStats(cmd.OutOrStdout(), stats)

			if opts.verify != "" {
				svc := query.NewService(query.NewServiceParams{
					Storage:    storage,
					Embedder:   client,
					Dimensions: cfg.Embedding.Dimension,
				})
				outcome, err := svc.SemanticSearch(ctx, opts.verify, verifyLimit)
				if err != nil {
					logger.Warn("[Embed] Similarity check failed", "query", opts.verify, "err", err)
					return nil
				}
				printVerification(cmd.OutOrStdout(), opts.verify, outcome)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "all", "elements to embed: entities, relationships or all")
	cmd.Flags().BoolVar(&opts.force, "force", false, "re-embed elements that already have an embedding")
	cmd.Flags().DurationVar(&opts.delay, "delay", graph.DefaultEmbedDelay, "pause between provider requests (default AI_EMBED_DELAY)")
	cmd.Flags().StringVar(&opts.verify, "verify", "", "after embedding, list the entities closest to this query")
	return cmd
}
