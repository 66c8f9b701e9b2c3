package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/OFFIS-RIT/graphlift/internal/util"
	"github.com/OFFIS-RIT/graphlift/pkg/common"
	"github.com/OFFIS-RIT/graphlift/pkg/graph"
	"github.com/OFFIS-RIT/graphlift/pkg/query"

	"github.com/spf13/cobra"
)

func newStatsCommand(deps Deps, root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show node, relationship and embedding counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			storage, err := deps.OpenStorage(ctx, root.cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to graph: %w", err)
			}
			defer storage.Close(ctx)

			stats, err := storage.Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to read graph stats: %w", err)
			}
			embeddings, err := storage.EmbeddingStats(ctx)
			if err != nil {
				return fmt.Errorf("failed to read embedding stats: %w", err)
			}
			printGraphStats(cmd.OutOrStdout(), stats)
			printEmbeddingStats(cmd.OutOrStdout(), embeddings)
			return nil
		},
	}
}

func printImportReport(out io.Writer, report graph.ImportReport) {
	fmt.Fprintf(out, "Import run %s\n", report.RunID)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tTOTAL\tSUCCEEDED\tFAILED")
	for _, s := range report.Steps {
		if s.Skipped {
			fmt.Fprintf(tw, "%s\t-\t-\tskipped\n", s.Step)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", s.Step, s.Total, s.Succeeded, s.Failed)
	}
	tw.Flush()
	if report.Duration > 0 {
		fmt.Fprintf(out, "Finished in %s\n", report.Duration.Round(time.Millisecond))
	}
}

func printEnrichReports(out io.Writer, reports []graph.EnrichReport) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tTOTAL\tSUCCEEDED\tFAILED\tDIMENSION\tINDEX")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%t\n", r.Kind, r.Total, r.Succeeded, r.Failed, r.Dimension, r.IndexCreated)
	}
	tw.Flush()
}

func printGraphStats(out io.Writer, s common.GraphStats) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Entities:\t%d\n", s.TotalEntities)
	fmt.Fprintf(tw, "Relationships:\t%d\n", s.TotalRelationships)
	fmt.Fprintf(tw, "Communities:\t%d\n", s.TotalCommunities)
	fmt.Fprintf(tw, "Documents:\t%d\n", s.TotalDocuments)
	fmt.Fprintf(tw, "Text units:\t%d\n", s.TotalTextUnits)
	tw.Flush()
}

func printEmbeddingStats(out io.Writer, s common.EmbeddingStats) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Entities with embedding:\t%d/%d\t%v\n", s.EntitiesEmbedded, s.EntitiesTotal, s.EntityDimensions)
	fmt.Fprintf(tw, "Relationships with embedding:\t%d/%d\t%v\n", s.RelationshipsEmbedded, s.RelationshipsTotal, s.RelationshipDimensions)
	tw.Flush()
	if s.Sample != nil {
		fmt.Fprintf(out, "Sample: %s (%d dimensions)\n  %s\n", s.Sample.Name, s.Sample.Dimension, util.Truncate(s.Sample.Text, 80))
	}
}

func printVerification(out io.Writer, q string, outcome query.SearchOutcome) {
	fmt.Fprintf(out, "Similarity check for %q using %s search", q, outcome.Strategy)
	if outcome.Fallback {
		fmt.Fprintf(out, " (vector search unavailable: %s)", outcome.FallbackReason)
	}
	fmt.Fprintln(out)
	if len(outcome.Results) == 0 {
		fmt.Fprintln(out, "  no results")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, r := range outcome.Results {
		fmt.Fprintf(tw, "  %s\t%s\t%.4f\n", r.EntityName, r.EntityType, r.RelevanceScore)
	}
	tw.Flush()
}
