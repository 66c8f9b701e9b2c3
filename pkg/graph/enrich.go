package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/graphlift/pkg/ai"
	"github.com/OFFIS-RIT/graphlift/pkg/common"
	"github.com/OFFIS-RIT/graphlift/pkg/logger"
	"github.com/OFFIS-RIT/graphlift/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/time/rate"
)

// DefaultEmbedDelay is the pause between two provider requests.
const DefaultEmbedDelay = 150 * time.Millisecond

// EnrichReport counts the elements one enrichment pass handled.
type EnrichReport struct {
	RunID        string            `json:"run_id"`
	Kind         store.ElementKind `json:"kind"`
	Total        int               `json:"total"`
	Succeeded    int               `json:"succeeded"`
	Failed       int               `json:"failed"`
	Dimension    int               `json:"dimension"`
	IndexCreated bool              `json:"index_created"`
}

// Enricher attaches embeddings to graph elements. Requests are sequential
// and paced; a failed element is logged and skipped.
type Enricher struct {
	storage    store.EmbeddingStorage
	client     ai.EmbeddingClient
	limiter    *rate.Limiter
	force      bool
	dimensions int
}

// NewEnricherParams configures an Enricher.
//
// Delay is the minimum time between two requests, zero disables pacing.
// Force re-embeds elements that already carry an embedding. Dimensions is
// requested from the provider and is the index size used when a pass writes
// no vectors; zero keeps the model default.
type NewEnricherParams struct {
	Storage    store.EmbeddingStorage
	Client     ai.EmbeddingClient
	Delay      time.Duration
	Force      bool
	Dimensions int
}

func NewEnricher(params NewEnricherParams) (*Enricher, error) {
	if params.Storage == nil {
		return nil, fmt.Errorf("enricher needs a storage")
	}
	if params.Client == nil {
		return nil, fmt.Errorf("enricher needs an embedding client")
	}

	limit := rate.Inf
	if params.Delay > 0 {
		limit = rate.Every(params.Delay)
	}
	return &Enricher{
		storage:    params.Storage,
		client:     params.Client,
		limiter:    rate.NewLimiter(limit, 1),
		force:      params.Force,
		dimensions: params.Dimensions,
	}, nil
}

// Run enriches entities and then relationships.
func (e *Enricher) Run(ctx context.Context) ([]EnrichReport, error) {
	var reports []EnrichReport
	for _, kind := range []store.ElementKind{store.ElementEntities, store.ElementRelationships} {
		report, err := e.Enrich(ctx, kind)
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// Enrich embeds every candidate of kind and declares the kind's vector index.
// Index failures other than an unreachable store are logged, the
// embeddings written stay in place.
func (e *Enricher) Enrich(ctx context.Context, kind store.ElementKind) (EnrichReport, error) {
	runID, err := gonanoid.New()
	if err != nil {
		return EnrichReport{}, fmt.Errorf("failed to create run id: %w", err)
	}
	report := EnrichReport{RunID: runID, Kind: kind}

	candidates, err := e.storage.ListEmbeddingCandidates(ctx, kind, !e.force)
	if err != nil {
		return report, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	report.Total = len(candidates)
	logger.Info("[Embed] Starting", "run_id", runID, "kind", kind, "candidates", len(candidates),
		"model", e.client.Model(), "force", e.force)

	for _, c := range candidates {
		if err := e.limiter.Wait(ctx); err != nil {
			return report, err
		}

		text := EmbeddingText(kind, c)
		vec, err := e.client.GenerateEmbedding(ctx, []byte(text),
			ai.WithTaskType(ai.TaskRetrievalDocument), ai.WithDimensions(e.dimensions))
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			logger.Warn("[Embed] Provider failed, skipping", "run_id", runID, "kind", kind, "id", c.ID, "err", err)
			report.Failed++
			continue
		}
		if len(vec) == 0 {
			logger.Warn("[Embed] Empty embedding, skipping", "run_id", runID, "kind", kind, "id", c.ID)
			report.Failed++
			continue
		}

		ok, err := e.storage.SetEmbedding(ctx, kind, c.ID, common.Embedding{Vector: vec, Text: text})
		if err != nil {
			if isFatal(err) {
				return report, fmt.Errorf("embedding aborted: %w", err)
			}
			logger.Warn("[Embed] Write failed", "run_id", runID, "kind", kind, "id", c.ID, "err", err)
			report.Failed++
			continue
		}
		if !ok {
			logger.Debug("[Embed] Element disappeared", "run_id", runID, "kind", kind, "id", c.ID)
			report.Failed++
			continue
		}
		if report.Dimension == 0 {
			report.Dimension = len(vec)
		} else if report.Dimension != len(vec) {
			logger.Warn("[Embed] Mixed embedding dimensions", "run_id", runID, "kind", kind,
				"id", c.ID, "expected", report.Dimension, "got", len(vec))
		}
		report.Succeeded++
	}

	dims := report.Dimension
	if dims == 0 {
		dims = e.dimensions
	}
	if dims > 0 {
		created, err := e.storage.EnsureVectorIndex(ctx, kind, dims)
		switch {
		case err == nil:
			report.IndexCreated = created
		case isFatal(err):
			return report, fmt.Errorf("failed to create vector index: %w", err)
		default:
			logger.Warn("[Embed] Vector index not created", "run_id", runID, "kind", kind,
				"dimension", dims, "err", err)
		}
	}

	logger.Info("[Embed] Completed", "run_id", runID, "kind", kind,
		"succeeded", report.Succeeded, "failed", report.Failed, "dimension", dims)
	return report, nil
}

// EmbeddingText is the text an element is embedded from.
func EmbeddingText(kind store.ElementKind, c common.EmbeddingCandidate) string {
	if kind == store.ElementRelationships {
		return fmt.Sprintf("%s %s %s", c.SourceName, c.Description, c.TargetName)
	}
	return fmt.Sprintf("%s (%s): %s", c.Name, c.Type, c.Description)
}
