// Package query answers read requests against the graph. Semantic search
// degrades to keyword matching through an ordered list of strategies.
package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/OFFIS-RIT/graphlift/pkg/ai"
	"github.com/OFFIS-RIT/graphlift/pkg/common"
	"github.com/OFFIS-RIT/graphlift/pkg/logger"
	"github.com/OFFIS-RIT/graphlift/pkg/store"
)

var (
	// ErrSemanticDisabled is returned when semantic search is requested
	// without an embedding client.
	ErrSemanticDisabled = errors.New("semantic search is not enabled, configure an embedding provider")
	// ErrNotFound is returned when a named entity does not exist.
	ErrNotFound = errors.New("not found")
)

// Strategy names the retrieval method that produced a result set.
type Strategy string

const (
	StrategySemantic          Strategy = "semantic"
	StrategyKeyword           Strategy = "keyword"
	StrategyKeywordExtraction Strategy = "keyword_extraction"
)

// Fallback reasons as reported in metrics and logs.
const (
	ReasonDisabled       = "disabled"
	ReasonEmbeddingError = "embedding_error"
	ReasonEmptyEmbedding = "empty_embedding"
	ReasonVectorQuery    = "vector_query_error"
)

// AskLimit is the number of results the question endpoint returns.
const AskLimit = 5

// SearchOutcome carries results together with the strategy that actually
// produced them.
type SearchOutcome struct {
	Strategy       Strategy
	Fallback       bool
	FallbackReason string
	Results        []common.SearchResult
}

// Answer is one formatted result of Ask.
type Answer struct {
	Entity          string                 `json:"entity"`
	Type            string                 `json:"type"`
	Description     string                 `json:"description"`
	Relevance       float64                `json:"relevance"`
	Connections     int64                  `json:"connections"`
	RelatedEntities []common.RelatedEntity `json:"related_entities"`
	Communities     []string               `json:"communities"`
}

// AskOutcome is the result of a natural language question.
type AskOutcome struct {
	Strategy Strategy
	Fallback bool
	Answers  []Answer
}

// Service runs retrieval requests. It holds no state between requests.
type Service struct {
	storage    store.QueryStorage
	embedder   ai.EmbeddingClient
	metrics    *Metrics
	dimensions int
}

// NewServiceParams configures a Service. Embedder may be nil, which
// disables semantic search. Metrics may be nil. Dimensions is the size of
// the entity vector index; query vectors are requested at that size, zero
// keeps the model default.
type NewServiceParams struct {
	Storage    store.QueryStorage
	Embedder   ai.EmbeddingClient
	Metrics    *Metrics
	Dimensions int
}

func NewService(params NewServiceParams) *Service {
	return &Service{
		storage:    params.Storage,
		embedder:   params.Embedder,
		metrics:    params.Metrics,
		dimensions: params.Dimensions,
	}
}

// SemanticEnabled reports whether an embedding client is configured.
func (s *Service) SemanticEnabled() bool {
	return s.embedder != nil
}

func (s *Service) Stats(ctx context.Context) (common.GraphStats, error) {
	return s.storage.Stats(ctx)
}

// KeywordSearch matches q as a case insensitive substring of entity names
// and descriptions.
func (s *Service) KeywordSearch(ctx context.Context, q string, limit int) (SearchOutcome, error) {
	start := time.Now()
	results, err := s.storage.KeywordSearch(ctx, q, limit)
	if err != nil {
		return SearchOutcome{}, fmt.Errorf("keyword search failed: %w", err)
	}
	s.metrics.observe(StrategyKeyword, start)
	return SearchOutcome{Strategy: StrategyKeyword, Results: results}, nil
}

// SemanticSearch runs a vector search and falls back to keyword search on
// q when the query cannot be embedded or the vector query fails. It returns
// ErrSemanticDisabled without an embedding client.
func (s *Service) SemanticSearch(ctx context.Context, q string, limit int) (SearchOutcome, error) {
	if !s.SemanticEnabled() {
		return SearchOutcome{}, ErrSemanticDisabled
	}
	return s.semanticOr(ctx, q, limit, func(ctx context.Context) (SearchOutcome, error) {
		return s.KeywordSearch(ctx, q, limit)
	})
}

// Ask answers a natural language question. It prefers semantic search and
// otherwise searches for the question's keywords.
func (s *Service) Ask(ctx context.Context, question string) (AskOutcome, error) {
	extract := func(ctx context.Context) (SearchOutcome, error) {
		return s.keywordExtraction(ctx, question)
	}

	var (
		outcome SearchOutcome
		err     error
	)
	if s.SemanticEnabled() {
		outcome, err = s.semanticOr(ctx, question, AskLimit, extract)
	} else {
		s.metrics.fallback(ReasonDisabled)
		outcome, err = extract(ctx)
	}
	if err != nil {
		return AskOutcome{}, err
	}

	answers := make([]Answer, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		answers = append(answers, Answer{
			Entity:          r.EntityName,
			Type:            r.EntityType,
			Description:     r.EntityDescription,
			Relevance:       round4(r.RelevanceScore),
			Connections:     r.Connections,
			RelatedEntities: r.RelatedEntities,
			Communities:     r.Communities,
		})
	}
	return AskOutcome{Strategy: outcome.Strategy, Fallback: outcome.Fallback, Answers: answers}, nil
}

func (s *Service) keywordExtraction(ctx context.Context, question string) (SearchOutcome, error) {
	start := time.Now()
	keywords := ExtractKeywords(question)
	results, err := s.storage.KeywordSearch(ctx, keywords, AskLimit)
	if err != nil {
		return SearchOutcome{}, fmt.Errorf("keyword search failed: %w", err)
	}
	s.metrics.observe(StrategyKeywordExtraction, start)
	return SearchOutcome{Strategy: StrategyKeywordExtraction, Results: results}, nil
}

// semanticOr tries the vector search and runs fallback when one of its
// steps fails. Each trigger is checked in order.
func (s *Service) semanticOr(
	ctx context.Context,
	q string,
	limit int,
	fallback func(ctx context.Context) (SearchOutcome, error),
) (SearchOutcome, error) {
	start := time.Now()
	degrade := func(reason string, cause error) (SearchOutcome, error) {
		logger.Warn("[Query] Semantic search unavailable, falling back", "reason", reason, "err", cause)
		s.metrics.fallback(reason)
		outcome, err := fallback(ctx)
		if err != nil {
			return SearchOutcome{}, err
		}
		outcome.Fallback = true
		outcome.FallbackReason = reason
		return outcome, nil
	}

	vec, err := s.embedder.GenerateEmbedding(ctx, []byte(q),
		ai.WithTaskType(ai.TaskRetrievalQuery), ai.WithDimensions(s.dimensions))
	if err != nil {
		if ctx.Err() != nil {
			return SearchOutcome{}, ctx.Err()
		}
		return degrade(ReasonEmbeddingError, err)
	}
	if len(vec) == 0 {
		return degrade(ReasonEmptyEmbedding, nil)
	}

	results, err := s.storage.VectorSearch(ctx, vec, limit)
	if err != nil {
		if ctx.Err() != nil {
			return SearchOutcome{}, ctx.Err()
		}
		return degrade(ReasonVectorQuery, err)
	}
	s.metrics.observe(StrategySemantic, start)
	return SearchOutcome{Strategy: StrategySemantic, Results: results}, nil
}

// EntityDetail returns the neighbourhood of the named entity. Depth must be
// between store.MinDepth and store.MaxDepth.
func (s *Service) EntityDetail(ctx context.Context, name string, depth int) (*common.EntityDetail, error) {
	if err := store.CheckDepth(depth); err != nil {
		return nil, err
	}
	detail, err := s.storage.EntityDetail(ctx, name, depth)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("entity '%s' %w", name, ErrNotFound)
	}
	return detail, nil
}

// Communities searches communities by member name, or lists the top
// ranked communities when keyword is empty.
func (s *Service) Communities(ctx context.Context, keyword string, limit int) ([]common.CommunitySummary, error) {
	if keyword == "" {
		return s.storage.TopCommunities(ctx, limit)
	}
	return s.storage.SearchCommunities(ctx, keyword, limit)
}

// Entities lists entities by degree. A limit of zero returns all of them.
func (s *Service) Entities(ctx context.Context, limit int) ([]common.EntitySummary, error) {
	return s.storage.ListEntities(ctx, limit)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
