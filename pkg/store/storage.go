package store

import (
	"context"
	"errors"

	"github.com/OFFIS-RIT/graphlift/pkg/common"
)

// ErrUnavailable marks failures to reach the graph store at all, as opposed
// to a single statement failing. Pipelines abort on it.
var ErrUnavailable = errors.New("graph store unavailable")

// ElementKind selects the graph elements an embedding operation targets.
type ElementKind string

const (
	ElementEntities      ElementKind = "entities"
	ElementRelationships ElementKind = "relationships"
)

// SchemaStorage declares constraints and indexes. All declarations are
// idempotent.
type SchemaStorage interface {
	EnsureConstraints(ctx context.Context) error
	EnsureIndexes(ctx context.Context) error
	Reset(ctx context.Context) error
}

// ImportStorage holds the upserts of the import pipeline. Every write is
// keyed by id. Methods returning a bool report whether the referenced
// nodes existed and the write happened.
type ImportStorage interface {
	SchemaStorage

	UpsertDocument(ctx context.Context, doc common.Document) error
	UpsertEntity(ctx context.Context, entity common.Entity) error
	UpsertRelationship(ctx context.Context, rel common.Relationship) (bool, error)
	UpsertCommunity(ctx context.Context, community common.Community) error
	ApplyCommunityReport(ctx context.Context, report common.CommunityReport) (bool, error)
	LinkEntityToCommunity(ctx context.Context, entityID, communityID string) (bool, error)
	UpsertTextUnit(ctx context.Context, unit common.TextUnit) error
	LinkTextUnitToEntity(ctx context.Context, unitID, entityID string) (bool, error)
}

// EmbeddingStorage reads enrichment candidates and writes vectors back.
type EmbeddingStorage interface {
	ListEmbeddingCandidates(ctx context.Context, kind ElementKind, onlyMissing bool) ([]common.EmbeddingCandidate, error)
	SetEmbedding(ctx context.Context, kind ElementKind, id string, embedding common.Embedding) (bool, error)
	EnsureVectorIndex(ctx context.Context, kind ElementKind, dimensions int) (bool, error)
	EmbeddingStats(ctx context.Context) (common.EmbeddingStats, error)
}

// QueryStorage holds the read side used by the retrieval service.
// EntityDetail returns nil when no entity has the name.
type QueryStorage interface {
	Stats(ctx context.Context) (common.GraphStats, error)
	KeywordSearch(ctx context.Context, query string, limit int) ([]common.SearchResult, error)
	VectorSearch(ctx context.Context, embedding []float32, limit int) ([]common.SearchResult, error)
	EntityDetail(ctx context.Context, name string, depth int) (*common.EntityDetail, error)
	SearchCommunities(ctx context.Context, keyword string, limit int) ([]common.CommunitySummary, error)
	TopCommunities(ctx context.Context, limit int) ([]common.CommunitySummary, error)
	ListEntities(ctx context.Context, limit int) ([]common.EntitySummary, error)
}

// GraphStorage is the full graph store used by the CLI and the server.
type GraphStorage interface {
	ImportStorage
	EmbeddingStorage
	QueryStorage
	Close(ctx context.Context) error
}
