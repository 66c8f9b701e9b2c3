package neo4j

import (
	"context"

	"github.com/OFFIS-RIT/graphlift/pkg/store"
)

const (
	defaultEntityIndex       = "entity_embeddings"
	defaultRelationshipIndex = "relationship_embeddings"
)

// GraphStorage implements store.GraphStorage with Cypher over a Runner.
type GraphStorage struct {
	runner Runner
	closer func(ctx context.Context) error

	entityIndex       string
	relationshipIndex string
}

// GraphStorageOption configures a GraphStorage.
type GraphStorageOption func(*GraphStorage)

// WithVectorIndexNames overrides the vector index names.
func WithVectorIndexNames(entity, relationship string) GraphStorageOption {
	return func(s *GraphStorage) {
		if entity != "" {
			s.entityIndex = entity
		}
		if relationship != "" {
			s.relationshipIndex = relationship
		}
	}
}

// NewGraphStorage creates a store over r. When r is a *Client, Close closes
// the driver.
func NewGraphStorage(r Runner, opts ...GraphStorageOption) *GraphStorage {
	s := &GraphStorage{
		runner:            r,
		entityIndex:       defaultEntityIndex,
		relationshipIndex: defaultRelationshipIndex,
	}
	if c, ok := r.(*Client); ok {
		s.closer = c.Close
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GraphStorage) Close(ctx context.Context) error {
	if s.closer == nil {
		return nil
	}
	return s.closer(ctx)
}

var _ store.GraphStorage = (*GraphStorage)(nil)
