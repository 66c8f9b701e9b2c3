// Package memory is an in-process graph store with the same write and read
// semantics as the Neo4j store. It backs dry runs and pipeline tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/graphlift/pkg/common"
	"github.com/OFFIS-RIT/graphlift/pkg/store"
)

// ErrNoVectorIndex is returned by VectorSearch before EnsureVectorIndex
// was called for entities, like a vector query against a missing index.
var ErrNoVectorIndex = errors.New("no such vector schema index: entity_embeddings")

type entityNode struct {
	common.Entity
	embedding *common.Embedding
}

type relationshipEdge struct {
	common.Relationship
	embedding *common.Embedding
}

type communityNode struct {
	common.Community
	report *common.CommunityReport
}

type pair struct {
	from, to string
}

// GraphStorage keeps the graph in maps guarded by a single lock. Slices of
// ids preserve insertion order so reads are deterministic.
type GraphStorage struct {
	mu sync.RWMutex

	documents     map[string]common.Document
	textUnits     map[string]common.TextUnit
	entities      map[string]*entityNode
	entityOrder   []string
	relationships map[string]*relationshipEdge
	relOrder      []string
	communities   map[string]*communityNode
	commOrder     []string

	belongsTo []pair
	mentions  []pair

	vectorIndexes map[store.ElementKind]int

	// FailWrites, when set, is returned by every write.
	FailWrites error
}

func New() *GraphStorage {
	s := &GraphStorage{}
	s.clear()
	return s
}

func (s *GraphStorage) clear() {
	s.documents = map[string]common.Document{}
	s.textUnits = map[string]common.TextUnit{}
	s.entities = map[string]*entityNode{}
	s.entityOrder = nil
	s.relationships = map[string]*relationshipEdge{}
	s.relOrder = nil
	s.communities = map[string]*communityNode{}
	s.commOrder = nil
	s.belongsTo = nil
	s.mentions = nil
	s.vectorIndexes = map[store.ElementKind]int{}
}

func (s *GraphStorage) EnsureConstraints(ctx context.Context) error {
	return ctx.Err()
}

func (s *GraphStorage) EnsureIndexes(ctx context.Context) error {
	return ctx.Err()
}

func (s *GraphStorage) Reset(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	return nil
}

func (s *GraphStorage) Close(context.Context) error {
	return nil
}

func (s *GraphStorage) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.FailWrites
}

func (s *GraphStorage) UpsertDocument(ctx context.Context, doc common.Document) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = doc
	return nil
}

func (s *GraphStorage) UpsertEntity(ctx context.Context, entity common.Entity) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.entities[entity.ID]; ok {
		n.Entity = entity
		return nil
	}
	s.entities[entity.ID] = &entityNode{Entity: entity}
	s.entityOrder = append(s.entityOrder, entity.ID)
	return nil
}

func (s *GraphStorage) UpsertRelationship(ctx context.Context, rel common.Relationship) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entities[rel.Source] == nil || s.entities[rel.Target] == nil {
		return false, nil
	}
	if e, ok := s.relationships[rel.ID]; ok {
		if e.Source != rel.Source || e.Target != rel.Target {
			e.embedding = nil
		}
		e.Relationship = rel
		return true, nil
	}
	s.relationships[rel.ID] = &relationshipEdge{Relationship: rel}
	s.relOrder = append(s.relOrder, rel.ID)
	return true, nil
}

func (s *GraphStorage) UpsertCommunity(ctx context.Context, community common.Community) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.communities[community.ID]; ok {
		n.Community = community
		return nil
	}
	s.communities[community.ID] = &communityNode{Community: community}
	s.commOrder = append(s.commOrder, community.ID)
	return nil
}

func (s *GraphStorage) ApplyCommunityReport(ctx context.Context, report common.CommunityReport) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.communities[report.CommunityID]
	if !ok {
		return false, nil
	}
	r := report
	n.report = &r
	return true, nil
}

func (s *GraphStorage) LinkEntityToCommunity(ctx context.Context, entityID, communityID string) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entities[entityID] == nil || s.communities[communityID] == nil {
		return false, nil
	}
	s.belongsTo = mergePair(s.belongsTo, pair{entityID, communityID})
	return true, nil
}

func (s *GraphStorage) UpsertTextUnit(ctx context.Context, unit common.TextUnit) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.textUnits[unit.ID] = unit
	return nil
}

func (s *GraphStorage) LinkTextUnitToEntity(ctx context.Context, unitID, entityID string) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.textUnits[unitID]; !ok || s.entities[entityID] == nil {
		return false, nil
	}
	s.mentions = mergePair(s.mentions, pair{unitID, entityID})
	return true, nil
}

func mergePair(pairs []pair, p pair) []pair {
	for _, existing := range pairs {
		if existing == p {
			return pairs
		}
	}
	return append(pairs, p)
}

func (s *GraphStorage) ListEmbeddingCandidates(ctx context.Context, kind store.ElementKind, onlyMissing bool) ([]common.EmbeddingCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []common.EmbeddingCandidate
	switch kind {
	case store.ElementEntities:
		for _, id := range s.entityOrder {
			n := s.entities[id]
			if onlyMissing && n.embedding != nil {
				continue
			}
			out = append(out, common.EmbeddingCandidate{
				ID: n.ID, Name: n.Name, Type: n.Type, Description: n.Description,
			})
		}
	case store.ElementRelationships:
		for _, id := range s.relOrder {
			e := s.relationships[id]
			if onlyMissing && e.embedding != nil {
				continue
			}
			out = append(out, common.EmbeddingCandidate{
				ID:          e.ID,
				Description: e.Description,
				SourceName:  s.entities[e.Source].Name,
				TargetName:  s.entities[e.Target].Name,
			})
		}
	default:
		return nil, fmt.Errorf("unknown element kind %q", kind)
	}
	return out, nil
}

func (s *GraphStorage) SetEmbedding(ctx context.Context, kind store.ElementKind, id string, embedding common.Embedding) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	emb := common.Embedding{
		Vector: append([]float32(nil), embedding.Vector...),
		Text:   embedding.Text,
	}
	switch kind {
	case store.ElementEntities:
		n, ok := s.entities[id]
		if !ok {
			return false, nil
		}
		n.embedding = &emb
	case store.ElementRelationships:
		e, ok := s.relationships[id]
		if !ok {
			return false, nil
		}
		e.embedding = &emb
	default:
		return false, fmt.Errorf("unknown element kind %q", kind)
	}
	return true, nil
}

func (s *GraphStorage) EnsureVectorIndex(ctx context.Context, kind store.ElementKind, dimensions int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if dimensions <= 0 {
		return false, fmt.Errorf("vector dimensions must be positive, got %d", dimensions)
	}
	if kind != store.ElementEntities && kind != store.ElementRelationships {
		return false, fmt.Errorf("unknown element kind %q", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vectorIndexes[kind]; !ok {
		s.vectorIndexes[kind] = dimensions
	}
	return true, nil
}

// VectorIndex reports the declared dimension of the kind's vector index.
func (s *GraphStorage) VectorIndex(kind store.ElementKind) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dims, ok := s.vectorIndexes[kind]
	return dims, ok
}

// Embedding returns the stored embedding of an element.
func (s *GraphStorage) Embedding(kind store.ElementKind, id string) (common.Embedding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch kind {
	case store.ElementEntities:
		if n, ok := s.entities[id]; ok && n.embedding != nil {
			return *n.embedding, true
		}
	case store.ElementRelationships:
		if e, ok := s.relationships[id]; ok && e.embedding != nil {
			return *e.embedding, true
		}
	}
	return common.Embedding{}, false
}

func (s *GraphStorage) EmbeddingStats(ctx context.Context) (common.EmbeddingStats, error) {
	if err := ctx.Err(); err != nil {
		return common.EmbeddingStats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats common.EmbeddingStats
	entityDims := map[int]bool{}
	for _, id := range s.entityOrder {
		stats.EntitiesTotal++
		if emb := s.entities[id].embedding; emb != nil {
			stats.EntitiesEmbedded++
			if stats.Sample == nil {
				stats.Sample = &common.EmbeddingSample{
					Name:      s.entities[id].Name,
					Text:      emb.Text,
					Dimension: emb.Dimension(),
				}
			}
			if !entityDims[emb.Dimension()] {
				entityDims[emb.Dimension()] = true
				stats.EntityDimensions = append(stats.EntityDimensions, emb.Dimension())
			}
		}
	}
	relDims := map[int]bool{}
	for _, id := range s.relOrder {
		stats.RelationshipsTotal++
		if emb := s.relationships[id].embedding; emb != nil {
			stats.RelationshipsEmbedded++
			if !relDims[emb.Dimension()] {
				relDims[emb.Dimension()] = true
				stats.RelationshipDimensions = append(stats.RelationshipDimensions, emb.Dimension())
			}
		}
	}
	return stats, nil
}

// Entity returns a stored entity by id.
func (s *GraphStorage) Entity(id string) (common.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.entities[id]
	if !ok {
		return common.Entity{}, false
	}
	return n.Entity, true
}

// Relationship returns a stored relationship by id.
func (s *GraphStorage) Relationship(id string) (common.Relationship, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.relationships[id]
	if !ok {
		return common.Relationship{}, false
	}
	return e.Relationship, true
}

// Community returns a stored community and its report, if one was applied.
func (s *GraphStorage) Community(id string) (common.Community, *common.CommunityReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.communities[id]
	if !ok {
		return common.Community{}, nil, false
	}
	return n.Community, n.report, true
}

// Document returns a stored document by id.
func (s *GraphStorage) Document(id string) (common.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.documents[id]
	return d, ok
}

// Counts returns the number of BELONGS_TO and MENTIONS edges.
func (s *GraphStorage) Counts() (belongsTo, mentions int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.belongsTo), len(s.mentions)
}

var _ store.GraphStorage = (*GraphStorage)(nil)
