package neo4j

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/graphlift/pkg/common"
	"github.com/OFFIS-RIT/graphlift/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const entityCandidatesQuery = `
MATCH (e:Entity)
WHERE $all OR e.embedding IS NULL
RETURN e.id AS id,
       coalesce(e.name, '') AS name,
       coalesce(e.type, '') AS type,
       coalesce(e.description, '') AS description
ORDER BY e.id`

const relationshipCandidatesQuery = `
MATCH (s:Entity)-[r:RELATES_TO]->(t:Entity)
WHERE $all OR r.embedding IS NULL
RETURN r.id AS id,
       coalesce(r.description, '') AS description,
       coalesce(s.name, '') AS source_name,
       coalesce(t.name, '') AS target_name
ORDER BY r.id`

const setEntityEmbeddingQuery = `
MATCH (e:Entity {id: $id})
SET e.embedding = $embedding,
    e.embedding_text = $text,
    e.embedding_dimension = $dimension
RETURN count(e) AS written`

const setRelationshipEmbeddingQuery = `
MATCH ()-[r:RELATES_TO {id: $id}]->()
SET r.embedding = $embedding,
    r.embedding_text = $text,
    r.embedding_dimension = $dimension
RETURN count(r) AS written`

const embeddingStatsQuery = `
CALL {
  MATCH (e:Entity)
  RETURN count(e) AS entities_total,
         count(e.embedding) AS entities_embedded,
         collect(DISTINCT e.embedding_dimension) AS entity_dimensions
}
CALL {
  MATCH ()-[r:RELATES_TO]->()
  RETURN count(r) AS relationships_total,
         count(r.embedding) AS relationships_embedded,
         collect(DISTINCT r.embedding_dimension) AS relationship_dimensions
}
CALL {
  OPTIONAL MATCH (e:Entity) WHERE e.embedding IS NOT NULL
  WITH e LIMIT 1
  RETURN e.name AS sample_name, e.embedding_text AS sample_text,
         e.embedding_dimension AS sample_dimension
}
RETURN entities_total, entities_embedded, entity_dimensions,
       relationships_total, relationships_embedded, relationship_dimensions,
       sample_name, sample_text, sample_dimension`

func (s *GraphStorage) ListEmbeddingCandidates(ctx context.Context, kind store.ElementKind, onlyMissing bool) ([]common.EmbeddingCandidate, error) {
	var query string
	switch kind {
	case store.ElementEntities:
		query = entityCandidatesQuery
	case store.ElementRelationships:
		query = relationshipCandidatesQuery
	default:
		return nil, fmt.Errorf("unknown element kind %q", kind)
	}

	records, err := s.runner.Run(ctx, neo4j.AccessModeRead, query, map[string]any{"all": !onlyMissing})
	if err != nil {
		return nil, err
	}

	candidates := make([]common.EmbeddingCandidate, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, common.EmbeddingCandidate{
			ID:          str(rec, "id"),
			Name:        str(rec, "name"),
			Type:        str(rec, "type"),
			Description: str(rec, "description"),
			SourceName:  str(rec, "source_name"),
			TargetName:  str(rec, "target_name"),
		})
	}
	return candidates, nil
}

func (s *GraphStorage) SetEmbedding(ctx context.Context, kind store.ElementKind, id string, embedding common.Embedding) (bool, error) {
	var query string
	switch kind {
	case store.ElementEntities:
		query = setEntityEmbeddingQuery
	case store.ElementRelationships:
		query = setRelationshipEmbeddingQuery
	default:
		return false, fmt.Errorf("unknown element kind %q", kind)
	}
	return s.writeCounted(ctx, query, map[string]any{
		"id":        id,
		"embedding": toFloat64s(embedding.Vector),
		"text":      embedding.Text,
		"dimension": embedding.Dimension(),
	})
}

func (s *GraphStorage) EmbeddingStats(ctx context.Context) (common.EmbeddingStats, error) {
	rec, err := runSingle(ctx, s.runner, neo4j.AccessModeRead, embeddingStatsQuery, nil)
	if err != nil {
		return common.EmbeddingStats{}, err
	}
	stats := common.EmbeddingStats{
		EntitiesTotal:          i64(rec, "entities_total"),
		EntitiesEmbedded:       i64(rec, "entities_embedded"),
		RelationshipsTotal:     i64(rec, "relationships_total"),
		RelationshipsEmbedded:  i64(rec, "relationships_embedded"),
		EntityDimensions:       ints(rec, "entity_dimensions"),
		RelationshipDimensions: ints(rec, "relationship_dimensions"),
	}
	if get(rec, "sample_dimension") != nil {
		stats.Sample = &common.EmbeddingSample{
			Name:      str(rec, "sample_name"),
			Text:      str(rec, "sample_text"),
			Dimension: int(i64(rec, "sample_dimension")),
		}
	}
	return stats, nil
}
