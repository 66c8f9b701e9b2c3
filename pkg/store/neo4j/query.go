package neo4j

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/graphlift/pkg/common"
	"github.com/OFFIS-RIT/graphlift/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

const statsQuery = `
CALL { MATCH (e:Entity) RETURN count(e) AS entities }
CALL { MATCH ()-[r:RELATES_TO]->() RETURN count(r) AS relationships }
CALL { MATCH (c:Community) RETURN count(c) AS communities }
CALL { MATCH (d:Document) RETURN count(d) AS documents }
CALL { MATCH (u:TextUnit) RETURN count(u) AS text_units }
RETURN entities, relationships, communities, documents, text_units`

const keywordSearchHead = `
MATCH (e:Entity)
WHERE toLower(coalesce(e.name, '')) CONTAINS toLower($query)
   OR toLower(coalesce(e.description, '')) CONTAINS toLower($query)
WITH e, 1.0 AS score
ORDER BY coalesce(e.degree, 0) DESC
LIMIT $limit`

const vectorSearchHead = `
CALL db.index.vector.queryNodes($index, $limit, $embedding)
YIELD node AS e, score`

// searchTail attaches up to five neighbours and three community titles to
// every hit in e with its score.
const searchTail = `
OPTIONAL MATCH (e)-[r:RELATES_TO]-(other:Entity)
WITH e, score,
     collect(CASE WHEN other IS NULL THEN NULL ELSE
       {name: other.name, type: other.type, relationship: coalesce(r.description, '')} END)[..5] AS related
OPTIONAL MATCH (e)-[:BELONGS_TO]->(c:Community)
WITH e, score, related, collect(DISTINCT c.title)[..3] AS communities
RETURN e.id AS id,
       coalesce(e.name, '') AS name,
       coalesce(e.type, '') AS type,
       coalesce(e.description, '') AS description,
       coalesce(e.degree, 0) AS connections,
       score AS relevance_score,
       related,
       communities
ORDER BY relevance_score DESC, connections DESC`

const entityDetailQuery = `
MATCH (e:Entity {name: $name})
WITH e ORDER BY coalesce(e.degree, 0) DESC LIMIT 1
OPTIONAL MATCH path = (e)-[:RELATES_TO*1..%d]-(connected:Entity)
WHERE connected <> e
WITH e, connected, min(length(path)) AS path_length
ORDER BY path_length, connected.name
WITH e, collect(CASE WHEN connected IS NULL THEN NULL ELSE
       {entity: connected.name, type: connected.type, path_length: path_length} END)[..20] AS connected
OPTIONAL MATCH (e)-[:BELONGS_TO]->(c:Community)
RETURN e.id AS id,
       coalesce(e.name, '') AS name,
       coalesce(e.type, '') AS type,
       coalesce(e.description, '') AS description,
       coalesce(e.degree, 0) AS degree,
       connected,
       collect(DISTINCT c.title) AS communities`

const searchCommunitiesQuery = `
MATCH (e:Entity)-[:BELONGS_TO]->(c:Community)
WHERE toLower(coalesce(e.name, '')) CONTAINS toLower($query)
WITH c, collect(DISTINCT e.name) AS members, count(DISTINCT e) AS member_count
RETURN c.id AS id,
       coalesce(c.title, '') AS title,
       coalesce(c.summary, '') AS summary,
       coalesce(c.level, 0) AS level,
       coalesce(c.rank, 0.0) AS rank,
       members[..10] AS members,
       member_count
ORDER BY rank DESC
LIMIT $limit`

const topCommunitiesQuery = `
MATCH (c:Community)
OPTIONAL MATCH (e:Entity)-[:BELONGS_TO]->(c)
WITH c, collect(DISTINCT e.name) AS members, count(DISTINCT e) AS member_count
RETURN c.id AS id,
       coalesce(c.title, '') AS title,
       coalesce(c.summary, '') AS summary,
       coalesce(c.level, 0) AS level,
       coalesce(c.rank, 0.0) AS rank,
       members[..10] AS members,
       member_count
ORDER BY rank DESC
LIMIT $limit`

const listEntitiesQuery = `
MATCH (e:Entity)
RETURN e.id AS id,
       coalesce(e.name, '') AS name,
       coalesce(e.type, '') AS type,
       coalesce(e.description, '') AS description,
       coalesce(e.degree, 0) AS degree
ORDER BY degree DESC, name`

func (s *GraphStorage) Stats(ctx context.Context) (common.GraphStats, error) {
	rec, err := runSingle(ctx, s.runner, neo4j.AccessModeRead, statsQuery, nil)
	if err != nil {
		return common.GraphStats{}, err
	}
	return common.GraphStats{
		TotalEntities:      i64(rec, "entities"),
		TotalRelationships: i64(rec, "relationships"),
		TotalCommunities:   i64(rec, "communities"),
		TotalDocuments:     i64(rec, "documents"),
		TotalTextUnits:     i64(rec, "text_units"),
	}, nil
}

func (s *GraphStorage) KeywordSearch(ctx context.Context, query string, limit int) ([]common.SearchResult, error) {
	records, err := s.runner.Run(ctx, neo4j.AccessModeRead, keywordSearchHead+searchTail, map[string]any{
		"query": query,
		"limit": limit,
	})
	if err != nil {
		return nil, err
	}
	return searchResults(records), nil
}

func (s *GraphStorage) VectorSearch(ctx context.Context, embedding []float32, limit int) ([]common.SearchResult, error) {
	records, err := s.runner.Run(ctx, neo4j.AccessModeRead, vectorSearchHead+searchTail, map[string]any{
		"index":     s.entityIndex,
		"limit":     limit,
		"embedding": toFloat64s(embedding),
	})
	if err != nil {
		return nil, err
	}
	return searchResults(records), nil
}

func (s *GraphStorage) EntityDetail(ctx context.Context, name string, depth int) (*common.EntityDetail, error) {
	if err := store.CheckDepth(depth); err != nil {
		return nil, err
	}
	rec, err := runSingle(ctx, s.runner, neo4j.AccessModeRead,
		fmt.Sprintf(entityDetailQuery, depth), map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	detail := &common.EntityDetail{
		ID:                str(rec, "id"),
		Name:              str(rec, "name"),
		Type:              str(rec, "type"),
		Description:       str(rec, "description"),
		Degree:            i64(rec, "degree"),
		ConnectedEntities: []common.ConnectedEntity{},
		Communities:       strs(rec, "communities"),
	}
	for _, m := range maps(rec, "connected") {
		detail.ConnectedEntities = append(detail.ConnectedEntities, common.ConnectedEntity{
			Entity:     toString(m["entity"]),
			Type:       toString(m["type"]),
			PathLength: toInt(m["path_length"]),
		})
	}
	return detail, nil
}

func (s *GraphStorage) SearchCommunities(ctx context.Context, keyword string, limit int) ([]common.CommunitySummary, error) {
	records, err := s.runner.Run(ctx, neo4j.AccessModeRead, searchCommunitiesQuery, map[string]any{
		"query": keyword,
		"limit": limit,
	})
	if err != nil {
		return nil, err
	}
	return communitySummaries(records), nil
}

func (s *GraphStorage) TopCommunities(ctx context.Context, limit int) ([]common.CommunitySummary, error) {
	records, err := s.runner.Run(ctx, neo4j.AccessModeRead, topCommunitiesQuery, map[string]any{
		"limit": limit,
	})
	if err != nil {
		return nil, err
	}
	return communitySummaries(records), nil
}

// ListEntities returns entities by degree. A limit of zero or less returns
// all of them.
func (s *GraphStorage) ListEntities(ctx context.Context, limit int) ([]common.EntitySummary, error) {
	query := listEntitiesQuery
	params := map[string]any{}
	if limit > 0 {
		query += "\nLIMIT $limit"
		params["limit"] = limit
	}
	records, err := s.runner.Run(ctx, neo4j.AccessModeRead, query, params)
	if err != nil {
		return nil, err
	}

	entities := make([]common.EntitySummary, 0, len(records))
	for _, rec := range records {
		entities = append(entities, common.EntitySummary{
			ID:          str(rec, "id"),
			Name:        str(rec, "name"),
			Type:        str(rec, "type"),
			Description: str(rec, "description"),
			Degree:      i64(rec, "degree"),
		})
	}
	return entities, nil
}

func searchResults(records []*db.Record) []common.SearchResult {
	results := make([]common.SearchResult, 0, len(records))
	for _, rec := range records {
		result := common.SearchResult{
			EntityID:          str(rec, "id"),
			EntityName:        str(rec, "name"),
			EntityType:        str(rec, "type"),
			EntityDescription: str(rec, "description"),
			Connections:       i64(rec, "connections"),
			RelevanceScore:    f64(rec, "relevance_score"),
			RelatedEntities:   []common.RelatedEntity{},
			Communities:       strs(rec, "communities"),
		}
		for _, m := range maps(rec, "related") {
			result.RelatedEntities = append(result.RelatedEntities, common.RelatedEntity{
				Name:         toString(m["name"]),
				Type:         toString(m["type"]),
				Relationship: toString(m["relationship"]),
			})
		}
		results = append(results, result)
	}
	return results
}

func communitySummaries(records []*db.Record) []common.CommunitySummary {
	out := make([]common.CommunitySummary, 0, len(records))
	for _, rec := range records {
		out = append(out, common.CommunitySummary{
			ID:          str(rec, "id"),
			Title:       str(rec, "title"),
			Summary:     str(rec, "summary"),
			Level:       i64(rec, "level"),
			Rank:        f64(rec, "rank"),
			Members:     strs(rec, "members"),
			MemberCount: i64(rec, "member_count"),
		})
	}
	return out
}
