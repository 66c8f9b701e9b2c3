package neo4j

import (
	"context"

	"github.com/OFFIS-RIT/graphlift/pkg/common"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const upsertDocumentQuery = `
MERGE (d:Document {id: $id})
SET d.title = $title,
    d.raw_content = $raw_content`

const upsertEntityQuery = `
MERGE (e:Entity {id: $id})
SET e.name = $name,
    e.type = $type,
    e.description = $description,
    e.degree = $degree,
    e.human_readable_id = $human_readable_id`

// An edge id that reappears with other endpoints is moved, so the last
// write of an id wins.
const upsertRelationshipQuery = `
MATCH (s:Entity {id: $source})
MATCH (t:Entity {id: $target})
OPTIONAL MATCH (:Entity)-[old:RELATES_TO {id: $id}]->(:Entity)
WHERE startNode(old) <> s OR endNode(old) <> t
DELETE old
WITH DISTINCT s, t
MERGE (s)-[r:RELATES_TO {id: $id}]->(t)
SET r.description = $description,
    r.weight = $weight,
    r.human_readable_id = $human_readable_id
RETURN count(r) AS written`

const upsertCommunityQuery = `
MERGE (c:Community {id: $id})
SET c.title = $title,
    c.level = $level,
    c.period = $period`

const applyCommunityReportQuery = `
MATCH (c:Community {id: $id})
SET c.summary = $summary,
    c.full_content = $full_content,
    c.rank = $rank,
    c.rank_explanation = $rank_explanation,
    c.findings = $findings
RETURN count(c) AS written`

const linkEntityToCommunityQuery = `
MATCH (e:Entity {id: $entity_id})
MATCH (c:Community {id: $community_id})
MERGE (e)-[r:BELONGS_TO]->(c)
RETURN count(r) AS written`

const upsertTextUnitQuery = `
MERGE (u:TextUnit {id: $id})
SET u.text = $text,
    u.n_tokens = $n_tokens`

const linkTextUnitToEntityQuery = `
MATCH (u:TextUnit {id: $unit_id})
MATCH (e:Entity {id: $entity_id})
MERGE (u)-[r:MENTIONS]->(e)
RETURN count(r) AS written`

func (s *GraphStorage) UpsertDocument(ctx context.Context, doc common.Document) error {
	return s.write(ctx, upsertDocumentQuery, map[string]any{
		"id":          doc.ID,
		"title":       doc.Title,
		"raw_content": doc.RawContent,
	})
}

func (s *GraphStorage) UpsertEntity(ctx context.Context, entity common.Entity) error {
	return s.write(ctx, upsertEntityQuery, map[string]any{
		"id":                entity.ID,
		"name":              entity.Name,
		"type":              entity.Type,
		"description":       entity.Description,
		"degree":            entity.Degree,
		"human_readable_id": entity.HumanReadableID,
	})
}

func (s *GraphStorage) UpsertRelationship(ctx context.Context, rel common.Relationship) (bool, error) {
	return s.writeCounted(ctx, upsertRelationshipQuery, map[string]any{
		"id":                rel.ID,
		"source":            rel.Source,
		"target":            rel.Target,
		"description":       rel.Description,
		"weight":            rel.Weight,
		"human_readable_id": rel.HumanReadableID,
	})
}

func (s *GraphStorage) UpsertCommunity(ctx context.Context, community common.Community) error {
	return s.write(ctx, upsertCommunityQuery, map[string]any{
		"id":     community.ID,
		"title":  community.Title,
		"level":  community.Level,
		"period": community.Period,
	})
}

func (s *GraphStorage) ApplyCommunityReport(ctx context.Context, report common.CommunityReport) (bool, error) {
	return s.writeCounted(ctx, applyCommunityReportQuery, map[string]any{
		"id":               report.CommunityID,
		"summary":          report.Summary,
		"full_content":     report.FullContent,
		"rank":             report.Rank,
		"rank_explanation": report.RankExplanation,
		"findings":         report.Findings,
	})
}

func (s *GraphStorage) LinkEntityToCommunity(ctx context.Context, entityID, communityID string) (bool, error) {
	return s.writeCounted(ctx, linkEntityToCommunityQuery, map[string]any{
		"entity_id":    entityID,
		"community_id": communityID,
	})
}

func (s *GraphStorage) UpsertTextUnit(ctx context.Context, unit common.TextUnit) error {
	return s.write(ctx, upsertTextUnitQuery, map[string]any{
		"id":       unit.ID,
		"text":     unit.Text,
		"n_tokens": unit.NTokens,
	})
}

func (s *GraphStorage) LinkTextUnitToEntity(ctx context.Context, unitID, entityID string) (bool, error) {
	return s.writeCounted(ctx, linkTextUnitToEntityQuery, map[string]any{
		"unit_id":   unitID,
		"entity_id": entityID,
	})
}

func (s *GraphStorage) write(ctx context.Context, query string, params map[string]any) error {
	_, err := s.runner.Run(ctx, neo4j.AccessModeWrite, query, params)
	return err
}

// writeCounted runs a statement that returns a "written" count and reports
// whether anything was matched.
func (s *GraphStorage) writeCounted(ctx context.Context, query string, params map[string]any) (bool, error) {
	rec, err := runSingle(ctx, s.runner, neo4j.AccessModeWrite, query, params)
	if err != nil {
		return false, err
	}
	return i64(rec, "written") > 0, nil
}
