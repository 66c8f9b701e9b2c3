package neo4j

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/graphlift/pkg/logger"
	"github.com/OFFIS-RIT/graphlift/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type version struct {
	major, minor int
}

func (v version) atLeast(major, minor int) bool {
	return v.major > major || (v.major == major && v.minor >= minor)
}

func (v version) String() string {
	return fmt.Sprintf("%d.%d", v.major, v.minor)
}

// Vector indexes on nodes arrived in 5.11 as a procedure and became Cypher
// DDL in 5.13. Relationship vector indexes need 5.18.
var (
	nodeVectorSince         = version{5, 11}
	vectorDDLSince          = version{5, 13}
	relationshipVectorSince = version{5, 18}
)

func (s *GraphStorage) EnsureConstraints(ctx context.Context) error {
	constraints := []struct{ name, label string }{
		{"entity_id", "Entity"},
		{"community_id", "Community"},
		{"document_id", "Document"},
		{"text_unit_id", "TextUnit"},
	}
	for _, c := range constraints {
		if err := DeclareConstraint(ctx, s.runner, c.name, c.label, "id"); err != nil {
			return fmt.Errorf("failed to declare constraint %s: %w", c.name, err)
		}
	}
	// relationships are merged by id, which needs a lookup index
	if err := DeclareIndex(ctx, s.runner, "relates_to_id", "RELATES_TO", "id", true); err != nil {
		return fmt.Errorf("failed to declare index relates_to_id: %w", err)
	}
	return nil
}

func (s *GraphStorage) EnsureIndexes(ctx context.Context) error {
	indexes := []struct{ name, label, property string }{
		{"entity_name", "Entity", "name"},
		{"entity_type", "Entity", "type"},
		{"community_level", "Community", "level"},
	}
	for _, idx := range indexes {
		if err := DeclareIndex(ctx, s.runner, idx.name, idx.label, idx.property, false); err != nil {
			return fmt.Errorf("failed to declare index %s: %w", idx.name, err)
		}
	}
	return nil
}

// Reset removes every node and edge.
func (s *GraphStorage) Reset(ctx context.Context) error {
	_, err := s.runner.Run(ctx, neo4j.AccessModeWrite, "MATCH (n) DETACH DELETE n", nil)
	return err
}

// ServerVersion returns the kernel version reported by dbms.components.
func (s *GraphStorage) ServerVersion(ctx context.Context) (string, error) {
	rec, err := runSingle(ctx, s.runner, neo4j.AccessModeRead,
		"CALL dbms.components() YIELD name, versions WHERE name = 'Neo4j Kernel' RETURN versions[0] AS version", nil)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", fmt.Errorf("server did not report a version")
	}
	return str(rec, "version"), nil
}

// EnsureVectorIndex creates the cosine vector index for kind. It returns
// false without error when the server is too old for that index.
func (s *GraphStorage) EnsureVectorIndex(ctx context.Context, kind store.ElementKind, dimensions int) (bool, error) {
	if dimensions <= 0 {
		return false, fmt.Errorf("vector dimensions must be positive, got %d", dimensions)
	}

	raw, err := s.ServerVersion(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read server version: %w", err)
	}
	v, ok := parseVersion(raw)
	if !ok {
		return false, fmt.Errorf("unrecognised server version %q", raw)
	}

	var query string
	switch kind {
	case store.ElementEntities:
		if !v.atLeast(nodeVectorSince.major, nodeVectorSince.minor) {
			logger.Warn("[Neo4j] Vector indexes on nodes are not supported, skipping",
				"version", raw, "required", nodeVectorSince.String())
			return false, nil
		}
		if !v.atLeast(vectorDDLSince.major, vectorDDLSince.minor) {
			return s.createNodeVectorIndex(ctx, dimensions)
		}
		query = fmt.Sprintf(`CREATE VECTOR INDEX %s IF NOT EXISTS
FOR (e:Entity) ON (e.embedding)
OPTIONS {indexConfig: {`+"`vector.dimensions`"+`: %d, `+"`vector.similarity_function`"+`: 'cosine'}}`,
			s.entityIndex, dimensions)
	case store.ElementRelationships:
		if !v.atLeast(relationshipVectorSince.major, relationshipVectorSince.minor) {
			logger.Warn("[Neo4j] Vector indexes on relationships are not supported, skipping",
				"version", raw, "required", relationshipVectorSince.String())
			return false, nil
		}
		query = fmt.Sprintf(`CREATE VECTOR INDEX %s IF NOT EXISTS
FOR ()-[r:RELATES_TO]-() ON (r.embedding)
OPTIONS {indexConfig: {`+"`vector.dimensions`"+`: %d, `+"`vector.similarity_function`"+`: 'cosine'}}`,
			s.relationshipIndex, dimensions)
	default:
		return false, fmt.Errorf("unknown element kind %q", kind)
	}

	if err := declare(ctx, s.runner, query); err != nil {
		return false, err
	}
	return true, nil
}

// createNodeVectorIndex uses the procedure form understood by 5.11 and 5.12.
func (s *GraphStorage) createNodeVectorIndex(ctx context.Context, dimensions int) (bool, error) {
	_, err := s.runner.Run(ctx, neo4j.AccessModeWrite,
		"CALL db.index.vector.createNodeIndex($name, 'Entity', 'embedding', $dimensions, 'cosine')",
		map[string]any{"name": s.entityIndex, "dimensions": dimensions})
	if err != nil && !isAlreadyExists(err) {
		return false, err
	}
	return true, nil
}

// parseVersion reads "5.11.0", "5.26.0-aura" or calendar versions such as
// "2025.01.0".
func parseVersion(raw string) (version, bool) {
	parts := strings.SplitN(strings.TrimSpace(raw), ".", 3)
	if len(parts) < 2 {
		return version{}, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return version{}, false
	}
	minorDigits := parts[1]
	for i, r := range minorDigits {
		if r < '0' || r > '9' {
			minorDigits = minorDigits[:i]
			break
		}
	}
	minor, err := strconv.Atoi(minorDigits)
	if err != nil {
		return version{}, false
	}
	return version{major, minor}, true
}
