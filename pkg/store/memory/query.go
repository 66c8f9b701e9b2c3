package memory

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/OFFIS-RIT/graphlift/pkg/common"
	"github.com/OFFIS-RIT/graphlift/pkg/store"
)

const (
	maxRelated          = 5
	maxCommunityTitles  = 3
	maxConnected        = 20
	maxCommunityMembers = 10
)

func (s *GraphStorage) Stats(ctx context.Context) (common.GraphStats, error) {
	if err := ctx.Err(); err != nil {
		return common.GraphStats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return common.GraphStats{
		TotalEntities:      int64(len(s.entities)),
		TotalRelationships: int64(len(s.relationships)),
		TotalCommunities:   int64(len(s.communities)),
		TotalDocuments:     int64(len(s.documents)),
		TotalTextUnits:     int64(len(s.textUnits)),
	}, nil
}

func (s *GraphStorage) KeywordSearch(ctx context.Context, query string, limit int) ([]common.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	var hits []*entityNode
	for _, id := range s.entityOrder {
		n := s.entities[id]
		if strings.Contains(strings.ToLower(n.Name), needle) ||
			strings.Contains(strings.ToLower(n.Description), needle) {
			hits = append(hits, n)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Degree > hits[j].Degree
	})
	if limit >= 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]common.SearchResult, 0, len(hits))
	for _, n := range hits {
		results = append(results, s.searchResult(n, 1.0))
	}
	return results, nil
}

func (s *GraphStorage) VectorSearch(ctx context.Context, embedding []float32, limit int) ([]common.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.vectorIndexes[store.ElementEntities]; !ok {
		return nil, ErrNoVectorIndex
	}

	type scored struct {
		node  *entityNode
		score float64
	}
	var hits []scored
	for _, id := range s.entityOrder {
		n := s.entities[id]
		if n.embedding == nil || len(n.embedding.Vector) != len(embedding) {
			continue
		}
		hits = append(hits, scored{n, cosineScore(embedding, n.embedding.Vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].node.Degree > hits[j].node.Degree
	})
	if limit >= 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]common.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, s.searchResult(h.node, h.score))
	}
	return results, nil
}

// cosineScore maps cosine similarity to [0, 1] the way Neo4j vector indexes
// report it.
func cosineScore(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return (1 + dot/(math.Sqrt(na)*math.Sqrt(nb))) / 2
}

func (s *GraphStorage) searchResult(n *entityNode, score float64) common.SearchResult {
	result := common.SearchResult{
		EntityID:          n.ID,
		EntityName:        n.Name,
		EntityType:        n.Type,
		EntityDescription: n.Description,
		Connections:       n.Degree,
		RelevanceScore:    score,
		RelatedEntities:   []common.RelatedEntity{},
		Communities:       []string{},
	}
	for _, id := range s.relOrder {
		if len(result.RelatedEntities) == maxRelated {
			break
		}
		e := s.relationships[id]
		var other string
		switch n.ID {
		case e.Source:
			other = e.Target
		case e.Target:
			other = e.Source
		default:
			continue
		}
		o := s.entities[other]
		result.RelatedEntities = append(result.RelatedEntities, common.RelatedEntity{
			Name:         o.Name,
			Type:         o.Type,
			Relationship: e.Description,
		})
	}
	titles := s.communityTitles(n.ID)
	if len(titles) > maxCommunityTitles {
		titles = titles[:maxCommunityTitles]
	}
	result.Communities = append(result.Communities, titles...)
	return result
}

func (s *GraphStorage) communityTitles(entityID string) []string {
	var titles []string
	for _, p := range s.belongsTo {
		if p.from == entityID {
			titles = append(titles, s.communities[p.to].Title)
		}
	}
	return store.DedupeStrings(titles)
}

func (s *GraphStorage) EntityDetail(ctx context.Context, name string, depth int) (*common.EntityDetail, error) {
	if err := store.CheckDepth(depth); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var root *entityNode
	for _, id := range s.entityOrder {
		n := s.entities[id]
		if n.Name == name && (root == nil || n.Degree > root.Degree) {
			root = n
		}
	}
	if root == nil {
		return nil, nil
	}

	adjacent := map[string][]string{}
	for _, id := range s.relOrder {
		e := s.relationships[id]
		adjacent[e.Source] = append(adjacent[e.Source], e.Target)
		adjacent[e.Target] = append(adjacent[e.Target], e.Source)
	}

	// breadth first, so the first visit of a node is its shortest path
	dist := map[string]int64{root.ID: 0}
	var reached []string
	frontier := []string{root.ID}
	for level := int64(1); level <= int64(depth) && len(frontier) > 0; level++ {
		var next []string
		for _, id := range frontier {
			for _, nb := range adjacent[id] {
				if _, seen := dist[nb]; seen {
					continue
				}
				dist[nb] = level
				reached = append(reached, nb)
				next = append(next, nb)
			}
		}
		frontier = next
	}
	sort.SliceStable(reached, func(i, j int) bool {
		if dist[reached[i]] != dist[reached[j]] {
			return dist[reached[i]] < dist[reached[j]]
		}
		return s.entities[reached[i]].Name < s.entities[reached[j]].Name
	})
	if len(reached) > maxConnected {
		reached = reached[:maxConnected]
	}

	detail := &common.EntityDetail{
		ID:                root.ID,
		Name:              root.Name,
		Type:              root.Type,
		Description:       root.Description,
		Degree:            root.Degree,
		ConnectedEntities: []common.ConnectedEntity{},
		Communities:       []string{},
	}
	for _, id := range reached {
		o := s.entities[id]
		detail.ConnectedEntities = append(detail.ConnectedEntities, common.ConnectedEntity{
			Entity:     o.Name,
			Type:       o.Type,
			PathLength: dist[id],
		})
	}
	detail.Communities = append(detail.Communities, s.communityTitles(root.ID)...)
	return detail, nil
}

func (s *GraphStorage) SearchCommunities(ctx context.Context, keyword string, limit int) ([]common.CommunitySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(keyword)
	return s.communitySummaries(limit, func(n *entityNode) bool {
		return strings.Contains(strings.ToLower(n.Name), needle)
	}, true), nil
}

func (s *GraphStorage) TopCommunities(ctx context.Context, limit int) ([]common.CommunitySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.communitySummaries(limit, func(*entityNode) bool { return true }, false), nil
}

// communitySummaries lists communities by rank with the members that pass
// keep. With requireMember, communities without such members are dropped.
func (s *GraphStorage) communitySummaries(limit int, keep func(*entityNode) bool, requireMember bool) []common.CommunitySummary {
	var out []common.CommunitySummary
	for _, cid := range s.commOrder {
		c := s.communities[cid]
		var members []string
		for _, p := range s.belongsTo {
			if p.to != cid {
				continue
			}
			if n := s.entities[p.from]; keep(n) {
				members = append(members, n.Name)
			}
		}
		// belongsTo holds each pair once, so this counts entities, not names
		count := int64(len(members))
		members = store.DedupeStrings(members)
		if requireMember && len(members) == 0 {
			continue
		}

		summary := common.CommunitySummary{
			ID:          c.ID,
			Title:       c.Title,
			Level:       c.Level,
			MemberCount: count,
		}
		if c.report != nil {
			summary.Summary = c.report.Summary
			summary.Rank = c.report.Rank
		}
		if len(members) > maxCommunityMembers {
			members = members[:maxCommunityMembers]
		}
		summary.Members = members
		out = append(out, summary)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank > out[j].Rank
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *GraphStorage) ListEntities(ctx context.Context, limit int) ([]common.EntitySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]common.EntitySummary, 0, len(s.entityOrder))
	for _, id := range s.entityOrder {
		n := s.entities[id]
		out = append(out, common.EntitySummary{
			ID:          n.ID,
			Name:        n.Name,
			Type:        n.Type,
			Description: n.Description,
			Degree:      n.Degree,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Degree != out[j].Degree {
			return out[i].Degree > out[j].Degree
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
