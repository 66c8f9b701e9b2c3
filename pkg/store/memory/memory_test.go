package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/OFFIS-RIT/graphlift/pkg/common"
	"github.com/OFFIS-RIT/graphlift/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds Acme -> B -> C plus an unrelated D.
func chain(t *testing.T) *GraphStorage {
	t.Helper()
	ctx := context.Background()
	s := New()
	for _, e := range []common.Entity{
		{ID: "a", Name: "Acme", Type: "ORG", Description: "Makes anvils", Degree: 1},
		{ID: "b", Name: "B", Type: "ORG", Degree: 2},
		{ID: "c", Name: "C", Type: "PERSON", Degree: 1},
		{ID: "d", Name: "D", Type: "ORG", Description: "acme competitor", Degree: 3},
	} {
		require.NoError(t, s.UpsertEntity(ctx, e))
	}
	for _, r := range []common.Relationship{
		{ID: "r1", Source: "a", Target: "b", Description: "supplies"},
		{ID: "r2", Source: "b", Target: "c", Description: "employs"},
	} {
		ok, err := s.UpsertRelationship(ctx, r)
		require.NoError(t, err)
		require.True(t, ok)
	}
	return s
}

func TestUpsertRelationshipRequiresEndpoints(t *testing.T) {
	s := chain(t)
	ok, err := s.UpsertRelationship(context.Background(), common.Relationship{ID: "r9", Source: "a", Target: "zz"})
	require.NoError(t, err)
	assert.False(t, ok)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalRelationships)
}

func TestUpsertRelationshipLastWriteWins(t *testing.T) {
	s := chain(t)
	ok, err := s.UpsertRelationship(context.Background(), common.Relationship{ID: "r1", Source: "a", Target: "c", Description: "knows"})
	require.NoError(t, err)
	assert.True(t, ok)

	rel, found := s.Relationship("r1")
	require.True(t, found)
	assert.Equal(t, "c", rel.Target)
	assert.Equal(t, "knows", rel.Description)
}

func TestLinksAreMerged(t *testing.T) {
	s := chain(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertCommunity(ctx, common.Community{ID: "c1", Title: "Industry"}))

	for range 2 {
		ok, err := s.LinkEntityToCommunity(ctx, "a", "c1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := s.LinkEntityToCommunity(ctx, "a", "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	belongs, _ := s.Counts()
	assert.Equal(t, 1, belongs)
}

func TestApplyCommunityReportNeedsCommunity(t *testing.T) {
	s := New()
	ok, err := s.ApplyCommunityReport(context.Background(), common.CommunityReport{CommunityID: "c1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeywordSearch(t *testing.T) {
	s := chain(t)
	got, err := s.KeywordSearch(context.Background(), "ACME", 10)
	require.NoError(t, err)

	require.Len(t, got, 2)
	// higher degree first
	assert.Equal(t, "D", got[0].EntityName)
	assert.Equal(t, "Acme", got[1].EntityName)
	for _, r := range got {
		assert.Equal(t, 1.0, r.RelevanceScore)
	}
	assert.Equal(t, []common.RelatedEntity{{Name: "B", Type: "ORG", Relationship: "supplies"}}, got[1].RelatedEntities)
}

func TestVectorSearchWithoutIndex(t *testing.T) {
	s := chain(t)
	_, err := s.VectorSearch(context.Background(), []float32{1, 0}, 5)
	assert.True(t, errors.Is(err, ErrNoVectorIndex))
}

func TestVectorSearchRanksByCosine(t *testing.T) {
	s := chain(t)
	ctx := context.Background()
	_, err := s.SetEmbedding(ctx, store.ElementEntities, "a", common.Embedding{Vector: []float32{1, 0}})
	require.NoError(t, err)
	_, err = s.SetEmbedding(ctx, store.ElementEntities, "b", common.Embedding{Vector: []float32{0, 1}})
	require.NoError(t, err)
	_, err = s.EnsureVectorIndex(ctx, store.ElementEntities, 2)
	require.NoError(t, err)

	got, err := s.VectorSearch(ctx, []float32{1, 0.1}, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Acme", got[0].EntityName)
	assert.Greater(t, got[0].RelevanceScore, got[1].RelevanceScore)
}

func TestEntityDetailDepth(t *testing.T) {
	s := chain(t)
	tests := []struct {
		depth int
		want  []common.ConnectedEntity
	}{
		{1, []common.ConnectedEntity{{Entity: "B", Type: "ORG", PathLength: 1}}},
		{2, []common.ConnectedEntity{
			{Entity: "B", Type: "ORG", PathLength: 1},
			{Entity: "C", Type: "PERSON", PathLength: 2},
		}},
	}
	for _, tt := range tests {
		detail, err := s.EntityDetail(context.Background(), "Acme", tt.depth)
		require.NoError(t, err)
		require.NotNil(t, detail)
		assert.Equal(t, tt.want, detail.ConnectedEntities)
	}

	detail, err := s.EntityDetail(context.Background(), "Nobody", 1)
	require.NoError(t, err)
	assert.Nil(t, detail)

	_, err = s.EntityDetail(context.Background(), "Acme", 0)
	assert.Error(t, err)
}

func TestEntityDetailExcludesSelfOnCycles(t *testing.T) {
	s := chain(t)
	ok, err := s.UpsertRelationship(context.Background(), common.Relationship{ID: "r3", Source: "c", Target: "a"})
	require.NoError(t, err)
	require.True(t, ok)

	detail, err := s.EntityDetail(context.Background(), "Acme", 3)
	require.NoError(t, err)
	for _, c := range detail.ConnectedEntities {
		assert.NotEqual(t, "Acme", c.Entity)
	}
	assert.Len(t, detail.ConnectedEntities, 2)
}

func TestCommunities(t *testing.T) {
	s := chain(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertCommunity(ctx, common.Community{ID: "c1", Title: "Suppliers"}))
	require.NoError(t, s.UpsertCommunity(ctx, common.Community{ID: "c2", Title: "Staff"}))
	_, err := s.ApplyCommunityReport(ctx, common.CommunityReport{CommunityID: "c1", Summary: "s1", Rank: 2})
	require.NoError(t, err)
	_, err = s.ApplyCommunityReport(ctx, common.CommunityReport{CommunityID: "c2", Summary: "s2", Rank: 7})
	require.NoError(t, err)
	for _, l := range [][2]string{{"a", "c1"}, {"b", "c1"}, {"c", "c2"}} {
		_, err := s.LinkEntityToCommunity(ctx, l[0], l[1])
		require.NoError(t, err)
	}

	top, err := s.TopCommunities(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Staff", top[0].Title)
	assert.Equal(t, int64(2), top[1].MemberCount)

	found, err := s.SearchCommunities(ctx, "acm", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, []string{"Acme"}, found[0].Members)
	assert.Equal(t, "s1", found[0].Summary)
}

func TestCommunityMemberCountCountsEntities(t *testing.T) {
	s := chain(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertEntity(ctx, common.Entity{ID: "a2", Name: "Acme", Type: "ORG"}))
	require.NoError(t, s.UpsertCommunity(ctx, common.Community{ID: "c1", Title: "Suppliers"}))
	for _, id := range []string{"a", "a2"} {
		_, err := s.LinkEntityToCommunity(ctx, id, "c1")
		require.NoError(t, err)
	}

	top, err := s.TopCommunities(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(2), top[0].MemberCount)
	assert.Equal(t, []string{"Acme"}, top[0].Members)
}

func TestListEntitiesOrderAndLimit(t *testing.T) {
	s := chain(t)
	all, err := s.ListEntities(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "D", all[0].Name)

	two, err := s.ListEntities(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestResetClearsGraph(t *testing.T) {
	s := chain(t)
	require.NoError(t, s.Reset(context.Background()))
	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.GraphStats{}, stats)
}
