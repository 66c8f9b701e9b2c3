package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/graphlift/pkg/common"
	"github.com/OFFIS-RIT/graphlift/pkg/loader"
	"github.com/OFFIS-RIT/graphlift/pkg/store"
	"github.com/OFFIS-RIT/graphlift/pkg/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tableReader map[loader.Kind][]loader.Record

func (r tableReader) Read(_ context.Context, kind loader.Kind) ([]loader.Record, error) {
	rows, ok := r[kind]
	if !ok {
		return nil, fmt.Errorf("%s: %w", kind, loader.ErrTableNotFound)
	}
	return rows, nil
}

func sampleTables() tableReader {
	return tableReader{
		loader.KindDocuments: {
			{"id": "d1", "title": "Annual report", "raw_content": strings.Repeat("x", 1500)},
			{"id": "d2", "raw_content": "short"},
			{"id": "d3", "title": "Memo"},
		},
		loader.KindEntities: {
			{"id": "e1", "name": "Acme", "type": "ORG", "description": "Makes anvils", "degree": int64(2), "community_ids": []any{"c1"}},
			{"id": "e2", "name": "B", "type": "ORG", "description": "A supplier", "degree": int64(2), "community_ids": "['c1', 'c2']"},
			{"id": "e3", "title": "C", "type": "PERSON", "degree": int64(1), "community_ids": "[c2"},
			{"id": "e4", "name": "D", "type": "ORG", "description": "Competitor", "degree": int64(0)},
			{"id": "e5", "name": "E", "type": "EVENT", "degree": int64(1)},
		},
		loader.KindRelationships: {
			{"id": "r1", "source": "e1", "target": "e2", "description": "buys from", "weight": 3.0},
			{"id": "r2", "source": "e2", "target": "e3", "description": "employs"},
			{"id": "r3", "source": "e3", "target": "e5", "description": "attends"},
			{"id": "r4", "source": "e1", "target": "ghost", "description": "dangling"},
		},
		loader.KindCommunities: {
			{"id": "c1", "title": "Industry", "level": int64(0)},
			{"id": "c2", "title": "People", "level": int64(1), "entity_ids": []any{"e3"}},
		},
		loader.KindCommunityReports: {
			{"community": "c1", "summary": "Industrial players", "rank": 8.5, "findings": []any{map[string]any{"summary": "f1"}}},
			{"id": "c2", "summary": "Staff", "full_content": strings.Repeat("y", 6000), "findings": "plain"},
			{"community": "c9", "summary": "orphan"},
		},
	}
}

func TestRunImportsSampleGraph(t *testing.T) {
	s := memory.New()
	imp := NewImporter(s)

	report, err := imp.Run(context.Background(), sampleTables(), ImportOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)

	tests := []struct {
		step      string
		total     int
		succeeded int
		failed    int
	}{
		{StepDocuments, 3, 3, 0},
		{StepEntities, 5, 5, 0},
		{StepRelationships, 4, 3, 1},
		{StepCommunities, 2, 2, 0},
		{StepCommunityReports, 3, 2, 1},
		// e1->c1, e2->c1, e2->c2, c2<-e3 plus the malformed row of e3
		{StepCommunityLinks, 5, 4, 1},
	}
	for _, tt := range tests {
		sr, ok := report.Step(tt.step)
		require.True(t, ok, tt.step)
		assert.Equal(t, tt.total, sr.Total, tt.step)
		assert.Equal(t, tt.succeeded, sr.Succeeded, tt.step)
		assert.Equal(t, tt.failed, sr.Failed, tt.step)
	}
	_, ok := report.Step(StepTextUnits)
	assert.False(t, ok)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.GraphStats{
		TotalEntities: 5, TotalRelationships: 3, TotalCommunities: 2, TotalDocuments: 3,
	}, stats)

	doc, ok := s.Document("d1")
	require.True(t, ok)
	assert.Len(t, []rune(doc.RawContent), 1000)
	doc, _ = s.Document("d2")
	assert.Equal(t, "d2", doc.Title)

	e3, ok := s.Entity("e3")
	require.True(t, ok)
	assert.Equal(t, "C", e3.Name)
	assert.Equal(t, "", e3.Description)

	rel, ok := s.Relationship("r2")
	require.True(t, ok)
	assert.Equal(t, 1.0, rel.Weight)

	_, report1, ok := s.Community("c1")
	require.True(t, ok)
	require.NotNil(t, report1)
	assert.Equal(t, `[{"summary":"f1"}]`, report1.Findings)
	_, report2, _ := s.Community("c2")
	require.NotNil(t, report2)
	assert.Len(t, []rune(report2.FullContent), 5000)
	assert.Equal(t, "plain", report2.Findings)
}

func TestRunIsIdempotent(t *testing.T) {
	s := memory.New()
	imp := NewImporter(s)
	ctx := context.Background()

	_, err := imp.Run(ctx, sampleTables(), ImportOptions{})
	require.NoError(t, err)
	first, err := s.Stats(ctx)
	require.NoError(t, err)
	firstLinks, _ := s.Counts()
	e1, _ := s.Entity("e1")

	_, err = imp.Run(ctx, sampleTables(), ImportOptions{})
	require.NoError(t, err)
	second, err := s.Stats(ctx)
	require.NoError(t, err)
	secondLinks, _ := s.Counts()
	e1Again, _ := s.Entity("e1")

	assert.Equal(t, first, second)
	assert.Equal(t, firstLinks, secondLinks)
	assert.Equal(t, e1, e1Again)
}

func TestRunSkipsMissingTables(t *testing.T) {
	s := memory.New()
	tables := tableReader{
		loader.KindEntities: {{"id": "e1", "name": "Acme"}},
	}

	report, err := NewImporter(s).Run(context.Background(), tables, ImportOptions{TextUnits: true})
	require.NoError(t, err)

	for _, step := range []string{StepDocuments, StepRelationships, StepCommunities, StepCommunityReports, StepTextUnits} {
		sr, ok := report.Step(step)
		require.True(t, ok, step)
		assert.True(t, sr.Skipped, step)
	}
	sr, _ := report.Step(StepEntities)
	assert.Equal(t, 1, sr.Succeeded)
}

func TestRunWithTextUnits(t *testing.T) {
	s := memory.New()
	tables := sampleTables()
	tables[loader.KindTextUnits] = []loader.Record{
		{"id": "t1", "text": "Acme buys from B", "n_tokens": int64(5), "entity_ids": []any{"e1", "e2"}},
		{"id": "t2", "text": "broken", "entity_ids": "e1, e2"},
		{"text": "no id"},
	}

	report, err := NewImporter(s).Run(context.Background(), tables, ImportOptions{TextUnits: true})
	require.NoError(t, err)

	units, _ := report.Step(StepTextUnits)
	assert.Equal(t, 3, units.Total)
	assert.Equal(t, 2, units.Succeeded)
	assert.Equal(t, 1, units.Failed)

	mentions, _ := report.Step(StepMentions)
	assert.Equal(t, 2, mentions.Succeeded)
	assert.Equal(t, 1, mentions.Failed)

	_, m := s.Counts()
	assert.Equal(t, 2, m)
}

func TestRunResetClearsFirst(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.UpsertEntity(ctx, common.Entity{ID: "stale"}))

	_, err := NewImporter(s).Run(ctx, sampleTables(), ImportOptions{Reset: true})
	require.NoError(t, err)

	_, ok := s.Entity("stale")
	assert.False(t, ok)
}

func TestRunAbortsWhenStoreUnavailable(t *testing.T) {
	s := memory.New()
	s.FailWrites = fmt.Errorf("connection refused: %w", store.ErrUnavailable)

	report, err := NewImporter(s).Run(context.Background(), sampleTables(), ImportOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrUnavailable))

	sr, ok := report.Step(StepDocuments)
	require.True(t, ok)
	assert.Equal(t, 0, sr.Succeeded)
	_, ok = report.Step(StepEntities)
	assert.False(t, ok)
}

func TestImportContinuesAfterRowErrors(t *testing.T) {
	s := memory.New()
	rows := []loader.Record{
		{"id": "e1", "name": "Acme"},
		{"name": "no id"},
		{"id": "e2", "name": "B"},
	}

	sr, err := NewImporter(s).Import(context.Background(), loader.KindEntities, rows)
	require.NoError(t, err)
	assert.Equal(t, StepReport{Step: StepEntities, Total: 3, Succeeded: 2, Failed: 1}, sr)
}

func TestImportDuplicateRelationshipLastWins(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	imp := NewImporter(s)
	_, err := imp.Import(ctx, loader.KindEntities, []loader.Record{{"id": "a"}, {"id": "b"}, {"id": "c"}})
	require.NoError(t, err)

	sr, err := imp.Import(ctx, loader.KindRelationships, []loader.Record{
		{"id": "r1", "source": "a", "target": "b", "description": "first"},
		{"id": "r1", "source": "a", "target": "c", "description": "second"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sr.Succeeded)

	rel, _ := s.Relationship("r1")
	assert.Equal(t, "c", rel.Target)
	assert.Equal(t, "second", rel.Description)
}

func TestImportUnknownTable(t *testing.T) {
	_, err := NewImporter(memory.New()).Import(context.Background(), loader.Kind("covariates"), nil)
	assert.Error(t, err)
}
