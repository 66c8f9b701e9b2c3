package parquet

import (
	"bytes"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entityRow struct {
	ID           string   `parquet:"id"`
	Title        string   `parquet:"title"`
	Type         string   `parquet:"type"`
	Description  string   `parquet:"description,optional"`
	Degree       int64    `parquet:"degree"`
	Rank         float64  `parquet:"rank"`
	CommunityIDs []string `parquet:"community_ids,list"`
}

type finding struct {
	Summary     string `parquet:"summary"`
	Explanation string `parquet:"explanation"`
}

type reportRow struct {
	Community int32     `parquet:"community"`
	Findings  []finding `parquet:"findings,list"`
}

func encode[T any](t *testing.T, rows []T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[T](&buf)
	_, err := w.Write(rows)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecodeEntities(t *testing.T) {
	data := encode(t, []entityRow{
		{ID: "e1", Title: "Acme", Type: "ORG", Description: "A company", Degree: 3, Rank: 0.5, CommunityIDs: []string{"c1", "c2"}},
		{ID: "e2", Title: "Bob", Type: "PERSON", Degree: 1},
	})

	rows, err := NewParquetDecoder().Decode(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "e1", first.String("id", ""))
	assert.Equal(t, "Acme", first.StringOr("", "name", "title"))
	assert.Equal(t, "A company", first.String("description", ""))
	assert.Equal(t, int64(3), first.Int("degree", 0))
	assert.Equal(t, 0.5, first.Float("rank", 0))
	ids, err := first.IDList("community_ids")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids)

	second := rows[1]
	_, ok := second.Value("description")
	assert.False(t, ok)
	ids, err = second.IDList("community_ids")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDecodeListOfStructs(t *testing.T) {
	data := encode(t, []reportRow{
		{Community: 7, Findings: []finding{{Summary: "s1", Explanation: "e1"}, {Summary: "s2", Explanation: "e2"}}},
	})

	rows, err := NewParquetDecoder().Decode(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "7", rows[0].String("community", ""))
	assert.Equal(t, []any{
		map[string]any{"summary": "s1", "explanation": "e1"},
		map[string]any{"summary": "s2", "explanation": "e2"},
	}, rows[0]["findings"])
}

func TestDecodeGarbage(t *testing.T) {
	_, err := NewParquetDecoder().Decode([]byte("definitely not parquet"))
	assert.Error(t, err)
}
