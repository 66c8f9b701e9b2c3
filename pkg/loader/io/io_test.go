package io

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/graphlift/pkg/loader"
	"github.com/OFFIS-RIT/graphlift/pkg/loader/csv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entities.csv"), []byte("id,title\ne1,Acme\n"), 0o644))

	reader := loader.NewFileTableReader(NewIOFetcher(dir), csv.NewCSVDecoder())

	rows, err := reader.Read(context.Background(), loader.KindEntities)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].String("title", ""))

	_, err = reader.Read(context.Background(), loader.KindDocuments)
	assert.ErrorIs(t, err, loader.ErrTableNotFound)
}

func TestFetchStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	_, err := NewIOFetcher(dir).Fetch(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, loader.ErrTableNotFound)
}

func TestReadRejectsUnknownKind(t *testing.T) {
	reader := loader.NewFileTableReader(NewIOFetcher(t.TempDir()), csv.NewCSVDecoder())

	_, err := reader.Read(context.Background(), loader.Kind("../secrets"))
	assert.ErrorIs(t, err, loader.ErrUnknownKind)
}
