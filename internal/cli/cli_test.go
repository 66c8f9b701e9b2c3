package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/graphlift/internal/bootstrap"
	"github.com/OFFIS-RIT/graphlift/internal/config"
	"github.com/OFFIS-RIT/graphlift/pkg/ai"
	"github.com/OFFIS-RIT/graphlift/pkg/common"
	"github.com/OFFIS-RIT/graphlift/pkg/store"
	"github.com/OFFIS-RIT/graphlift/pkg/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constEmbedder struct{ vec []float32 }

func (c constEmbedder) GenerateEmbedding(context.Context, []byte, ...ai.EmbedOption) ([]float32, error) {
	return c.vec, nil
}

func (constEmbedder) Model() string { return "const" }

func testDeps(storage *memory.GraphStorage, embedder ai.EmbeddingClient) Deps {
	return Deps{
		LoadConfig: func() (*config.Config, error) {
			return config.LoadFrom(map[string]string{})
		},
		OpenStorage: func(context.Context, *config.Config) (store.GraphStorage, error) {
			return storage, nil
		},
		OpenEmbedder: func(context.Context, *config.Config) (ai.EmbeddingClient, error) {
			return embedder, nil
		},
		OpenReader: bootstrap.NewTableReader,
	}
}

func writeTables(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"entities.csv":      "id,title,type,description,degree\ne1,ACME,ORG,Makes anvils,1\ne2,BOB,PERSON,Buys anvils,1\n",
		"relationships.csv": "id,source,target,description\nr1,e1,e2,sells to\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func run(t *testing.T, deps Deps, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(deps)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandFlags(t *testing.T) {
	cmd := NewRootCommand(testDeps(memory.New(), nil))

	debug := cmd.PersistentFlags().Lookup("debug")
	require.NotNil(t, debug)
	assert.Equal(t, "bool", debug.Value.Type())

	for _, name := range []string{"import", "embed", "stats"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	imp, _, _ := cmd.Find([]string{"import"})
	for _, flag := range []string{"source", "format", "reset", "yes", "text-units", "dry-run"} {
		assert.NotNil(t, imp.Flags().Lookup(flag), flag)
	}
}

func TestImportWritesGraph(t *testing.T) {
	storage := memory.New()
	out, err := run(t, testDeps(storage, nil), "", "import", "--source", writeTables(t), "--format", "csv")
	require.NoError(t, err)

	_, ok := storage.Entity("e1")
	assert.True(t, ok)
	_, ok = storage.Relationship("r1")
	assert.True(t, ok)

	assert.Regexp(t, `entities\s+2\s+2\s+0`, out)
	assert.Regexp(t, `documents\s+-\s+-\s+skipped`, out)
	assert.Regexp(t, `Entities:\s+2`, out)
}

func TestImportDryRunLeavesStorageAlone(t *testing.T) {
	storage := memory.New()
	deps := testDeps(storage, nil)
	deps.OpenStorage = func(context.Context, *config.Config) (store.GraphStorage, error) {
		return nil, errors.New("must not connect")
	}

	out, err := run(t, deps, "", "import", "--source", writeTables(t), "--format", "csv", "--dry-run")
	require.NoError(t, err)
	assert.Regexp(t, `relationships\s+1\s+1\s+0`, out)
}

func TestImportResetNeedsConfirmation(t *testing.T) {
	storage := memory.New()
	require.NoError(t, storage.UpsertEntity(context.Background(), common.Entity{ID: "old", Name: "OLD"}))

	out, err := run(t, testDeps(storage, nil), "n\n", "import", "--source", writeTables(t), "--format", "csv", "--reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Import cancelled.")
	_, ok := storage.Entity("old")
	assert.True(t, ok)
	_, ok = storage.Entity("e1")
	assert.False(t, ok)

	_, err = run(t, testDeps(storage, nil), "", "import", "--source", writeTables(t), "--format", "csv", "--reset", "--yes")
	require.NoError(t, err)
	_, ok = storage.Entity("old")
	assert.False(t, ok)
	_, ok = storage.Entity("e1")
	assert.True(t, ok)
}

func TestEmbed(t *testing.T) {
	storage := memory.New()
	_, err := run(t, testDeps(storage, nil), "", "import", "--source", writeTables(t), "--format", "csv")
	require.NoError(t, err)

	out, err := run(t, testDeps(storage, constEmbedder{vec: []float32{1, 0, 0}}), "", "embed", "--kind", "entities", "--delay", "0s")
	require.NoError(t, err)
	assert.Regexp(t, `entities\s+2\s+2\s+0\s+3\s+true`, out)

	emb, ok := storage.Embedding(store.ElementEntities, "e1")
	require.True(t, ok)
	assert.Equal(t, "ACME (ORG): Makes anvils", emb.Text)
	dim, ok := storage.VectorIndex(store.ElementEntities)
	require.True(t, ok)
	assert.Equal(t, 3, dim)

	_, ok = storage.Embedding(store.ElementRelationships, "r1")
	assert.False(t, ok)

	assert.Contains(t, out, "Sample: ACME (3 dimensions)")
	assert.NotContains(t, out, "Similarity check")
}

func TestEmbedVerify(t *testing.T) {
	storage := memory.New()
	_, err := run(t, testDeps(storage, nil), "", "import", "--source", writeTables(t), "--format", "csv")
	require.NoError(t, err)

	out, err := run(t, testDeps(storage, constEmbedder{vec: []float32{1, 0, 0}}), "",
		"embed", "--kind", "entities", "--delay", "0s", "--verify", "anvil makers")
	require.NoError(t, err)
	assert.Contains(t, out, `Similarity check for "anvil makers" using semantic search`)
	assert.Regexp(t, `ACME\s+ORG`, out)
}

func TestEmbedVerifyFallsBackWithoutEntityIndex(t *testing.T) {
	storage := memory.New()
	_, err := run(t, testDeps(storage, nil), "", "import", "--source", writeTables(t), "--format", "csv")
	require.NoError(t, err)

	out, err := run(t, testDeps(storage, constEmbedder{vec: []float32{1, 0, 0}}), "",
		"embed", "--kind", "relationships", "--delay", "0s", "--verify", "anvils")
	require.NoError(t, err)
	assert.Contains(t, out, "using keyword search (vector search unavailable: vector_query_error)")
	assert.Regexp(t, `ACME\s+ORG`, out)
}

func TestEmbedErrors(t *testing.T) {
	_, err := run(t, testDeps(memory.New(), nil), "", "embed")
	assert.True(t, errors.Is(err, errNoEmbedder))

	_, err = run(t, testDeps(memory.New(), constEmbedder{vec: []float32{1}}), "", "embed", "--kind", "documents")
	assert.ErrorContains(t, err, "unknown kind")
}

func TestStats(t *testing.T) {
	storage := memory.New()
	_, err := run(t, testDeps(storage, nil), "", "import", "--source", writeTables(t), "--format", "csv")
	require.NoError(t, err)

	out, err := run(t, testDeps(storage, nil), "", "stats")
	require.NoError(t, err)
	assert.Regexp(t, `Relationships:\s+1`, out)
	assert.Regexp(t, `Entities with embedding:\s+0/2`, out)
	assert.NotContains(t, out, "Sample:")
}
