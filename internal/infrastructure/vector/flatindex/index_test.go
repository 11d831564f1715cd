package flatindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

func metaFor(n int) []domain.ChunkMetadata {
	out := make([]domain.ChunkMetadata, n)
	for i := range out {
		out[i] = domain.ChunkMetadata{Source: "ref.pdf", Page: i + 1, Type: domain.DocTypeReference}
	}
	return out
}

func TestMergeGrowsIndexAdditively(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)
	ctx := context.Background()

	err := idx.Merge(ctx,
		[]string{"alpha", "beta"},
		[][]float32{{1, 0}, {0, 1}},
		metaFor(2),
	)
	require.NoError(t, err)
	require.Equal(t, 2, idx.Size())

	err = idx.Merge(ctx,
		[]string{"gamma"},
		[][]float32{{1, 1}},
		metaFor(1),
	)
	require.NoError(t, err)
	require.Equal(t, 3, idx.Size())

	// previously indexed chunks stay retrievable with unchanged vectors
	hits, err := idx.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "alpha", hits[0].Text)
	require.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestMergePersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := New(dir)
	require.NoError(t, first.Merge(ctx, []string{"alpha"}, [][]float32{{0.5, 0.5}}, metaFor(1)))

	reloaded := New(dir)
	require.Equal(t, 1, reloaded.Size())
	require.NoError(t, reloaded.Merge(ctx, []string{"beta"}, [][]float32{{0.9, 0.1}}, metaFor(1)))
	require.Equal(t, 2, reloaded.Size())
}

func TestSearchOrdersByCosineSimilarity(t *testing.T) {
	idx := New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, idx.Merge(ctx,
		[]string{"east", "north", "northeast"},
		[][]float32{{1, 0}, {0, 1}, {1, 1}},
		metaFor(3),
	))

	hits, err := idx.Search(ctx, []float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "east", hits[0].Text)
	require.Equal(t, "northeast", hits[1].Text)
	require.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestSearchDefaultsTopK(t *testing.T) {
	idx := New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, idx.Merge(ctx,
		[]string{"a", "b", "c", "d", "e"},
		[][]float32{{1, 0}, {0, 1}, {1, 1}, {2, 1}, {1, 2}},
		metaFor(5),
	))

	hits, err := idx.Search(ctx, []float32{1, 1}, 0)
	require.NoError(t, err)
	require.Len(t, hits, 3)
}

func TestMergeRejectsDimensionMismatch(t *testing.T) {
	idx := New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, idx.Merge(ctx, []string{"a"}, [][]float32{{1, 0}}, metaFor(1)))

	err := idx.Merge(ctx, []string{"b"}, [][]float32{{1, 0, 0}}, metaFor(1))
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.ErrIndex))
}

func TestCorruptBlobSurfacesIndexError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, blobName), []byte("not a gob blob"), 0o644))

	idx := New(dir)
	_, err := idx.Search(context.Background(), []float32{1}, 3)
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.ErrIndex))
}
