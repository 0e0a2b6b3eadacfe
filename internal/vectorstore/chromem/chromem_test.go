package chromem

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursetutor/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Config{
		Path:       filepath.Join(t.TempDir(), "index"),
		Collection: "test_materials",
	})
	require.NoError(t, err)
	return s
}

func TestStore_UpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Init(ctx, 3))

	chunks := []domain.Chunk{
		{DocumentID: "d1", ChunkID: "d1:0", Source: "a.txt", Index: 0, Start: 0, End: 10, Text: "first chunk"},
		{DocumentID: "d1", ChunkID: "d1:1", Source: "a.txt", Index: 1, Start: 8, End: 18, Text: "second chunk"},
	}
	vectors := [][]float32{{1, 0, 0}, {0, 1, 0}}
	require.NoError(t, s.Upsert(ctx, chunks, vectors))
	assert.Equal(t, 2, s.Count())

	// topK beyond the stored count is clamped, not an error
	results, err := s.Search(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "d1:0", results[0].Chunk.ChunkID)
	assert.Equal(t, "first chunk", results[0].Chunk.Text)
	assert.Equal(t, "a.txt", results[0].Chunk.Source)
	assert.Equal(t, 0, results[0].Chunk.Index)
	assert.Equal(t, 0, results[0].Chunk.Start)
	assert.Equal(t, 10, results[0].Chunk.End)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestStore_SearchEmptyCollection(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	results, err := s.Search(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_ClearAndRebuild(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	chunks := []domain.Chunk{{ChunkID: "d1:0", Text: "chunk"}}
	vectors := [][]float32{{0, 1, 0}}
	require.NoError(t, s.Upsert(ctx, chunks, vectors))
	require.Equal(t, 1, s.Count())

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 0, s.Count())

	// rebuild after clear keeps the store usable and the same size
	require.NoError(t, s.Upsert(ctx, chunks, vectors))
	assert.Equal(t, 1, s.Count())
}

func TestStore_UpsertLengthMismatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	err := s.Upsert(ctx, []domain.Chunk{{ChunkID: "x"}}, nil)
	assert.Error(t, err)
}
