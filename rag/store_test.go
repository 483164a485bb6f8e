package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryVectorStore_UpsertAndSearch(t *testing.T) {
	store := NewInMemoryVectorStore(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []Document{
		{ID: "a", Content: "about cats", Embedding: []float64{1, 0, 0}},
		{ID: "b", Content: "about dogs", Embedding: []float64{0, 1, 0}},
		{ID: "c", Content: "about birds", Embedding: []float64{0.9, 0.1, 0}},
	}))

	results, err := store.Search(ctx, []float64{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Document.ID)
	assert.Equal(t, "c", results[1].Document.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestInMemoryVectorStore_UpsertReplacesByID(t *testing.T) {
	store := NewInMemoryVectorStore(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []Document{{ID: "a", Content: "v1", Embedding: []float64{1, 0}}}))
	require.NoError(t, store.Upsert(ctx, []Document{{ID: "a", Content: "v2", Embedding: []float64{1, 0}}}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := store.Search(ctx, []float64{1, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, "v2", results[0].Document.Content)
}

func TestInMemoryVectorStore_UpsertRejectsMissingEmbedding(t *testing.T) {
	store := NewInMemoryVectorStore(zap.NewNop())

	err := store.Upsert(context.Background(), []Document{{ID: "a", Content: "text"}})
	require.Error(t, err)
}

func TestInMemoryVectorStore_Delete(t *testing.T) {
	store := NewInMemoryVectorStore(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []Document{
		{ID: "a", Embedding: []float64{1}},
		{ID: "b", Embedding: []float64{1}},
	}))
	require.NoError(t, store.Delete(ctx, []string{"a"}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInMemoryVectorStore_SearchEmpty(t *testing.T) {
	store := NewInMemoryVectorStore(zap.NewNop())

	results, err := store.Search(context.Background(), []float64{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 0}, []float64{1, 0}), 0.001)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 0.001)
	assert.InDelta(t, -1.0, cosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 0.001)

	// Mismatched lengths and zero vectors score 0.
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float64{0, 0}, []float64{1, 0}))
}
