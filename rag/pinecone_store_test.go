package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusrag/campusrag/config"
	"github.com/campusrag/campusrag/types"
)

func newTestPinecone(t *testing.T, handler http.HandlerFunc) *PineconeStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewPineconeStore(config.PineconeConfig{
		APIKey:    "pc-key",
		BaseURL:   srv.URL,
		Namespace: "campus",
	}, zap.NewNop())
}

func TestPineconeUpsert(t *testing.T) {
	store := newTestPinecone(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vectors/upsert", r.URL.Path)
		assert.Equal(t, "pc-key", r.Header.Get("Api-Key"))

		var req struct {
			Vectors []struct {
				ID       string         `json:"id"`
				Values   []float64      `json:"values"`
				Metadata map[string]any `json:"metadata"`
			} `json:"vectors"`
			Namespace string `json:"namespace"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Vectors, 1)
		assert.Equal(t, "doc1_chunk_0", req.Vectors[0].ID)
		assert.Equal(t, "campus", req.Namespace)
		assert.Equal(t, "chunk text", req.Vectors[0].Metadata["text"])

		w.Write([]byte(`{"upsertedCount":1}`))
	})

	err := store.Upsert(context.Background(), []Document{{
		ID:        "doc1_chunk_0",
		Content:   "chunk text",
		Embedding: []float64{0.1, 0.2},
		Metadata:  map[string]any{"doc_id": "doc1", "chunk_index": 0},
	}})
	require.NoError(t, err)
}

func TestPineconeSearch(t *testing.T) {
	store := newTestPinecone(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)

		var req struct {
			TopK            int  `json:"topK"`
			IncludeMetadata bool `json:"includeMetadata"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.TopK)
		assert.True(t, req.IncludeMetadata)

		w.Write([]byte(`{"matches":[
			{"id":"doc1_chunk_2","score":0.91,"metadata":{"text":"library hours","doc_id":"doc1","chunk_index":2}},
			{"id":"doc2_chunk_0","score":0.42,"metadata":{"text":"cafeteria menu","doc_id":"doc2","chunk_index":0}}
		]}`))
	})

	results, err := store.Search(context.Background(), []float64{0.5, 0.5}, 3)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "library hours", results[0].Document.Content)
	assert.InDelta(t, 0.91, results[0].Score, 0.001)
}

func TestPineconeSearch_ServerError(t *testing.T) {
	store := newTestPinecone(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := store.Search(context.Background(), []float64{1}, 3)
	require.Error(t, err)
	assert.Equal(t, types.ErrRetrievalUnavailable, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestPineconeSearch_EmptyEmbedding(t *testing.T) {
	store := newTestPinecone(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := store.Search(context.Background(), nil, 3)
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
}

func TestPineconeDelete(t *testing.T) {
	store := newTestPinecone(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vectors/delete", r.URL.Path)

		var req struct {
			IDs []string `json:"ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"doc1_chunk_0", "doc1_chunk_1"}, req.IDs)

		w.Write([]byte(`{}`))
	})

	err := store.Delete(context.Background(), []string{"doc1_chunk_0", "doc1_chunk_1"})
	require.NoError(t, err)
}

func TestPineconeCount_NamespaceScoped(t *testing.T) {
	store := newTestPinecone(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/describe_index_stats", r.URL.Path)
		w.Write([]byte(`{"totalVectorCount":100,"namespaces":{"campus":{"vectorCount":42}}}`))
	})

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestPinecone_MissingBaseURLAndIndex(t *testing.T) {
	store := NewPineconeStore(config.PineconeConfig{APIKey: "k"}, zap.NewNop())

	_, err := store.Search(context.Background(), []float64{1}, 3)
	require.Error(t, err)
}
