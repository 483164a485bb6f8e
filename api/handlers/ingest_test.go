package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusrag/campusrag/cache"
	"github.com/campusrag/campusrag/rag"
	"github.com/campusrag/campusrag/types"
)

type fakeIngester struct {
	result *rag.IngestResult
	err    error
}

func (f *fakeIngester) Ingest(ctx context.Context, docID, text string) (*rag.IngestResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestIngestHandler_Success(t *testing.T) {
	h := NewIngestHandler(&fakeIngester{result: &rag.IngestResult{
		DocID:      "handbook",
		ChunkCount: 4,
	}}, nil, nil, zap.NewNop())

	rec := postJSON(t, h, "/v1/documents", `{"doc_id":"handbook","text":"some document text"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"chunk_count":4`)
}

func TestIngestHandler_MissingFields(t *testing.T) {
	h := NewIngestHandler(&fakeIngester{}, nil, nil, zap.NewNop())

	rec := postJSON(t, h, "/v1/documents", `{"doc_id":"","text":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h, "/v1/documents", `{"doc_id":"d","text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestHandler_OversizeChunkRejected(t *testing.T) {
	h := NewIngestHandler(&fakeIngester{
		err: types.NewError(types.ErrIngestChunkTooLarge, "chunk 0 exceeds limit"),
	}, nil, nil, zap.NewNop())

	rec := postJSON(t, h, "/v1/documents", `{"doc_id":"d","text":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(types.ErrIngestChunkTooLarge))
}

func postUpload(t *testing.T, h http.Handler, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIngestHandler_FileUpload(t *testing.T) {
	h := NewIngestHandler(&fakeIngester{result: &rag.IngestResult{
		DocID:      "handbook",
		ChunkCount: 2,
	}}, nil, nil, zap.NewNop())

	rec := postUpload(t, h, "handbook.txt", "campus library opens at eight")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"chunk_count":2`)
}

func TestIngestHandler_UnsupportedFileType(t *testing.T) {
	h := NewIngestHandler(&fakeIngester{}, nil, nil, zap.NewNop())

	rec := postUpload(t, h, "handbook.pdf", "%PDF-1.4")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(types.ErrIngestUnsupportedType))
}

// Re-ingesting flushes stale cached answers.
func TestIngestHandler_FlushesAnswerCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	answers := cache.NewAnswerCache(client, time.Hour, zap.NewNop())

	ctx := context.Background()
	answers.Set(ctx, "old question", "old answer")

	h := NewIngestHandler(&fakeIngester{result: &rag.IngestResult{DocID: "d", ChunkCount: 1}}, answers, nil, zap.NewNop())

	rec := postJSON(t, h, "/v1/documents", `{"doc_id":"d","text":"new content"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	_, ok := answers.Get(ctx, "old question")
	assert.False(t, ok)
}
