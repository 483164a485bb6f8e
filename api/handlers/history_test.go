package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusrag/campusrag/history"
)

func newHistoryHandler(t *testing.T) (*HistoryHandler, history.Store) {
	t.Helper()
	store := history.NewFileStore(filepath.Join(t.TempDir(), "history.json"), zap.NewNop())
	return NewHistoryHandler(store, zap.NewNop()), store
}

func TestHistoryHandler_Get(t *testing.T) {
	h, store := newHistoryHandler(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "u1", history.Turn{Question: "q1", Answer: "a1"}))
	require.NoError(t, store.Append(ctx, "u1", history.Turn{Question: "q2", Answer: "a2"}))

	req := httptest.NewRequest(http.MethodGet, "/v1/history/u1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			UserID string `json:"user_id"`
			Turns  []struct {
				Question string `json:"question"`
				Answer   string `json:"answer"`
			} `json:"turns"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.Data.UserID)
	require.Len(t, resp.Data.Turns, 2)
	assert.Equal(t, "q1", resp.Data.Turns[0].Question)
}

func TestHistoryHandler_GetUnknownUser(t *testing.T) {
	h, _ := newHistoryHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/history/nobody", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"turns":[]`)
}

func TestHistoryHandler_Clear(t *testing.T) {
	h, store := newHistoryHandler(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "u1", history.Turn{Question: "q", Answer: "a"}))

	req := httptest.NewRequest(http.MethodDelete, "/v1/history/u1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	turns, err := store.History(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestHistoryHandler_MissingUserID(t *testing.T) {
	h, _ := newHistoryHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/history/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newHistoryHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/history/u1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
