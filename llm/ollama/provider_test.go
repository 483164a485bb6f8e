package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusrag/campusrag/config"
	"github.com/campusrag/campusrag/types"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.OllamaConfig{
		Model:       "gemma3:4b",
		BaseURL:     srv.URL,
		Temperature: 0.7,
	}, 5*time.Second, zap.NewNop())
}

func TestComplete_Success(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemma3:4b", req.Model)
		assert.False(t, req.Stream)
		assert.InDelta(t, 0.7, req.Options["temperature"], 0.001)

		w.Write([]byte(`{"response":"local answer","done":true}`))
	})

	answer, err := p.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "local answer", answer)
}

func TestComplete_ServerError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, types.ErrCompletionUnavailable, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestComplete_InlineError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"model not loaded"}`))
	})

	_, err := p.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, types.ErrCompletionUnavailable, types.GetErrorCode(err))
}

func TestComplete_Unreachable(t *testing.T) {
	p := New(config.OllamaConfig{BaseURL: "http://127.0.0.1:1", Model: "m"}, time.Second, zap.NewNop())

	_, err := p.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, types.ErrCompletionUnavailable, types.GetErrorCode(err))
}
