package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(addr string) Config {
	cfg := DefaultConfig()
	cfg.Addr = addr
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

func TestManager_StartServeShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})

	m := NewManager(handler, testConfig("127.0.0.1:18231"), zap.NewNop())
	require.NoError(t, m.Start())
	defer m.Shutdown(context.Background())

	resp, err := http.Get("http://127.0.0.1:18231/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	require.NoError(t, m.Shutdown(context.Background()))
	assert.False(t, m.IsRunning())
}

func TestManager_DoubleStartFails(t *testing.T) {
	m := NewManager(http.NotFoundHandler(), testConfig("127.0.0.1:18232"), zap.NewNop())
	require.NoError(t, m.Start())
	defer m.Shutdown(context.Background())

	require.Error(t, m.Start())
}

func TestManager_StartAfterShutdownFails(t *testing.T) {
	m := NewManager(http.NotFoundHandler(), testConfig("127.0.0.1:18233"), zap.NewNop())
	require.NoError(t, m.Start())
	require.NoError(t, m.Shutdown(context.Background()))

	require.Error(t, m.Start())
}

func TestManager_ShutdownIdempotent(t *testing.T) {
	m := NewManager(http.NotFoundHandler(), testConfig("127.0.0.1:18234"), zap.NewNop())
	require.NoError(t, m.Start())

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
}
