package handlers

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campusrag/campusrag/llm"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	version   string
	completer llm.CompletionProvider
	redis     *redis.Client
	logger    *zap.Logger
	startedAt time.Time
}

// NewHealthHandler creates the health endpoints. The completion
// provider and Redis client may be nil; readiness then skips them.
func NewHealthHandler(version string, completer llm.CompletionProvider, redisClient *redis.Client, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		version:   version,
		completer: completer,
		redis:     redisClient,
		logger:    logger.With(zap.String("handler", "health")),
		startedAt: time.Now(),
	}
}

// Health reports process liveness.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).String(),
	})
}

// Ready reports whether the collaborators this instance depends on are
// reachable. Degraded collaborators flip the status to 503.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true

	if h.completer != nil {
		status, err := h.completer.HealthCheck(r.Context())
		switch {
		case err != nil:
			checks["completion"] = "error: " + err.Error()
			healthy = false
		case !status.Healthy:
			checks["completion"] = "unhealthy: " + status.Message
			healthy = false
		default:
			checks["completion"] = "ok"
		}
	}

	if h.redis != nil {
		if err := h.redis.Ping(r.Context()).Err(); err != nil {
			checks["redis"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	WriteJSON(w, status, map[string]any{
		"status": state,
		"checks": checks,
	})
}
