package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/api"
	"github.com/campusrag/campusrag/history"
	"github.com/campusrag/campusrag/types"
)

// HistoryHandler serves GET and DELETE on /v1/history/{user_id}.
type HistoryHandler struct {
	store  history.Store
	logger *zap.Logger
}

// NewHistoryHandler creates the history endpoint handler.
func NewHistoryHandler(store history.Store, logger *zap.Logger) *HistoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryHandler{
		store:  store,
		logger: logger.With(zap.String("handler", "history")),
	}
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimPrefix(r.URL.Path, "/v1/history/")
	if userID == "" || strings.Contains(userID, "/") {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "user id is required"), h.logger)
		return
	}

	switch r.Method {
	case http.MethodGet:
		turns, err := h.store.History(r.Context(), userID)
		if err != nil {
			WriteAnyError(w, err, h.logger)
			return
		}

		out := make([]api.HistoryTurn, 0, len(turns))
		for _, turn := range turns {
			out = append(out, api.HistoryTurn{Question: turn.Question, Answer: turn.Answer})
		}
		WriteSuccess(w, api.HistoryResponse{UserID: userID, Turns: out})

	case http.MethodDelete:
		if err := h.store.Clear(r.Context(), userID); err != nil {
			WriteAnyError(w, err, h.logger)
			return
		}
		WriteSuccess(w, map[string]string{"message": "history cleared"})

	default:
		WriteError(w, types.NewError(types.ErrInvalidRequest, "method not allowed").
			WithHTTPStatus(http.StatusMethodNotAllowed), h.logger)
	}
}
