package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/api"
	"github.com/campusrag/campusrag/pipeline"
	"github.com/campusrag/campusrag/types"
)

// Answerer is the pipeline surface the query endpoint needs.
type Answerer interface {
	AnswerWithTopK(ctx context.Context, question, userID string, topK int) (*pipeline.QueryResult, error)
}

// QueryHandler serves POST /v1/query.
type QueryHandler struct {
	pipeline Answerer
	logger   *zap.Logger
}

// NewQueryHandler creates the query endpoint handler.
func NewQueryHandler(p Answerer, logger *zap.Logger) *QueryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryHandler{
		pipeline: p,
		logger:   logger.With(zap.String("handler", "query")),
	}
}

func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "method not allowed").
			WithHTTPStatus(http.StatusMethodNotAllowed), h.logger)
		return
	}

	var req api.QueryRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "question is required"), h.logger)
		return
	}

	result, err := h.pipeline.AnswerWithTopK(r.Context(), req.Question, req.UserID, req.TopK)
	if err != nil {
		// Upstream detail stays in the log; the caller gets a single
		// generic failure.
		h.logger.Error("query failed", zap.Error(err))
		WriteError(w, types.NewError(types.ErrInternalError, "failed to process query").
			WithHTTPStatus(http.StatusInternalServerError), h.logger)
		return
	}

	sources := make([]api.SourceDocument, 0, len(result.Sources))
	for _, src := range result.Sources {
		sources = append(sources, api.SourceDocument{
			Content:    src.Content,
			DocID:      src.DocID,
			ChunkIndex: src.ChunkIndex,
		})
	}

	WriteSuccess(w, api.QueryResponse{Answer: result.Answer, Sources: sources})
}
