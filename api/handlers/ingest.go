package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusrag/campusrag/api"
	"github.com/campusrag/campusrag/cache"
	"github.com/campusrag/campusrag/internal/metrics"
	"github.com/campusrag/campusrag/rag"
	"github.com/campusrag/campusrag/types"
)

// Ingester is the indexing surface the upload endpoint needs.
type Ingester interface {
	Ingest(ctx context.Context, docID, text string) (*rag.IngestResult, error)
}

// IngestHandler serves POST /v1/documents. After a successful ingest it
// flushes the answer cache, since cached answers may no longer match
// the index.
type IngestHandler struct {
	indexer Ingester
	answers *cache.AnswerCache
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewIngestHandler creates the document upload handler. The answer
// cache and collector may be nil.
func NewIngestHandler(indexer Ingester, answers *cache.AnswerCache, collector *metrics.Collector, logger *zap.Logger) *IngestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestHandler{
		indexer: indexer,
		answers: answers,
		metrics: collector,
		logger:  logger.With(zap.String("handler", "ingest")),
	}
}

func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "method not allowed").
			WithHTTPStatus(http.StatusMethodNotAllowed), h.logger)
		return
	}

	var docID, text string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var err error
		docID, text, err = h.readUpload(r)
		if err != nil {
			WriteAnyError(w, err, h.logger)
			return
		}
	} else {
		var req api.IngestRequest
		if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
			return
		}
		docID, text = req.DocID, req.Text
	}

	if strings.TrimSpace(docID) == "" {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "doc_id is required"), h.logger)
		return
	}
	if strings.TrimSpace(text) == "" {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "text is required"), h.logger)
		return
	}

	result, err := h.indexer.Ingest(r.Context(), docID, text)
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}

	h.metrics.ObserveIngest(result.ChunkCount)

	if h.answers != nil {
		if err := h.answers.Flush(r.Context()); err != nil {
			h.logger.Warn("answer cache flush failed after ingest", zap.Error(err))
		}
	}

	WriteSuccess(w, api.IngestResponse{
		DocID:      result.DocID,
		ChunkCount: result.ChunkCount,
		Truncated:  result.Truncated,
	})
}

// uploadMaxBytes caps in-memory multipart parsing at 16 MB.
const uploadMaxBytes = 16 << 20

// readUpload extracts the document ID and text from a multipart file
// upload. Only plain-text files are accepted; binary formats need
// text extraction upstream.
func (h *IngestHandler) readUpload(r *http.Request) (string, string, error) {
	if err := r.ParseMultipartForm(uploadMaxBytes); err != nil {
		return "", "", types.NewError(types.ErrInvalidRequest, "invalid multipart body").WithCause(err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", types.NewError(types.ErrInvalidRequest, "file field is required").WithCause(err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".txt" && ext != ".md" {
		return "", "", types.NewError(types.ErrIngestUnsupportedType,
			fmt.Sprintf("unsupported file type %q (supported: .txt, .md)", ext))
	}

	data, err := io.ReadAll(io.LimitReader(file, uploadMaxBytes))
	if err != nil {
		return "", "", types.NewError(types.ErrInternalError, "failed to read upload").WithCause(err)
	}

	docID := r.FormValue("doc_id")
	if docID == "" {
		docID = strings.TrimSuffix(header.Filename, ext)
	}
	if docID == "" {
		docID = uuid.NewString()
	}
	return docID, string(data), nil
}
