package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/config"
	"github.com/campusrag/campusrag/types"
)

// Metadata keys stored alongside each vector. The chunk text lives in
// metadata so a search hit can be rendered without a second lookup.
const (
	metaTextField       = "text"
	metaDocIDField      = "doc_id"
	metaChunkIndexField = "chunk_index"
)

// PineconeStore implements VectorStore against Pinecone's REST data plane.
//
// When BaseURL is empty the store resolves the index host once via the
// controller API (GET /indexes/{index}) and caches it.
type PineconeStore struct {
	cfg    config.PineconeConfig
	logger *zap.Logger
	client *http.Client

	mu      sync.RWMutex
	baseURL string
}

const defaultControllerURL = "https://api.pinecone.io"

// NewPineconeStore creates a Pinecone-backed VectorStore.
func NewPineconeStore(cfg config.PineconeConfig, logger *zap.Logger) *PineconeStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &PineconeStore{
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "pinecone_store")),
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
	}
}

func (s *PineconeStore) ensureBaseURL(ctx context.Context) error {
	s.mu.RLock()
	if s.baseURL != "" {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()

	if strings.TrimSpace(s.cfg.Index) == "" {
		return types.NewError(types.ErrInvalidRequest, "pinecone base_url is required when index is empty")
	}

	endpoint := fmt.Sprintf("%s/indexes/%s", defaultControllerURL, url.PathEscape(s.cfg.Index))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.NewError(types.ErrInternalError, "failed to build request").WithCause(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Api-Key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return s.transportError(err, "describe index")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return types.NewError(types.ErrRetrievalUnavailable,
			fmt.Sprintf("pinecone describe index failed: status=%d body=%s", resp.StatusCode, string(raw))).
			WithHTTPStatus(resp.StatusCode).WithProvider("pinecone")
	}

	var describe struct {
		Host string `json:"host"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&describe); err != nil {
		return types.NewError(types.ErrUpstreamError, "failed to decode describe response").WithCause(err)
	}

	host := strings.TrimSpace(describe.Host)
	if host == "" {
		return types.NewError(types.ErrRetrievalUnavailable,
			fmt.Sprintf("pinecone controller returned empty host for index %q", s.cfg.Index)).
			WithProvider("pinecone")
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	s.mu.Lock()
	s.baseURL = strings.TrimRight(host, "/")
	s.mu.Unlock()

	return nil
}

func (s *PineconeStore) transportError(err error, op string) error {
	if err == nil {
		return nil
	}
	retryable := true
	code := types.ErrRetrievalUnavailable
	if strings.Contains(err.Error(), "context deadline exceeded") {
		code = types.ErrUpstreamTimeout
	}
	return types.NewError(code, "pinecone "+op+" failed").
		WithCause(err).WithProvider("pinecone").WithRetryable(retryable)
}

func (s *PineconeStore) doJSON(ctx context.Context, path string, in, out any) error {
	if err := s.ensureBaseURL(ctx); err != nil {
		return err
	}

	s.mu.RLock()
	endpoint := s.baseURL + path
	s.mu.RUnlock()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return types.NewError(types.ErrInternalError, "failed to encode request").WithCause(err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return types.NewError(types.ErrInternalError, "failed to build request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return s.transportError(err, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return types.NewError(types.ErrRetrievalUnavailable,
			fmt.Sprintf("pinecone request failed: path=%s status=%d body=%s", path, resp.StatusCode, string(raw))).
			WithHTTPStatus(resp.StatusCode).
			WithProvider("pinecone").
			WithRetryable(resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewError(types.ErrUpstreamError, "failed to decode response").WithCause(err)
	}
	return nil
}

func (s *PineconeStore) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	type vector struct {
		ID       string         `json:"id"`
		Values   []float64      `json:"values"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}

	vectors := make([]vector, 0, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			return types.NewError(types.ErrInvalidRequest, fmt.Sprintf("document[%d] has empty id", i))
		}
		if len(doc.Embedding) == 0 {
			return types.NewError(types.ErrInvalidRequest, fmt.Sprintf("document[%d] has no embedding", i))
		}

		meta := make(map[string]any, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		if doc.Content != "" {
			if _, exists := meta[metaTextField]; !exists {
				meta[metaTextField] = doc.Content
			}
		}

		vectors = append(vectors, vector{ID: doc.ID, Values: doc.Embedding, Metadata: meta})
	}

	req := struct {
		Vectors   []vector `json:"vectors"`
		Namespace string   `json:"namespace,omitempty"`
	}{
		Vectors:   vectors,
		Namespace: strings.TrimSpace(s.cfg.Namespace),
	}

	if err := s.doJSON(ctx, "/vectors/upsert", req, nil); err != nil {
		return err
	}

	s.logger.Info("vectors upserted", zap.Int("count", len(vectors)))
	return nil
}

func (s *PineconeStore) Search(ctx context.Context, queryEmbedding []float64, topK int) ([]VectorSearchResult, error) {
	if topK <= 0 {
		return []VectorSearchResult{}, nil
	}
	if len(queryEmbedding) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "query embedding is required")
	}

	req := struct {
		Vector          []float64 `json:"vector"`
		TopK            int       `json:"topK"`
		Namespace       string    `json:"namespace,omitempty"`
		IncludeMetadata bool      `json:"includeMetadata"`
	}{
		Vector:          queryEmbedding,
		TopK:            topK,
		Namespace:       strings.TrimSpace(s.cfg.Namespace),
		IncludeMetadata: true,
	}

	var resp struct {
		Matches []struct {
			ID       string         `json:"id"`
			Score    float64        `json:"score"`
			Metadata map[string]any `json:"metadata,omitempty"`
		} `json:"matches"`
	}

	if err := s.doJSON(ctx, "/query", req, &resp); err != nil {
		return nil, err
	}

	out := make([]VectorSearchResult, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		doc := Document{ID: m.ID, Metadata: m.Metadata}
		if m.Metadata != nil {
			if v, ok := m.Metadata[metaTextField].(string); ok {
				doc.Content = v
			}
		}
		out = append(out, VectorSearchResult{Document: doc, Score: m.Score})
	}

	return out, nil
}

func (s *PineconeStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	req := struct {
		IDs       []string `json:"ids"`
		Namespace string   `json:"namespace,omitempty"`
	}{
		IDs:       ids,
		Namespace: strings.TrimSpace(s.cfg.Namespace),
	}
	return s.doJSON(ctx, "/vectors/delete", req, nil)
}

func (s *PineconeStore) Count(ctx context.Context) (int, error) {
	req := struct {
		Namespace string `json:"namespace,omitempty"`
	}{Namespace: strings.TrimSpace(s.cfg.Namespace)}

	var resp struct {
		TotalVectorCount int `json:"totalVectorCount"`
		Namespaces       map[string]struct {
			VectorCount int `json:"vectorCount"`
		} `json:"namespaces"`
	}

	if err := s.doJSON(ctx, "/describe_index_stats", req, &resp); err != nil {
		return 0, err
	}

	if ns := strings.TrimSpace(s.cfg.Namespace); ns != "" && resp.Namespaces != nil {
		if st, ok := resp.Namespaces[ns]; ok {
			return st.VectorCount, nil
		}
	}
	return resp.TotalVectorCount, nil
}
