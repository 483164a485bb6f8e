package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/config"
	"github.com/campusrag/campusrag/types"
)

// HuggingFaceProvider embeds text via the Hugging Face inference API's
// feature-extraction pipeline. The default model is a multilingual
// sentence-transformer with 384 dimensions.
type HuggingFaceProvider struct {
	cfg    config.EmbeddingConfig
	client *http.Client
	logger *zap.Logger
}

const defaultDimensions = 384

// NewHuggingFace creates a Hugging Face embedding provider.
func NewHuggingFace(cfg config.EmbeddingConfig, logger *zap.Logger) *HuggingFaceProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co"
	}

	return &HuggingFaceProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("component", "hf_embedding")),
	}
}

func (p *HuggingFaceProvider) Name() string    { return "huggingface" }
func (p *HuggingFaceProvider) Dimensions() int { return defaultDimensions }

// EmbedQuery embeds a single query string.
func (p *HuggingFaceProvider) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	vectors, err := p.EmbedDocuments(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, types.NewError(types.ErrEmbeddingUnavailable, "no embedding returned").
			WithProvider(p.Name())
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of texts in one request.
func (p *HuggingFaceProvider) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	if len(documents) == 0 {
		return [][]float64{}, nil
	}

	endpoint := fmt.Sprintf("%s/pipeline/feature-extraction/%s",
		strings.TrimRight(p.cfg.BaseURL, "/"), p.cfg.Model)

	body := struct {
		Inputs  []string       `json:"inputs"`
		Options map[string]any `json:"options,omitempty"`
	}{
		Inputs:  documents,
		Options: map[string]any{"wait_for_model": true},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to encode request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to build request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrEmbeddingUnavailable, "embedding backend unreachable").
			WithCause(err).WithProvider(p.Name()).
			WithHTTPStatus(http.StatusBadGateway).WithRetryable(true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "failed to read response").
			WithCause(err).WithProvider(p.Name()).WithRetryable(true)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewError(types.ErrEmbeddingUnavailable,
			fmt.Sprintf("embedding request failed: status=%d body=%s", resp.StatusCode, string(raw))).
			WithHTTPStatus(resp.StatusCode).
			WithProvider(p.Name()).
			WithRetryable(resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests)
	}

	var vectors [][]float64
	if err := json.Unmarshal(raw, &vectors); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "failed to decode embeddings").
			WithCause(err).WithProvider(p.Name())
	}

	if len(vectors) != len(documents) {
		return nil, types.NewError(types.ErrEmbeddingUnavailable,
			fmt.Sprintf("embedding count mismatch: got %d, want %d", len(vectors), len(documents))).
			WithProvider(p.Name())
	}

	p.logger.Debug("embeddings generated",
		zap.Int("count", len(vectors)),
		zap.Duration("latency", time.Since(start)))

	return vectors, nil
}
