// Package ollama implements the CompletionProvider for a locally hosted
// Ollama server via its /api/generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/config"
	"github.com/campusrag/campusrag/llm"
	"github.com/campusrag/campusrag/types"
)

// Provider is the Ollama-backed completion provider.
type Provider struct {
	cfg    config.OllamaConfig
	client *http.Client
	logger *zap.Logger
}

// New creates an Ollama completion provider.
func New(cfg config.OllamaConfig, timeout time.Duration, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}

	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger.With(zap.String("component", "ollama_provider")),
	}
}

func (p *Provider) Name() string { return "ollama" }

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Complete sends the prompt to /api/generate with streaming disabled.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/api/generate"

	body := generateRequest{
		Model:  p.cfg.Model,
		Prompt: prompt,
		Stream: false,
	}
	if p.cfg.Temperature > 0 {
		body.Options = map[string]any{"temperature": p.cfg.Temperature}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", types.NewError(types.ErrInternalError, "failed to encode request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", types.NewError(types.ErrInternalError, "failed to build request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", types.NewError(types.ErrUpstreamTimeout, "completion request timed out").
				WithCause(err).WithProvider(p.Name()).
				WithHTTPStatus(http.StatusGatewayTimeout).WithRetryable(true)
		}
		return "", types.NewError(types.ErrCompletionUnavailable, "ollama unreachable").
			WithCause(err).WithProvider(p.Name()).
			WithHTTPStatus(http.StatusBadGateway).WithRetryable(true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewError(types.ErrUpstreamError, "failed to read response").
			WithCause(err).WithProvider(p.Name()).WithRetryable(true)
	}

	if resp.StatusCode != http.StatusOK {
		return "", types.NewError(types.ErrCompletionUnavailable,
			fmt.Sprintf("ollama request failed: status=%d body=%s", resp.StatusCode, string(raw))).
			WithHTTPStatus(resp.StatusCode).
			WithProvider(p.Name()).
			WithRetryable(resp.StatusCode >= 500)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", types.NewError(types.ErrUpstreamError, "failed to decode response").
			WithCause(err).WithProvider(p.Name())
	}
	if decoded.Error != "" {
		return "", types.NewError(types.ErrCompletionUnavailable, decoded.Error).
			WithProvider(p.Name()).WithHTTPStatus(http.StatusBadGateway)
	}

	p.logger.Debug("completion finished",
		zap.String("model", p.cfg.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("answer_len", len(decoded.Response)))

	return decoded.Response, nil
}

// HealthCheck probes the Ollama root endpoint.
func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/", nil)
	if err != nil {
		return &llm.HealthStatus{Healthy: false}, err
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return &llm.HealthStatus{Healthy: false, Latency: latency}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &llm.HealthStatus{Healthy: false, Latency: latency},
			fmt.Errorf("ollama health check failed: status=%d", resp.StatusCode)
	}
	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}
