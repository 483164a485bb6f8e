// Package gemini implements the CompletionProvider for Google's hosted
// Gemini API. Authentication uses the x-goog-api-key request header.
package gemini

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

// Provider is the Gemini-backed completion provider.
type Provider struct {
	cfg    config.GeminiConfig
	client *http.Client
	logger *zap.Logger
}

// New creates a Gemini completion provider.
func New(cfg config.GeminiConfig, timeout time.Duration, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}

	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger.With(zap.String("component", "gemini_provider")),
	}
}

func (p *Provider) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Complete sends the prompt to the generateContent endpoint and returns the
// first candidate's text.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(p.cfg.BaseURL, "/"), p.cfg.Model)

	body := generateRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
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
	req.Header.Set("x-goog-api-key", p.cfg.APIKey)

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return "", transportError(err, p.Name())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewError(types.ErrUpstreamError, "failed to read response").
			WithCause(err).WithProvider(p.Name()).WithRetryable(true)
	}

	if resp.StatusCode != http.StatusOK {
		return "", mapStatusError(resp.StatusCode, string(raw), p.Name())
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", types.NewError(types.ErrUpstreamError, "failed to decode response").
			WithCause(err).WithProvider(p.Name())
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", types.NewError(types.ErrCompletionUnavailable, "gemini returned no candidates").
			WithProvider(p.Name()).WithHTTPStatus(http.StatusBadGateway)
	}

	var sb strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	p.logger.Debug("completion finished",
		zap.String("model", p.cfg.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("answer_len", sb.Len()))

	return sb.String(), nil
}

// HealthCheck lists models as a lightweight liveness probe.
func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models", strings.TrimRight(p.cfg.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &llm.HealthStatus{Healthy: false}, err
	}
	req.Header.Set("x-goog-api-key", p.cfg.APIKey)

	start := time.Now()
	resp, err := p.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return &llm.HealthStatus{Healthy: false, Latency: latency}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &llm.HealthStatus{Healthy: false, Latency: latency},
			fmt.Errorf("gemini health check failed: status=%d", resp.StatusCode)
	}
	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}

// transportError converts client-side transport failures into typed errors.
func transportError(err error, provider string) *types.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewError(types.ErrUpstreamTimeout, "completion request timed out").
			WithCause(err).WithProvider(provider).
			WithHTTPStatus(http.StatusGatewayTimeout).WithRetryable(true)
	}
	return types.NewError(types.ErrCompletionUnavailable, "completion backend unreachable").
		WithCause(err).WithProvider(provider).
		WithHTTPStatus(http.StatusBadGateway).WithRetryable(true)
}

// mapStatusError maps upstream HTTP status codes to typed errors.
func mapStatusError(status int, body, provider string) *types.Error {
	code := types.ErrUpstreamError
	retryable := status >= 500

	switch status {
	case http.StatusUnauthorized:
		code = types.ErrUnauthorized
	case http.StatusForbidden:
		code = types.ErrForbidden
	case http.StatusTooManyRequests:
		code = types.ErrQuotaExceeded
		retryable = true
	case http.StatusBadRequest:
		code = types.ErrInvalidRequest
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		code = types.ErrCompletionUnavailable
	}

	return types.NewError(code, body).
		WithHTTPStatus(status).
		WithRetryable(retryable).
		WithProvider(provider)
}
