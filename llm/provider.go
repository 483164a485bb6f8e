// Package llm defines the completion backend contract and its factory.
// The pipeline depends only on CompletionProvider; which backend is active
// is decided once at process start from configuration.
package llm

import (
	"context"
	"time"
)

// HealthStatus reports the result of a provider health check.
type HealthStatus struct {
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
	Message string        `json:"message,omitempty"`
}

// CompletionProvider turns a fully rendered prompt into generated text.
//
// Implementations must surface failures (timeout, quota, network) as a
// *types.Error — never as a silent empty string.
type CompletionProvider interface {
	// Complete performs a synchronous completion request.
	Complete(ctx context.Context, prompt string) (string, error)

	// HealthCheck performs a lightweight liveness probe.
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	// Name returns the provider's unique identifier.
	Name() string
}
