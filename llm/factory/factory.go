// Package factory constructs the configured completion provider.
package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/config"
	"github.com/campusrag/campusrag/llm"
	"github.com/campusrag/campusrag/llm/gemini"
	"github.com/campusrag/campusrag/llm/ollama"
)

// New returns the completion provider selected by cfg.Provider.
// The selection happens once at startup; callers hold only the
// llm.CompletionProvider interface afterwards.
func New(cfg config.LLMConfig, logger *zap.Logger) (llm.CompletionProvider, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini provider selected but api_key is empty")
		}
		return gemini.New(cfg.Gemini, cfg.Timeout, logger), nil
	case "ollama":
		return ollama.New(cfg.Ollama, cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q (supported: gemini, ollama)", cfg.Provider)
	}
}
