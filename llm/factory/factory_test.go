package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusrag/campusrag/config"
)

func TestNew_SelectsConfiguredProvider(t *testing.T) {
	cfg := config.DefaultLLMConfig()
	cfg.Provider = "ollama"

	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())
}

func TestNew_GeminiRequiresAPIKey(t *testing.T) {
	cfg := config.DefaultLLMConfig()
	cfg.Provider = "gemini"
	cfg.Gemini.APIKey = ""

	_, err := New(cfg, zap.NewNop())
	require.Error(t, err)
}

func TestNew_Gemini(t *testing.T) {
	cfg := config.DefaultLLMConfig()
	cfg.Gemini.APIKey = "k"

	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := config.DefaultLLMConfig()
	cfg.Provider = "mystery"

	_, err := New(cfg, zap.NewNop())
	require.Error(t, err)
}
