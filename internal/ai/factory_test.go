package ai

import (
	"testing"

	"github.com/sgoulden/vibecheck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_DeepSeek(t *testing.T) {
	provider, err := NewProvider(config.AIConfig{
		Provider: "deepseek",
		DeepSeek: config.DeepSeekConfig{APIKey: "k", BaseURL: "https://api.deepseek.com", Model: "deepseek-chat"},
	})
	require.NoError(t, err)
	assert.Equal(t, "deepseek", provider.Name())
}

func TestNewProvider_OpenAI(t *testing.T) {
	provider, err := NewProvider(config.AIConfig{
		Provider: "openai",
		OpenAI:   config.OpenAIConfig{APIKey: "k", BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())
}

func TestNewProvider_Mock(t *testing.T) {
	provider, err := NewProvider(config.AIConfig{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", provider.Name())
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider(config.AIConfig{Provider: "clippy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown AI provider")
}
