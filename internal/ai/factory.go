package ai

import (
	"fmt"

	"github.com/sgoulden/vibecheck/internal/ai/deepseek"
	"github.com/sgoulden/vibecheck/internal/ai/mock"
	"github.com/sgoulden/vibecheck/internal/ai/openai"
	"github.com/sgoulden/vibecheck/internal/config"
	"github.com/sgoulden/vibecheck/pkg/models"
)

// NewProvider constructs the appropriate taste provider based on config.
// Called once at server startup.
func NewProvider(cfg config.AIConfig) (models.TasteProvider, error) {
	switch cfg.Provider {
	case "deepseek":
		return deepseek.NewProvider(cfg.DeepSeek), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "mock":
		return mock.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of deepseek, openai, mock", cfg.Provider)
	}
}
