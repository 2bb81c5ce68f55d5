// Package deepseek implements taste inference against the DeepSeek
// chat-completions API.
package deepseek

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sgoulden/vibecheck/internal/ai/roast"
	"github.com/sgoulden/vibecheck/internal/config"
	"github.com/sgoulden/vibecheck/pkg/models"
)

// Provider implements models.TasteProvider using DeepSeek.
type Provider struct {
	cfg  config.DeepSeekConfig
	http *resty.Client
}

func NewProvider(cfg config.DeepSeekConfig) *Provider {
	return &Provider{
		cfg: cfg,
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetAuthToken(cfg.APIKey),
	}
}

func (p *Provider) Name() string { return "deepseek" }

func (p *Provider) Roast(ctx context.Context, summary models.TasteSummary) (models.Verdict, error) {
	var reply roast.ChatResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(roast.BuildRequest(p.cfg.Model, summary)).
		SetResult(&reply).
		Post("/chat/completions")
	if err != nil {
		return models.Verdict{}, fmt.Errorf("%w: %v", roast.ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return models.Verdict{}, fmt.Errorf("%w: deepseek returned %d", roast.ErrProviderUnavailable, resp.StatusCode())
	}

	content, err := roast.FirstChoice(reply)
	if err != nil {
		return models.Verdict{}, err
	}
	return roast.ParseVerdict(content)
}

var _ models.TasteProvider = (*Provider)(nil)
