package advisor

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/finlearn/papertrade/internal/config"
	"github.com/finlearn/papertrade/internal/ledger"
	"github.com/finlearn/papertrade/internal/logger"
)

// Advisor turns a portfolio snapshot into plain-language educational
// insights using a chat-completion model.
type Advisor struct {
	client  *openai.Client
	model   string
	enabled bool
	cfg     *config.Config
	logger  *logger.Logger
}

func New(cfg *config.Config, log *logger.Logger) *Advisor {
	if !cfg.Advisor.Enabled {
		return &Advisor{enabled: false, cfg: cfg, logger: log}
	}

	ocfg := openai.DefaultConfig(cfg.Advisor.APIKey)
	ocfg.BaseURL = cfg.Advisor.BaseURL

	return &Advisor{
		client:  openai.NewClientWithConfig(ocfg),
		model:   cfg.Advisor.Model,
		enabled: true,
		cfg:     cfg,
		logger:  log,
	}
}

func (a *Advisor) Enabled() bool {
	return a.enabled
}

// Review asks the model to comment on the portfolio. The reply must be a
// JSON list of insights; anything else is a parse error.
func (a *Advisor) Review(ctx context.Context, view *ledger.PortfolioView) ([]Insight, error) {
	if !a.enabled {
		return nil, fmt.Errorf("advisor is disabled")
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.AdvisorTimeout())
	defer cancel()

	userPrompt := BuildUserPrompt(view)

	a.logger.Info("requesting portfolio review", "positions", len(view.Positions))

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("advisor API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("advisor returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	a.logger.Debug("advisor raw response", "content", raw)

	insights, err := ParseInsights(raw)
	if err != nil {
		return nil, fmt.Errorf("parse advisor response: %w", err)
	}
	return insights, nil
}
