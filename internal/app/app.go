package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"faithfeed-relay/handler"
	"faithfeed-relay/internal/config"
	"faithfeed-relay/internal/integrations/anthropic"
	"faithfeed-relay/internal/integrations/discord"
	"faithfeed-relay/internal/integrations/scripture"
	"faithfeed-relay/internal/relay"
)

// NewHandler builds the clients and the three relays from cfg. Secrets must
// already be resolved.
func NewHandler(cfg *config.Config, log *slog.Logger) (*handler.Handler, error) {
	if cfg == nil {
		return nil, errors.New("app: config must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	webhook := discord.NewClient(cfg.Webhook.URL,
		discord.WithHTTPClient(&http.Client{Timeout: cfg.Webhook.Timeout}),
	)
	model := anthropic.NewClient(cfg.Anthropic.APIKey,
		anthropic.WithBaseURL(cfg.Anthropic.BaseURL),
		anthropic.WithModel(cfg.Anthropic.Model),
		anthropic.WithMaxTokens(cfg.Anthropic.MaxTokens),
		anthropic.WithHTTPClient(&http.Client{Timeout: cfg.Anthropic.Timeout}),
	)
	lookup := scripture.NewClient(cfg.Scripture.APIKey,
		scripture.WithBaseURL(cfg.Scripture.BaseURL),
		scripture.WithBibleID(cfg.Scripture.BibleID),
	)

	if !webhook.Configured() {
		log.Warn("DISCORD_WEBHOOK_URL is not set; signups will fail and feedback will be dropped")
	}
	if !model.Configured() {
		log.Warn("ANTHROPIC_API_KEY is not set; verse analysis will fail")
	}

	opts := []relay.Option{relay.WithLogger(log)}

	signup, err := relay.NewSignupRelay(webhook, opts...)
	if err != nil {
		return nil, fmt.Errorf("app: signup relay: %w", err)
	}
	feedback, err := relay.NewFeedbackRelay(webhook, opts...)
	if err != nil {
		return nil, fmt.Errorf("app: feedback relay: %w", err)
	}
	analysis, err := relay.NewAnalysisRelay(lookup, model, cfg.Scripture.Timeout, opts...)
	if err != nil {
		return nil, fmt.Errorf("app: analysis relay: %w", err)
	}

	h, err := handler.NewHandler(signup, feedback, analysis)
	if err != nil {
		return nil, fmt.Errorf("app: handler: %w", err)
	}
	return h.WithLogger(log), nil
}
