package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"faithfeed-relay/internal/integrations/paramstore"
)

// Config holds all relay configuration. Secrets may be empty; each relay
// applies its own policy for a missing endpoint or key.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Port     int    `env:"PORT" envDefault:"3000"`

	// ParamPrefix enables secret lookup in SSM Parameter Store for any
	// secret not set directly in the environment.
	ParamPrefix string `env:"PARAM_PREFIX"`

	Webhook   WebhookConfig
	Anthropic AnthropicConfig
	Scripture ScriptureConfig
}

type WebhookConfig struct {
	URL     string        `env:"DISCORD_WEBHOOK_URL"`
	Timeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
}

type AnthropicConfig struct {
	APIKey    string        `env:"ANTHROPIC_API_KEY"`
	BaseURL   string        `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com"`
	Model     string        `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-sonnet-20241022"`
	MaxTokens int           `env:"ANTHROPIC_MAX_TOKENS" envDefault:"2048"`
	Timeout   time.Duration `env:"ANTHROPIC_TIMEOUT" envDefault:"60s"`
}

type ScriptureConfig struct {
	APIKey  string        `env:"BIBLE_API_KEY"`
	BaseURL string        `env:"BIBLE_API_BASE_URL" envDefault:"https://api.scripture.api.bible"`
	BibleID string        `env:"BIBLE_ID" envDefault:"de4e12af7f28f599-02"`
	Timeout time.Duration `env:"ENRICHMENT_TIMEOUT" envDefault:"5s"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses the given variables instead of the process environment
// when vars is non-nil.
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	opts := env.Options{}
	if vars != nil {
		opts.Environment = vars
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	cfg.ParamPrefix = strings.TrimRight(strings.TrimSpace(cfg.ParamPrefix), "/")
	if cfg.Scripture.Timeout <= 0 {
		return nil, errors.New("config: ENRICHMENT_TIMEOUT must be positive")
	}
	return cfg, nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// SecretGetter is satisfied by *paramstore.Client.
type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// ResolveSecrets fills empty secrets from Parameter Store under ParamPrefix.
// Parameters that do not exist leave the secret empty; any other failure is
// returned.
func (c *Config) ResolveSecrets(ctx context.Context, getter SecretGetter) error {
	if c.ParamPrefix == "" {
		return nil
	}
	if getter == nil {
		return errors.New("config: secret getter must not be nil")
	}

	secrets := []struct {
		name string
		dst  *string
	}{
		{"discord-webhook-url", &c.Webhook.URL},
		{"anthropic-api-key", &c.Anthropic.APIKey},
		{"bible-api-key", &c.Scripture.APIKey},
	}
	for _, s := range secrets {
		if strings.TrimSpace(*s.dst) != "" {
			continue
		}
		v, err := getter.GetSecret(ctx, c.ParamPrefix+"/"+s.name)
		if errors.Is(err, paramstore.ErrNotFound) {
			slog.Warn("secret not found in parameter store", "name", s.name)
			continue
		}
		if err != nil {
			return fmt.Errorf("config: resolve %s: %w", s.name, err)
		}
		*s.dst = v
	}
	return nil
}
