package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings that are common for all bots.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample" envconfig:"LOG_DEBUG_SAMPLE"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file"`
	ErrorsFile  string `yaml:"errors_file"`
	// Profile is "debug", "dev" or "prod"; debug and dev default to KV output.
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// Update kinds accepted by rate_limit.exclude_updates.
const (
	UpdateCommand = "command"
	UpdateMessage = "message"
	UpdateMedia   = "media"
	UpdateOther   = "other"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update kinds to bypass limiting:
// - "command": slash commands
// - "message": plain text messages and button presses
// - "media": photos and documents
// - "other": everything else
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads the core configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode fills dst from the YAML file at path, then applies environment
// overrides. A missing file is not an error when path is empty.
func Decode(path string, dst any) error {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := envconfig.Process("", dst); err != nil {
		return fmt.Errorf("config: env overrides: %w", err)
	}
	return nil
}

// Normalize validates the Telegram section and canonicalizes run mode and
// rate limit exclusions in place.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return errors.New("config: telegram.token (BOT_TOKEN) is required")
	}

	mode, err := normalizeRunMode(cfg.Telegram.RunMode)
	if err != nil {
		return err
	}
	cfg.Telegram.RunMode = mode
	if mode == RunModeWebhook {
		if err := cfg.Webhook.validate(); err != nil {
			return err
		}
	} else if cfg.Telegram.LongPollTimeoutSeconds < 0 {
		return errors.New("config: telegram.longpoll_timeout_seconds must not be negative")
	}

	kept := cfg.RateLimit.ExcludeUpdates[:0]
	for _, raw := range cfg.RateLimit.ExcludeUpdates {
		kind := strings.ToLower(strings.TrimSpace(raw))
		switch kind {
		case "":
			continue
		case UpdateCommand, UpdateMessage, UpdateMedia, UpdateOther:
			kept = append(kept, kind)
		default:
			return fmt.Errorf("config: rate_limit.exclude_updates: unknown update kind %q", raw)
		}
	}
	cfg.RateLimit.ExcludeUpdates = kept
	return nil
}

func normalizeRunMode(raw string) (string, error) {
	switch mode := strings.ToLower(strings.TrimSpace(raw)); mode {
	case "", "polling", RunModeLongpoll:
		return RunModeLongpoll, nil
	case RunModeWebhook:
		return mode, nil
	}
	return "", fmt.Errorf("config: telegram.run_mode %q: want %s or %s", raw, RunModeLongpoll, RunModeWebhook)
}

func (w WebhookConfig) validate() error {
	var missing []string
	if strings.TrimSpace(w.URL) == "" {
		missing = append(missing, "webhook.url")
	}
	if strings.TrimSpace(w.Listen) == "" {
		missing = append(missing, "webhook.listen")
	}
	if w.Port <= 0 {
		missing = append(missing, "webhook.port")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: webhook mode needs %s", strings.Join(missing, ", "))
	}
	return nil
}
