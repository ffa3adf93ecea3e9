package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot transport settings.
type TelegramConfig struct {
	Token    string  `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminIDs []int64 `yaml:"admin_ids" envconfig:"TELEGRAM_ADMIN_IDS"`
	RunMode  string  `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
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
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// EventConfig describes the event the bot sells tickets for.
type EventConfig struct {
	Title     string `yaml:"title" envconfig:"EVENT_TITLE"`
	Date      string `yaml:"date" envconfig:"EVENT_DATE"`
	Venue     string `yaml:"venue" envconfig:"EVENT_VENUE"`
	Address   string `yaml:"address" envconfig:"EVENT_ADDRESS"`
	ImagePath string `yaml:"image_path" envconfig:"EVENT_IMAGE_PATH"`
}

// PaymentConfig holds the bank transfer requisites shown to buyers.
type PaymentConfig struct {
	BankName string `yaml:"bank_name" envconfig:"PAYMENT_BANK_NAME"`
	Account  string `yaml:"account" envconfig:"PAYMENT_ACCOUNT"`
}

// ReceiptsConfig configures the receipt archive.
type ReceiptsConfig struct {
	Dir           string `yaml:"dir" envconfig:"RECEIPTS_DIR"`
	PublicBaseURL string `yaml:"public_base_url" envconfig:"RECEIPTS_PUBLIC_BASE_URL"`
	// MaxFileSizeMB limits accepted receipt uploads; 0 -> default 20.
	MaxFileSizeMB int `yaml:"max_file_size_mb" envconfig:"RECEIPTS_MAX_FILE_SIZE_MB"`
}

// SupportConfig holds contacts rendered in help and confirmation texts.
type SupportConfig struct {
	Contact string `yaml:"contact" envconfig:"SUPPORT_CONTACT"`
	ChatURL string `yaml:"chat_url" envconfig:"SUPPORT_CHAT_URL"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
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
	Event     EventConfig     `yaml:"event"`
	Payment   PaymentConfig   `yaml:"payment"`
	Receipts  ReceiptsConfig  `yaml:"receipts"`
	Support   SupportConfig   `yaml:"support"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if len(cfg.Telegram.AdminIDs) == 0 {
		return fmt.Errorf("telegram.admin_ids must list at least one operator")
	}
	for _, id := range cfg.Telegram.AdminIDs {
		if id <= 0 {
			return fmt.Errorf("telegram.admin_ids entries must be positive, got %d", id)
		}
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.Payment.Account == "" {
		return fmt.Errorf("payment.account is required")
	}
	if cfg.Payment.BankName == "" {
		cfg.Payment.BankName = "Сбербанк"
	}
	if cfg.Receipts.MaxFileSizeMB < 0 {
		return fmt.Errorf("receipts.max_file_size_mb must be >= 0")
	}
	if cfg.Receipts.MaxFileSizeMB == 0 {
		cfg.Receipts.MaxFileSizeMB = 20
	}
	if cfg.Receipts.Dir == "" {
		cfg.Receipts.Dir = "receipts"
	}

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}
	return nil
}

// IsAdmin reports whether the given Telegram user ID belongs to an operator.
func (c *Config) IsAdmin(userID int64) bool {
	if c == nil {
		return false
	}
	for _, id := range c.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// MaxReceiptBytes returns the receipt upload limit in bytes.
func (c *Config) MaxReceiptBytes() int64 {
	if c == nil || c.Receipts.MaxFileSizeMB <= 0 {
		return 20 * 1024 * 1024
	}
	return int64(c.Receipts.MaxFileSizeMB) * 1024 * 1024
}
