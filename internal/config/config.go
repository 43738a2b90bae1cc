// Package config loads crawler settings from a config file and environment
// variables via viper. Environment variables win over file values.
package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config holds every tunable for a crawl run.
type Config struct {
	// Scrape settings.
	MaxWorkers      int           `mapstructure:"max_workers"`
	MaxRetries      int           `mapstructure:"max_retries"`
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout"`
	WaitTimeout     time.Duration `mapstructure:"wait_timeout"`
	RunTimeout      time.Duration `mapstructure:"run_timeout"`
	OutputDir       string        `mapstructure:"output_dir"`
	UserAgent       string        `mapstructure:"user_agent"`

	// Email report.
	GmailAddress     string   `mapstructure:"gmail_address"`
	GmailAppPassword string   `mapstructure:"gmail_app_password"`
	RecipientEmails  []string `mapstructure:"recipient_emails"`
	SMTPHost         string   `mapstructure:"smtp_host"`
	SMTPPort         int      `mapstructure:"smtp_port"`

	// Optional integrations. Each is enabled only when set.
	HistoryDSN      string `mapstructure:"history_dsn"`
	ArchiveBucket   string `mapstructure:"archive_bucket"`
	PubSubProject   string `mapstructure:"pubsub_project"`
	CompletionTopic string `mapstructure:"completion_topic"`

	// Development toggles pretty logging.
	Development bool `mapstructure:"development"`
}

// Load reads configuration from the optional file at path, then overlays
// environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("max_workers", 2)
	v.SetDefault("max_retries", 3)
	v.SetDefault("page_load_timeout", 30*time.Second)
	v.SetDefault("wait_timeout", 10*time.Second)
	v.SetDefault("run_timeout", 2*time.Hour)
	v.SetDefault("output_dir", ".")
	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("development", false)

	v.AutomaticEnv()
	for _, key := range []string{
		"max_workers", "max_retries", "page_load_timeout", "wait_timeout",
		"run_timeout", "output_dir", "user_agent",
		"gmail_address", "gmail_app_password", "recipient_emails",
		"smtp_host", "smtp_port",
		"history_dsn", "archive_bucket", "pubsub_project", "completion_topic",
		"development",
	} {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// RECIPIENT_EMAILS arrives as a comma-separated string from the
	// environment. A YAML list in the config file passes through Unmarshal.
	if raw := v.GetString("recipient_emails"); raw != "" {
		cfg.RecipientEmails = splitRecipients(raw)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// durationHook decodes duration fields. Bare numbers are seconds, so
// PAGE_LOAD_TIMEOUT=30 and PAGE_LOAD_TIMEOUT=30s mean the same thing.
func durationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			s := strings.TrimSpace(v)
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				return time.Duration(n * float64(time.Second)), nil
			}
			return time.ParseDuration(s)
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		}
		return data, nil
	}
}

func splitRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate rejects settings that would make a run misbehave.
func (c *Config) Validate() error {
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1, got %d", c.MaxWorkers)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.PageLoadTimeout <= 0 {
		return fmt.Errorf("page_load_timeout must be positive, got %s", c.PageLoadTimeout)
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("wait_timeout must be positive, got %s", c.WaitTimeout)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.CompletionTopic != "" && c.PubSubProject == "" {
		return fmt.Errorf("completion_topic requires pubsub_project")
	}
	if c.GmailAddress != "" && c.GmailAppPassword == "" {
		return fmt.Errorf("gmail_address requires gmail_app_password")
	}
	return nil
}

// EmailEnabled reports whether the run should send a report email.
func (c *Config) EmailEnabled() bool {
	return c.GmailAddress != "" && c.GmailAppPassword != "" && len(c.RecipientEmails) > 0
}
