// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Translate TranslateConfig `mapstructure:"translate"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// FetchConfig governs the retry budget and per-attempt timeout.
type FetchConfig struct {
	MaxAttempts           int    `mapstructure:"max_attempts"`
	AttemptTimeoutSeconds int    `mapstructure:"attempt_timeout_seconds"`
	BackoffBaseMs         int    `mapstructure:"backoff_base_ms"`
	BackoffMaxMs          int    `mapstructure:"backoff_max_ms"`
	JitterMs              int    `mapstructure:"jitter_ms"`
	SearchReferrer        string `mapstructure:"search_referrer"`
	MaxBodyBytes          int    `mapstructure:"max_body_bytes"`
}

// ExtractConfig tunes the content cascade.
type ExtractConfig struct {
	MinContentLength int `mapstructure:"min_content_length"`
}

// TranslateConfig points at an OpenAI-compatible chat completion endpoint.
type TranslateConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	TargetLanguage string  `mapstructure:"target_language"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	AppURL         string  `mapstructure:"app_url"`
	AppTitle       string  `mapstructure:"app_title"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// MetricsConfig bounds Prometheus label cardinality.
type MetricsConfig struct {
	// TrackedSites keep their own site label; every other host is "other".
	TrackedSites []string `mapstructure:"tracked_sites"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REFERENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.request_timeout_seconds", 150)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("fetch.max_attempts", 4)
	v.SetDefault("fetch.attempt_timeout_seconds", 30)
	v.SetDefault("fetch.backoff_base_ms", 1000)
	v.SetDefault("fetch.backoff_max_ms", 16000)
	v.SetDefault("fetch.jitter_ms", 250)
	v.SetDefault("fetch.search_referrer", "https://www.google.com/")
	v.SetDefault("fetch.max_body_bytes", 10*1024*1024)
	v.SetDefault("extract.min_content_length", 100)
	v.SetDefault("translate.enabled", false)
	v.SetDefault("translate.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("translate.api_key", "")
	v.SetDefault("translate.model", "deepseek/deepseek-r1-0528:free")
	v.SetDefault("translate.target_language", "Russian")
	v.SetDefault("translate.temperature", 0.3)
	v.SetDefault("translate.max_tokens", 4000)
	v.SetDefault("translate.app_url", "http://localhost:3000")
	v.SetDefault("translate.app_title", "Referent")
	v.SetDefault("translate.timeout_seconds", 60)
	v.SetDefault("metrics.tracked_sites", []string{})
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if c.Fetch.MaxAttempts < 1 {
		return fmt.Errorf("fetch.max_attempts must be >= 1")
	}
	if c.Fetch.AttemptTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.attempt_timeout_seconds must be > 0")
	}
	if c.Fetch.BackoffBaseMs <= 0 || c.Fetch.BackoffMaxMs < c.Fetch.BackoffBaseMs {
		return fmt.Errorf("fetch.backoff_base_ms must be > 0 and <= fetch.backoff_max_ms")
	}
	if c.Fetch.JitterMs < 0 || c.Fetch.JitterMs >= c.Fetch.BackoffBaseMs {
		return fmt.Errorf("fetch.jitter_ms must be >= 0 and < fetch.backoff_base_ms")
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		return fmt.Errorf("fetch.max_body_bytes must be > 0")
	}
	if c.Extract.MinContentLength < 0 {
		return fmt.Errorf("extract.min_content_length must be >= 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Translate.Enabled && c.Translate.APIKey == "" {
		return fmt.Errorf("translate.api_key must be set when translation is enabled")
	}
	if c.Translate.Enabled && c.Translate.TimeoutSeconds <= 0 {
		return fmt.Errorf("translate.timeout_seconds must be > 0 when translation is enabled")
	}
	return nil
}

// AttemptTimeout is the per-attempt fetch deadline.
func (c Config) AttemptTimeout() time.Duration {
	return time.Duration(c.Fetch.AttemptTimeoutSeconds) * time.Second
}

// BackoffBase is the first retry delay.
func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.Fetch.BackoffBaseMs) * time.Millisecond
}

// BackoffMax caps any single retry delay.
func (c Config) BackoffMax() time.Duration {
	return time.Duration(c.Fetch.BackoffMaxMs) * time.Millisecond
}

// Jitter bounds the random addition to each retry delay.
func (c Config) Jitter() time.Duration {
	return time.Duration(c.Fetch.JitterMs) * time.Millisecond
}

// TranslateTimeout bounds one chat completion call.
func (c Config) TranslateTimeout() time.Duration {
	return time.Duration(c.Translate.TimeoutSeconds) * time.Second
}

// RequestTimeout bounds a single API request, retries included.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
