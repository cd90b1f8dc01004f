package config

import (
	"time"

	redisclient "github.com/vietddude/collector/internal/infra/redis"
	"github.com/vietddude/collector/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration. It is read once at
// startup and treated as immutable afterwards.
type AppConfig struct {
	Server     ServerConfig       `yaml:"server"`
	Logging    LoggingConfig      `yaml:"logging"`
	API        APIConfig          `yaml:"api"`
	RateLimit  RateLimitConfig    `yaml:"rate_limit"`
	Retry      RetryConfig        `yaml:"retry"`
	Pipeline   PipelineConfig     `yaml:"pipeline"`
	Validation ValidationConfig   `yaml:"validation"`
	Symbols    []string           `yaml:"symbols"`
	Database   postgres.Config    `yaml:"database"`
	Redis      redisclient.Config `yaml:"redis"`
	Retention  RetentionConfig    `yaml:"retention"`
}

// ServerConfig holds health/metrics HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// APIConfig holds vendor API settings. Fallbacks are tried in order when
// the primary provider fails with a retryable or quota error.
type APIConfig struct {
	Name      string           `yaml:"name"`
	BaseURL   string           `yaml:"base_url"`
	Key       string           `yaml:"key"`
	Endpoint  string           `yaml:"endpoint"` // daily, daily_adjusted, intraday
	Timeout   time.Duration    `yaml:"timeout"`
	Fallbacks []ProviderConfig `yaml:"fallbacks"`
}

// ProviderConfig describes one fallback vendor. An empty rate_limit block
// inherits the top-level windows; an empty timeout inherits the primary's.
type ProviderConfig struct {
	Name      string          `yaml:"name"`
	BaseURL   string          `yaml:"base_url"`
	Key       string          `yaml:"key"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds the quota windows. Zero disables a window.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"`
	PerDay    int `yaml:"per_day"`
}

// RetryConfig holds backoff settings.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	Jitter      bool          `yaml:"jitter"`
}

// PipelineConfig holds orchestration bounds.
type PipelineConfig struct {
	MaxConcurrency int           `yaml:"max_concurrency"`
	BatchTimeout   time.Duration `yaml:"batch_timeout"` // 0 = no deadline
	// ForwardInvalid submits datasets that failed validation anyway. Every
	// use is recorded on the run's audit log.
	ForwardInvalid bool `yaml:"forward_invalid"`
}

// ValidationConfig holds thresholds and the calendar source.
type ValidationConfig struct {
	MaxDailyChangePct float64             `yaml:"max_daily_change_pct"`
	Market            string              `yaml:"market"`
	Timezone          string              `yaml:"timezone"`
	Holidays          map[string][]string `yaml:"holidays"` // market -> yyyy-mm-dd
}

// RetentionConfig controls pruning of old candles. Zero disables it.
type RetentionConfig struct {
	Period time.Duration `yaml:"period"`
}
