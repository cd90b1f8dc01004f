package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://www.alphavantage.co/query"
	}
	if c.API.Endpoint == "" {
		c.API.Endpoint = "daily"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.Name == "" {
		c.API.Name = "primary"
	}
	for i := range c.API.Fallbacks {
		f := &c.API.Fallbacks[i]
		if f.Name == "" {
			f.Name = fmt.Sprintf("fallback-%d", i+1)
		}
		if f.Timeout == 0 {
			f.Timeout = c.API.Timeout
		}
	}
	if c.RateLimit.PerMinute == 0 {
		c.RateLimit.PerMinute = 5
	}
	if c.RateLimit.PerDay == 0 {
		c.RateLimit.PerDay = 500
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = 1 * time.Second
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = 30 * time.Second
	}
	if c.Pipeline.MaxConcurrency == 0 {
		c.Pipeline.MaxConcurrency = 4
	}
	if c.Validation.MaxDailyChangePct == 0 {
		c.Validation.MaxDailyChangePct = 20
	}
	if c.Validation.Market == "" {
		c.Validation.Market = "US"
	}
	if c.Validation.Timezone == "" {
		c.Validation.Timezone = "America/New_York"
	}
}
