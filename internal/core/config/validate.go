package config

import (
	"errors"
	"fmt"

	"github.com/vietddude/collector/internal/core/domain"
)

// Validate checks that all required fields are set and values are valid.
func (c *AppConfig) Validate() error {
	if c.API.Key == "" {
		return errors.New("api.key is required")
	}
	if !domain.EndpointKind(c.API.Endpoint).Valid() {
		return fmt.Errorf("api.endpoint %q is not a known endpoint", c.API.Endpoint)
	}
	for i, f := range c.API.Fallbacks {
		if f.BaseURL == "" {
			return fmt.Errorf("api.fallbacks[%d].base_url is required", i)
		}
		if f.Key == "" {
			return fmt.Errorf("api.fallbacks[%d].key is required", i)
		}
	}

	if c.RateLimit.PerMinute < 0 || c.RateLimit.PerDay < 0 {
		return errors.New("rate_limit windows must be >= 0")
	}

	if c.Retry.MaxAttempts < 1 {
		return errors.New("retry.max_attempts must be >= 1")
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		return errors.New("retry delays must be >= 0")
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("retry.max_delay (%v) cannot be below base_delay (%v)",
			c.Retry.MaxDelay, c.Retry.BaseDelay)
	}

	if c.Pipeline.MaxConcurrency < 1 {
		return errors.New("pipeline.max_concurrency must be >= 1")
	}

	if c.Validation.MaxDailyChangePct <= 0 {
		return errors.New("validation.max_daily_change_pct must be > 0")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	return nil
}
