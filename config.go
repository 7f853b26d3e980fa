package stepflow

import (
	"fmt"
	"time"
)

// Config is a serialisable representation of the engine configuration. It can
// be populated from JSON, YAML, environment variables, etc. The zero-value is
// useful – all nested fields inherit their package defaults.

type Config struct {
	Parallel ParallelConfig `json:"parallel" yaml:"parallel"`
	Retry    RetryConfig    `json:"retry" yaml:"retry"`
}

// ParallelConfig bounds parallel batch flows built by the service.
type ParallelConfig struct {
	// MaxConcurrent caps in-flight branches; zero means unbounded.
	MaxConcurrent int `json:"maxConcurrent" yaml:"maxConcurrent"`
	// CollectErrors aggregates every branch failure instead of reporting the
	// first one.
	CollectErrors bool `json:"collectErrors" yaml:"collectErrors"`
}

// RetryConfig is the run-wide default retry policy applied to tasks without
// an explicit one. MaxAttempts of one (the default) disables retrying.
type RetryConfig struct {
	MaxAttempts int    `json:"maxAttempts" yaml:"maxAttempts"`
	Interval    string `json:"interval" yaml:"interval"` // duration string
}

// DefaultConfig returns a Config populated with the package defaults. Callers
// may modify the returned struct before passing it to New via WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Retry: RetryConfig{MaxAttempts: 1},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Parallel.MaxConcurrent < 0 {
		return fmt.Errorf("parallel.maxConcurrent must be >= 0")
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.maxAttempts must be >= 0")
	}
	if c.Retry.Interval != "" {
		if _, err := time.ParseDuration(c.Retry.Interval); err != nil {
			return fmt.Errorf("retry.interval: %w", err)
		}
	}
	return nil
}
