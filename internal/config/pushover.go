package config

import (
	"fmt"
	"os"
	"time"
)

const (
	// EnvPushoverBaseURL overrides the push-notification provider base URL.
	EnvPushoverBaseURL = "PUSHOVER_BASE_URL"

	// EnvPushoverTimeout overrides the push request timeout.
	EnvPushoverTimeout = "PUSHOVER_TIMEOUT"
)

// PushoverConfig contains push-notification relay settings. User keys and
// API tokens are per-agent data, not service configuration.
type PushoverConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// TimeoutDuration parses and returns the request timeout as a time.Duration.
func (c *PushoverConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the pushover configuration.
func (c *PushoverConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *PushoverConfig) Merge(overlay *PushoverConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *PushoverConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.pushover.net"
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
}

func (c *PushoverConfig) loadEnv() {
	if v := os.Getenv(EnvPushoverBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvPushoverTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *PushoverConfig) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
