package config

import (
	"fmt"
	"os"
	"time"
)

const (
	// EnvElevenLabsAPIKey overrides the vendor API key.
	EnvElevenLabsAPIKey = "ELEVENLABS_API_KEY"

	// EnvElevenLabsBaseURL overrides the vendor API base URL.
	EnvElevenLabsBaseURL = "ELEVENLABS_BASE_URL"

	// EnvElevenLabsWebhookSecret overrides the webhook HMAC secret.
	EnvElevenLabsWebhookSecret = "ELEVENLABS_WEBHOOK_SECRET"

	// EnvElevenLabsTimeout overrides the vendor request timeout.
	EnvElevenLabsTimeout = "ELEVENLABS_TIMEOUT"
)

// ElevenLabsConfig contains conversational-AI vendor API settings.
// The API key is server-held and never exposed to browser clients; all
// vendor traffic flows through the proxy routes.
type ElevenLabsConfig struct {
	APIKey        string `toml:"api_key"`
	BaseURL       string `toml:"base_url"`
	WebhookSecret string `toml:"webhook_secret"`
	Timeout       string `toml:"timeout"`
}

// TimeoutDuration parses and returns the request timeout as a time.Duration.
func (c *ElevenLabsConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the vendor configuration.
// The API key is deliberately not validated here: routes that need it
// report a configuration error at request time so the rest of the service
// can run without vendor credentials.
func (c *ElevenLabsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ElevenLabsConfig) Merge(overlay *ElevenLabsConfig) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.WebhookSecret != "" {
		c.WebhookSecret = overlay.WebhookSecret
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *ElevenLabsConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.elevenlabs.io"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}

func (c *ElevenLabsConfig) loadEnv() {
	if v := os.Getenv(EnvElevenLabsAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvElevenLabsBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvElevenLabsWebhookSecret); v != "" {
		c.WebhookSecret = v
	}
	if v := os.Getenv(EnvElevenLabsTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *ElevenLabsConfig) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
