package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/docker/go-units"
)

const (
	// EnvCompressionMaxUploadSize overrides the maximum upload size.
	EnvCompressionMaxUploadSize = "COMPRESSION_MAX_UPLOAD_SIZE"

	// EnvCompressionDefaultQuality overrides the default encode quality.
	EnvCompressionDefaultQuality = "COMPRESSION_DEFAULT_QUALITY"
)

// CompressionConfig contains compression pipeline settings.
type CompressionConfig struct {
	MaxUploadSize    string `toml:"max_upload_size"`
	DefaultQuality   int    `toml:"default_quality"`
	maxUploadSizeVal int64
}

// MaxUploadSizeBytes returns the parsed maximum upload size in bytes.
func (c *CompressionConfig) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the compression configuration.
func (c *CompressionConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *CompressionConfig) Merge(overlay *CompressionConfig) {
	if size, err := units.FromHumanSize(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSizeVal = size
	}
	if overlay.DefaultQuality != 0 {
		c.DefaultQuality = overlay.DefaultQuality
	}
}

func (c *CompressionConfig) loadDefaults() {
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
	if c.DefaultQuality == 0 {
		c.DefaultQuality = 75
	}
}

func (c *CompressionConfig) loadEnv() {
	if v := os.Getenv(EnvCompressionMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvCompressionDefaultQuality); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DefaultQuality = n
		}
	}
}

func (c *CompressionConfig) validate() error {
	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	if c.DefaultQuality < 1 || c.DefaultQuality > 100 {
		return fmt.Errorf("default_quality must be between 1 and 100")
	}
	return nil
}
