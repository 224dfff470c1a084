package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Auth.Secret = "test-secret"
	return cfg
}

func TestFinalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q, want 0.0.0.0:8080", cfg.Server.Addr())
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Auth.Issuer != "iautomae" {
		t.Errorf("Auth.Issuer = %q, want iautomae", cfg.Auth.Issuer)
	}
	if cfg.Auth.TokenTTLDuration() != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.Auth.TokenTTLDuration())
	}
	if cfg.Compression.DefaultQuality != 75 {
		t.Errorf("DefaultQuality = %d, want 75", cfg.Compression.DefaultQuality)
	}
	if cfg.Compression.MaxUploadSizeBytes() != 50_000_000 {
		t.Errorf("MaxUploadSizeBytes() = %d, want 50MB", cfg.Compression.MaxUploadSizeBytes())
	}
	if cfg.Pagination.DefaultPageSize == 0 {
		t.Error("Pagination defaults not applied")
	}
}

func TestFinalizeRequiresAuthSecret(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Finalize(); err == nil {
		t.Error("Finalize() accepted a missing auth secret")
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv(EnvServerPort, "9999")
	t.Setenv(EnvAuthSecret, "env-secret")
	t.Setenv(EnvServiceShutdownTimeout, "5s")

	cfg := &Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want env override 9999", cfg.Server.Port)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Errorf("Secret = %q, want env override", cfg.Auth.Secret)
	}
	if cfg.ShutdownTimeout != "5s" {
		t.Errorf("ShutdownTimeout = %q, want 5s", cfg.ShutdownTimeout)
	}
}

func TestFinalizeRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		mutate func(*Config)
	}{
		{"bad shutdown timeout", func(c *Config) { c.ShutdownTimeout = "soon" }},
		{"bad port", func(c *Config) { c.Server.Port = 99999 }},
		{"bad read timeout", func(c *Config) { c.Server.ReadTimeout = "fast" }},
		{"bad token ttl", func(c *Config) { c.Auth.TokenTTL = "forever" }},
		{"bad upload size", func(c *Config) { c.Compression.MaxUploadSize = "big" }},
		{"quality out of range", func(c *Config) { c.Compression.DefaultQuality = 150 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Finalize(); err == nil {
				t.Error("Finalize() accepted an invalid value")
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := validConfig()
	base.Server.Port = 8080
	base.Server.Host = "0.0.0.0"
	base.ElevenLabs.BaseURL = "https://api.elevenlabs.io"

	overlay := &Config{}
	overlay.Server.Port = 9090
	overlay.Auth.Secret = "overlay-secret"

	base.Merge(overlay)

	if base.Server.Port != 9090 {
		t.Errorf("Port = %d, want overlay 9090", base.Server.Port)
	}
	if base.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want base value kept", base.Server.Host)
	}
	if base.Auth.Secret != "overlay-secret" {
		t.Errorf("Secret = %q, want overlay value", base.Auth.Secret)
	}
	if base.ElevenLabs.BaseURL != "https://api.elevenlabs.io" {
		t.Errorf("BaseURL = %q, want base value kept", base.ElevenLabs.BaseURL)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	doc := `
shutdown_timeout = "10s"

[server]
port = 3000

[auth]
secret = "file-secret"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Auth.Secret != "file-secret" {
		t.Errorf("Secret = %q, want file-secret", cfg.Auth.Secret)
	}
	if cfg.ShutdownTimeout != "10s" {
		t.Errorf("ShutdownTimeout = %q, want 10s", cfg.ShutdownTimeout)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("LoadFile() accepted a missing file")
	}
}

func TestLoadFileRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nport="), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() accepted malformed TOML")
	}
}
