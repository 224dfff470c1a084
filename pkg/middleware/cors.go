// Package middleware provides HTTP middleware shared across route groups.
package middleware

import (
	"fmt"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Environment variable names for CORS configuration overrides.
const (
	EnvCORSEnabled     = "CORS_ENABLED"
	EnvCORSOrigins     = "CORS_ORIGINS"
	EnvCORSMethods     = "CORS_METHODS"
	EnvCORSHeaders     = "CORS_HEADERS"
	EnvCORSCredentials = "CORS_CREDENTIALS"
)

// CORSConfig controls cross-origin resource sharing headers.
type CORSConfig struct {
	Enabled     bool     `toml:"enabled"`
	Origins     []string `toml:"origins"`
	Methods     []string `toml:"methods"`
	Headers     []string `toml:"headers"`
	Credentials bool     `toml:"credentials"`
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *CORSConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies non-zero values from overlay onto the receiver.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if len(overlay.Origins) > 0 {
		c.Origins = overlay.Origins
	}
	if len(overlay.Methods) > 0 {
		c.Methods = overlay.Methods
	}
	if len(overlay.Headers) > 0 {
		c.Headers = overlay.Headers
	}
	if overlay.Credentials {
		c.Credentials = true
	}
}

func (c *CORSConfig) loadDefaults() {
	if len(c.Methods) == 0 {
		c.Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(c.Headers) == 0 {
		c.Headers = []string{"Content-Type", "Authorization"}
	}
}

func (c *CORSConfig) loadEnv() {
	if v := os.Getenv(EnvCORSEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v := os.Getenv(EnvCORSOrigins); v != "" {
		c.Origins = splitList(v)
	}
	if v := os.Getenv(EnvCORSMethods); v != "" {
		c.Methods = splitList(v)
	}
	if v := os.Getenv(EnvCORSHeaders); v != "" {
		c.Headers = splitList(v)
	}
	if v := os.Getenv(EnvCORSCredentials); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Credentials = b
		}
	}
}

func (c *CORSConfig) validate() error {
	if c.Enabled && len(c.Origins) == 0 {
		return fmt.Errorf("origins required when cors is enabled")
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CORS wraps next with cross-origin headers according to cfg.
// Preflight OPTIONS requests are answered without reaching next.
func CORS(cfg *CORSConfig, next http.Handler) http.Handler {
	if !cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if slices.Contains(cfg.Origins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}

		if len(cfg.Methods) > 0 {
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.Methods, ", "))
		}
		if len(cfg.Headers) > 0 {
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.Headers, ", "))
		}
		if cfg.Credentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
