// Package pushover relays lead notifications to a Pushover-style push
// provider. Credentials are per-agent; the service holds no provider
// account of its own.
package pushover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/iautomae/platform/internal/config"
)

// Client posts messages to the provider's messages endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a push relay client from the service configuration.
func NewClient(cfg config.PushoverConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  logger.With("system", "pushover"),
	}
}

// Notify sends one push message with the given per-agent credentials.
// A non-success provider verdict is returned as an error.
func (c *Client) Notify(ctx context.Context, userKey, apiToken, title, message string) error {
	form := url.Values{
		"token":   {apiToken},
		"user":    {userKey},
		"title":   {title},
		"message": {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/1/messages.json", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read push response: %w", err)
	}

	var verdict struct {
		Status int      `json:"status"`
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(body, &verdict); err != nil {
		return fmt.Errorf("decode push response (%d): %w", resp.StatusCode, err)
	}

	if verdict.Status != 1 {
		return fmt.Errorf("push rejected (%d): %s", resp.StatusCode, strings.Join(verdict.Errors, "; "))
	}

	c.logger.Debug("push delivered", "title", title)
	return nil
}
