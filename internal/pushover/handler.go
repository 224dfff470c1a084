package pushover

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iautomae/platform/pkg/handlers"
	"github.com/iautomae/platform/pkg/routes"
)

// Handler provides the notification test endpoint users hit while
// configuring their agent's push credentials.
type Handler struct {
	client *Client
	logger *slog.Logger
}

// NewHandler creates a push relay handler with the specified configuration.
func NewHandler(client *Client, logger *slog.Logger) *Handler {
	return &Handler{
		client: client,
		logger: logger.With("handler", "pushover"),
	}
}

// Routes returns the push relay route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/pushover",
		Description: "Push notification relay",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/test", Handler: h.Test},
		},
	}
}

// Test forwards a message with caller-supplied credentials and returns
// the provider's verdict.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserKey  string `json:"user_key"`
		APIToken string `json:"api_token"`
		Title    string `json:"title"`
		Message  string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if body.UserKey == "" || body.APIToken == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("user_key and api_token are required"))
		return
	}
	if body.Title == "" {
		body.Title = "Test notification"
	}
	if body.Message == "" {
		body.Message = "Push credentials are working."
	}

	if err := h.client.Notify(r.Context(), body.UserKey, body.APIToken, body.Title, body.Message); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadGateway, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]bool{"delivered": true})
}
