package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/iautomae/platform/internal/agents"
	"github.com/iautomae/platform/internal/leads"
	"github.com/iautomae/platform/pkg/handlers"
	"github.com/iautomae/platform/pkg/routes"
)

// maxDeliverySize caps webhook bodies at 10MB; transcripts are verbose
// but bounded.
const maxDeliverySize = 10 << 20

// Notifier sends one push message with per-agent credentials.
// Implemented by the pushover client.
type Notifier interface {
	Notify(ctx context.Context, userKey, apiToken, title, message string) error
}

// Handler ingests vendor post-call deliveries. The route is registered
// outside the authenticated API surface; the HMAC signature is its only
// caller verification.
type Handler struct {
	agents   agents.System
	leads    leads.System
	notifier Notifier
	secret   string
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates a webhook handler with the specified configuration.
// An empty secret disables signature verification.
func NewHandler(agentSys agents.System, leadSys leads.System, notifier Notifier, secret string, logger *slog.Logger) *Handler {
	return &Handler{
		agents:   agentSys,
		leads:    leadSys,
		notifier: notifier,
		secret:   secret,
		logger:   logger.With("handler", "webhooks"),
		now:      time.Now,
	}
}

// Routes returns the webhook route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/webhooks",
		Description: "Vendor post-call ingestion",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/elevenlabs", Handler: h.Ingest},
		},
	}
}

// Ingest records a completed conversation as a lead. Deliveries for
// vendor agents with no local record are rejected without inserting.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDeliverySize))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if h.secret != "" {
		sig := r.Header.Get("ElevenLabs-Signature")
		if err := VerifySignature(h.secret, body, sig, h.now()); err != nil {
			h.logger.Warn("webhook signature rejected", "error", err)
			handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
			return
		}
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode delivery: %w", err))
		return
	}
	if err := payload.Validate(); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	agent, err := h.agents.FindByVendorID(r.Context(), payload.AgentID)
	if err != nil {
		if errors.Is(err, agents.ErrNotFound) {
			h.logger.Warn("delivery for unknown vendor agent", "vendor_agent_id", payload.AgentID)
			handlers.RespondError(w, h.logger, http.StatusNotFound, agents.ErrNotFound)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	lead, err := h.leads.Create(r.Context(), payload.LeadCommand(agent.ID))
	if err != nil {
		handlers.RespondError(w, h.logger, leads.MapHTTPStatus(err), err)
		return
	}

	h.notify(r.Context(), agent, lead)

	handlers.RespondJSON(w, http.StatusCreated, lead)
}

// notify pushes the new lead to the agent owner when notification
// routing is configured and the lead passes the agent's filter. Push
// failure is logged and never blocks ingestion.
func (h *Handler) notify(ctx context.Context, agent *agents.Agent, lead *leads.Lead) {
	if h.notifier == nil || !agent.Notify.Enabled() {
		return
	}
	if agent.Notify.Filter == agents.NotifyQualified && lead.Status != leads.StatusQualified {
		return
	}

	title := fmt.Sprintf("New lead: %s", agent.Name)
	message := leadMessage(lead)

	if err := h.notifier.Notify(ctx, agent.Notify.PushoverUserKey, agent.Notify.PushoverAPIToken, title, message); err != nil {
		h.logger.Error("lead notification failed", "lead_id", lead.ID, "agent_id", agent.ID, "error", err)
	}
}

func leadMessage(lead *leads.Lead) string {
	name := lead.Name
	if name == "" {
		name = "Unknown contact"
	}

	message := name
	if lead.Phone != "" {
		message += " - " + lead.Phone
	}
	if lead.Status == leads.StatusNotQualified {
		message += " (not qualified)"
	}
	if lead.Summary != "" {
		message += "\n" + lead.Summary
	}
	return message
}
