// Package admin exposes the impersonation surface: administrators
// managing any user's profile and agents. Every route re-checks the
// caller's stored role; client-side state is never trusted.
package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/iautomae/platform/internal/agents"
	"github.com/iautomae/platform/internal/auth"
	"github.com/iautomae/platform/internal/leads"
	"github.com/iautomae/platform/internal/profiles"
	"github.com/iautomae/platform/pkg/handlers"
	"github.com/iautomae/platform/pkg/pagination"
	"github.com/iautomae/platform/pkg/routes"
)

// Handler provides administrative HTTP endpoints.
type Handler struct {
	profiles   profiles.System
	agents     agents.System
	leads      leads.System
	vendor     agents.VendorSync
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates an admin handler with the specified configuration.
func NewHandler(
	profileSys profiles.System,
	agentSys agents.System,
	leadSys leads.System,
	vendor agents.VendorSync,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		profiles:   profileSys,
		agents:     agentSys,
		leads:      leadSys,
		vendor:     vendor,
		logger:     logger.With("handler", "admin"),
		pagination: pagination,
	}
}

// Routes returns the admin endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/admin",
		Description: "Administrative impersonation",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/users", Handler: h.ListUsers},
			{Method: "POST", Pattern: "/users/{id}/approved", Handler: h.SetApproved},
			{Method: "POST", Pattern: "/users/{id}/role", Handler: h.SetRole},
			{Method: "POST", Pattern: "/users/{id}/features", Handler: h.SetFeatures},
			{Method: "POST", Pattern: "/users/{id}/company", Handler: h.SetCompany},
			{Method: "GET", Pattern: "/agents", Handler: h.ListAgents},
			{Method: "PUT", Pattern: "/agents/{id}", Handler: h.SaveAgent},
			{Method: "POST", Pattern: "/agents/{id}/active", Handler: h.SetAgentActive},
			{Method: "DELETE", Pattern: "/agents/{id}", Handler: h.DeleteAgent},
		},
	}
}

// ListUsers returns every profile, paginated.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.profiles.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) SetApproved(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Approved bool `json:"approved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	profile, err := h.profiles.SetApproved(r.Context(), id, body.Approved)
	if err != nil {
		handlers.RespondError(w, h.logger, profiles.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, profile)
}

func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Role profiles.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if err := body.Role.Validate(); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	profile, err := h.profiles.SetRole(r.Context(), id, body.Role)
	if err != nil {
		handlers.RespondError(w, h.logger, profiles.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, profile)
}

func (h *Handler) SetFeatures(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Features map[string]bool `json:"features"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	profile, err := h.profiles.SetFeatures(r.Context(), id, body.Features)
	if err != nil {
		handlers.RespondError(w, h.logger, profiles.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, profile)
}

func (h *Handler) SetCompany(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		CompanyID *uuid.UUID `json:"company_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	profile, err := h.profiles.SetCompany(r.Context(), id, body.CompanyID)
	if err != nil {
		handlers.RespondError(w, h.logger, profiles.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, profile)
}

// ListAgents returns agents across all users; the user filter stays
// available but is not forced to the caller.
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := agents.FiltersFromQuery(r.URL.Query())

	result, err := h.agents.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// SaveAgent performs the full configuration save on behalf of the
// agent's owner: local update first, then the vendor push, with vendor
// failure surfaced through the synced flag.
func (h *Handler) SaveAgent(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd agents.UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	updated, err := h.agents.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, agents.MapHTTPStatus(err), err)
		return
	}

	result := agents.SaveResult{Agent: updated, Synced: true}
	if updated.VendorAgentID != nil {
		if err := h.vendor.SyncAgent(r.Context(), *updated.VendorAgentID, updated.Name, updated.Prompt); err != nil {
			h.logger.Error("vendor sync failed after admin save", "id", updated.ID, "error", err)
			result.Synced = false
			result.Error = err.Error()
		}
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) SetAgentActive(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	agent, err := h.agents.SetActive(r.Context(), id, body.Active)
	if err != nil {
		handlers.RespondError(w, h.logger, agents.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, agent)
}

// DeleteAgent removes an agent and its captured leads.
func (h *Handler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	removed, err := h.leads.DeleteByAgent(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, leads.MapHTTPStatus(err), err)
		return
	}

	if err := h.agents.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, agents.MapHTTPStatus(err), err)
		return
	}

	h.logger.Info("agent deleted by admin", "agent_id", id, "leads_removed", removed)
	w.WriteHeader(http.StatusNoContent)
}

// requireAdmin performs the fresh stored-role check on every request.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return false
	}

	if _, err := h.profiles.RequireAdmin(r.Context(), userID); err != nil {
		handlers.RespondError(w, h.logger, profiles.MapHTTPStatus(err), err)
		return false
	}

	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return uuid.Nil, false
	}
	return id, true
}
