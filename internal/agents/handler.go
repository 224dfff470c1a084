package agents

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/iautomae/platform/internal/auth"
	"github.com/iautomae/platform/pkg/handlers"
	"github.com/iautomae/platform/pkg/pagination"
	"github.com/iautomae/platform/pkg/routes"
)

// VendorSync pushes a saved agent configuration to the conversational-AI
// vendor. Implemented by the vendor API client.
type VendorSync interface {
	SyncAgent(ctx context.Context, vendorAgentID, name, prompt string) error
}

// SaveResult reports a configuration save: the stored agent plus whether
// the vendor-side synchronization succeeded. A failed sync leaves the
// local record saved; the flag makes the partial failure visible instead
// of rolling back.
type SaveResult struct {
	Agent  *Agent `json:"agent"`
	Synced bool   `json:"synced"`
	Error  string `json:"sync_error,omitempty"`
}

// Handler provides HTTP endpoints for agent operations scoped to the
// authenticated caller.
type Handler struct {
	sys        System
	vendor     VendorSync
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates an agent handler with the specified configuration.
func NewHandler(sys System, vendor VendorSync, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		vendor:     vendor,
		logger:     logger.With("handler", "agents"),
		pagination: pagination,
	}
}

// Routes returns the agent endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/agents",
		Description: "Agent configuration management",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Save},
			{Method: "POST", Pattern: "/{id}/active", Handler: h.SetActive},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns the caller's agents. The user filter is forced to the
// authenticated identity; cross-tenant listing goes through admin routes.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())
	filters.UserID = &userID

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.ownedAgent(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, agent)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return
	}

	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	cmd.UserID = userID

	agent, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, agent)
}

// Save persists the agent configuration locally, then pushes the name and
// prompt to the vendor when the agent is vendor-linked. The two steps are
// independent network calls: vendor failure is reported through the
// synced flag, not compensated.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.ownedAgent(w, r)
	if !ok {
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	updated, err := h.sys.Update(r.Context(), agent.ID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result := SaveResult{Agent: updated, Synced: true}
	if updated.VendorAgentID != nil {
		if err := h.vendor.SyncAgent(r.Context(), *updated.VendorAgentID, updated.Name, updated.Prompt); err != nil {
			h.logger.Error("vendor sync failed after save", "id", updated.ID, "error", err)
			result.Synced = false
			result.Error = err.Error()
		}
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.ownedAgent(w, r)
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

	updated, err := h.sys.SetActive(r.Context(), agent.ID, body.Active)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.ownedAgent(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), agent.ID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedAgent resolves the path ID to an agent owned by the caller.
// Agents belonging to other users are reported as not found rather than
// forbidden to avoid leaking their existence.
func (h *Handler) ownedAgent(w http.ResponseWriter, r *http.Request) (*Agent, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return nil, false
	}

	agent, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}

	if agent.UserID != userID {
		handlers.RespondError(w, h.logger, http.StatusNotFound, errors.New("agent not found"))
		return nil, false
	}

	return agent, true
}
