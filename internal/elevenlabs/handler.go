package elevenlabs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"path"

	"github.com/google/uuid"
	"github.com/iautomae/platform/internal/agents"
	"github.com/iautomae/platform/internal/auth"
	"github.com/iautomae/platform/internal/storage"
	"github.com/iautomae/platform/pkg/handlers"
	"github.com/iautomae/platform/pkg/routes"
)

// maxKnowledgeUpload caps knowledge file uploads at 20MB.
const maxKnowledgeUpload = 20 << 20

// KnowledgeResult reports a knowledge upload: the vendor document plus
// whether linking it into the agent's configuration succeeded. Linking
// is a separate vendor call; its failure leaves the uploaded document
// orphaned rather than rolled back.
type KnowledgeResult struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Linked bool   `json:"linked"`
	Error  string `json:"link_error,omitempty"`
}

// Handler provides HTTP proxy endpoints for the vendor API.
type Handler struct {
	client *Client
	agents agents.System
	blobs  storage.System
	logger *slog.Logger
}

// NewHandler creates a vendor proxy handler with the specified configuration.
func NewHandler(client *Client, agentSys agents.System, blobs storage.System, logger *slog.Logger) *Handler {
	return &Handler{
		client: client,
		agents: agentSys,
		blobs:  blobs,
		logger: logger.With("handler", "elevenlabs"),
	}
}

// Routes returns the vendor proxy route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/elevenlabs",
		Description: "Conversational-AI vendor proxy",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/available-agents", Handler: h.AvailableAgents},
			{Method: "POST", Pattern: "/agents", Handler: h.CreateAgent},
			{Method: "GET", Pattern: "/agents/{id}", Handler: h.GetAgent},
			{Method: "PATCH", Pattern: "/agents/{id}", Handler: h.PatchAgent},
			{Method: "GET", Pattern: "/phone-numbers", Handler: h.ListPhoneNumbers},
			{Method: "PATCH", Pattern: "/phone-numbers/{id}", Handler: h.AssignPhoneNumber},
			{Method: "POST", Pattern: "/knowledge", Handler: h.UploadKnowledge},
			{Method: "DELETE", Pattern: "/knowledge/{docID}", Handler: h.UnlinkKnowledge},
			{Method: "GET", Pattern: "/signed-url", Handler: h.SignedURL},
			{Method: "POST", Pattern: "/chat", Handler: h.Chat},
		},
	}
}

// AvailableAgents returns one vendor agent not yet claimed by any local
// record, chosen at random from the remaining candidates.
func (h *Handler) AvailableAgents(w http.ResponseWriter, r *http.Request) {
	vendorAgents, err := h.client.ListAgents(r.Context())
	if err != nil {
		h.respondVendorError(w, err)
		return
	}

	claimed, err := h.agents.ClaimedVendorIDs(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	claimedSet := make(map[string]struct{}, len(claimed))
	for _, id := range claimed {
		claimedSet[id] = struct{}{}
	}

	available := make([]VendorAgent, 0, len(vendorAgents))
	for _, a := range vendorAgents {
		if _, ok := claimedSet[a.AgentID]; !ok {
			available = append(available, a)
		}
	}

	if len(available) == 0 {
		handlers.RespondError(w, h.logger, http.StatusNotFound, errors.New("no available vendor agents"))
		return
	}

	pick := available[rand.IntN(len(available))]
	handlers.RespondJSON(w, http.StatusOK, pick)
}

func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string `json:"name"`
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if body.Name == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	resp, err := h.client.CreateAgent(r.Context(), body.Name, body.Prompt)
	if err != nil {
		h.respondVendorError(w, err)
		return
	}

	h.respondRaw(w, http.StatusCreated, resp)
}

func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client.GetAgent(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondVendorError(w, err)
		return
	}

	h.respondRaw(w, http.StatusOK, resp)
}

func (h *Handler) PatchAgent(w http.ResponseWriter, r *http.Request) {
	patch, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if !json.Valid(patch) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("patch must be valid JSON"))
		return
	}

	resp, err := h.client.UpdateAgent(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.respondVendorError(w, err)
		return
	}

	h.respondRaw(w, http.StatusOK, resp)
}

func (h *Handler) ListPhoneNumbers(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client.ListPhoneNumbers(r.Context())
	if err != nil {
		h.respondVendorError(w, err)
		return
	}

	h.respondRaw(w, http.StatusOK, resp)
}

func (h *Handler) AssignPhoneNumber(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AgentID string `json:"agent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	resp, err := h.client.AssignPhoneNumber(r.Context(), r.PathValue("id"), body.AgentID)
	if err != nil {
		h.respondVendorError(w, err)
		return
	}

	h.respondRaw(w, http.StatusOK, resp)
}

// UploadKnowledge uploads a knowledge document to the vendor, then links
// it into the agent's knowledge list through a read-modify-write patch.
// A failed link returns 200 with linked set to false alongside the
// upload result; the caller retries the link, not the upload.
func (h *Handler) UploadKnowledge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxKnowledgeUpload); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	agent, ok := h.ownedAgent(w, r, r.FormValue("agent_id"))
	if !ok {
		return
	}
	if agent.VendorAgentID == nil {
		handlers.RespondError(w, h.logger, http.StatusConflict, errors.New("agent is not vendor-linked"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxKnowledgeUpload+1))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if len(data) > maxKnowledgeUpload {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
			fmt.Errorf("knowledge file exceeds %d bytes", maxKnowledgeUpload))
		return
	}

	upload, err := h.client.UploadKnowledgeFile(r.Context(), header.Filename, data)
	if err != nil {
		h.respondVendorError(w, err)
		return
	}

	// Keep an archival copy; the vendor holds the working one.
	archiveKey := fmt.Sprintf("knowledge/%s/%s-%s", agent.ID, upload.ID, path.Base(header.Filename))
	if err := h.blobs.Store(r.Context(), archiveKey, data); err != nil {
		h.logger.Warn("failed to archive knowledge file", "key", archiveKey, "error", err)
	}

	result := KnowledgeResult{ID: upload.ID, Name: upload.Name, Linked: true}
	if err := h.linkKnowledge(r, agent, *agent.VendorAgentID, upload); err != nil {
		h.logger.Error("knowledge link failed after upload", "agent_id", agent.ID, "doc_id", upload.ID, "error", err)
		result.Linked = false
		result.Error = err.Error()
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// linkKnowledge appends the uploaded document to the vendor agent's
// knowledge list and mirrors the list onto the local record.
func (h *Handler) linkKnowledge(r *http.Request, agent *agents.Agent, vendorAgentID string, upload *KnowledgeUpload) error {
	docs, err := h.client.AgentKnowledge(r.Context(), vendorAgentID)
	if err != nil {
		return err
	}

	docs = append(docs, KnowledgeDoc{ID: upload.ID, Name: upload.Name, Type: "file", Usage: "prompt"})
	if err := h.client.SetAgentKnowledge(r.Context(), vendorAgentID, docs); err != nil {
		return err
	}

	files := make([]agents.KnowledgeFile, 0, len(docs))
	for _, d := range docs {
		files = append(files, agents.KnowledgeFile{ID: d.ID, Name: d.Name})
	}
	if _, err := h.agents.SetKnowledgeFiles(r.Context(), agent.ID, files); err != nil {
		h.logger.Warn("failed to mirror knowledge list locally", "agent_id", agent.ID, "error", err)
	}

	return nil
}

// UnlinkKnowledge removes a document from the agent's knowledge list via
// the same read-modify-write cycle. The vendor document itself is kept.
func (h *Handler) UnlinkKnowledge(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.ownedAgent(w, r, r.URL.Query().Get("agent_id"))
	if !ok {
		return
	}
	if agent.VendorAgentID == nil {
		handlers.RespondError(w, h.logger, http.StatusConflict, errors.New("agent is not vendor-linked"))
		return
	}

	docID := r.PathValue("docID")

	docs, err := h.client.AgentKnowledge(r.Context(), *agent.VendorAgentID)
	if err != nil {
		h.respondVendorError(w, err)
		return
	}

	kept := make([]KnowledgeDoc, 0, len(docs))
	for _, d := range docs {
		if d.ID != docID {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(docs) {
		handlers.RespondError(w, h.logger, http.StatusNotFound, errors.New("knowledge document not linked"))
		return
	}

	if err := h.client.SetAgentKnowledge(r.Context(), *agent.VendorAgentID, kept); err != nil {
		h.respondVendorError(w, err)
		return
	}

	files := make([]agents.KnowledgeFile, 0, len(kept))
	for _, d := range kept {
		files = append(files, agents.KnowledgeFile{ID: d.ID, Name: d.Name})
	}
	if _, err := h.agents.SetKnowledgeFiles(r.Context(), agent.ID, files); err != nil {
		h.logger.Warn("failed to mirror knowledge list locally", "agent_id", agent.ID, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SignedURL(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("agent_id")
	if agentID == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("agent_id is required"))
		return
	}

	signed, err := h.client.SignedURL(r.Context(), agentID)
	if err != nil {
		h.respondVendorError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{"signed_url": signed})
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AgentID string `json:"agent_id"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if body.AgentID == "" || body.Message == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("agent_id and message are required"))
		return
	}

	resp, err := h.client.SendChatMessage(r.Context(), body.AgentID, body.Message)
	if err != nil {
		h.respondVendorError(w, err)
		return
	}

	h.respondRaw(w, http.StatusOK, resp)
}

// ownedAgent resolves a local agent ID string to an agent owned by the
// caller. Other users' agents read as not found.
func (h *Handler) ownedAgent(w http.ResponseWriter, r *http.Request, rawID string) (*agents.Agent, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return nil, false
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("agent_id must be a valid agent identifier"))
		return nil, false
	}

	agent, err := h.agents.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, agents.MapHTTPStatus(err), err)
		return nil, false
	}

	if agent.UserID != userID {
		handlers.RespondError(w, h.logger, http.StatusNotFound, agents.ErrNotFound)
		return nil, false
	}

	return agent, true
}

// respondRaw forwards a vendor JSON body unmodified.
func (h *Handler) respondRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// respondVendorError maps client errors onto proxy responses: vendor
// statuses pass through, a missing API key reads as a fixed internal
// error, transport failures read as a bad gateway.
func (h *Handler) respondVendorError(w http.ResponseWriter, err error) {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrNotConfigured):
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, ErrNotConfigured)
	case errors.As(err, &apiErr):
		handlers.RespondError(w, h.logger, apiErr.Status, errors.New(apiErr.Message))
	default:
		handlers.RespondError(w, h.logger, http.StatusBadGateway, err)
	}
}
