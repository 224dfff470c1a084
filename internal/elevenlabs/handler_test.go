package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/iautomae/platform/internal/agents"
	"github.com/iautomae/platform/internal/auth"
	"github.com/iautomae/platform/internal/storage"
	"github.com/iautomae/platform/pkg/logging"
)

type fakeAgents struct {
	agents.System

	claimed []string
	agent   *agents.Agent

	knowledgeSets int
}

func (f *fakeAgents) ClaimedVendorIDs(ctx context.Context) ([]string, error) {
	return f.claimed, nil
}

func (f *fakeAgents) Find(ctx context.Context, id uuid.UUID) (*agents.Agent, error) {
	if f.agent == nil || f.agent.ID != id {
		return nil, agents.ErrNotFound
	}
	return f.agent, nil
}

func (f *fakeAgents) SetKnowledgeFiles(ctx context.Context, id uuid.UUID, files []agents.KnowledgeFile) (*agents.Agent, error) {
	f.knowledgeSets++
	return f.agent, nil
}

func newTestHandler(t *testing.T, vendor http.Handler, sys *fakeAgents) *Handler {
	t.Helper()

	logger := logging.NewWithWriter(&logging.Config{Level: "error", Format: "text"}, &bytes.Buffer{})
	blobs, err := storage.NewFilesystem(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewFilesystem() error = %v", err)
	}
	return NewHandler(testClient(t, vendor), sys, blobs, logger)
}

func TestAvailableAgentsExcludesClaimed(t *testing.T) {
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"agents": []map[string]string{
				{"agent_id": "va-1", "name": "Claimed"},
				{"agent_id": "va-2", "name": "Free"},
			},
			"has_more": false,
		})
	})
	h := newTestHandler(t, vendor, &fakeAgents{claimed: []string{"va-1"}})

	rec := httptest.NewRecorder()
	h.AvailableAgents(rec, httptest.NewRequest(http.MethodGet, "/available-agents", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var pick VendorAgent
	if err := json.Unmarshal(rec.Body.Bytes(), &pick); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if pick.AgentID != "va-2" {
		t.Errorf("picked %q, want the unclaimed va-2", pick.AgentID)
	}
}

func TestAvailableAgentsNoneLeft(t *testing.T) {
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"agents":   []map[string]string{{"agent_id": "va-1", "name": "Claimed"}},
			"has_more": false,
		})
	})
	h := newTestHandler(t, vendor, &fakeAgents{claimed: []string{"va-1"}})

	rec := httptest.NewRecorder()
	h.AvailableAgents(rec, httptest.NewRequest(http.MethodGet, "/available-agents", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when every vendor agent is claimed", rec.Code)
	}
}

func TestAvailableAgentsVendorErrorPassthrough(t *testing.T) {
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail":"rate limited"}`))
	})
	h := newTestHandler(t, vendor, &fakeAgents{})

	rec := httptest.NewRecorder()
	h.AvailableAgents(rec, httptest.NewRequest(http.MethodGet, "/available-agents", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want vendor status 429", rec.Code)
	}
}

func knowledgeRequest(t *testing.T, userID uuid.UUID, agentID string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("agent_id", agentID); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := mw.CreateFormFile("file", "faq.pdf")
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	part.Write([]byte("%PDF-1.4 fixture"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/knowledge", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

func linkedAgent(userID uuid.UUID) *agents.Agent {
	vendorID := "va-1"
	return &agents.Agent{ID: uuid.New(), UserID: userID, VendorAgentID: &vendorID}
}

func TestUploadKnowledgeLinks(t *testing.T) {
	userID := uuid.New()
	sys := &fakeAgents{agent: linkedAgent(userID)}

	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]string{"id": "doc-1", "name": "faq.pdf"})
		case r.Method == http.MethodGet:
			w.Write([]byte(`{"conversation_config":{"agent":{"prompt":{"knowledge_base":[]}}}}`))
		default:
			w.Write([]byte(`{}`))
		}
	})
	h := newTestHandler(t, vendor, sys)

	rec := httptest.NewRecorder()
	h.UploadKnowledge(rec, knowledgeRequest(t, userID, sys.agent.ID.String()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result KnowledgeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Linked || result.ID != "doc-1" {
		t.Errorf("result = %+v, want linked doc-1", result)
	}
	if sys.knowledgeSets != 1 {
		t.Errorf("local knowledge mirrored %d times, want 1", sys.knowledgeSets)
	}
}

func TestUploadKnowledgeLinkFailure(t *testing.T) {
	userID := uuid.New()
	sys := &fakeAgents{agent: linkedAgent(userID)}

	// Upload succeeds, the agent patch fails; the upload must still be
	// reported with linked false.
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			json.NewEncoder(w).Encode(map[string]string{"id": "doc-1", "name": "faq.pdf"})
		case http.MethodGet:
			w.Write([]byte(`{"conversation_config":{"agent":{"prompt":{"knowledge_base":[]}}}}`))
		default:
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"detail":"patch rejected"}`))
		}
	})
	h := newTestHandler(t, vendor, sys)

	rec := httptest.NewRecorder()
	h.UploadKnowledge(rec, knowledgeRequest(t, userID, sys.agent.ID.String()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when linking fails", rec.Code)
	}

	var result KnowledgeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Linked {
		t.Error("Linked = true, want false after patch failure")
	}
	if result.ID != "doc-1" || result.Error == "" {
		t.Errorf("result = %+v, want doc id and link error", result)
	}
}

func TestUploadKnowledgeUnlinkedAgent(t *testing.T) {
	userID := uuid.New()
	sys := &fakeAgents{agent: &agents.Agent{ID: uuid.New(), UserID: userID}}
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("vendor called for an unlinked agent")
	}), sys)

	rec := httptest.NewRecorder()
	h.UploadKnowledge(rec, knowledgeRequest(t, userID, sys.agent.ID.String()))

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 for unlinked agent", rec.Code)
	}
}

func TestUploadKnowledgeForeignAgent(t *testing.T) {
	owner := uuid.New()
	sys := &fakeAgents{agent: linkedAgent(owner)}
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("vendor called for a foreign agent")
	}), sys)

	rec := httptest.NewRecorder()
	h.UploadKnowledge(rec, knowledgeRequest(t, uuid.New(), sys.agent.ID.String()))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for another user's agent", rec.Code)
	}
}

func TestChatValidation(t *testing.T) {
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("vendor called with invalid body")
	}), &fakeAgents{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(`{"agent_id":"va-1"}`)))
	h.Chat(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 when message is missing", rec.Code)
	}
}
