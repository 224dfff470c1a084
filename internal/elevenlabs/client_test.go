package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iautomae/platform/internal/config"
	"github.com/iautomae/platform/pkg/logging"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.ElevenLabsConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: "5s",
	}
	logger := logging.NewWithWriter(&logging.Config{Level: "error", Format: "text"}, &bytes.Buffer{})
	return NewClient(cfg, logger)
}

func TestClientNotConfigured(t *testing.T) {
	logger := logging.NewWithWriter(&logging.Config{Level: "error", Format: "text"}, &bytes.Buffer{})
	client := NewClient(config.ElevenLabsConfig{BaseURL: "http://localhost", Timeout: "5s"}, logger)

	if client.Configured() {
		t.Error("Configured() = true without api key")
	}

	_, err := client.ListAgents(context.Background())
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("ListAgents() error = %v, want ErrNotConfigured", err)
	}
}

func TestClientSendsAPIKey(t *testing.T) {
	var gotKey string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		json.NewEncoder(w).Encode(map[string]any{"agents": []any{}, "has_more": false})
	}))

	if _, err := client.ListAgents(context.Background()); err != nil {
		t.Fatalf("ListAgents() error = %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("xi-api-key = %q, want test-key", gotKey)
	}
}

func TestListAgentsPagination(t *testing.T) {
	var cursors []string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cursor := r.URL.Query().Get("cursor")
		cursors = append(cursors, cursor)

		switch cursor {
		case "":
			json.NewEncoder(w).Encode(map[string]any{
				"agents":      []map[string]string{{"agent_id": "a1", "name": "First"}},
				"has_more":    true,
				"next_cursor": "page2",
			})
		case "page2":
			json.NewEncoder(w).Encode(map[string]any{
				"agents":   []map[string]string{{"agent_id": "a2", "name": "Second"}},
				"has_more": false,
			})
		default:
			t.Errorf("unexpected cursor %q", cursor)
		}
	}))

	agents, err := client.ListAgents(context.Background())
	if err != nil {
		t.Fatalf("ListAgents() error = %v", err)
	}

	if len(agents) != 2 {
		t.Fatalf("got %d agents, want 2", len(agents))
	}
	if agents[0].AgentID != "a1" || agents[1].AgentID != "a2" {
		t.Errorf("agents = %+v, want a1 then a2", agents)
	}
	if len(cursors) != 2 {
		t.Errorf("made %d requests, want 2", len(cursors))
	}
}

func TestClientAPIError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"detail": "missing prompt"})
	}))

	_, err := client.GetAgent(context.Background(), "a1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("GetAgent() error = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", apiErr.Status)
	}
	if apiErr.Message != "missing prompt" {
		t.Errorf("Message = %q, want detail string", apiErr.Message)
	}
}

func TestClientAPIErrorStructuredDetail(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":{"code":"invalid_voice"}}`))
	}))

	_, err := client.GetAgent(context.Background(), "a1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("GetAgent() error = %T, want *APIError", err)
	}
	if apiErr.Message != `{"code":"invalid_voice"}` {
		t.Errorf("Message = %q, want marshaled detail", apiErr.Message)
	}
}

func TestSyncAgent(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{}`))
	}))

	if err := client.SyncAgent(context.Background(), "va-1", "Sales Bot", "Be helpful."); err != nil {
		t.Fatalf("SyncAgent() error = %v", err)
	}

	if gotPath != "/v1/convai/agents/va-1" {
		t.Errorf("path = %q, want /v1/convai/agents/va-1", gotPath)
	}
	if gotBody["name"] != "Sales Bot" {
		t.Errorf("body name = %v, want Sales Bot", gotBody["name"])
	}
}

func TestSignedURL(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("agent_id"); got != "va-1" {
			t.Errorf("agent_id = %q, want va-1", got)
		}
		w.Write([]byte(`{"signed_url":"wss://vendor.example/session"}`))
	}))

	u, err := client.SignedURL(context.Background(), "va-1")
	if err != nil {
		t.Fatalf("SignedURL() error = %v", err)
	}
	if u != "wss://vendor.example/session" {
		t.Errorf("SignedURL() = %q", u)
	}
}

func TestUploadKnowledgeFile(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()

		if header.Filename != "faq.pdf" {
			t.Errorf("filename = %q, want faq.pdf", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "doc-1", "name": "faq.pdf"})
	}))

	upload, err := client.UploadKnowledgeFile(context.Background(), "faq.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("UploadKnowledgeFile() error = %v", err)
	}
	if upload.ID != "doc-1" || upload.Name != "faq.pdf" {
		t.Errorf("upload = %+v", upload)
	}
}

func TestAgentKnowledge(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"conversation_config": {
				"agent": {
					"prompt": {
						"knowledge_base": [
							{"id": "doc-1", "name": "faq.pdf", "type": "file"}
						]
					}
				}
			}
		}`))
	}))

	docs, err := client.AgentKnowledge(context.Background(), "va-1")
	if err != nil {
		t.Fatalf("AgentKnowledge() error = %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "doc-1" {
		t.Errorf("docs = %+v, want one doc-1 entry", docs)
	}
}
