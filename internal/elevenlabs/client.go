// Package elevenlabs provides the conversational-AI vendor API client
// and the proxy routes that keep the server-held API key away from
// browser clients.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/iautomae/platform/internal/config"
)

// VendorAgent is a summary entry from the vendor's agent listing.
type VendorAgent struct {
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`
}

// KnowledgeDoc is an entry in an agent's knowledge base list.
type KnowledgeDoc struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Usage string `json:"usage_mode,omitempty"`
}

// KnowledgeUpload is the vendor's response to a knowledge file upload.
type KnowledgeUpload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConversationSummary is an entry from the vendor's conversation listing.
type ConversationSummary struct {
	ConversationID string `json:"conversation_id"`
	AgentID        string `json:"agent_id"`
	Status         string `json:"status"`
}

// Client calls the vendor REST API. All methods are context-first and
// surface non-2xx responses as *APIError without retrying.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a vendor API client from the service configuration.
func NewClient(cfg config.ElevenLabsConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  logger.With("system", "elevenlabs"),
	}
}

// Configured reports whether an API key is present. Routes check this
// before issuing vendor calls.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// do issues a request with the vendor auth header and returns the
// response body, mapping non-2xx statuses to *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build vendor request: %w", err)
	}

	req.Header.Set("xi-api-key", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vendor request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read vendor response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("vendor api error", "method", method, "path", path, "status", resp.StatusCode)
		return nil, &APIError{Status: resp.StatusCode, Message: vendorMessage(data)}
	}

	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, query, "", nil)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal vendor payload: %w", err)
	}
	return c.do(ctx, method, path, nil, "application/json", bytes.NewReader(body))
}

// vendorMessage extracts a human-readable message from a vendor error
// body, falling back to the raw body.
func vendorMessage(data []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Detail != nil {
		if s, ok := body.Detail.(string); ok {
			return s
		}
		if detail, err := json.Marshal(body.Detail); err == nil {
			return string(detail)
		}
	}
	return strings.TrimSpace(string(data))
}

// ListAgents returns every agent visible to the API key, following the
// vendor's cursor pagination.
func (c *Client) ListAgents(ctx context.Context) ([]VendorAgent, error) {
	var (
		agents []VendorAgent
		cursor string
	)

	for {
		query := url.Values{"page_size": {"100"}}
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		data, err := c.getJSON(ctx, "/v1/convai/agents", query)
		if err != nil {
			return nil, err
		}

		var page struct {
			Agents     []VendorAgent `json:"agents"`
			HasMore    bool          `json:"has_more"`
			NextCursor string        `json:"next_cursor"`
		}
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("decode agent list: %w", err)
		}

		agents = append(agents, page.Agents...)
		if !page.HasMore || page.NextCursor == "" {
			return agents, nil
		}
		cursor = page.NextCursor
	}
}

// GetAgent returns the vendor's full agent document unmodified.
func (c *Client) GetAgent(ctx context.Context, agentID string) (json.RawMessage, error) {
	return c.getJSON(ctx, "/v1/convai/agents/"+url.PathEscape(agentID), nil)
}

// CreateAgent creates a vendor agent with the given name and system prompt.
func (c *Client) CreateAgent(ctx context.Context, name, prompt string) (json.RawMessage, error) {
	payload := map[string]any{
		"name": name,
		"conversation_config": map[string]any{
			"agent": map[string]any{
				"prompt": map[string]any{"prompt": prompt},
			},
		},
	}
	return c.sendJSON(ctx, http.MethodPost, "/v1/convai/agents/create", payload)
}

// UpdateAgent applies an arbitrary patch document to the vendor agent.
func (c *Client) UpdateAgent(ctx context.Context, agentID string, patch json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, "/v1/convai/agents/"+url.PathEscape(agentID), nil,
		"application/json", bytes.NewReader(patch))
}

// SyncAgent pushes the locally saved name and prompt to the vendor agent.
func (c *Client) SyncAgent(ctx context.Context, vendorAgentID, name, prompt string) error {
	payload := map[string]any{
		"name": name,
		"conversation_config": map[string]any{
			"agent": map[string]any{
				"prompt": map[string]any{"prompt": prompt},
			},
		},
	}
	_, err := c.sendJSON(ctx, http.MethodPatch, "/v1/convai/agents/"+url.PathEscape(vendorAgentID), payload)
	return err
}

// ListPhoneNumbers returns the vendor's phone number inventory unmodified.
func (c *Client) ListPhoneNumbers(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, "/v1/convai/phone-numbers", nil)
}

// AssignPhoneNumber rebinds a vendor phone number to the given vendor agent.
func (c *Client) AssignPhoneNumber(ctx context.Context, phoneNumberID, agentID string) (json.RawMessage, error) {
	payload := map[string]any{"agent_id": agentID}
	return c.sendJSON(ctx, http.MethodPatch, "/v1/convai/phone-numbers/"+url.PathEscape(phoneNumberID), payload)
}

// UploadKnowledgeFile uploads a knowledge document and returns the
// vendor-assigned identifier. The upload does not link the document to
// any agent; callers patch the agent's knowledge list separately.
func (c *Client) UploadKnowledgeFile(ctx context.Context, name string, data []byte) (*KnowledgeUpload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write upload form: %w", err)
	}
	if err := mw.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("write upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close upload form: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/v1/convai/knowledge-base/file", nil, mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}

	var upload KnowledgeUpload
	if err := json.Unmarshal(resp, &upload); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if upload.Name == "" {
		upload.Name = name
	}

	return &upload, nil
}

// AgentKnowledge returns the agent's current knowledge base list.
func (c *Client) AgentKnowledge(ctx context.Context, agentID string) ([]KnowledgeDoc, error) {
	data, err := c.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	var doc struct {
		ConversationConfig struct {
			Agent struct {
				Prompt struct {
					KnowledgeBase []KnowledgeDoc `json:"knowledge_base"`
				} `json:"prompt"`
			} `json:"agent"`
		} `json:"conversation_config"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode agent document: %w", err)
	}

	return doc.ConversationConfig.Agent.Prompt.KnowledgeBase, nil
}

// SetAgentKnowledge replaces the agent's knowledge base list.
func (c *Client) SetAgentKnowledge(ctx context.Context, agentID string, docs []KnowledgeDoc) error {
	if docs == nil {
		docs = []KnowledgeDoc{}
	}

	payload := map[string]any{
		"conversation_config": map[string]any{
			"agent": map[string]any{
				"prompt": map[string]any{"knowledge_base": docs},
			},
		},
	}
	_, err := c.sendJSON(ctx, http.MethodPatch, "/v1/convai/agents/"+url.PathEscape(agentID), payload)
	return err
}

// SignedURL requests a signed realtime session URL for the vendor agent.
func (c *Client) SignedURL(ctx context.Context, agentID string) (string, error) {
	data, err := c.getJSON(ctx, "/v1/convai/conversation/get-signed-url", url.Values{"agent_id": {agentID}})
	if err != nil {
		return "", err
	}

	var resp struct {
		SignedURL string `json:"signed_url"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode signed url response: %w", err)
	}

	return resp.SignedURL, nil
}

// SendChatMessage submits one text chat turn to the vendor agent and
// returns the vendor response unmodified.
func (c *Client) SendChatMessage(ctx context.Context, agentID, message string) (json.RawMessage, error) {
	payload := map[string]any{
		"agent_id": agentID,
		"message":  message,
	}
	return c.sendJSON(ctx, http.MethodPost, "/v1/convai/chat", payload)
}

// ListConversations returns conversation summaries for the vendor agent,
// following cursor pagination.
func (c *Client) ListConversations(ctx context.Context, agentID string) ([]ConversationSummary, error) {
	var (
		conversations []ConversationSummary
		cursor        string
	)

	for {
		query := url.Values{
			"agent_id":  {agentID},
			"page_size": {"100"},
		}
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		data, err := c.getJSON(ctx, "/v1/convai/conversations", query)
		if err != nil {
			return nil, err
		}

		var page struct {
			Conversations []ConversationSummary `json:"conversations"`
			HasMore       bool                  `json:"has_more"`
			NextCursor    string                `json:"next_cursor"`
		}
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("decode conversation list: %w", err)
		}

		conversations = append(conversations, page.Conversations...)
		if !page.HasMore || page.NextCursor == "" {
			return conversations, nil
		}
		cursor = page.NextCursor
	}
}

// GetConversation returns the vendor's full conversation document,
// including transcript and analysis results.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (json.RawMessage, error) {
	return c.getJSON(ctx, "/v1/convai/conversations/"+url.PathEscape(conversationID), nil)
}
