package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/iautomae/platform/internal/agents"
	"github.com/iautomae/platform/internal/auth"
	"github.com/iautomae/platform/internal/leads"
	"github.com/iautomae/platform/internal/profiles"
	"github.com/iautomae/platform/pkg/logging"
	"github.com/iautomae/platform/pkg/pagination"
)

type fakeProfiles struct {
	profiles.System

	adminID uuid.UUID

	approvals int
}

func (f *fakeProfiles) RequireAdmin(ctx context.Context, userID uuid.UUID) (*profiles.Profile, error) {
	if userID != f.adminID {
		return nil, profiles.ErrForbidden
	}
	return &profiles.Profile{UserID: userID, Role: profiles.RoleAdmin}, nil
}

func (f *fakeProfiles) SetApproved(ctx context.Context, id uuid.UUID, approved bool) (*profiles.Profile, error) {
	f.approvals++
	return &profiles.Profile{ID: id, Approved: approved}, nil
}

type fakeAgents struct {
	agents.System

	agent *agents.Agent

	updates int
	deletes int
}

func (f *fakeAgents) Update(ctx context.Context, id uuid.UUID, cmd agents.UpdateCommand) (*agents.Agent, error) {
	f.updates++
	updated := *f.agent
	updated.Name = cmd.Name
	updated.Prompt = cmd.Prompt
	return &updated, nil
}

func (f *fakeAgents) Delete(ctx context.Context, id uuid.UUID) error {
	f.deletes++
	return nil
}

type fakeLeads struct {
	leads.System

	removed int64
	deletes int
}

func (f *fakeLeads) DeleteByAgent(ctx context.Context, agentID uuid.UUID) (int64, error) {
	f.deletes++
	return f.removed, nil
}

type fakeVendor struct {
	err   error
	syncs int
}

func (f *fakeVendor) SyncAgent(ctx context.Context, vendorAgentID, name, prompt string) error {
	f.syncs++
	return f.err
}

type adminFixture struct {
	handler  *Handler
	profiles *fakeProfiles
	agents   *fakeAgents
	leads    *fakeLeads
	vendor   *fakeVendor
	adminID  uuid.UUID
}

func newFixture(t *testing.T) *adminFixture {
	t.Helper()

	adminID := uuid.New()
	vendorID := "va-1"
	f := &adminFixture{
		profiles: &fakeProfiles{adminID: adminID},
		agents:   &fakeAgents{agent: &agents.Agent{ID: uuid.New(), UserID: uuid.New(), VendorAgentID: &vendorID}},
		leads:    &fakeLeads{removed: 3},
		vendor:   &fakeVendor{},
		adminID:  adminID,
	}

	logger := logging.NewWithWriter(&logging.Config{Level: "error", Format: "text"}, &bytes.Buffer{})
	f.handler = NewHandler(f.profiles, f.agents, f.leads, f.vendor, logger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
	return f
}

func request(method, target, body string, userID uuid.UUID, pathID string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if pathID != "" {
		req.SetPathValue("id", pathID)
	}
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

func TestNonAdminForbidden(t *testing.T) {
	f := newFixture(t)
	intruder := uuid.New()

	rec := httptest.NewRecorder()
	f.handler.SetApproved(rec, request(http.MethodPost, "/admin/users/x/approved",
		`{"approved":true}`, intruder, uuid.New().String()))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for non-admin", rec.Code)
	}
	if f.profiles.approvals != 0 {
		t.Errorf("approvals = %d, want no write for non-admin", f.profiles.approvals)
	}
}

func TestUnauthenticatedRejected(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	f.handler.ListUsers(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without identity", rec.Code)
	}
}

func TestSetApproved(t *testing.T) {
	f := newFixture(t)
	target := uuid.New()

	rec := httptest.NewRecorder()
	f.handler.SetApproved(rec, request(http.MethodPost, "/admin/users/x/approved",
		`{"approved":true}`, f.adminID, target.String()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if f.profiles.approvals != 1 {
		t.Errorf("approvals = %d, want 1", f.profiles.approvals)
	}
}

func TestSaveAgentSyncs(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.SaveAgent(rec, request(http.MethodPut, "/admin/agents/x",
		`{"name":"Renamed","prompt":"New prompt"}`, f.adminID, f.agents.agent.ID.String()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result agents.SaveResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Synced {
		t.Error("Synced = false, want true")
	}
	if f.vendor.syncs != 1 {
		t.Errorf("vendor syncs = %d, want 1", f.vendor.syncs)
	}
}

func TestSaveAgentSurfacesSyncFailure(t *testing.T) {
	f := newFixture(t)
	f.vendor.err = context.DeadlineExceeded

	rec := httptest.NewRecorder()
	f.handler.SaveAgent(rec, request(http.MethodPut, "/admin/agents/x",
		`{"name":"Renamed","prompt":"p"}`, f.adminID, f.agents.agent.ID.String()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with synced false", rec.Code)
	}

	var result agents.SaveResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Synced || result.Error == "" {
		t.Errorf("result = %+v, want synced false with error", result)
	}
	if f.agents.updates != 1 {
		t.Errorf("updates = %d, want local save kept", f.agents.updates)
	}
}

func TestDeleteAgentCascades(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.DeleteAgent(rec, request(http.MethodDelete, "/admin/agents/x",
		"", f.adminID, f.agents.agent.ID.String()))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if f.leads.deletes != 1 || f.agents.deletes != 1 {
		t.Errorf("lead deletes = %d, agent deletes = %d, want 1 and 1",
			f.leads.deletes, f.agents.deletes)
	}
}

func TestBadPathID(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.SetApproved(rec, request(http.MethodPost, "/admin/users/x/approved",
		`{"approved":true}`, f.adminID, "not-a-uuid"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed id", rec.Code)
	}
}
