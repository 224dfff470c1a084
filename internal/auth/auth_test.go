package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/iautomae/platform/internal/config"
)

func testAuthenticator(t *testing.T) *Authenticator {
	t.Helper()

	cfg := &config.AuthConfig{
		Secret:   "test-secret-value",
		Issuer:   "iautomae",
		TokenTTL: "1h",
	}
	return New(cfg)
}

func TestIssueAndValidate(t *testing.T) {
	a := testAuthenticator(t)
	userID := uuid.New()

	token, err := a.IssueToken(userID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	got, err := a.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got != userID {
		t.Errorf("subject = %s, want %s", got, userID)
	}
}

func TestValidateRejections(t *testing.T) {
	a := testAuthenticator(t)

	other := New(&config.AuthConfig{Secret: "different-secret", Issuer: "iautomae", TokenTTL: "1h"})
	wrongSecret, err := other.IssueToken(uuid.New())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	wrongIssuer := New(&config.AuthConfig{Secret: "test-secret-value", Issuer: "someone-else", TokenTTL: "1h"})
	badIssuer, err := wrongIssuer.IssueToken(uuid.New())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", wrongSecret},
		{"wrong issuer", badIssuer},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	a := testAuthenticator(t)
	userID := uuid.New()

	token, err := a.IssueToken(userID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	var gotID uuid.UUID
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"invalid token", "Bearer junk", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotOK = uuid.Nil, false

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			a.Middleware(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if !gotOK || gotID != userID {
					t.Errorf("context user = %s ok = %t, want %s", gotID, gotOK, userID)
				}
			}
		})
	}
}

func TestUserIDAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UserID(req.Context()); ok {
		t.Error("UserID should report false on an unauthenticated context")
	}
}
