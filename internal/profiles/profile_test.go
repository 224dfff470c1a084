package profiles

import (
	"errors"
	"net/http"
	"testing"
)

func TestRoleValidate(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleUser} {
		if err := r.Validate(); err != nil {
			t.Errorf("Validate(%q) error = %v", r, err)
		}
	}
	if err := Role("superuser").Validate(); err == nil {
		t.Error("Validate() accepted unknown role")
	}
	if err := Role("").Validate(); err == nil {
		t.Error("Validate() accepted empty role")
	}
}

func TestIsAdmin(t *testing.T) {
	if !(&Profile{Role: RoleAdmin}).IsAdmin() {
		t.Error("IsAdmin() = false for admin role")
	}
	if (&Profile{Role: RoleUser}).IsAdmin() {
		t.Error("IsAdmin() = true for user role")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrDuplicate, http.StatusConflict},
		{ErrForbidden, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
