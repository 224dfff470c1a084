package agents

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
)

func TestCreateCommandValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     CreateCommand
		wantErr bool
	}{
		{"valid", CreateCommand{UserID: uuid.New(), Name: "Sales Bot"}, false},
		{"missing user", CreateCommand{Name: "Sales Bot"}, true},
		{"missing name", CreateCommand{UserID: uuid.New()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr != (err != nil) {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCommand) {
				t.Errorf("Validate() error = %v, want ErrInvalidCommand", err)
			}
		})
	}
}

func TestUpdateCommandValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     UpdateCommand
		wantErr bool
	}{
		{"valid", UpdateCommand{Name: "Sales Bot"}, false},
		{"missing name", UpdateCommand{}, true},
		{"valid filter", UpdateCommand{Name: "a", Notify: NotifyConfig{Filter: NotifyQualified}}, false},
		{"empty filter ok", UpdateCommand{Name: "a"}, false},
		{"bad filter", UpdateCommand{Name: "a", Notify: NotifyConfig{Filter: "sometimes"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr != (err != nil) {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNotifyConfigEnabled(t *testing.T) {
	if (NotifyConfig{}).Enabled() {
		t.Error("Enabled() = true with no credentials")
	}
	if (NotifyConfig{PushoverUserKey: "u"}).Enabled() {
		t.Error("Enabled() = true with only a user key")
	}
	if !(NotifyConfig{PushoverUserKey: "u", PushoverAPIToken: "t"}).Enabled() {
		t.Error("Enabled() = false with both credentials")
	}
}

func TestFiltersFromQuery(t *testing.T) {
	userID := uuid.New()
	values := url.Values{
		"name":    {"sales"},
		"user_id": {userID.String()},
		"active":  {"true"},
	}

	f := FiltersFromQuery(values)

	if f.Name == nil || *f.Name != "sales" {
		t.Errorf("Name = %v, want sales", f.Name)
	}
	if f.UserID == nil || *f.UserID != userID {
		t.Errorf("UserID = %v, want %v", f.UserID, userID)
	}
	if f.Active == nil || !*f.Active {
		t.Errorf("Active = %v, want true", f.Active)
	}
}

func TestFiltersFromQueryIgnoresInvalid(t *testing.T) {
	f := FiltersFromQuery(url.Values{
		"user_id": {"not-a-uuid"},
		"active":  {"maybe"},
	})

	if f.UserID != nil {
		t.Errorf("UserID = %v, want nil for invalid uuid", f.UserID)
	}
	if f.Active != nil {
		t.Errorf("Active = %v, want nil for invalid bool", f.Active)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrDuplicate, http.StatusConflict},
		{ErrInvalidCommand, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
