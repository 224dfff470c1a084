package companies

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCreateCommandValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     CreateCommand
		wantErr bool
	}{
		{"valid", CreateCommand{Name: "Acme", Niche: "real estate"}, false},
		{"missing name", CreateCommand{Niche: "real estate"}, true},
		{"whitespace name", CreateCommand{Name: "   "}, true},
		{"valid config", CreateCommand{Name: "Acme", Config: json.RawMessage(`{"theme":"dark"}`)}, false},
		{"invalid config", CreateCommand{Name: "Acme", Config: json.RawMessage(`{theme`)}, true},
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

func TestCreateCommandNormalizes(t *testing.T) {
	cmd := CreateCommand{Name: "  Acme  ", Niche: " clinics "}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cmd.Name != "Acme" || cmd.Niche != "clinics" {
		t.Errorf("normalized = %q/%q, want trimmed values", cmd.Name, cmd.Niche)
	}
	if string(cmd.Config) != `{}` {
		t.Errorf("Config = %s, want empty object default", cmd.Config)
	}
}

func TestUpdateCommandValidate(t *testing.T) {
	cmd := UpdateCommand{Name: " Acme ", Config: json.RawMessage(`{"a":1}`)}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cmd.Name != "Acme" {
		t.Errorf("Name = %q, want trimmed", cmd.Name)
	}

	bad := UpdateCommand{}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("Validate() error = %v, want ErrInvalidCommand", err)
	}
}
