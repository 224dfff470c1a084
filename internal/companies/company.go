// Package companies provides the domain system for company records.
// Companies group user profiles under a shared brand and carry a
// free-form configuration blob consumed by the dashboard.
package companies

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Company represents an organization that profiles can belong to.
type Company struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Niche     string          `json:"niche"`
	Config    json.RawMessage `json:"config"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateCommand contains the data needed to create a new company.
type CreateCommand struct {
	Name   string          `json:"name"`
	Niche  string          `json:"niche"`
	Config json.RawMessage `json:"config"`
}

// Validate checks the command and normalizes its fields.
func (c *CreateCommand) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Niche = strings.TrimSpace(c.Niche)

	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCommand)
	}

	if len(c.Config) == 0 {
		c.Config = json.RawMessage(`{}`)
	} else if !json.Valid(c.Config) {
		return fmt.Errorf("%w: config must be valid JSON", ErrInvalidCommand)
	}

	return nil
}

// UpdateCommand contains the data for updating an existing company.
type UpdateCommand struct {
	Name   string          `json:"name"`
	Niche  string          `json:"niche"`
	Config json.RawMessage `json:"config"`
}

// Validate checks the command and normalizes its fields.
func (c *UpdateCommand) Validate() error {
	cmd := CreateCommand{Name: c.Name, Niche: c.Niche, Config: c.Config}
	if err := cmd.Validate(); err != nil {
		return err
	}

	c.Name = cmd.Name
	c.Niche = cmd.Niche
	c.Config = cmd.Config
	return nil
}
