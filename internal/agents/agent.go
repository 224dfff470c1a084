// Package agents provides the domain system for managing configured AI
// voice/chat agents: their behavior prompt, vendor correlation, phone
// binding, knowledge files, and notification routing.
package agents

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotifyFilter selects which leads trigger a push notification.
type NotifyFilter string

// Notification filter modes.
const (
	NotifyAll       NotifyFilter = "all"
	NotifyQualified NotifyFilter = "qualified"
)

// Validate checks if the filter is a valid notification mode.
func (f NotifyFilter) Validate() error {
	switch f {
	case NotifyAll, NotifyQualified:
		return nil
	default:
		return fmt.Errorf("invalid notify filter: %s (must be all or qualified)", f)
	}
}

// NotifyConfig routes lead notifications to a push provider.
type NotifyConfig struct {
	PushoverUserKey  string       `json:"pushover_user_key,omitempty"`
	PushoverAPIToken string       `json:"pushover_api_token,omitempty"`
	Filter           NotifyFilter `json:"filter,omitempty"`
}

// Enabled reports whether the agent has notification routing configured.
func (n NotifyConfig) Enabled() bool {
	return n.PushoverUserKey != "" && n.PushoverAPIToken != ""
}

// KnowledgeFile references a document uploaded to the vendor knowledge base
// and linked into the agent's configuration.
type KnowledgeFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Agent represents one configured AI agent stored in the database.
// VendorAgentID correlates the record with the conversational-AI vendor's
// agent; it is nil until the agent is linked or imported.
type Agent struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Name           string          `json:"name"`
	Prompt         string          `json:"prompt"`
	VendorAgentID  *string         `json:"vendor_agent_id,omitempty"`
	PhoneNumber    *string         `json:"phone_number,omitempty"`
	KnowledgeFiles []KnowledgeFile `json:"knowledge_files"`
	Notify         NotifyConfig    `json:"notify"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CreateCommand contains the data required to create a new agent.
type CreateCommand struct {
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	Prompt        string    `json:"prompt"`
	VendorAgentID *string   `json:"vendor_agent_id,omitempty"`
}

// Validate checks required create fields.
func (c CreateCommand) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("%w: user_id required", ErrInvalidCommand)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidCommand)
	}
	return nil
}

// UpdateCommand contains the data required to update an existing agent's
// configuration.
type UpdateCommand struct {
	Name        string       `json:"name"`
	Prompt      string       `json:"prompt"`
	PhoneNumber *string      `json:"phone_number,omitempty"`
	Notify      NotifyConfig `json:"notify"`
}

// Validate checks required update fields.
func (c UpdateCommand) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidCommand)
	}
	if c.Notify.Filter != "" {
		if err := c.Notify.Filter.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}
	}
	return nil
}
