// Package leads provides the domain system for captured conversation
// outcomes: contact details, qualification status, transcript, and usage
// accounting extracted from completed vendor conversations.
package leads

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status classifies a lead's conversation outcome.
type Status string

// Lead status values.
const (
	StatusQualified    Status = "qualified"
	StatusNotQualified Status = "not_qualified"
)

// Validate checks if the status is a valid lead status.
func (s Status) Validate() error {
	switch s {
	case StatusQualified, StatusNotQualified:
		return nil
	default:
		return fmt.Errorf("invalid lead status: %s", s)
	}
}

// Lead represents a captured conversation outcome. Transcript is stored
// as received from the vendor, an ordered array of turns.
type Lead struct {
	ID             uuid.UUID       `json:"id"`
	AgentID        uuid.UUID       `json:"agent_id"`
	ConversationID string          `json:"conversation_id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Status         Status          `json:"status"`
	Summary        string          `json:"summary"`
	Transcript     json.RawMessage `json:"transcript"`
	Tokens         int             `json:"tokens"`
	Credits        int             `json:"credits"`
	AdvisorName    *string         `json:"advisor_name,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CreateCommand contains the data required to record a new lead.
type CreateCommand struct {
	AgentID        uuid.UUID       `json:"agent_id"`
	ConversationID string          `json:"conversation_id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Status         Status          `json:"status"`
	Summary        string          `json:"summary"`
	Transcript     json.RawMessage `json:"transcript"`
	Tokens         int             `json:"tokens"`
	Credits        int             `json:"credits"`
}

// Validate checks required create fields and applies the qualified default.
func (c *CreateCommand) Validate() error {
	if c.AgentID == uuid.Nil {
		return fmt.Errorf("%w: agent_id required", ErrInvalidCommand)
	}
	if c.ConversationID == "" {
		return fmt.Errorf("%w: conversation_id required", ErrInvalidCommand)
	}
	if c.Status == "" {
		c.Status = StatusQualified
	}
	if err := c.Status.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return nil
}
