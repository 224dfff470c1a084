// Package profiles provides the domain system for user account records:
// role, approval state, feature flags, and brand customization. Feature
// flags gate dashboard navigation only; the role column is the single
// server-side authorization source.
package profiles

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role represents a profile's authorization level.
type Role string

// Profile roles.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Validate checks if the role is a valid profile role.
func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleUser:
		return nil
	default:
		return fmt.Errorf("invalid role: %s (must be admin or user)", r)
	}
}

// Profile represents a user's account record.
type Profile struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Role      Role            `json:"role"`
	Approved  bool            `json:"approved"`
	Features  map[string]bool `json:"features"`
	LogoKey   *string         `json:"logo_key,omitempty"`
	CompanyID *uuid.UUID      `json:"company_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
