package profiles

import (
	"context"

	"github.com/google/uuid"
	"github.com/iautomae/platform/pkg/pagination"
)

// System defines the interface for profile storage and retrieval operations.
type System interface {
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Profile], error)
	Find(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// Ensure returns the profile for the user, creating a default
	// unapproved standard profile on first sight.
	Ensure(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// RequireAdmin performs a fresh role lookup for the user and returns
	// ErrForbidden unless the stored role is admin. Privileged routes call
	// this per request instead of trusting client state.
	RequireAdmin(ctx context.Context, userID uuid.UUID) (*Profile, error)

	SetApproved(ctx context.Context, id uuid.UUID, approved bool) (*Profile, error)
	SetRole(ctx context.Context, id uuid.UUID, role Role) (*Profile, error)
	SetFeatures(ctx context.Context, id uuid.UUID, features map[string]bool) (*Profile, error)
	SetLogo(ctx context.Context, id uuid.UUID, logoKey *string) (*Profile, error)
	SetCompany(ctx context.Context, id uuid.UUID, companyID *uuid.UUID) (*Profile, error)
}
