package companies

import (
	"context"

	"github.com/google/uuid"
	"github.com/iautomae/platform/pkg/pagination"
)

// System defines the interface for company storage and retrieval operations.
type System interface {
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Company], error)
	Find(ctx context.Context, id uuid.UUID) (*Company, error)
	Create(ctx context.Context, cmd CreateCommand) (*Company, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
