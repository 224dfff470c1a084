package agents

import (
	"context"

	"github.com/google/uuid"
	"github.com/iautomae/platform/pkg/pagination"
)

// System defines the interface for agent storage and retrieval operations.
type System interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Agent], error)
	Find(ctx context.Context, id uuid.UUID) (*Agent, error)
	FindByVendorID(ctx context.Context, vendorAgentID string) (*Agent, error)
	ClaimedVendorIDs(ctx context.Context) ([]string, error)
	Create(ctx context.Context, cmd CreateCommand) (*Agent, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Agent, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*Agent, error)
	SetVendorAgentID(ctx context.Context, id uuid.UUID, vendorAgentID *string) (*Agent, error)
	SetKnowledgeFiles(ctx context.Context, id uuid.UUID, files []KnowledgeFile) (*Agent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
