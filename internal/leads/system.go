package leads

import (
	"context"

	"github.com/google/uuid"
	"github.com/iautomae/platform/pkg/pagination"
)

// System defines the interface for lead storage and retrieval operations.
type System interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Lead], error)
	ListByUser(ctx context.Context, userID uuid.UUID, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Lead], error)
	Find(ctx context.Context, id uuid.UUID) (*Lead, error)
	Create(ctx context.Context, cmd CreateCommand) (*Lead, error)
	Upsert(ctx context.Context, cmd CreateCommand) (*Lead, error)
	AnnotateAdvisor(ctx context.Context, id uuid.UUID, advisorName *string) (*Lead, error)
	ResetTokens(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteByAgent removes all leads captured by the agent, returning
	// the number of rows deleted. Used when an agent is retired.
	DeleteByAgent(ctx context.Context, agentID uuid.UUID) (int64, error)
}
