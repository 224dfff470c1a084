package agents

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/iautomae/platform/pkg/pagination"
	"github.com/iautomae/platform/pkg/query"
	"github.com/iautomae/platform/pkg/repository"
)

const agentColumns = `id, user_id, name, prompt, vendor_agent_id, phone_number,
		knowledge_files, notify, active, created_at, updated_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a new agents repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "agents"),
		pagination: pagination,
	}
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Agent], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Prompt")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count agents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	agents, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAgent)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}

	result := pagination.NewPageResult(agents, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Agent, error) {
	q, args := query.NewBuilder(projection, defaultSort).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAgent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) FindByVendorID(ctx context.Context, vendorAgentID string) (*Agent, error) {
	q, args := query.NewBuilder(projection, defaultSort).BuildSingle("VendorAgentID", vendorAgentID)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAgent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) ClaimedVendorIDs(ctx context.Context) ([]string, error) {
	q := `SELECT vendor_agent_id FROM agents WHERE vendor_agent_id IS NOT NULL`

	ids, err := repository.QueryMany(ctx, r.db, q, nil, func(s repository.Scanner) (string, error) {
		var id string
		err := s.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, fmt.Errorf("query claimed vendor ids: %w", err)
	}
	return ids, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Agent, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO agents (user_id, name, prompt, vendor_agent_id, knowledge_files, notify)
		VALUES ($1, $2, $3, $4, '[]', '{}')
		RETURNING %s`, agentColumns)

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Agent, error) {
		return repository.QueryOne(ctx, tx, q, []any{cmd.UserID, cmd.Name, cmd.Prompt, cmd.VendorAgentID}, scanAgent)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("agent created", "id", a.ID, "name", a.Name, "user_id", a.UserID)
	return &a, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Agent, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	notify, err := json.Marshal(cmd.Notify)
	if err != nil {
		return nil, fmt.Errorf("marshal notify config: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE agents
		SET name = $2, prompt = $3, phone_number = $4, notify = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, agentColumns)

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Agent, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, cmd.Name, cmd.Prompt, cmd.PhoneNumber, notify}, scanAgent)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("agent updated", "id", a.ID, "name", a.Name)
	return &a, nil
}

func (r *repo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Agent, error) {
	q := fmt.Sprintf(`
		UPDATE agents
		SET active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, agentColumns)

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Agent, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, active}, scanAgent)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("agent status changed", "id", a.ID, "active", a.Active)
	return &a, nil
}

func (r *repo) SetVendorAgentID(ctx context.Context, id uuid.UUID, vendorAgentID *string) (*Agent, error) {
	q := fmt.Sprintf(`
		UPDATE agents
		SET vendor_agent_id = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, agentColumns)

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Agent, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, vendorAgentID}, scanAgent)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("agent vendor link changed", "id", a.ID)
	return &a, nil
}

func (r *repo) SetKnowledgeFiles(ctx context.Context, id uuid.UUID, files []KnowledgeFile) (*Agent, error) {
	if files == nil {
		files = []KnowledgeFile{}
	}

	data, err := json.Marshal(files)
	if err != nil {
		return nil, fmt.Errorf("marshal knowledge files: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE agents
		SET knowledge_files = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, agentColumns)

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Agent, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, data}, scanAgent)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("agent knowledge files updated", "id", a.ID, "count", len(files))
	return &a, nil
}

// Delete removes the agent row. Associated leads are removed by the
// storage layer's ON DELETE CASCADE.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(ctx, tx, "DELETE FROM agents WHERE id = $1", id)
		return struct{}{}, err
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("agent deleted", "id", id)
	return nil
}
