package leads

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/iautomae/platform/pkg/pagination"
	"github.com/iautomae/platform/pkg/query"
	"github.com/iautomae/platform/pkg/repository"
)

const leadColumns = `id, agent_id, conversation_id, name, phone, status,
		summary, transcript, tokens, credits, advisor_name, created_at`

const leadColumnsAliased = `l.id, l.agent_id, l.conversation_id, l.name, l.phone, l.status,
		l.summary, l.transcript, l.tokens, l.credits, l.advisor_name, l.created_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a new leads repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "leads"),
		pagination: pagination,
	}
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Lead], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Phone", "Summary")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	leads, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanLead)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}

	result := pagination.NewPageResult(leads, total, page.Page, page.PageSize)
	return &result, nil
}

// ListByUser pages the leads belonging to any of the user's agents.
// The agent join keeps tenant scoping in one statement instead of a
// per-agent fan-out.
func (r *repo) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Lead], error) {
	page.Normalize(r.pagination)

	where := "WHERE l.agent_id IN (SELECT id FROM agents WHERE user_id = $1)"
	args := []any{userID}

	if filters.Status != nil {
		args = append(args, string(*filters.Status))
		where += fmt.Sprintf(" AND l.status = $%d", len(args))
	}
	if filters.AgentID != nil {
		args = append(args, *filters.AgentID)
		where += fmt.Sprintf(" AND l.agent_id = $%d", len(args))
	}
	if filters.Phone != nil {
		args = append(args, "%"+*filters.Phone+"%")
		where += fmt.Sprintf(" AND l.phone ILIKE $%d", len(args))
	}

	countSQL := "SELECT COUNT(*) FROM leads l " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count user leads: %w", err)
	}

	limit, offset := page.Window()
	pageSQL := fmt.Sprintf(
		"SELECT %s FROM leads l %s ORDER BY l.created_at DESC LIMIT %d OFFSET %d",
		leadColumnsAliased,
		where,
		limit,
		offset,
	)

	leads, err := repository.QueryMany(ctx, r.db, pageSQL, args, scanLead)
	if err != nil {
		return nil, fmt.Errorf("query user leads: %w", err)
	}

	result := pagination.NewPageResult(leads, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Lead, error) {
	q, args := query.NewBuilder(projection, defaultSort).BuildSingle("ID", id)

	l, err := repository.QueryOne(ctx, r.db, q, args, scanLead)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &l, nil
}

// Create inserts a lead row. The live webhook path uses this directly:
// duplicate conversation identifiers surface as ErrDuplicate rather than
// being silently merged.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Lead, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO leads (agent_id, conversation_id, name, phone, status, summary, transcript, tokens, credits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s`, leadColumns)

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Lead, error) {
		return repository.QueryOne(ctx, tx, q, createArgs(cmd), scanLead)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("lead created", "id", l.ID, "agent_id", l.AgentID, "conversation_id", l.ConversationID, "status", l.Status)
	return &l, nil
}

// Upsert inserts a lead keyed on its conversation identifier, updating
// the existing row when the conversation was already recorded. Used by
// the batch sync command so re-runs stay idempotent.
func (r *repo) Upsert(ctx context.Context, cmd CreateCommand) (*Lead, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO leads (agent_id, conversation_id, name, phone, status, summary, transcript, tokens, credits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (conversation_id) DO UPDATE
		SET name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			status = EXCLUDED.status,
			summary = EXCLUDED.summary,
			transcript = EXCLUDED.transcript,
			tokens = EXCLUDED.tokens,
			credits = EXCLUDED.credits
		RETURNING %s`, leadColumns)

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Lead, error) {
		return repository.QueryOne(ctx, tx, q, createArgs(cmd), scanLead)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("lead upserted", "id", l.ID, "conversation_id", l.ConversationID)
	return &l, nil
}

func (r *repo) AnnotateAdvisor(ctx context.Context, id uuid.UUID, advisorName *string) (*Lead, error) {
	q := fmt.Sprintf(`
		UPDATE leads
		SET advisor_name = $2
		WHERE id = $1
		RETURNING %s`, leadColumns)

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Lead, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, advisorName}, scanLead)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("lead advisor annotated", "id", l.ID)
	return &l, nil
}

// ResetTokens zeroes the token counters for every lead belonging to the
// user's agents. Returns the number of rows touched.
func (r *repo) ResetTokens(ctx context.Context, userID uuid.UUID) (int64, error) {
	q := `
		UPDATE leads
		SET tokens = 0
		WHERE agent_id IN (SELECT id FROM agents WHERE user_id = $1)`

	affected, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int64, error) {
		return repository.Exec(ctx, tx, q, userID)
	})
	if err != nil {
		return 0, fmt.Errorf("reset tokens: %w", err)
	}

	r.logger.Info("lead tokens reset", "user_id", userID, "rows", affected)
	return affected, nil
}

func (r *repo) DeleteByAgent(ctx context.Context, agentID uuid.UUID) (int64, error) {
	affected, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int64, error) {
		return repository.Exec(ctx, tx, `DELETE FROM leads WHERE agent_id = $1`, agentID)
	})
	if err != nil {
		return 0, fmt.Errorf("delete leads by agent: %w", err)
	}

	r.logger.Info("leads deleted for agent", "agent_id", agentID, "rows", affected)
	return affected, nil
}

func createArgs(cmd CreateCommand) []any {
	return []any{
		cmd.AgentID,
		cmd.ConversationID,
		cmd.Name,
		cmd.Phone,
		string(cmd.Status),
		cmd.Summary,
		[]byte(cmd.Transcript),
		cmd.Tokens,
		cmd.Credits,
	}
}
