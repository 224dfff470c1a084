package companies

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

const companyColumns = `id, name, niche, config, created_at, updated_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a new companies repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "companies"),
		pagination: pagination,
	}
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Company], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count companies: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	companies, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanCompany)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}

	result := pagination.NewPageResult(companies, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Company, error) {
	q, args := query.NewBuilder(projection, defaultSort).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCompany)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Company, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO companies (name, niche, config)
		VALUES ($1, $2, $3)
		RETURNING %s`, companyColumns)

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Company, error) {
		return repository.QueryOne(ctx, tx, q, []any{cmd.Name, cmd.Niche, []byte(cmd.Config)}, scanCompany)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("company created", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Company, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		UPDATE companies
		SET name = $2, niche = $3, config = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, companyColumns)

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Company, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, cmd.Name, cmd.Niche, []byte(cmd.Config)}, scanCompany)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("company updated", "id", c.ID)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("company deleted", "id", id)
	return nil
}
