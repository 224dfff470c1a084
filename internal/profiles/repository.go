package profiles

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

const profileColumns = `id, user_id, role, approved, features, logo_key, company_id, created_at, updated_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a new profiles repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "profiles"),
		pagination: pagination,
	}
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Profile], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count profiles: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	profiles, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanProfile)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}

	result := pagination.NewPageResult(profiles, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Profile, error) {
	q, args := query.NewBuilder(projection, defaultSort).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanProfile)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	q, args := query.NewBuilder(projection, defaultSort).BuildSingle("UserID", userID)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanProfile)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Ensure(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	q := fmt.Sprintf(`
		INSERT INTO profiles (user_id, role, approved, features)
		VALUES ($1, 'user', false, '{}')
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING %s`, profileColumns)

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Profile, error) {
		return repository.QueryOne(ctx, tx, q, []any{userID}, scanProfile)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) RequireAdmin(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !p.IsAdmin() {
		r.logger.Warn("admin check failed", "user_id", userID, "role", p.Role)
		return nil, ErrForbidden
	}
	return p, nil
}

func (r *repo) SetApproved(ctx context.Context, id uuid.UUID, approved bool) (*Profile, error) {
	return r.update(ctx, id, "approved = $2", approved)
}

func (r *repo) SetRole(ctx context.Context, id uuid.UUID, role Role) (*Profile, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}
	return r.update(ctx, id, "role = $2", string(role))
}

func (r *repo) SetFeatures(ctx context.Context, id uuid.UUID, features map[string]bool) (*Profile, error) {
	if features == nil {
		features = map[string]bool{}
	}

	data, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("marshal features: %w", err)
	}
	return r.update(ctx, id, "features = $2", data)
}

func (r *repo) SetLogo(ctx context.Context, id uuid.UUID, logoKey *string) (*Profile, error) {
	return r.update(ctx, id, "logo_key = $2", logoKey)
}

func (r *repo) SetCompany(ctx context.Context, id uuid.UUID, companyID *uuid.UUID) (*Profile, error) {
	return r.update(ctx, id, "company_id = $2", companyID)
}

func (r *repo) update(ctx context.Context, id uuid.UUID, set string, value any) (*Profile, error) {
	q := fmt.Sprintf(`
		UPDATE profiles
		SET %s, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, set, profileColumns)

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Profile, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, value}, scanProfile)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("profile updated", "id", p.ID)
	return &p, nil
}
