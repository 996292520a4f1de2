package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekip-platform/ekip-api/internal/access/domain"
	"github.com/ekip-platform/ekip-api/internal/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const profileCols = `id, name, description, is_system, is_active, created_at, updated_at`

// ProfileRepository manages access_profiles and their permission rows with
// the service role. Route guards decide who may call it.
type ProfileRepository struct {
	runner db.Runner
}

func NewProfileRepository(runner db.Runner) *ProfileRepository {
	return &ProfileRepository{runner: runner}
}

// List returns system profiles first, then the rest by name.
func (r *ProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	var out []domain.Profile
	err := r.runner.InTx(ctx, func(q db.Querier) error {
		rows, err := q.Query(ctx, `SELECT `+profileCols+` FROM access_profiles ORDER BY is_system DESC, name`)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Profile, error) {
			var p domain.Profile
			err := scanProfile(row, &p)
			return p, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if out == nil {
		out = []domain.Profile{}
	}
	return out, nil
}

func (r *ProfileRepository) Get(ctx context.Context, id int64) (*domain.Profile, error) {
	return r.one(ctx, "get profile", `SELECT `+profileCols+` FROM access_profiles WHERE id = $1`, id)
}

// NameTaken reports whether another profile already uses name. excludeID
// is ignored when it is not positive.
func (r *ProfileRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var taken bool
	err := r.runner.InTx(ctx, func(q db.Querier) error {
		return q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM access_profiles WHERE name = $1 AND ($2::bigint <= 0 OR id <> $2::bigint))`,
			name, excludeID,
		).Scan(&taken)
	})
	if err != nil {
		return false, fmt.Errorf("check profile name: %w", err)
	}
	return taken, nil
}

func (r *ProfileRepository) Create(ctx context.Context, in domain.NewProfile) (*domain.Profile, error) {
	const q = `
INSERT INTO access_profiles (name, description, is_system, is_active)
VALUES ($1, $2, false, true)
RETURNING ` + profileCols
	return r.one(ctx, "insert profile", q, in.Name, in.Description)
}

func (r *ProfileRepository) Update(ctx context.Context, id int64, p domain.ProfilePatch) (*domain.Profile, error) {
	const q = `
UPDATE access_profiles
SET name        = COALESCE($2, name),
    description = COALESCE($3, description),
    is_active   = COALESCE($4, is_active),
    updated_at  = now()
WHERE id = $1
RETURNING ` + profileCols
	return r.one(ctx, "update profile", q, id, p.Name, p.Description, p.IsActive)
}

// Deactivate soft-deletes the profile.
func (r *ProfileRepository) Deactivate(ctx context.Context, id int64) error {
	err := r.runner.InTx(ctx, func(q db.Querier) error {
		tag, err := q.Exec(ctx, `UPDATE access_profiles SET is_active = false, updated_at = now() WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrProfileNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return fmt.Errorf("deactivate profile %d: %w", id, err)
	}
	return err
}

// UserIDs lists the users assigned to the profile.
func (r *ProfileRepository) UserIDs(ctx context.Context, id int64) ([]string, error) {
	var out []string
	err := r.runner.InTx(ctx, func(q db.Querier) error {
		rows, err := q.Query(ctx, `SELECT id FROM users WHERE profile_id = $1 ORDER BY id`, id)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("profile users: %w", err)
	}
	return out, nil
}

// Clone copies a profile and all of its permission rows under a new name.
func (r *ProfileRepository) Clone(ctx context.Context, sourceID int64, name string) (*domain.Profile, int64, error) {
	const insertQ = `
INSERT INTO access_profiles (name, description, is_system, is_active)
SELECT $2, 'Cópia de ' || name, false, true FROM access_profiles WHERE id = $1
RETURNING ` + profileCols
	const copyQ = `
INSERT INTO access_permissions (profile_id, screen_key, action, allowed)
SELECT $2, screen_key, action, allowed FROM access_permissions WHERE profile_id = $1`

	var (
		out    domain.Profile
		copied int64
	)
	err := r.runner.InTx(ctx, func(q db.Querier) error {
		if err := scanProfile(q.QueryRow(ctx, insertQ, sourceID, name), &out); err != nil {
			return err
		}
		tag, err := q.Exec(ctx, copyQ, sourceID, out.ID)
		if err != nil {
			return fmt.Errorf("copy permissions: %w", err)
		}
		copied = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return nil, 0, mapProfileErr("clone profile", err)
	}
	return &out, copied, nil
}

func (r *ProfileRepository) Permissions(ctx context.Context, id int64) ([]domain.Grant, error) {
	var out []domain.Grant
	err := r.runner.InTx(ctx, func(q db.Querier) error {
		rows, err := q.Query(ctx, `
SELECT screen_key, action, allowed
FROM access_permissions
WHERE profile_id = $1
ORDER BY screen_key, action`, id)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Grant, error) {
			var g domain.Grant
			err := row.Scan(&g.ScreenKey, &g.Action, &g.Allowed)
			return g, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("profile permissions: %w", err)
	}
	if out == nil {
		out = []domain.Grant{}
	}
	return out, nil
}

// ReplacePermissions swaps the profile's permission rows for grants in one
// transaction and touches updated_at.
func (r *ProfileRepository) ReplacePermissions(ctx context.Context, id int64, grants []domain.Grant) error {
	err := r.runner.InTx(ctx, func(q db.Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM access_permissions WHERE profile_id = $1`, id); err != nil {
			return fmt.Errorf("clear permissions: %w", err)
		}
		if len(grants) > 0 {
			b := &pgx.Batch{}
			for _, g := range grants {
				b.Queue(`INSERT INTO access_permissions (profile_id, screen_key, action, allowed) VALUES ($1, $2, $3, $4)`,
					id, g.ScreenKey, g.Action, g.Allowed)
			}
			br := q.SendBatch(ctx, b)
			for i := 0; i < b.Len(); i++ {
				if _, err := br.Exec(); err != nil {
					_ = br.Close()
					return fmt.Errorf("insert permission %d: %w", i, err)
				}
			}
			if err := br.Close(); err != nil {
				return err
			}
		}
		_, err := q.Exec(ctx, `UPDATE access_profiles SET updated_at = now() WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("replace permissions: %w", err)
	}
	return nil
}

func (r *ProfileRepository) one(ctx context.Context, what, q string, args ...any) (*domain.Profile, error) {
	var out domain.Profile
	err := r.runner.InTx(ctx, func(tx db.Querier) error {
		return scanProfile(tx.QueryRow(ctx, q, args...), &out)
	})
	if err != nil {
		return nil, mapProfileErr(what, err)
	}
	return &out, nil
}

func mapProfileErr(what string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrProfileNotFound
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		return domain.ErrDuplicateName
	}
	return fmt.Errorf("%s: %w", what, err)
}

func scanProfile(row pgx.Row, p *domain.Profile) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.IsSystem, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
}
