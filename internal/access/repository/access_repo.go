package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekip-platform/ekip-api/internal/access/domain"
	"github.com/ekip-platform/ekip-api/internal/db"
	"github.com/jackc/pgx/v5"
)

// AccessRepository reads users, access_profiles and access_permissions with
// the service role, since users cannot see other profiles under RLS.
type AccessRepository struct {
	runner db.Runner
}

func NewAccessRepository(runner db.Runner) *AccessRepository {
	return &AccessRepository{runner: runner}
}

// LoadSubject collects the profile state and granted permissions of a user.
func (r *AccessRepository) LoadSubject(ctx context.Context, userID string) (domain.Subject, error) {
	var s domain.Subject

	err := r.runner.InTx(ctx, func(q db.Querier) error {
		err := q.QueryRow(ctx, `SELECT profile_id FROM users WHERE id = $1`, userID).Scan(&s.ProfileID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load user profile: %w", err)
		}
		s.UserFound = true
		if s.ProfileID == nil {
			return nil
		}

		err = q.QueryRow(ctx,
			`SELECT is_system, is_active FROM access_profiles WHERE id = $1`, *s.ProfileID,
		).Scan(&s.IsSystem, &s.IsActive)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load access profile: %w", err)
		}
		s.ProfileFound = true
		if s.IsSystem {
			return nil
		}

		rows, err := q.Query(ctx, `
SELECT screen_key, action
FROM access_permissions
WHERE profile_id = $1 AND allowed = true
ORDER BY screen_key, action`, *s.ProfileID)
		if err != nil {
			return fmt.Errorf("load permissions: %w", err)
		}
		perms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Permission, error) {
			var p domain.Permission
			err := row.Scan(&p.ScreenKey, &p.Action)
			return p, err
		})
		if err != nil {
			return fmt.Errorf("scan permissions: %w", err)
		}
		s.Allowed = perms
		return nil
	})
	return s, err
}
