package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ekip-platform/ekip-api/internal/auth/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const selectUser = `
		SELECT id, email, name, avatar_url, role, profile_id, employee_id, is_active, created_at
		FROM users
		WHERE id = $1
	`

// GetByID retrieves the platform user linked to a Supabase auth user id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.PlatformUser, error) {
	var u domain.PlatformUser
	var avatar, employeeID sql.NullString
	var profileID sql.NullInt64

	err := r.db.QueryRowContext(ctx, selectUser, id).Scan(
		&u.ID, &u.Email, &u.Name, &avatar, &u.Role, &profileID, &employeeID, &u.IsActive, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if avatar.Valid {
		u.AvatarURL = &avatar.String
	}
	if employeeID.Valid {
		u.EmployeeID = &employeeID.String
	}
	if profileID.Valid {
		u.ProfileID = &profileID.Int64
	}
	return &u, nil
}

// EnsureUser returns the platform user for an auth user, creating it on first
// login. A matching employee (by email) supplies name and avatar.
func (r *UserRepository) EnsureUser(ctx context.Context, au *domain.AuthUser) (*domain.PlatformUser, error) {
	u, err := r.GetByID(ctx, au.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	var empID, empName, empAvatar sql.NullString
	err = r.db.QueryRowContext(ctx,
		`SELECT user_id, name, avatar_large_url FROM employees WHERE email = $1 LIMIT 1`,
		au.Email,
	).Scan(&empID, &empName, &empAvatar)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up employee: %w", err)
	}

	name := empName.String
	if name == "" {
		name = metaString(au.UserMetadata, "name")
	}
	if name == "" {
		name = strings.SplitN(au.Email, "@", 2)[0]
	}
	avatar := empAvatar.String
	if avatar == "" {
		avatar = metaString(au.UserMetadata, "avatar")
	}
	role := metaString(au.UserMetadata, "role")
	if role == "" {
		role = "user"
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, avatar_url, role, employee_id, is_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), true)
		ON CONFLICT (id) DO NOTHING
	`, au.ID, au.Email, name, avatar, role, empID.String)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return r.GetByID(ctx, au.ID)
}

func metaString(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
