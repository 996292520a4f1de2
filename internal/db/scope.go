package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthenticatedRole is the Postgres role RLS policies are written for.
const AuthenticatedRole = "authenticated"

// ScopeStatement publishes the claims ($1) and switches to the role ($2) for
// the rest of the current transaction.
const ScopeStatement = `select set_config('request.jwt.claims', $1, true), set_config('role', $2, true)`

// UserScope runs transactions the way PostgREST does for a signed-in user:
// the JWT claims are published through request.jwt.claims and the role is
// switched to "authenticated", so RLS policies see auth.uid().
type UserScope struct {
	pool   *pgxpool.Pool
	claims []byte
}

// NewUserScope builds a scope for the given claims. "sub" must be present.
func NewUserScope(pool *pgxpool.Pool, claims map[string]any) (*UserScope, error) {
	if _, ok := claims["sub"]; !ok {
		return nil, fmt.Errorf("user scope: claims missing sub")
	}
	if _, ok := claims["role"]; !ok {
		claims["role"] = AuthenticatedRole
	}
	raw, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("user scope: marshal claims: %w", err)
	}
	return &UserScope{pool: pool, claims: raw}, nil
}

func (s *UserScope) Claims() []byte {
	return s.claims
}

func (s *UserScope) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := ScopeTx(ctx, tx, s.claims); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return finish(ctx, tx, fn(tx))
}

// ScopeTx applies the claims and role to an open transaction. Settings are
// transaction-local and vanish on commit or rollback.
func ScopeTx(ctx context.Context, tx pgx.Tx, claims []byte) error {
	if _, err := tx.Exec(ctx, ScopeStatement, string(claims), AuthenticatedRole); err != nil {
		return fmt.Errorf("apply rls scope: %w", err)
	}
	return nil
}

type runnerKey struct{}

// WithRunner stores a request-scoped runner in the context.
func WithRunner(ctx context.Context, r Runner) context.Context {
	return context.WithValue(ctx, runnerKey{}, r)
}

// From returns the request-scoped runner if one was attached, else fallback.
func From(ctx context.Context, fallback Runner) Runner {
	if r, ok := ctx.Value(runnerKey{}).(Runner); ok && r != nil {
		return r
	}
	return fallback
}

// ClaimsFrom returns the claims of the request's user scope. It reports
// false when the context runs as the service role.
func ClaimsFrom(ctx context.Context) ([]byte, bool) {
	s, ok := ctx.Value(runnerKey{}).(*UserScope)
	if !ok || s == nil {
		return nil, false
	}
	return s.claims, true
}
