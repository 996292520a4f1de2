package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ekip-platform/ekip-api/internal/db"
)

// Queryer is the read surface shared by *sql.DB and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Scoped runs fn with the request's RLS scope. When ctx carries a user
// scope, fn runs inside a transaction whose claims and role are set the way
// the pgx runners set them; otherwise fn queries conn as the service role.
// fn must finish reading its rows before returning.
func Scoped(ctx context.Context, conn *sql.DB, fn func(q Queryer) error) error {
	claims, ok := db.ClaimsFrom(ctx)
	if !ok {
		return fn(conn)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, db.ScopeStatement, string(claims), db.AuthenticatedRole); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply rls scope: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
