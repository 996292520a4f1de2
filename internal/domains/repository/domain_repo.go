package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekip-platform/ekip-api/internal/db"
	"github.com/ekip-platform/ekip-api/internal/domains/domain"
	"github.com/jackc/pgx/v5"
)

const domainCols = `id, type, value, tag, description, is_active, parent_id, created_at, updated_at`

// DomainRepository persists the domains taxonomy. Reads and writes run in
// the caller's RLS scope when one is attached to the context.
type DomainRepository struct {
	fallback db.Runner
}

func NewDomainRepository(fallback db.Runner) *DomainRepository {
	return &DomainRepository{fallback: fallback}
}

func (r *DomainRepository) List(ctx context.Context, status domain.Status) ([]domain.Domain, error) {
	q := `SELECT ` + domainCols + ` FROM domains`
	switch status {
	case domain.StatusActive:
		q += ` WHERE is_active = true`
	case domain.StatusInactive:
		q += ` WHERE is_active = false`
	}
	q += ` ORDER BY type, value`
	return r.query(ctx, q)
}

func (r *DomainRepository) ByType(ctx context.Context, t domain.Type) ([]domain.Domain, error) {
	return r.query(ctx, `SELECT `+domainCols+` FROM domains WHERE type = $1 AND is_active = true ORDER BY value`, string(t))
}

func (r *DomainRepository) ByIDs(ctx context.Context, ids []int64) ([]domain.Domain, error) {
	if len(ids) == 0 {
		return []domain.Domain{}, nil
	}
	return r.query(ctx, `SELECT `+domainCols+` FROM domains WHERE id = ANY($1) ORDER BY value`, ids)
}

// FindByTypeTag returns the domain with the given type and tag, ignoring
// excludeID when it is positive. It returns nil when none exists.
func (r *DomainRepository) FindByTypeTag(ctx context.Context, t domain.Type, tag string, excludeID int64) (*domain.Domain, error) {
	rows, err := r.query(ctx,
		`SELECT `+domainCols+` FROM domains WHERE type = $1 AND tag = $2 AND ($3::bigint <= 0 OR id <> $3::bigint) LIMIT 1`,
		string(t), tag, excludeID)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *DomainRepository) Create(ctx context.Context, d domain.Domain) (*domain.Domain, error) {
	const q = `
INSERT INTO domains (type, value, tag, description, is_active, parent_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + domainCols
	var out domain.Domain
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		return scanDomain(tx.QueryRow(ctx, q, string(d.Type), d.Value, d.Tag, d.Description, d.IsActive, d.ParentID), &out)
	})
	if err != nil {
		return nil, fmt.Errorf("insert domain: %w", err)
	}
	return &out, nil
}

func (r *DomainRepository) Update(ctx context.Context, id int64, d domain.Domain) (*domain.Domain, error) {
	const q = `
UPDATE domains
SET type = $2, value = $3, tag = $4, description = $5, is_active = $6, parent_id = $7, updated_at = now()
WHERE id = $1
RETURNING ` + domainCols
	var out domain.Domain
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		return scanDomain(tx.QueryRow(ctx, q, id, string(d.Type), d.Value, d.Tag, d.Description, d.IsActive, d.ParentID), &out)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update domain: %w", err)
	}
	return &out, nil
}

func (r *DomainRepository) query(ctx context.Context, q string, args ...any) ([]domain.Domain, error) {
	out := make([]domain.Domain, 0, 32)
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		rows, err := tx.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var d domain.Domain
			if err := scanDomain(rows, &d); err != nil {
				return err
			}
			out = append(out, d)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query domains: %w", err)
	}
	return out, nil
}

func scanDomain(row pgx.Row, d *domain.Domain) error {
	var t string
	if err := row.Scan(&d.ID, &t, &d.Value, &d.Tag, &d.Description, &d.IsActive, &d.ParentID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return err
	}
	d.Type = domain.Type(t)
	return nil
}
