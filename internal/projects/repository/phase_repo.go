package repository

import (
	"context"
	"fmt"

	"github.com/ekip-platform/ekip-api/internal/db"
	"github.com/ekip-platform/ekip-api/internal/projects/domain"
	"github.com/jackc/pgx/v5"
)

// PhaseRepository reads projects and writes weekly phase progress.
type PhaseRepository struct {
	fallback db.Runner
}

func NewPhaseRepository(fallback db.Runner) *PhaseRepository {
	return &PhaseRepository{fallback: fallback}
}

func (r *PhaseRepository) Projects(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		rows, err := tx.Query(ctx, `SELECT project_id, name FROM projects WHERE name IS NOT NULL ORDER BY name`)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Project])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

func (r *PhaseRepository) ProjectExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		return tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE project_id = $1)`, id).Scan(&ok)
	})
	if err != nil {
		return false, fmt.Errorf("check project: %w", err)
	}
	return ok, nil
}

// Upsert writes all rows in one transaction, keyed on (project_id,
// domains_id, period). It reports how many rows were new.
func (r *PhaseRepository) Upsert(ctx context.Context, rows []domain.PhaseProgress) (inserted, updated int, err error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}
	const q = `
INSERT INTO projects_phase (project_id, domains_id, progress, expected_progress, "order", period)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (project_id, domains_id, period) DO UPDATE
SET progress = EXCLUDED.progress,
    expected_progress = EXCLUDED.expected_progress,
    "order" = EXCLUDED."order"
RETURNING (xmax = 0)`

	b := &pgx.Batch{}
	for _, p := range rows {
		b.Queue(q, p.ProjectID, p.DomainID, p.Progress, p.ExpectedProgress, p.Order, p.Period)
	}

	err = db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		inserted, updated = 0, 0
		br := tx.SendBatch(ctx, b)
		for i := range rows {
			var isNew bool
			if err := br.QueryRow().Scan(&isNew); err != nil {
				_ = br.Close()
				return fmt.Errorf("row %d: %w", i, err)
			}
			if isNew {
				inserted++
			} else {
				updated++
			}
		}
		return br.Close()
	})
	if err != nil {
		return 0, 0, fmt.Errorf("upsert phase progress: %w", err)
	}
	return inserted, updated, nil
}
