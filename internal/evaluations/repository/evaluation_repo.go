package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekip-platform/ekip-api/internal/db"
	"github.com/ekip-platform/ekip-api/internal/evaluations/domain"
	"github.com/jackc/pgx/v5"
)

const evaluationCols = `id, name, description, is_active, created_at, updated_at`

// EvaluationRepository persists evaluations_model rows.
type EvaluationRepository struct {
	fallback db.Runner
}

func NewEvaluationRepository(fallback db.Runner) *EvaluationRepository {
	return &EvaluationRepository{fallback: fallback}
}

func (r *EvaluationRepository) List(ctx context.Context) ([]domain.Evaluation, error) {
	var out []domain.Evaluation
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		rows, err := tx.Query(ctx, `SELECT `+evaluationCols+` FROM evaluations_model ORDER BY created_at DESC, id DESC`)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Evaluation, error) {
			var e domain.Evaluation
			err := scanEvaluation(row, &e)
			return e, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	if out == nil {
		out = []domain.Evaluation{}
	}
	return out, nil
}

func (r *EvaluationRepository) Get(ctx context.Context, id int64) (*domain.Evaluation, error) {
	return r.one(ctx, "get evaluation", `SELECT `+evaluationCols+` FROM evaluations_model WHERE id = $1`, id)
}

func (r *EvaluationRepository) Create(ctx context.Context, in domain.NewEvaluation) (*domain.Evaluation, error) {
	const q = `
INSERT INTO evaluations_model (name, description, is_active)
VALUES ($1, $2, $3)
RETURNING ` + evaluationCols
	return r.one(ctx, "insert evaluation", q, in.Name, in.Description, in.IsActive == nil || *in.IsActive)
}

func (r *EvaluationRepository) Update(ctx context.Context, id int64, p domain.EvaluationPatch) (*domain.Evaluation, error) {
	const q = `
UPDATE evaluations_model
SET name        = COALESCE($2, name),
    description = CASE WHEN $3::text IS NULL THEN description ELSE NULLIF($3::text, '') END,
    is_active   = COALESCE($4, is_active),
    updated_at  = now()
WHERE id = $1
RETURNING ` + evaluationCols
	return r.one(ctx, "update evaluation", q, id, p.Name, p.Description, p.IsActive)
}

// ToggleStatus flips is_active in a single statement.
func (r *EvaluationRepository) ToggleStatus(ctx context.Context, id int64) (*domain.Evaluation, error) {
	const q = `
UPDATE evaluations_model
SET is_active = NOT is_active, updated_at = now()
WHERE id = $1
RETURNING ` + evaluationCols
	return r.one(ctx, "toggle evaluation", q, id)
}

// Delete removes the model, its links and the questions it owned.
func (r *EvaluationRepository) Delete(ctx context.Context, id int64) error {
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		rows, err := tx.Query(ctx, `DELETE FROM evaluations_questions_model WHERE evaluation_id = $1 RETURNING question_id`, id)
		if err != nil {
			return fmt.Errorf("unlink questions: %w", err)
		}
		questionIDs, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return fmt.Errorf("unlink questions: %w", err)
		}
		if len(questionIDs) > 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM questions_model WHERE id = ANY($1)`, questionIDs); err != nil {
				return fmt.Errorf("delete questions: %w", err)
			}
		}
		tag, err := tx.Exec(ctx, `DELETE FROM evaluations_model WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete evaluation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrEvaluationNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrEvaluationNotFound) {
		return fmt.Errorf("delete evaluation %d: %w", id, err)
	}
	return err
}

// UsedDomainIDs lists the category and subcategory ids referenced by the
// evaluation's questions.
func (r *EvaluationRepository) UsedDomainIDs(ctx context.Context, id int64) ([]int64, error) {
	const q = `
SELECT q.category_id FROM evaluations_questions_model eq
JOIN questions_model q ON q.id = eq.question_id
WHERE eq.evaluation_id = $1 AND q.category_id IS NOT NULL
UNION
SELECT q.subcategory_id FROM evaluations_questions_model eq
JOIN questions_model q ON q.id = eq.question_id
WHERE eq.evaluation_id = $1 AND q.subcategory_id IS NOT NULL`

	var out []int64
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		rows, err := tx.Query(ctx, q, id)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowTo[int64])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("evaluation domains: %w", err)
	}
	return out, nil
}

func (r *EvaluationRepository) one(ctx context.Context, what, q string, args ...any) (*domain.Evaluation, error) {
	var out domain.Evaluation
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		return scanEvaluation(tx.QueryRow(ctx, q, args...), &out)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEvaluationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return &out, nil
}

func scanEvaluation(row pgx.Row, e *domain.Evaluation) error {
	return row.Scan(&e.ID, &e.Name, &e.Description, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
}
