package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekip-platform/ekip-api/internal/db"
	"github.com/ekip-platform/ekip-api/internal/evaluations/domain"
	"github.com/jackc/pgx/v5"
)

// QuestionRepository reads and writes the questions of an evaluation model:
// questions_model holds the question, evaluations_questions_model links it
// to an evaluation together with its three order columns.
type QuestionRepository struct {
	fallback db.Runner
}

func NewQuestionRepository(fallback db.Runner) *QuestionRepository {
	return &QuestionRepository{fallback: fallback}
}

const linksQ = `
SELECT q.id, eq.id, q.question, COALESCE(q.description, ''), COALESCE(q.category, ''), NULLIF(q.subcategory, ''),
       COALESCE(q.category_id, 0), q.subcategory_id, COALESCE(q.weight, 0), COALESCE(q.required, false), q.reply_type_id,
       COALESCE(eq.category_order, 0), COALESCE(eq.subcategory_order, 0), COALESCE(eq.question_order, 0)
FROM evaluations_questions_model eq
JOIN questions_model q ON q.id = eq.question_id
WHERE eq.evaluation_id = $1
ORDER BY 12, 13, 14, q.id`

func (r *QuestionRepository) ListLinks(ctx context.Context, evaluationID int64) ([]domain.QuestionLink, error) {
	var out []domain.QuestionLink
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		var err error
		out, err = listLinks(ctx, tx, linksQ, evaluationID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list evaluation questions: %w", err)
	}
	return out, nil
}

// Reorder locks the evaluation's link rows, hands them to planner and
// applies the resulting plan before the lock is released, so concurrent
// reorders of one evaluation are serialised.
func (r *QuestionRepository) Reorder(ctx context.Context, evaluationID int64, planner func([]domain.QuestionLink) (domain.Plan, error)) error {
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		links, err := listLinks(ctx, tx, linksQ+"\nFOR UPDATE OF eq", evaluationID)
		if err != nil {
			return err
		}
		plan, err := planner(links)
		if err != nil {
			return err
		}
		return applyPlan(ctx, tx, evaluationID, plan)
	})
	if err != nil {
		return fmt.Errorf("reorder evaluation questions: %w", err)
	}
	return nil
}

// ApplyPlan writes every move and order update of plan in one transaction.
// Any failing statement rolls the whole plan back.
func (r *QuestionRepository) ApplyPlan(ctx context.Context, evaluationID int64, plan domain.Plan) error {
	if plan.Empty() {
		return nil
	}
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		return applyPlan(ctx, tx, evaluationID, plan)
	})
	if err != nil {
		return fmt.Errorf("apply reorder: %w", err)
	}
	return nil
}

func listLinks(ctx context.Context, tx db.Querier, q string, evaluationID int64) ([]domain.QuestionLink, error) {
	rows, err := tx.Query(ctx, q, evaluationID)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.QuestionLink, error) {
		var l domain.QuestionLink
		err := row.Scan(&l.ID, &l.LinkID, &l.Question, &l.Description, &l.Category, &l.Subcategory,
			&l.CategoryID, &l.SubcategoryID, &l.Weight, &l.Required, &l.ReplyTypeID,
			&l.CategoryOrder, &l.SubcategoryOrder, &l.QuestionOrder)
		return l, err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.QuestionLink{}
	}
	return out, nil
}

// Moves go first so the link rows are renumbered against the final
// categories. Both statements only touch rows linked to evaluationID.
const (
	moveQ = `
UPDATE questions_model
SET category_id = $2, subcategory_id = $3, category = COALESCE($4, category), subcategory = $5
WHERE id = $1
  AND EXISTS (SELECT 1 FROM evaluations_questions_model eq WHERE eq.question_id = questions_model.id AND eq.evaluation_id = $6)`
	orderQ = `
UPDATE evaluations_questions_model
SET category_order    = COALESCE($3, category_order),
    subcategory_order = COALESCE($4, subcategory_order),
    question_order    = COALESCE($5, question_order)
WHERE id = $1 AND evaluation_id = $2`
)

func applyPlan(ctx context.Context, tx db.Querier, evaluationID int64, plan domain.Plan) error {
	if plan.Empty() {
		return nil
	}
	b := &pgx.Batch{}
	for _, m := range plan.Moves {
		b.Queue(moveQ, m.QuestionID, m.CategoryID, m.SubcategoryID, m.Category, m.Subcategory, evaluationID)
	}
	for _, u := range plan.Updates {
		b.Queue(orderQ, u.LinkID, evaluationID, u.CategoryOrder, u.SubcategoryOrder, u.QuestionOrder)
	}

	br := tx.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return br.Close()
}

// AddQuestion creates the question and links it to the evaluation at the
// given orders.
func (r *QuestionRepository) AddQuestion(ctx context.Context, evaluationID int64, q domain.NewQuestion, labels domain.QuestionLabels, o domain.Orders) (*domain.QuestionLink, error) {
	const insertQ = `
INSERT INTO questions_model (question, description, category, subcategory, category_id, subcategory_id, weight, required, reply_type_id)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	const linkQ = `
INSERT INTO evaluations_questions_model (evaluation_id, question_id, category_order, subcategory_order, question_order)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	out := domain.QuestionLink{
		Question:         q.Question,
		Description:      q.Description,
		Category:         labels.Category,
		CategoryID:       q.CategoryID,
		SubcategoryID:    q.SubcategoryID,
		Weight:           q.Weight,
		Required:         q.Required,
		ReplyTypeID:      &q.ReplyTypeID,
		CategoryOrder:    o.Category,
		SubcategoryOrder: o.Subcategory,
		QuestionOrder:    o.Question,
	}
	if labels.Subcategory != "" {
		sub := labels.Subcategory
		out.Subcategory = &sub
	}

	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		if err := tx.QueryRow(ctx, insertQ, q.Question, q.Description, labels.Category, labels.Subcategory,
			q.CategoryID, q.SubcategoryID, q.Weight, q.Required, q.ReplyTypeID).Scan(&out.ID); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		if err := tx.QueryRow(ctx, linkQ, evaluationID, out.ID, o.Category, o.Subcategory, o.Question).Scan(&out.LinkID); err != nil {
			return fmt.Errorf("link question: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateQuestion edits the content of a question linked to the evaluation.
func (r *QuestionRepository) UpdateQuestion(ctx context.Context, evaluationID, questionID int64, p domain.QuestionPatch) error {
	const q = `
UPDATE questions_model q
SET question      = COALESCE($3, q.question),
    description   = CASE WHEN $4::text IS NULL THEN q.description ELSE NULLIF($4::text, '') END,
    reply_type_id = COALESCE($5, q.reply_type_id),
    weight        = COALESCE($6, q.weight),
    required      = COALESCE($7, q.required)
WHERE q.id = $2
  AND EXISTS (SELECT 1 FROM evaluations_questions_model eq WHERE eq.question_id = q.id AND eq.evaluation_id = $1)`

	var affected int64
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		tag, err := tx.Exec(ctx, q, evaluationID, questionID, p.Question, p.Description, p.ReplyTypeID, p.Weight, p.Required)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RemoveQuestion unlinks the question from the evaluation and deletes it.
func (r *QuestionRepository) RemoveQuestion(ctx context.Context, evaluationID, questionID int64) error {
	err := db.From(ctx, r.fallback).InTx(ctx, func(tx db.Querier) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM evaluations_questions_model WHERE evaluation_id = $1 AND question_id = $2`,
			evaluationID, questionID)
		if err != nil {
			return fmt.Errorf("unlink question: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM questions_model WHERE id = $1`, questionID); err != nil {
			return fmt.Errorf("delete question: %w", err)
		}
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("remove question: %w", err)
	}
	return nil
}
