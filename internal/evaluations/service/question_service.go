package service

import (
	"context"
	"fmt"
	"strings"

	domains "github.com/ekip-platform/ekip-api/internal/domains/domain"
	"github.com/ekip-platform/ekip-api/internal/evaluations/domain"
	"github.com/ekip-platform/ekip-api/internal/evaluations/ordering"
)

type Store interface {
	ListLinks(ctx context.Context, evaluationID int64) ([]domain.QuestionLink, error)
	ApplyPlan(ctx context.Context, evaluationID int64, plan domain.Plan) error
	Reorder(ctx context.Context, evaluationID int64, planner func([]domain.QuestionLink) (domain.Plan, error)) error
	AddQuestion(ctx context.Context, evaluationID int64, q domain.NewQuestion, labels domain.QuestionLabels, o domain.Orders) (*domain.QuestionLink, error)
	UpdateQuestion(ctx context.Context, evaluationID, questionID int64, p domain.QuestionPatch) error
	RemoveQuestion(ctx context.Context, evaluationID, questionID int64) error
}

// Taxonomy resolves category, subcategory and reply type domains.
type Taxonomy interface {
	ByType(ctx context.Context, t domains.Type) ([]domains.Domain, error)
	Labels(ctx context.Context, ids []int64) (map[int64]string, error)
}

type QuestionService struct {
	store    Store
	taxonomy Taxonomy
}

func NewQuestionService(store Store, taxonomy Taxonomy) *QuestionService {
	return &QuestionService{store: store, taxonomy: taxonomy}
}

// Questions returns the evaluation's questions in display order.
func (s *QuestionService) Questions(ctx context.Context, evaluationID int64) ([]domain.QuestionLink, error) {
	links, err := s.store.ListLinks(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	return ordering.SortLinks(links), nil
}

// AddQuestion creates a question at the end of its category and
// subcategory.
func (s *QuestionService) AddQuestion(ctx context.Context, evaluationID int64, q domain.NewQuestion) (*domain.QuestionLink, error) {
	q.Question = strings.TrimSpace(q.Question)
	q.Description = strings.TrimSpace(q.Description)
	if q.Question == "" {
		return nil, domain.ErrInvalidQuestion
	}
	if q.SubcategoryID != nil && *q.SubcategoryID <= 0 {
		q.SubcategoryID = nil
	}
	if err := s.checkWeight(ctx, q.ReplyTypeID, q.Weight); err != nil {
		return nil, err
	}

	ids := []int64{q.CategoryID}
	if q.SubcategoryID != nil {
		ids = append(ids, *q.SubcategoryID)
	}
	names, err := s.taxonomy.Labels(ctx, ids)
	if err != nil {
		return nil, err
	}
	labels := domain.QuestionLabels{Category: names[q.CategoryID]}
	if q.SubcategoryID != nil {
		labels.Subcategory = names[*q.SubcategoryID]
	}

	links, err := s.store.ListLinks(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	return s.store.AddQuestion(ctx, evaluationID, q, labels, ordering.NextOrders(links, q.CategoryID, q.SubcategoryID))
}

// UpdateQuestion edits a question's content, validating the resulting
// weight against the resulting reply type.
func (s *QuestionService) UpdateQuestion(ctx context.Context, evaluationID, questionID int64, p domain.QuestionPatch) error {
	if p.Question != nil {
		v := strings.TrimSpace(*p.Question)
		if v == "" {
			return domain.ErrInvalidQuestion
		}
		p.Question = &v
	}
	if p.Description != nil {
		v := strings.TrimSpace(*p.Description)
		p.Description = &v
	}

	if p.ReplyTypeID != nil || p.Weight != nil {
		links, err := s.store.ListLinks(ctx, evaluationID)
		if err != nil {
			return err
		}
		cur, ok := findQuestion(links, questionID)
		if !ok {
			return domain.ErrNotFound
		}
		replyType, weight := int64(0), cur.Weight
		if cur.ReplyTypeID != nil {
			replyType = *cur.ReplyTypeID
		}
		if p.ReplyTypeID != nil {
			replyType = *p.ReplyTypeID
		}
		if p.Weight != nil {
			weight = *p.Weight
		}
		if err := s.checkWeight(ctx, replyType, weight); err != nil {
			return err
		}
	}
	return s.store.UpdateQuestion(ctx, evaluationID, questionID, p)
}

func (s *QuestionService) RemoveQuestion(ctx context.Context, evaluationID, questionID int64) error {
	return s.store.RemoveQuestion(ctx, evaluationID, questionID)
}

// ReorderCategories drops category active onto category over.
func (s *QuestionService) ReorderCategories(ctx context.Context, evaluationID, active, over int64) ([]domain.QuestionLink, error) {
	return s.reorder(ctx, evaluationID, func(links []domain.QuestionLink) (domain.Plan, error) {
		return ordering.MoveCategory(links, active, over), nil
	})
}

// ReorderSubcategories drops subcategory active onto subcategory over inside
// categoryID.
func (s *QuestionService) ReorderSubcategories(ctx context.Context, evaluationID, categoryID, active, over int64) ([]domain.QuestionLink, error) {
	return s.reorder(ctx, evaluationID, func(links []domain.QuestionLink) (domain.Plan, error) {
		return ordering.MoveSubcategory(links, categoryID, active, over), nil
	})
}

// MoveQuestion drops question active onto question over, possibly in
// another category or subcategory.
func (s *QuestionService) MoveQuestion(ctx context.Context, evaluationID, active, over int64) ([]domain.QuestionLink, error) {
	return s.reorder(ctx, evaluationID, func(links []domain.QuestionLink) (domain.Plan, error) {
		target, ok := findQuestion(links, over)
		if !ok {
			return domain.Plan{}, nil
		}
		ids := []int64{target.CategoryID}
		if target.SubcategoryID != nil {
			ids = append(ids, *target.SubcategoryID)
		}
		labels, err := s.taxonomy.Labels(ctx, ids)
		if err != nil {
			return domain.Plan{}, err
		}
		return ordering.MoveQuestion(links, labels, active, over), nil
	})
}

// ManualReorder applies a client-computed set of orders in one transaction.
func (s *QuestionService) ManualReorder(ctx context.Context, evaluationID int64, items []domain.ManualReorderItem) ([]domain.QuestionLink, error) {
	if err := s.store.ApplyPlan(ctx, evaluationID, ordering.ManualPlan(items)); err != nil {
		return nil, err
	}
	return s.Questions(ctx, evaluationID)
}

// reorder plans against the links read under the same lock that applies
// the plan.
func (s *QuestionService) reorder(ctx context.Context, evaluationID int64, planner func([]domain.QuestionLink) (domain.Plan, error)) ([]domain.QuestionLink, error) {
	if err := s.store.Reorder(ctx, evaluationID, planner); err != nil {
		return nil, err
	}
	return s.Questions(ctx, evaluationID)
}

// checkWeight enforces the reply type rule: free-text answers carry no
// weight, every other type needs a weight of at least 1.
func (s *QuestionService) checkWeight(ctx context.Context, replyTypeID int64, weight int) error {
	types, err := s.taxonomy.ByType(ctx, domains.TypeEvaluationReplyType)
	if err != nil {
		return err
	}
	for _, t := range types {
		if t.ID != replyTypeID {
			continue
		}
		if IsTextReply(t.Value) {
			if weight != 0 {
				return fmt.Errorf("%w: text answers must have weight 0", domain.ErrInvalidWeight)
			}
			return nil
		}
		if weight < 1 {
			return fmt.Errorf("%w: weight must be at least 1", domain.ErrInvalidWeight)
		}
		return nil
	}
	return domain.ErrUnknownReplyType
}

// IsTextReply reports whether a reply type value denotes a free-text answer.
func IsTextReply(value string) bool {
	return strings.Contains(strings.ToLower(value), "texto")
}

func findQuestion(links []domain.QuestionLink, id int64) (domain.QuestionLink, bool) {
	for _, l := range links {
		if l.ID == id {
			return l, true
		}
	}
	return domain.QuestionLink{}, false
}
