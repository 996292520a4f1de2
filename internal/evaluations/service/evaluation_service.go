package service

import (
	"context"
	"strings"

	domains "github.com/ekip-platform/ekip-api/internal/domains/domain"
	"github.com/ekip-platform/ekip-api/internal/evaluations/domain"
)

type EvaluationStore interface {
	List(ctx context.Context) ([]domain.Evaluation, error)
	Get(ctx context.Context, id int64) (*domain.Evaluation, error)
	Create(ctx context.Context, in domain.NewEvaluation) (*domain.Evaluation, error)
	Update(ctx context.Context, id int64, p domain.EvaluationPatch) (*domain.Evaluation, error)
	ToggleStatus(ctx context.Context, id int64) (*domain.Evaluation, error)
	Delete(ctx context.Context, id int64) error
	UsedDomainIDs(ctx context.Context, id int64) ([]int64, error)
}

// Catalog serves the category, subcategory and reply type pickers.
type Catalog interface {
	ByType(ctx context.Context, t domains.Type) ([]domains.Domain, error)
	Children(ctx context.Context, t domains.Type, parentID int64) ([]domains.Domain, error)
	Active(ctx context.Context, ids []int64) ([]domains.Domain, error)
}

type EvaluationService struct {
	store   EvaluationStore
	catalog Catalog
}

func NewEvaluationService(store EvaluationStore, catalog Catalog) *EvaluationService {
	return &EvaluationService{store: store, catalog: catalog}
}

func (s *EvaluationService) List(ctx context.Context) ([]domain.Evaluation, error) {
	return s.store.List(ctx)
}

func (s *EvaluationService) Get(ctx context.Context, id int64) (*domain.Evaluation, error) {
	return s.store.Get(ctx, id)
}

func (s *EvaluationService) Create(ctx context.Context, in domain.NewEvaluation) (*domain.Evaluation, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, domain.ErrInvalidEvaluation
	}
	if in.Description != nil {
		v := strings.TrimSpace(*in.Description)
		in.Description = &v
		if v == "" {
			in.Description = nil
		}
	}
	return s.store.Create(ctx, in)
}

func (s *EvaluationService) Update(ctx context.Context, id int64, p domain.EvaluationPatch) (*domain.Evaluation, error) {
	if p.Name != nil {
		v := strings.TrimSpace(*p.Name)
		if v == "" {
			return nil, domain.ErrInvalidEvaluation
		}
		p.Name = &v
	}
	if p.Description != nil {
		v := strings.TrimSpace(*p.Description)
		p.Description = &v
	}
	return s.store.Update(ctx, id, p)
}

func (s *EvaluationService) ToggleStatus(ctx context.Context, id int64) (*domain.Evaluation, error) {
	return s.store.ToggleStatus(ctx, id)
}

func (s *EvaluationService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

func (s *EvaluationService) Categories(ctx context.Context) ([]domains.Domain, error) {
	return s.catalog.ByType(ctx, domains.TypeEvaluationCategory)
}

func (s *EvaluationService) Subcategories(ctx context.Context, categoryID int64) ([]domains.Domain, error) {
	return s.catalog.Children(ctx, domains.TypeEvaluationSubcategory, categoryID)
}

func (s *EvaluationService) ReplyTypes(ctx context.Context) ([]domains.Domain, error) {
	return s.catalog.ByType(ctx, domains.TypeEvaluationReplyType)
}

// UsedCategories returns the active categories and subcategories the
// evaluation's questions reference.
func (s *EvaluationService) UsedCategories(ctx context.Context, id int64) ([]domains.Domain, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.store.UsedDomainIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domains.Domain{}, nil
	}
	return s.catalog.Active(ctx, ids)
}
