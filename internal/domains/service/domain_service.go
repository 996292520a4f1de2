package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ekip-platform/ekip-api/internal/domains/domain"
)

type Repository interface {
	List(ctx context.Context, status domain.Status) ([]domain.Domain, error)
	ByType(ctx context.Context, t domain.Type) ([]domain.Domain, error)
	ByIDs(ctx context.Context, ids []int64) ([]domain.Domain, error)
	FindByTypeTag(ctx context.Context, t domain.Type, tag string, excludeID int64) (*domain.Domain, error)
	Create(ctx context.Context, d domain.Domain) (*domain.Domain, error)
	Update(ctx context.Context, id int64, d domain.Domain) (*domain.Domain, error)
}

type DomainService struct {
	repo Repository
}

func NewDomainService(repo Repository) *DomainService {
	return &DomainService{repo: repo}
}

// List returns domains ordered by type then value, each with its parent
// attached when the parent is part of the same result.
func (s *DomainService) List(ctx context.Context, status domain.Status) ([]domain.Domain, error) {
	items, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Domain, len(items))
	for _, d := range items {
		byID[d.ID] = d
	}
	for i := range items {
		if items[i].ParentID == nil {
			continue
		}
		if p, ok := byID[*items[i].ParentID]; ok {
			p.Parent = nil
			items[i].Parent = &p
		}
	}
	return items, nil
}

// Parents lists active domains as "type - value" options.
func (s *DomainService) Parents(ctx context.Context) ([]domain.Option, error) {
	items, err := s.repo.List(ctx, domain.StatusActive)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Option, 0, len(items))
	for _, d := range items {
		out = append(out, domain.Option{Value: d.ID, Label: fmt.Sprintf("%s - %s", d.Type, d.Value)})
	}
	return out, nil
}

func (s *DomainService) ByType(ctx context.Context, t domain.Type) ([]domain.Domain, error) {
	return s.repo.ByType(ctx, t)
}

// Children returns the active domains of type t under parentID.
func (s *DomainService) Children(ctx context.Context, t domain.Type, parentID int64) ([]domain.Domain, error) {
	items, err := s.repo.ByType(ctx, t)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Domain, 0, len(items))
	for _, d := range items {
		if d.ParentID != nil && *d.ParentID == parentID {
			out = append(out, d)
		}
	}
	return out, nil
}

// Active returns the active domains among ids, ordered by value.
func (s *DomainService) Active(ctx context.Context, ids []int64) ([]domain.Domain, error) {
	items, err := s.repo.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Domain, 0, len(items))
	for _, d := range items {
		if d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

// Labels maps domain ids to their values.
func (s *DomainService) Labels(ctx context.Context, ids []int64) (map[int64]string, error) {
	items, err := s.repo.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(items))
	for _, d := range items {
		out[d.ID] = d.Value
	}
	return out, nil
}

// CheckDuplicate returns the domain already using (type, tag), if any.
func (s *DomainService) CheckDuplicate(ctx context.Context, t, tag string, excludeID int64) (*domain.Domain, error) {
	t, tag = strings.TrimSpace(t), strings.TrimSpace(tag)
	if t == "" || tag == "" {
		return nil, fmt.Errorf("%w: type and tag are required", domain.ErrInvalid)
	}
	return s.repo.FindByTypeTag(ctx, domain.Type(t), tag, excludeID)
}

func (s *DomainService) Create(ctx context.Context, in domain.Input) (*domain.Domain, error) {
	d, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, d)
}

func (s *DomainService) Update(ctx context.Context, id int64, in domain.Input) (*domain.Domain, error) {
	d, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, d)
}
