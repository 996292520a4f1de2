package service

import (
	"context"
	"testing"

	"github.com/ekip-platform/ekip-api/internal/domains/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	items   []domain.Domain
	created []domain.Domain
	updated map[int64]domain.Domain
}

func (m *memRepo) List(ctx context.Context, status domain.Status) ([]domain.Domain, error) {
	var out []domain.Domain
	for _, d := range m.items {
		if status == domain.StatusActive && !d.IsActive {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *memRepo) ByType(ctx context.Context, t domain.Type) ([]domain.Domain, error) {
	var out []domain.Domain
	for _, d := range m.items {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memRepo) ByIDs(ctx context.Context, ids []int64) ([]domain.Domain, error) {
	var out []domain.Domain
	for _, d := range m.items {
		for _, id := range ids {
			if d.ID == id {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (m *memRepo) FindByTypeTag(ctx context.Context, t domain.Type, tag string, excludeID int64) (*domain.Domain, error) {
	for _, d := range m.items {
		if d.Type == t && d.Tag == tag && d.ID != excludeID {
			d := d
			return &d, nil
		}
	}
	return nil, nil
}

func (m *memRepo) Create(ctx context.Context, d domain.Domain) (*domain.Domain, error) {
	d.ID = int64(100 + len(m.created))
	m.created = append(m.created, d)
	return &d, nil
}

func (m *memRepo) Update(ctx context.Context, id int64, d domain.Domain) (*domain.Domain, error) {
	if _, ok := m.updated[id]; !ok {
		return nil, domain.ErrNotFound
	}
	d.ID = id
	m.updated[id] = d
	return &d, nil
}

func ptr[T any](v T) *T { return &v }

func seed() *memRepo {
	return &memRepo{
		items: []domain.Domain{
			{ID: 1, Type: domain.TypeEvaluationCategory, Value: "Técnica", Tag: "tec", IsActive: true},
			{ID: 2, Type: domain.TypeEvaluationSubcategory, Value: "Go", Tag: "go", IsActive: true, ParentID: ptr(int64(1))},
			{ID: 3, Type: domain.TypeEvaluationSubcategory, Value: "Orphan", Tag: "orphan", IsActive: false, ParentID: ptr(int64(99))},
		},
		updated: map[int64]domain.Domain{1: {}},
	}
}

func TestDomainService_ListAttachesParent(t *testing.T) {
	svc := NewDomainService(seed())
	items, err := svc.List(context.Background(), domain.StatusAll)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Nil(t, items[0].Parent)
	require.NotNil(t, items[1].Parent)
	assert.Equal(t, "Técnica", items[1].Parent.Value)
	assert.Nil(t, items[2].Parent)
}

func TestDomainService_Parents(t *testing.T) {
	svc := NewDomainService(seed())
	opts, err := svc.Parents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Option{
		{Value: 1, Label: "evaluation_category - Técnica"},
		{Value: 2, Label: "evaluation_subcategory - Go"},
	}, opts)
}

func TestDomainService_Labels(t *testing.T) {
	svc := NewDomainService(seed())
	labels, err := svc.Labels(context.Background(), []int64{1, 2, 42})
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{1: "Técnica", 2: "Go"}, labels)
}

func TestDomainService_Children(t *testing.T) {
	svc := NewDomainService(seed())
	items, err := svc.Children(context.Background(), domain.TypeEvaluationSubcategory, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Go", items[0].Value)

	items, err = svc.Children(context.Background(), domain.TypeEvaluationSubcategory, 5)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDomainService_ActiveDropsInactive(t *testing.T) {
	svc := NewDomainService(seed())
	items, err := svc.Active(context.Background(), []int64{1, 3})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ID)
}

func TestDomainService_CheckDuplicate(t *testing.T) {
	svc := NewDomainService(seed())
	ctx := context.Background()

	d, err := svc.CheckDuplicate(ctx, " evaluation_category ", " tec ", 0)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, int64(1), d.ID)

	d, err = svc.CheckDuplicate(ctx, "evaluation_category", "tec", 1)
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = svc.CheckDuplicate(ctx, "", "tec", 0)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestDomainService_CreateNormalizes(t *testing.T) {
	repo := seed()
	svc := NewDomainService(repo)

	d, err := svc.Create(context.Background(), domain.Input{
		Type: " project_phase ", Value: " Discovery ", Tag: " disc ", Description: ptr("   "), ParentID: ptr(int64(0)),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TypeProjectPhase, d.Type)
	assert.Equal(t, "Discovery", d.Value)
	assert.Equal(t, "disc", d.Tag)
	assert.Nil(t, d.Description)
	assert.Nil(t, d.ParentID)
	assert.True(t, d.IsActive)

	_, err = svc.Create(context.Background(), domain.Input{Type: "x", Value: "y"})
	var fe *domain.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "tag", fe.Field)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestDomainService_Update(t *testing.T) {
	svc := NewDomainService(seed())
	ctx := context.Background()

	d, err := svc.Update(ctx, 1, domain.Input{Type: "evaluation_category", Value: "Tech", Tag: "tec", IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, d.IsActive)

	_, err = svc.Update(ctx, 7, domain.Input{Type: "evaluation_category", Value: "Tech", Tag: "tec"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
