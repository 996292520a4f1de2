package service

import (
	"context"
	"errors"
	"testing"

	domains "github.com/ekip-platform/ekip-api/internal/domains/domain"
	"github.com/ekip-platform/ekip-api/internal/evaluations/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	links    []domain.QuestionLink
	plans    []domain.Plan
	added    *domain.NewQuestion
	labels   domain.QuestionLabels
	orders   domain.Orders
	patched  *domain.QuestionPatch
	applyErr error
	reorders int
	locked   []domain.QuestionLink
}

func (f *fakeStore) ListLinks(ctx context.Context, evaluationID int64) ([]domain.QuestionLink, error) {
	return f.links, nil
}

func (f *fakeStore) ApplyPlan(ctx context.Context, evaluationID int64, plan domain.Plan) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.plans = append(f.plans, plan)
	return nil
}

func (f *fakeStore) Reorder(ctx context.Context, evaluationID int64, planner func([]domain.QuestionLink) (domain.Plan, error)) error {
	f.reorders++
	links := f.links
	if f.locked != nil {
		links = f.locked
	}
	plan, err := planner(links)
	if err != nil {
		return err
	}
	if plan.Empty() {
		return nil
	}
	return f.ApplyPlan(ctx, evaluationID, plan)
}

func (f *fakeStore) AddQuestion(ctx context.Context, evaluationID int64, q domain.NewQuestion, labels domain.QuestionLabels, o domain.Orders) (*domain.QuestionLink, error) {
	f.added, f.labels, f.orders = &q, labels, o
	return &domain.QuestionLink{ID: 99, LinkID: 199, Question: q.Question}, nil
}

func (f *fakeStore) UpdateQuestion(ctx context.Context, evaluationID, questionID int64, p domain.QuestionPatch) error {
	f.patched = &p
	return nil
}

func (f *fakeStore) RemoveQuestion(ctx context.Context, evaluationID, questionID int64) error {
	return domain.ErrNotFound
}

type fakeTaxonomy struct {
	replyTypes []domains.Domain
	labels     map[int64]string
}

func (f fakeTaxonomy) ByType(ctx context.Context, t domains.Type) ([]domains.Domain, error) {
	if t != domains.TypeEvaluationReplyType {
		return nil, nil
	}
	return f.replyTypes, nil
}

func (f fakeTaxonomy) Labels(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := map[int64]string{}
	for _, id := range ids {
		if v, ok := f.labels[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

const (
	replyScale int64 = 1
	replyText  int64 = 2
)

func taxonomy() fakeTaxonomy {
	return fakeTaxonomy{
		replyTypes: []domains.Domain{
			{ID: replyScale, Type: domains.TypeEvaluationReplyType, Value: "Escala 1 a 5"},
			{ID: replyText, Type: domains.TypeEvaluationReplyType, Value: "Texto livre"},
		},
		labels: map[int64]string{10: "Técnica", 20: "Comportamental", 5: "Backend"},
	}
}

func ptr[T any](v T) *T { return &v }

func sampleLinks() []domain.QuestionLink {
	return []domain.QuestionLink{
		{ID: 3, LinkID: 103, CategoryID: 20, CategoryOrder: 1, QuestionOrder: 0, Weight: 2, ReplyTypeID: ptr(replyScale)},
		{ID: 1, LinkID: 101, CategoryID: 10, CategoryOrder: 0, QuestionOrder: 0, Weight: 1, ReplyTypeID: ptr(replyScale)},
		{ID: 2, LinkID: 102, CategoryID: 10, CategoryOrder: 0, QuestionOrder: 1, Weight: 0, ReplyTypeID: ptr(replyText)},
	}
}

func TestQuestions_Sorted(t *testing.T) {
	svc := NewQuestionService(&fakeStore{links: sampleLinks()}, taxonomy())

	got, err := svc.Questions(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestAddQuestion(t *testing.T) {
	store := &fakeStore{links: sampleLinks()}
	svc := NewQuestionService(store, taxonomy())

	_, err := svc.AddQuestion(context.Background(), 7, domain.NewQuestion{
		Question:      "  Domina testes?  ",
		CategoryID:    10,
		SubcategoryID: ptr(int64(5)),
		ReplyTypeID:   replyScale,
		Weight:        3,
	})
	require.NoError(t, err)
	require.NotNil(t, store.added)
	assert.Equal(t, "Domina testes?", store.added.Question)
	assert.Equal(t, domain.QuestionLabels{Category: "Técnica", Subcategory: "Backend"}, store.labels)
	assert.Equal(t, domain.Orders{Category: 2, Subcategory: 0, Question: 2}, store.orders)
}

func TestAddQuestion_Validation(t *testing.T) {
	cases := []struct {
		name string
		in   domain.NewQuestion
		want error
	}{
		{"blank question", domain.NewQuestion{Question: "  ", CategoryID: 10, ReplyTypeID: replyScale, Weight: 1}, domain.ErrInvalidQuestion},
		{"text with weight", domain.NewQuestion{Question: "q", CategoryID: 10, ReplyTypeID: replyText, Weight: 1}, domain.ErrInvalidWeight},
		{"scale without weight", domain.NewQuestion{Question: "q", CategoryID: 10, ReplyTypeID: replyScale, Weight: 0}, domain.ErrInvalidWeight},
		{"unknown reply type", domain.NewQuestion{Question: "q", CategoryID: 10, ReplyTypeID: 42, Weight: 1}, domain.ErrUnknownReplyType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			svc := NewQuestionService(store, taxonomy())
			_, err := svc.AddQuestion(context.Background(), 7, tc.in)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, store.added)
		})
	}
}

func TestAddQuestion_TextWithZeroWeight(t *testing.T) {
	store := &fakeStore{}
	svc := NewQuestionService(store, taxonomy())

	_, err := svc.AddQuestion(context.Background(), 7, domain.NewQuestion{Question: "Comentários", CategoryID: 20, ReplyTypeID: replyText})
	require.NoError(t, err)
	assert.Equal(t, domain.Orders{}, store.orders)
	assert.Equal(t, "Comportamental", store.labels.Category)
}

func TestUpdateQuestion_ChecksResultingWeight(t *testing.T) {
	store := &fakeStore{links: sampleLinks()}
	svc := NewQuestionService(store, taxonomy())
	ctx := context.Background()

	// question 2 is a text question with weight 0
	err := svc.UpdateQuestion(ctx, 7, 2, domain.QuestionPatch{Weight: ptr(2)})
	assert.ErrorIs(t, err, domain.ErrInvalidWeight)

	err = svc.UpdateQuestion(ctx, 7, 2, domain.QuestionPatch{ReplyTypeID: ptr(replyScale), Weight: ptr(2)})
	require.NoError(t, err)
	require.NotNil(t, store.patched)
	assert.Equal(t, 2, *store.patched.Weight)

	err = svc.UpdateQuestion(ctx, 7, 42, domain.QuestionPatch{Weight: ptr(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.UpdateQuestion(ctx, 7, 1, domain.QuestionPatch{Question: ptr(" ")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuestion)
}

func TestReorderCategories_AppliesPlan(t *testing.T) {
	store := &fakeStore{links: sampleLinks()}
	svc := NewQuestionService(store, taxonomy())

	_, err := svc.ReorderCategories(context.Background(), 7, 20, 10)
	require.NoError(t, err)
	require.Len(t, store.plans, 1)
	assert.Len(t, store.plans[0].Updates, 3)
}

func TestReorder_EmptyPlanSkipsWrite(t *testing.T) {
	store := &fakeStore{links: sampleLinks()}
	svc := NewQuestionService(store, taxonomy())

	got, err := svc.MoveQuestion(context.Background(), 7, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, store.plans)
	assert.Len(t, got, 3)
}

func TestReorder_PlansAgainstLockedRows(t *testing.T) {
	// question 1 was deleted between the list and the drop
	all := sampleLinks()
	locked := []domain.QuestionLink{all[0], all[2]}
	store := &fakeStore{links: sampleLinks(), locked: locked}
	svc := NewQuestionService(store, taxonomy())

	_, err := svc.MoveQuestion(context.Background(), 7, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, store.reorders)
	assert.Empty(t, store.plans)
}

func TestMoveQuestion_UsesDestinationLabels(t *testing.T) {
	store := &fakeStore{links: sampleLinks()}
	svc := NewQuestionService(store, taxonomy())

	_, err := svc.MoveQuestion(context.Background(), 7, 1, 3)
	require.NoError(t, err)
	require.Len(t, store.plans, 1)
	require.Len(t, store.plans[0].Moves, 1)
	assert.Equal(t, "Comportamental", *store.plans[0].Moves[0].Category)
}

func TestReorder_PropagatesApplyError(t *testing.T) {
	boom := errors.New("boom")
	store := &fakeStore{links: sampleLinks(), applyErr: boom}
	svc := NewQuestionService(store, taxonomy())

	_, err := svc.ReorderCategories(context.Background(), 7, 20, 10)
	assert.ErrorIs(t, err, boom)
}

func TestIsTextReply(t *testing.T) {
	assert.True(t, IsTextReply("Texto"))
	assert.True(t, IsTextReply("Resposta em TEXTO livre"))
	assert.False(t, IsTextReply("Escala"))
}
