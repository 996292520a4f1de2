package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domains "github.com/ekip-platform/ekip-api/internal/domains/domain"
	"github.com/ekip-platform/ekip-api/internal/projects/domain"
	"github.com/ekip-platform/ekip-api/internal/storage/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	upserted  []domain.PhaseProgress
	upsertErr error
}

func (f *fakeRepo) Projects(ctx context.Context) ([]domain.Project, error) {
	return []domain.Project{{ID: 1, Name: "Portal RH"}}, nil
}

func (f *fakeRepo) ProjectExists(ctx context.Context, id int64) (bool, error) {
	return id == 1, nil
}

func (f *fakeRepo) Upsert(ctx context.Context, rows []domain.PhaseProgress) (int, int, error) {
	if f.upsertErr != nil {
		return 0, 0, f.upsertErr
	}
	f.upserted = append(f.upserted, rows...)
	return len(rows) - 1, 1, nil
}

type phases struct{}

func (phases) ByType(ctx context.Context, t domains.Type) ([]domains.Domain, error) {
	return []domains.Domain{{ID: 10, Value: "Levantamento"}, {ID: 11, Value: "Desenvolvimento"}}, nil
}

const goodCSV = "Projeto;Fase;Progresso;Progresso esperado;Ordem;Semana\n" +
	"Portal RH;Levantamento;100;100;1;3\n" +
	"Portal RH;Desenvolvimento;40;50;2;3\n" +
	"Portal RH;Testes;0;10;3;3\n"

func newService(repo *fakeRepo) (*ImportService, *objectstore.MemoryStore) {
	store := objectstore.NewMemoryStore()
	svc := NewImportService(store, repo, phases{})
	svc.now = func() time.Time { return time.UnixMilli(1718000000000) }
	return svc, store
}

func TestUpload(t *testing.T) {
	repo := &fakeRepo{}
	svc, store := newService(repo)

	rep, err := svc.Upload(context.Background(), 1, 3, "progresso.CSV", int64(len(goodCSV)), strings.NewReader(goodCSV))
	require.NoError(t, err)

	assert.Equal(t, "project_1_week_3_1718000000000.csv", rep.File)
	assert.Equal(t, 3, rep.ParsedRows)
	assert.Equal(t, 2, rep.ValidRows)
	assert.Equal(t, 2, rep.InsertedOrUpdated)
	assert.Equal(t, 1, rep.Inserted)
	assert.Equal(t, 1, rep.Updated)
	assert.Equal(t, ";", rep.DetectedDelimiter)
	assert.True(t, rep.FileDeleted)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, 4, rep.Errors[0].Row)
	assert.False(t, store.Has(rep.File))
	assert.Len(t, repo.upserted, 2)
}

func TestUpload_Rejects(t *testing.T) {
	svc, _ := newService(&fakeRepo{})
	ctx := context.Background()

	_, err := svc.Upload(ctx, 1, 3, "progress.xlsx", 10, strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrNotCSV)

	_, err = svc.Upload(ctx, 1, 3, "progress.csv", domain.MaxUploadBytes+1, strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrTooLarge)

	_, err = svc.Upload(ctx, 1, 0, "progress.csv", 10, strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidWeek)

	_, err = svc.Upload(ctx, 2, 3, "progress.csv", 10, strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImport_KeepsObjectWhenAsked(t *testing.T) {
	svc, store := newService(&fakeRepo{})
	store.PutAt("manual/week3.csv", []byte(goodCSV), time.Now())

	rep, err := svc.Import(context.Background(), "manual/week3.csv", false)
	require.NoError(t, err)
	assert.False(t, rep.FileDeleted)
	assert.True(t, store.Has("manual/week3.csv"))
}

func TestImport_NoValidRows(t *testing.T) {
	svc, store := newService(&fakeRepo{})
	store.PutAt("bad.csv", []byte("Projeto,Fase,Progresso,Progresso esperado,Ordem,Semana\nOutro,Levantamento,1,1,1,1\n"), time.Now())

	rep, err := svc.Import(context.Background(), "bad.csv", true)
	assert.ErrorIs(t, err, domain.ErrNoValidRows)
	require.NotNil(t, rep)
	assert.Equal(t, 1, rep.ErrorsCount)
	assert.True(t, rep.FileDeleted)
}

func TestImport_KeepsObjectOnWriteFailure(t *testing.T) {
	boom := errors.New("db down")
	svc, store := newService(&fakeRepo{upsertErr: boom})
	store.PutAt("week.csv", []byte(goodCSV), time.Now())

	_, err := svc.Import(context.Background(), "week.csv", true)
	assert.ErrorIs(t, err, boom)
	assert.True(t, store.Has("week.csv"))
}

func TestImport_PathAndMissingObject(t *testing.T) {
	svc, _ := newService(&fakeRepo{})
	ctx := context.Background()

	_, err := svc.Import(ctx, "../etc/passwd", true)
	assert.ErrorIs(t, err, domain.ErrInvalidPath)

	_, err = svc.Import(ctx, "missing.csv", true)
	assert.ErrorIs(t, err, objectstore.ErrObjectNotFound)
}
