package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	domains "github.com/ekip-platform/ekip-api/internal/domains/domain"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/projects/domain"
	"github.com/ekip-platform/ekip-api/internal/projects/importer"
	"github.com/ekip-platform/ekip-api/internal/storage/objectstore"
	"github.com/sirupsen/logrus"
)

type Repository interface {
	Projects(ctx context.Context) ([]domain.Project, error)
	ProjectExists(ctx context.Context, id int64) (bool, error)
	Upsert(ctx context.Context, rows []domain.PhaseProgress) (inserted, updated int, err error)
}

// PhaseSource lists the active project_phase domains.
type PhaseSource interface {
	ByType(ctx context.Context, t domains.Type) ([]domains.Domain, error)
}

// ImportService runs the weekly progress import: CSV objects are read from
// storage, validated and upserted into projects_phase.
type ImportService struct {
	store  objectstore.Store
	repo   Repository
	phases PhaseSource
	now    func() time.Time
}

func NewImportService(store objectstore.Store, repo Repository, phases PhaseSource) *ImportService {
	return &ImportService{store: store, repo: repo, phases: phases, now: time.Now}
}

// Upload stores a CSV for the project and week and imports it right away,
// deleting the object afterwards.
func (s *ImportService) Upload(ctx context.Context, projectID int64, week int, filename string, size int64, body io.Reader) (*domain.ImportReport, error) {
	if !strings.EqualFold(path.Ext(filename), ".csv") {
		return nil, domain.ErrNotCSV
	}
	if size > domain.MaxUploadBytes {
		return nil, domain.ErrTooLarge
	}
	if week <= 0 {
		return nil, domain.ErrInvalidWeek
	}
	ok, err := s.repo.ProjectExists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	key := fmt.Sprintf("project_%d_week_%d_%d.csv", projectID, week, s.now().UnixMilli())
	if err := s.store.Put(ctx, key, io.LimitReader(body, domain.MaxUploadBytes), size, "text/csv"); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	return s.Import(ctx, key, true)
}

// Import processes the object at key. Rows that fail validation are
// reported and skipped. With deleteAfter the object is removed once the
// file has been processed; it is kept when the database write fails so the
// import can be retried.
func (s *ImportService) Import(ctx context.Context, key string, deleteAfter bool) (*domain.ImportReport, error) {
	start := s.now()
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return nil, domain.ErrInvalidPath
	}

	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	parsed, err := importer.Parse(rc)
	_ = rc.Close()
	if err != nil {
		s.cleanup(ctx, key, deleteAfter)
		return nil, err
	}

	projects, err := s.repo.Projects(ctx)
	if err != nil {
		return nil, err
	}
	phases, err := s.phases.ByType(ctx, domains.TypeProjectPhase)
	if err != nil {
		return nil, err
	}
	records, rowErrs := importer.Validate(parsed.Rows, importer.NewCatalog(projects, phases))

	rep := &domain.ImportReport{
		File:              key,
		ParsedRows:        len(parsed.Rows),
		ValidRows:         len(records),
		DetectedDelimiter: string(parsed.Delimiter),
		Encoding:          parsed.Encoding,
		ErrorsCount:       len(rowErrs),
		Errors:            rowErrs,
	}
	if rep.Errors == nil {
		rep.Errors = []domain.RowError{}
	}

	if len(records) == 0 {
		rep.FileDeleted = s.cleanup(ctx, key, deleteAfter)
		rep.Ms = s.now().Sub(start).Milliseconds()
		return rep, domain.ErrNoValidRows
	}

	rep.Inserted, rep.Updated, err = s.repo.Upsert(ctx, records)
	if err != nil {
		return nil, err
	}
	rep.InsertedOrUpdated = rep.Inserted + rep.Updated
	rep.FileDeleted = s.cleanup(ctx, key, deleteAfter)
	rep.Ms = s.now().Sub(start).Milliseconds()

	logging.Op(ctx, "projects.import").WithFields(logrus.Fields{
		"file":     key,
		"parsed":   rep.ParsedRows,
		"valid":    rep.ValidRows,
		"inserted": rep.Inserted,
		"updated":  rep.Updated,
		"errors":   rep.ErrorsCount,
	}).Info("progress import finished")
	return rep, nil
}

func (s *ImportService) cleanup(ctx context.Context, key string, deleteAfter bool) bool {
	if !deleteAfter {
		return false
	}
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, objectstore.ErrObjectNotFound) {
		logging.Op(ctx, "projects.import").WithError(err).WithField("file", key).Warn("delete imported object")
		return false
	}
	return true
}
