package service

import (
	"context"
	"time"

	"github.com/ekip-platform/ekip-api/internal/allocations/domain"
	"github.com/ekip-platform/ekip-api/internal/allocations/timeline"
	"github.com/ekip-platform/ekip-api/internal/logging"
)

// lookbackMonths bounds how far back assignments are loaded.
const lookbackMonths = 18

type AssignmentSource interface {
	Filtered(ctx context.Context, f domain.Filter) ([]domain.Assignment, error)
	DistinctProjects(ctx context.Context) ([]domain.Project, error)
}

type EventsQuery struct {
	ConsultantIDs      []string
	ProjectNames       []string
	Status             domain.StatusFilter
	Grouped            bool
	MaxGapBusinessDays int
}

// AllocationService builds the resource timeline.
type AllocationService struct {
	repo AssignmentSource
	now  func() time.Time
}

func NewAllocationService(repo AssignmentSource) *AllocationService {
	return &AllocationService{repo: repo, now: time.Now}
}

func (s *AllocationService) Events(ctx context.Context, q EventsQuery) ([]domain.Event, error) {
	assignments, err := s.repo.Filtered(ctx, domain.Filter{
		ConsultantIDs: q.ConsultantIDs,
		ProjectNames:  q.ProjectNames,
		Status:        q.Status,
		StartDate:     s.now().AddDate(0, -lookbackMonths, 0),
	})
	if err != nil {
		return nil, err
	}

	events := timeline.BuildEvents(assignments, domain.Options{
		Grouped:            q.Grouped,
		Status:             q.Status,
		MaxGapBusinessDays: q.MaxGapBusinessDays,
	})

	logging.Op(ctx, "allocations.events").
		WithField("assignments", len(assignments)).
		WithField("events", len(events)).
		WithField("grouped", q.Grouped).
		Debug("built timeline")
	return events, nil
}

func (s *AllocationService) Projects(ctx context.Context) ([]domain.Project, error) {
	return s.repo.DistinctProjects(ctx)
}
