package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/timeentries/domain"
)

type Repository interface {
	Consultants(ctx context.Context) ([]domain.Consultant, error)
	Report(ctx context.Context, q domain.ReportQuery) ([]domain.ReportRow, error)
}

type ReportRequest struct {
	StartDate string
	EndDate   string
	UserIDs   []string
	Status    string
}

type TimesheetService struct {
	repo Repository
}

func NewTimesheetService(repo Repository) *TimesheetService {
	return &TimesheetService{repo: repo}
}

func (s *TimesheetService) Consultants(ctx context.Context) ([]domain.Consultant, error) {
	return s.repo.Consultants(ctx)
}

// Report validates the period and loads the balance per consultant. Errors
// wrapping domain.ErrInvalid describe a bad request.
func (s *TimesheetService) Report(ctx context.Context, req ReportRequest) ([]domain.ReportRow, error) {
	if strings.TrimSpace(req.StartDate) == "" || strings.TrimSpace(req.EndDate) == "" {
		return nil, fmt.Errorf("%w: startDate and endDate are required", domain.ErrInvalid)
	}
	start, err := time.Parse(domain.DateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return nil, fmt.Errorf("%w: startDate must be YYYY-MM-DD", domain.ErrInvalid)
	}
	end, err := time.Parse(domain.DateLayout, strings.TrimSpace(req.EndDate))
	if err != nil {
		return nil, fmt.Errorf("%w: endDate must be YYYY-MM-DD", domain.ErrInvalid)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate is before startDate", domain.ErrInvalid)
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalid, err)
	}

	rows, err := s.repo.Report(ctx, domain.ReportQuery{
		Start:   start,
		End:     end,
		UserIDs: req.UserIDs,
		Status:  status,
	})
	if err != nil {
		return nil, err
	}

	logging.Op(ctx, "timeentries.report").
		WithField("start", req.StartDate).
		WithField("end", req.EndDate).
		WithField("consultants", len(rows)).
		Debug("built report")
	return rows, nil
}
