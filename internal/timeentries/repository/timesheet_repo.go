package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ekip-platform/ekip-api/internal/timeentries/domain"
)

type TimesheetRepository struct {
	db *sql.DB
}

func NewTimesheetRepository(db *sql.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

// Consultants lists the employees who log hours, by name.
func (r *TimesheetRepository) Consultants(ctx context.Context) ([]domain.Consultant, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id, name, COALESCE(is_active, false)
FROM employees
WHERE log_hours = true
ORDER BY name ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("list consultants: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Consultant, 0, 64)
	for rows.Next() {
		var (
			c        domain.Consultant
			id, name sql.NullString
		)
		if err := rows.Scan(&id, &name, &c.IsActive); err != nil {
			return nil, err
		}
		c.UserID, c.Name = id.String, name.String
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Report calls timesheet_detail_report. A nil UserIDs selects every
// consultant.
func (r *TimesheetRepository) Report(ctx context.Context, q domain.ReportQuery) ([]domain.ReportRow, error) {
	const stmt = `
SELECT out_user_id, out_user_name,
       out_expected_hours, out_worked_hours, out_expected_hours_until_yesterday,
       out_overtime_hours_in_period, out_positive_comp_hours_in_period, out_negative_comp_hours_in_period,
       out_total_positive_comp_hours, out_total_negative_comp_hours, out_time_balance,
       out_daily_details
FROM timesheet_detail_report($1::date, $2::date, $3, $4);
`
	var ids any
	if len(q.UserIDs) > 0 {
		ids = pq.Array(q.UserIDs)
	}

	rows, err := r.db.QueryContext(ctx, stmt,
		q.Start.Format(domain.DateLayout),
		q.End.Format(domain.DateLayout),
		ids,
		string(q.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("timesheet_detail_report: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ReportRow, 0, 64)
	for rows.Next() {
		var (
			row      domain.ReportRow
			id, name sql.NullString
			n        [9]sql.NullFloat64
			daily    []byte
		)
		if err := rows.Scan(&id, &name,
			&n[0], &n[1], &n[2], &n[3], &n[4], &n[5], &n[6], &n[7], &n[8],
			&daily,
		); err != nil {
			return nil, err
		}

		row.UserID, row.UserName = id.String, name.String
		row.ExpectedHours = n[0].Float64
		row.WorkedHours = n[1].Float64
		row.ExpectedHoursUntilYesterday = n[2].Float64
		row.OvertimeHoursInPeriod = n[3].Float64
		row.PositiveCompHoursInPeriod = n[4].Float64
		row.NegativeCompHoursInPeriod = n[5].Float64
		row.TotalPositiveCompHours = n[6].Float64
		row.TotalNegativeCompHours = n[7].Float64
		row.TimeBalance = n[8].Float64

		if row.DailyDetails, err = domain.ParseDailyDetails(daily); err != nil {
			return nil, fmt.Errorf("daily details for %s: %w", row.UserID, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
