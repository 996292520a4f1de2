package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ekip-platform/ekip-api/internal/allocations/domain"
	"github.com/ekip-platform/ekip-api/internal/storage/postgres"
)

// AssignmentRepository reads allocations through the reporting RPCs. Both
// RPCs run under the caller's RLS scope when the request carries one.
type AssignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Filtered calls get_filtered_assignments and joins each row to its task.
// Rows without a task come back with a nil Task.
func (r *AssignmentRepository) Filtered(ctx context.Context, f domain.Filter) ([]domain.Assignment, error) {
	const q = `
SELECT fa.id, fa.assignee_id, fa.is_closed, fa.created_at, fa.close_date,
       fa.current_estimate_seconds, fa.time_worked,
       t.id, t.task_id, t.title, t.type_name, t.gantt_bar_start_date, t.gantt_bar_end_date,
       t.project_name, t.client_name, t.billing_type
FROM get_filtered_assignments($1, $2, $3, $4) AS fa
LEFT JOIN tasks t ON t.task_id = fa.task_id;
`
	var status sql.NullBool
	if c := f.Status.Closed(); c != nil {
		status = sql.NullBool{Bool: *c, Valid: true}
	}

	var out []domain.Assignment
	err := postgres.Scoped(ctx, r.db, func(tx postgres.Queryer) error {
		rows, err := tx.QueryContext(ctx, q,
			pq.Array(nonNilStrings(f.ConsultantIDs)),
			pq.Array(nonNilStrings(f.ProjectNames)),
			status,
			f.StartDate.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = scanAssignments(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get_filtered_assignments: %w", err)
	}
	return out, nil
}

func scanAssignments(rows *sql.Rows) ([]domain.Assignment, error) {
	out := make([]domain.Assignment, 0, 256)
	for rows.Next() {
		var (
			a                        domain.Assignment
			assignee                 sql.NullString
			createdAt, closeDate     sql.NullTime
			estimate, worked         sql.NullInt64
			taskRowID, taskID        sql.NullInt64
			title, typeName          sql.NullString
			ganttStart, ganttEnd     sql.NullTime
			project, client, billing sql.NullString
		)
		if err := rows.Scan(
			&a.ID, &assignee, &a.IsClosed, &createdAt, &closeDate, &estimate, &worked,
			&taskRowID, &taskID, &title, &typeName, &ganttStart, &ganttEnd,
			&project, &client, &billing,
		); err != nil {
			return nil, err
		}

		a.AssigneeID = assignee.String
		a.CreatedAt = timePtr(createdAt)
		a.CloseDate = timePtr(closeDate)
		a.CurrentEstimateSeconds = intPtr(estimate)
		a.TimeWorked = intPtr(worked)

		if taskRowID.Valid {
			a.Task = &domain.Task{
				ID:                taskRowID.Int64,
				TaskID:            intPtr(taskID),
				Title:             title.String,
				TypeName:          typeName.String,
				GanttBarStartDate: timePtr(ganttStart),
				GanttBarEndDate:   timePtr(ganttEnd),
				ProjectName:       project.String,
				ClientName:        client.String,
				BillingType:       billing.String,
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DistinctProjects lists the project names offered by the allocation filter.
func (r *AssignmentRepository) DistinctProjects(ctx context.Context) ([]domain.Project, error) {
	out := make([]domain.Project, 0, 64)
	err := postgres.Scoped(ctx, r.db, func(tx postgres.Queryer) error {
		rows, err := tx.QueryContext(ctx, `SELECT project_name FROM get_distinct_projects();`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name sql.NullString
			if err := rows.Scan(&name); err != nil {
				return err
			}
			if !name.Valid || name.String == "" {
				continue
			}
			out = append(out, domain.Project{Name: name.String})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get_distinct_projects: %w", err)
	}
	return out, nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
