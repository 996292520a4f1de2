package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ekip-platform/ekip-api/internal/allocations/domain"
	dbscope "github.com/ekip-platform/ekip-api/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var assignmentCols = []string{
	"id", "assignee_id", "is_closed", "created_at", "close_date", "current_estimate_seconds", "time_worked",
	"id", "task_id", "title", "type_name", "gantt_bar_start_date", "gantt_bar_end_date",
	"project_name", "client_name", "billing_type",
}

func setupRepo(t *testing.T) (*AssignmentRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewAssignmentRepository(db), mock, db
}

func TestAssignmentRepository_Filtered(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	start := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM get_filtered_assignments\(\$1, \$2, \$3, \$4\)`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), true, "2023-01-01T00:00:00Z").
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(int64(10), "u-1", true, created, end, int64(3600), int64(1800),
				int64(7), int64(900), "Build API", "Desenvolvimento", start, end, "Portal", "ACME", "Fixed").
			AddRow(int64(11), nil, false, created, nil, nil, nil,
				nil, nil, nil, nil, nil, nil, nil, nil, nil))

	got, err := repo.Filtered(context.Background(), domain.Filter{
		ConsultantIDs: []string{"u-1"},
		Status:        domain.StatusClosed,
		StartDate:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	a := got[0]
	assert.Equal(t, int64(10), a.ID)
	assert.True(t, a.IsClosed)
	require.NotNil(t, a.Task)
	assert.Equal(t, int64(900), *a.Task.TaskID)
	assert.Equal(t, "Portal", a.Task.ProjectName)
	assert.True(t, a.Task.GanttBarStartDate.Equal(start))
	assert.Equal(t, int64(3600), *a.CurrentEstimateSeconds)

	assert.Empty(t, got[1].AssigneeID)
	assert.Nil(t, got[1].Task)
	assert.Nil(t, got[1].CloseDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepository_FilteredAllStatusesPassesNull(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	mock.ExpectQuery(`get_filtered_assignments`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(assignmentCols))

	got, err := repo.Filtered(context.Background(), domain.Filter{Status: domain.StatusAll})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepository_FilteredError(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	mock.ExpectQuery(`get_filtered_assignments`).WillReturnError(errors.New("rpc missing"))

	_, err := repo.Filtered(context.Background(), domain.Filter{})
	assert.ErrorContains(t, err, "get_filtered_assignments")
}

func TestAssignmentRepository_DistinctProjects(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT project_name FROM get_distinct_projects\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"project_name"}).
			AddRow("Mobile").AddRow(nil).AddRow("").AddRow("Portal"))

	got, err := repo.DistinctProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Project{{Name: "Mobile"}, {Name: "Portal"}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func userCtx(t *testing.T) context.Context {
	t.Helper()
	scope, err := dbscope.NewUserScope(nil, map[string]any{"sub": "u-1"})
	require.NoError(t, err)
	return dbscope.WithRunner(context.Background(), scope)
}

func TestAssignmentRepository_RunsUnderUserScope(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	claims := `{"role":"authenticated","sub":"u-1"}`
	mock.ExpectBegin()
	mock.ExpectExec(`set_config\('request\.jwt\.claims', \$1, true\), set_config\('role', \$2, true\)`).
		WithArgs(claims, "authenticated").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`get_filtered_assignments`).
		WillReturnRows(sqlmock.NewRows(assignmentCols))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`set_config`).
		WithArgs(claims, "authenticated").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`get_distinct_projects`).
		WillReturnRows(sqlmock.NewRows([]string{"project_name"}).AddRow("Portal"))
	mock.ExpectCommit()

	ctx := userCtx(t)
	got, err := repo.Filtered(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)

	projects, err := repo.DistinctProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Project{{Name: "Portal"}}, projects)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepository_UserScopeRollsBackOnError(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`set_config`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`get_filtered_assignments`).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	_, err := repo.Filtered(userCtx(t), domain.Filter{})
	assert.ErrorContains(t, err, "permission denied")
	require.NoError(t, mock.ExpectationsWereMet())
}
