package timeline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ekip-platform/ekip-api/internal/allocations/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) *time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func openTask(id int64, assignee, start, end string) domain.Assignment {
	return domain.Assignment{
		ID:         id,
		AssigneeID: assignee,
		CreatedAt:  day("2024-01-01"),
		Task: &domain.Task{
			Title:             "task",
			GanttBarStartDate: day(start),
			GanttBarEndDate:   day(end),
			ProjectName:       "Portal",
			ClientName:        "ACME",
		},
	}
}

func grouped() domain.Options {
	return domain.Options{Grouped: true, Status: domain.StatusAll, MaxGapBusinessDays: domain.DefaultMaxGapBusinessDays}
}

func TestResolveInterval(t *testing.T) {
	created := day("2024-03-01")
	closeDate := day("2024-03-20")
	planStart := day("2024-03-05")
	planEnd := day("2024-03-15")

	cases := []struct {
		name  string
		a     domain.Assignment
		ok    bool
		start *time.Time
		end   *time.Time
	}{
		{"open with full plan", domain.Assignment{AssigneeID: "u", CreatedAt: created,
			Task: &domain.Task{GanttBarStartDate: planStart, GanttBarEndDate: planEnd}}, true, planStart, planEnd},
		{"open with plan end only", domain.Assignment{AssigneeID: "u", CreatedAt: created,
			Task: &domain.Task{GanttBarEndDate: planEnd}}, true, created, planEnd},
		{"open without plan", domain.Assignment{AssigneeID: "u", CreatedAt: created,
			Task: &domain.Task{}}, false, nil, nil},
		{"open with plan start only", domain.Assignment{AssigneeID: "u", CreatedAt: created,
			Task: &domain.Task{GanttBarStartDate: planStart}}, false, nil, nil},
		{"closed without close date", domain.Assignment{AssigneeID: "u", IsClosed: true, CreatedAt: created,
			Task: &domain.Task{GanttBarStartDate: planStart}}, false, nil, nil},
		{"closed without plan start", domain.Assignment{AssigneeID: "u", IsClosed: true, CreatedAt: created, CloseDate: closeDate,
			Task: &domain.Task{GanttBarEndDate: planEnd}}, true, created, closeDate},
		{"closed with plan start", domain.Assignment{AssigneeID: "u", IsClosed: true, CreatedAt: created, CloseDate: closeDate,
			Task: &domain.Task{GanttBarStartDate: planStart}}, true, planStart, closeDate},
		{"no assignee", domain.Assignment{AssigneeID: "  ", CreatedAt: created,
			Task: &domain.Task{GanttBarStartDate: planStart, GanttBarEndDate: planEnd}}, false, nil, nil},
		{"end before start", domain.Assignment{AssigneeID: "u", CreatedAt: created,
			Task: &domain.Task{GanttBarStartDate: planEnd, GanttBarEndDate: planStart}}, false, nil, nil},
		{"no task", domain.Assignment{AssigneeID: "u", CreatedAt: created}, false, nil, nil},
		{"closed before creation", domain.Assignment{AssigneeID: "u", IsClosed: true, CreatedAt: closeDate, CloseDate: created,
			Task: &domain.Task{}}, false, nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, ok := ResolveInterval(tc.a)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.True(t, start.Equal(*tc.start))
				assert.True(t, end.Equal(*tc.end))
			}
		})
	}
}

func TestAddBusinessDays(t *testing.T) {
	fri := *day("2024-06-07")
	assert.Equal(t, "2024-06-10", addBusinessDays(fri, 1).Format(dateLayout))
	assert.Equal(t, "2024-06-11", addBusinessDays(fri, 2).Format(dateLayout))

	sat := *day("2024-06-08")
	assert.Equal(t, "2024-06-10", addBusinessDays(sat, 1).Format(dateLayout))
	assert.Equal(t, "2024-06-07", addBusinessDays(fri, 0).Format(dateLayout))
}

func TestBuildEvents_WorkedExample(t *testing.T) {
	// Mon-Tue and Thu-Fri with a one-weekday gap merge, the task three
	// weekdays later does not.
	in := []domain.Assignment{
		openTask(1, "u1", "2024-06-03", "2024-06-04"),
		openTask(2, "u1", "2024-06-06", "2024-06-07"),
		openTask(3, "u1", "2024-06-13", "2024-06-14"),
	}

	events := BuildEvents(in, grouped())
	require.Len(t, events, 2)

	assert.Equal(t, "2024-06-03", events[0].Start)
	assert.Equal(t, "2024-06-08", events[0].End)
	assert.Equal(t, "[ACME] Portal (2 tarefas)", events[0].Title)
	assert.True(t, events[0].ExtendedProps.IsGroup)
	assert.Len(t, events[0].ExtendedProps.Tasks, 2)
	assert.Equal(t, "group-u1-0-0", events[0].ID)

	assert.Equal(t, "2024-06-13", events[1].Start)
	assert.Equal(t, "2024-06-15", events[1].End)
	assert.Equal(t, "group-u1-0-1", events[1].ID)
}

func TestBuildEvents_StrictAdjacency(t *testing.T) {
	in := []domain.Assignment{
		openTask(1, "u1", "2024-06-03", "2024-06-04"),
		openTask(2, "u1", "2024-06-06", "2024-06-07"),
	}
	opts := grouped()
	opts.MaxGapBusinessDays = 0

	assert.Len(t, BuildEvents(in, opts), 2)
}

func TestBuildEvents_WeekendDoesNotBreakSegment(t *testing.T) {
	in := []domain.Assignment{
		openTask(1, "u1", "2024-06-03", "2024-06-07"),
		openTask(2, "u1", "2024-06-10", "2024-06-11"),
	}
	opts := grouped()
	opts.MaxGapBusinessDays = 0

	events := BuildEvents(in, opts)
	require.Len(t, events, 1)
	assert.Equal(t, "2024-06-12", events[0].End)
}

func TestBuildEvents_GapProperties(t *testing.T) {
	base := *day("2024-01-01")
	for offset := 0; offset < 21; offset++ {
		first := base.AddDate(0, 0, offset)
		if isWeekend(first) {
			continue
		}
		for gap := 0; gap <= 3; gap++ {
			secondStart := addBusinessDays(first, gap+1)
			in := []domain.Assignment{
				openTask(1, "u1", first.Format(dateLayout), first.Format(dateLayout)),
				openTask(2, "u1", secondStart.Format(dateLayout), secondStart.Format(dateLayout)),
			}
			events := BuildEvents(in, grouped())
			if gap <= 1 {
				assert.Len(t, events, 1, "gap %d from %s", gap, first.Format(dateLayout))
			} else {
				assert.Len(t, events, 2, "gap %d from %s", gap, first.Format(dateLayout))
			}
		}
	}
}

func TestBuildEvents_SegmentEndIsMaxEndPlusOne(t *testing.T) {
	in := []domain.Assignment{
		openTask(1, "u1", "2024-06-03", "2024-06-20"),
		openTask(2, "u1", "2024-06-05", "2024-06-06"),
		openTask(3, "u1", "2024-06-10", "2024-06-12"),
	}
	events := BuildEvents(in, grouped())
	require.Len(t, events, 1)
	assert.Equal(t, "2024-06-21", events[0].End)
	assert.Len(t, events[0].ExtendedProps.Tasks, 3)
}

func TestBuildEvents_WidelySpacedTasks(t *testing.T) {
	var in []domain.Assignment
	start := *day("2024-01-01")
	for i := 0; i < 6; i++ {
		d := start.AddDate(0, 0, i*14).Format(dateLayout)
		in = append(in, openTask(int64(i), "u1", d, d))
	}
	assert.Len(t, BuildEvents(in, grouped()), 6)
}

func TestBuildEvents_SortsBeforeMerging(t *testing.T) {
	in := []domain.Assignment{
		openTask(2, "u1", "2024-06-06", "2024-06-07"),
		openTask(1, "u1", "2024-06-03", "2024-06-04"),
	}
	events := BuildEvents(in, grouped())
	require.Len(t, events, 1)
	assert.Equal(t, "2024-06-03", events[0].Start)
	assert.Equal(t, "2024-06-03", events[0].ExtendedProps.Tasks[0].Inicio)
}

func TestBuildEvents_BucketsAreSeparate(t *testing.T) {
	other := openTask(2, "u1", "2024-06-04", "2024-06-05")
	other.Task.ProjectName = "Mobile"
	in := []domain.Assignment{
		openTask(1, "u1", "2024-06-03", "2024-06-04"),
		other,
		openTask(3, "u2", "2024-06-03", "2024-06-04"),
	}
	events := BuildEvents(in, grouped())
	require.Len(t, events, 3)
	assert.Equal(t, "group-u1-0-0", events[0].ID)
	assert.Equal(t, "group-u1-1-1", events[1].ID)
	assert.Equal(t, "group-u2-2-2", events[2].ID)
}

func TestBuildEvents_HolidaysNeverGrouped(t *testing.T) {
	vacation := openTask(2, "u1", "2024-06-04", "2024-06-05")
	vacation.Task.TypeName = "Férias"
	happy := openTask(3, "u1", "2024-06-05", "2024-06-05")
	happy.Task.TypeName = "Happy day"

	in := []domain.Assignment{openTask(1, "u1", "2024-06-03", "2024-06-06"), vacation, happy}
	events := BuildEvents(in, grouped())
	require.Len(t, events, 3)

	assert.True(t, events[0].ExtendedProps.IsGroup)
	assert.Len(t, events[0].ExtendedProps.Tasks, 1)
	for _, ev := range events[1:] {
		assert.False(t, ev.ExtendedProps.IsGroup)
		assert.Equal(t, "#facc15", ev.BackgroundColor)
		assert.Equal(t, "#eab308", ev.BorderColor)
	}
}

func TestBuildEvents_OpenWithoutPlanExcluded(t *testing.T) {
	noPlan := domain.Assignment{ID: 9, AssigneeID: "u1", CreatedAt: day("2024-06-01"), Task: &domain.Task{Title: "x"}}

	for _, g := range []bool{false, true} {
		opts := grouped()
		opts.Grouped = g
		events := BuildEvents([]domain.Assignment{noPlan}, opts)
		assert.Empty(t, events)
		assert.NotNil(t, events)
	}
}

func TestBuildEvents_Ungrouped(t *testing.T) {
	closed := domain.Assignment{
		ID:                     42,
		AssigneeID:             " u1 ",
		IsClosed:               true,
		CreatedAt:              day("2024-06-01"),
		CloseDate:              day("2024-06-10"),
		CurrentEstimateSeconds: ptr(int64(7200)),
		TimeWorked:             ptr(int64(3600)),
		Task:                   &domain.Task{TaskID: ptr(int64(555)), Title: "Deploy", BillingType: "Fixed"},
	}
	open := openTask(43, "u2", "2024-06-03", "2024-06-04")

	events := BuildEvents([]domain.Assignment{closed, open}, domain.Options{Status: domain.StatusAll})
	require.Len(t, events, 2)

	ev := events[0]
	assert.Equal(t, "42", ev.ID)
	assert.Equal(t, "u1", ev.ResourceID)
	assert.Equal(t, "[SC] SP - Deploy", ev.Title)
	assert.Equal(t, "2024-06-01", ev.Start)
	assert.Equal(t, "2024-06-10", ev.End)
	assert.Equal(t, "#6b7280", ev.BackgroundColor)
	assert.Equal(t, []string{"opacity-70"}, ev.ClassNames)
	assert.Equal(t, "Fechado", ev.ExtendedProps.Status)
	assert.Equal(t, "N/A", ev.ExtendedProps.Projeto)
	assert.Equal(t, "Fixed", ev.ExtendedProps.BillingType)
	assert.Equal(t, int64(555), *ev.ExtendedProps.RunrunTaskID)
	assert.Equal(t, int64(7200), *ev.ExtendedProps.HrPrevSeconds)
	assert.False(t, ev.ExtendedProps.IsGroup)

	assert.Equal(t, "#3b82f6", events[1].BackgroundColor)
	assert.Equal(t, "Aberto", events[1].ExtendedProps.Status)
	assert.Empty(t, events[1].ClassNames)
}

func TestBuildEvents_StatusMismatchRenderedIndividually(t *testing.T) {
	closed := openTask(2, "u1", "2024-06-04", "2024-06-05")
	closed.IsClosed = true
	closed.CloseDate = day("2024-06-05")

	opts := grouped()
	opts.Status = domain.StatusOpen
	events := BuildEvents([]domain.Assignment{openTask(1, "u1", "2024-06-03", "2024-06-04"), closed}, opts)
	require.Len(t, events, 2)
	assert.True(t, events[0].ExtendedProps.IsGroup)
	assert.False(t, events[1].ExtendedProps.IsGroup)
}

func TestBuildEvents_TimestampsCompareByDate(t *testing.T) {
	created := time.Date(2024, 6, 3, 15, 30, 0, 0, time.UTC)
	a := domain.Assignment{
		ID: 1, AssigneeID: "u1", CreatedAt: &created,
		Task: &domain.Task{GanttBarEndDate: day("2024-06-04"), ProjectName: "Portal", ClientName: "ACME"},
	}
	b := openTask(2, "u1", "2024-06-06", "2024-06-06")

	events := BuildEvents([]domain.Assignment{a, b}, grouped())
	require.Len(t, events, 1)
	assert.Equal(t, "2024-06-03", events[0].Start)
	assert.Equal(t, "2024-06-03T15:30:00Z", events[0].ExtendedProps.Tasks[0].Inicio)
}

func TestEventJSON(t *testing.T) {
	events := BuildEvents([]domain.Assignment{openTask(1, "u1", "2024-06-03", "2024-06-04")}, grouped())
	raw, err := json.Marshal(events[0])
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	props := m["extendedProps"].(map[string]any)
	assert.Equal(t, true, props["isGroup"])
	assert.NotContains(t, props, "tarefa")
	assert.Contains(t, props, "tasks")
}

func ptr[T any](v T) *T { return &v }
