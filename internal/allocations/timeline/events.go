package timeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ekip-platform/ekip-api/internal/allocations/domain"
)

const (
	colorHolidayBg = "#facc15"
	colorHolidayBd = "#eab308"
	colorClosedBg  = "#6b7280"
	colorClosedBd  = "#4b5563"
	colorOpenBg    = "#3b82f6"
	colorOpenBd    = "#2563eb"

	closedClass  = "opacity-70"
	notAvailable = "N/A"
)

// BuildEvents turns assignments into timeline events. In grouped mode
// non-holiday assignments that pass the status filter are merged per
// (assignee, client, project) into segments; grouped events come first,
// followed by the individual ones. Assignments without a renderable
// interval are skipped.
func BuildEvents(assignments []domain.Assignment, opts domain.Options) []domain.Event {
	if opts.Status == "" {
		opts.Status = domain.StatusAll
	}

	var (
		individual []domain.Event
		buckets    []*bucket
		byKey      = map[bucketKey]*bucket{}
	)

	for _, a := range assignments {
		start, end, ok := ResolveInterval(a)
		if !ok {
			continue
		}
		detail := taskDetail(a, start, end)

		holiday := a.Task.IsHoliday()
		if !opts.Grouped || holiday || !opts.Status.Matches(a.IsClosed) {
			individual = append(individual, individualEvent(a, detail))
			continue
		}

		key := bucketKey{assignee: a.AssigneeID, client: a.Task.ClientName, project: a.Task.ProjectName}
		b, found := byKey[key]
		if !found {
			b = &bucket{
				assigneeID: a.AssigneeID,
				client:     orDefault(a.Task.ClientName, "SC"),
				project:    orDefault(a.Task.ProjectName, "SP"),
				closed:     a.IsClosed,
			}
			byKey[key] = b
			buckets = append(buckets, b)
		}
		b.tasks = append(b.tasks, detail)
	}

	if !opts.Grouped {
		return nonNil(individual)
	}

	var grouped []domain.Event
	for i, b := range buckets {
		for _, seg := range Segment(b.tasks, opts.MaxGapBusinessDays) {
			grouped = append(grouped, b.event(seg, i, len(grouped)))
		}
	}
	return nonNil(append(grouped, individual...))
}

// Segment sorts tasks by start and merges them into contiguous runs. A task
// joins the current run when its start date is no later than maxGap
// business days past the run's latest end.
func Segment(tasks []domain.TaskDetail, maxGap int) []Run {
	sorted := make([]domain.TaskDetail, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start().Before(sorted[j].Start())
	})

	var runs []Run
	for _, t := range sorted {
		n := len(runs)
		if n > 0 && !dateOf(t.Start()).After(mergeLimit(runs[n-1].End, maxGap)) {
			cur := &runs[n-1]
			if t.End().After(cur.End) {
				cur.End = t.End()
			}
			cur.Tasks = append(cur.Tasks, t)
			continue
		}
		runs = append(runs, Run{Start: t.Start(), End: t.End(), Tasks: []domain.TaskDetail{t}})
	}
	return runs
}

// Run is one merged segment before it is rendered.
type Run struct {
	Start time.Time
	End   time.Time
	Tasks []domain.TaskDetail
}

// ExclusiveEnd is the day after the latest constituent end, the calendar's
// exclusive end date.
func (r Run) ExclusiveEnd() string {
	return dateOf(r.End).AddDate(0, 0, 1).Format(dateLayout)
}

type bucketKey struct {
	assignee, client, project string
}

type bucket struct {
	assigneeID string
	client     string
	project    string
	closed     bool
	tasks      []domain.TaskDetail
}

func (b *bucket) event(r Run, groupIndex, seq int) domain.Event {
	bg, bd := colorOpenBg, colorOpenBd
	if b.closed {
		bg, bd = colorClosedBg, colorClosedBd
	}
	return domain.Event{
		ID:              fmt.Sprintf("group-%s-%d-%d", b.assigneeID, groupIndex, seq),
		ResourceID:      strings.TrimSpace(b.assigneeID),
		Title:           fmt.Sprintf("[%s] %s (%d tarefas)", b.client, b.project, len(r.Tasks)),
		Start:           dateOf(r.Start).Format(dateLayout),
		End:             r.ExclusiveEnd(),
		BackgroundColor: bg,
		BorderColor:     bd,
		ClassNames:      closedClasses(b.closed),
		ExtendedProps: domain.EventProps{
			Projeto: b.project,
			Cliente: b.client,
			IsGroup: true,
			Tasks:   r.Tasks,
		},
	}
}

func individualEvent(a domain.Assignment, detail domain.TaskDetail) domain.Event {
	t := a.Task

	bg, bd := colorOpenBg, colorOpenBd
	switch {
	case t.IsHoliday():
		bg, bd = colorHolidayBg, colorHolidayBd
	case a.IsClosed:
		bg, bd = colorClosedBg, colorClosedBd
	}

	status := string(domain.StatusOpen)
	if a.IsClosed {
		status = string(domain.StatusClosed)
	}

	return domain.Event{
		ID:              strconv.FormatInt(a.ID, 10),
		ResourceID:      strings.TrimSpace(a.AssigneeID),
		Title:           fmt.Sprintf("[%s] %s - %s", orDefault(t.ClientName, "SC"), orDefault(t.ProjectName, "SP"), t.Title),
		Start:           detail.Inicio,
		End:             detail.Entrega,
		BackgroundColor: bg,
		BorderColor:     bd,
		ClassNames:      closedClasses(a.IsClosed),
		ExtendedProps: domain.EventProps{
			TaskDetail:  &detail,
			Projeto:     orDefault(t.ProjectName, notAvailable),
			Cliente:     orDefault(t.ClientName, notAvailable),
			Status:      status,
			BillingType: orDefault(t.BillingType, notAvailable),
		},
	}
}

func taskDetail(a domain.Assignment, start, end time.Time) domain.TaskDetail {
	d := domain.NewTaskDetail(start, end, formatInstant(start), formatInstant(end))
	d.RunrunTaskID = a.Task.TaskID
	d.Tarefa = orDefault(a.Task.Title, notAvailable)
	d.HrPrevSeconds = a.CurrentEstimateSeconds
	d.HrExecSeconds = a.TimeWorked
	return d
}

func closedClasses(closed bool) []string {
	if closed {
		return []string{closedClass}
	}
	return []string{}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func nonNil(events []domain.Event) []domain.Event {
	if events == nil {
		return []domain.Event{}
	}
	return events
}
