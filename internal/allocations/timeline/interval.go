package timeline

import (
	"strings"
	"time"

	"github.com/ekip-platform/ekip-api/internal/allocations/domain"
)

// ResolveInterval picks the rendered start and end of an assignment.
//
// Open assignments use the planned Gantt bar, falling back to the creation
// time when only the planned end exists. Closed assignments end on their
// close date and start on the planned start or the creation time. ok is
// false when the assignment has no renderable interval: no task, no
// assignee, missing dates or an end before the start.
func ResolveInterval(a domain.Assignment) (start, end time.Time, ok bool) {
	t := a.Task
	if t == nil || strings.TrimSpace(a.AssigneeID) == "" {
		return time.Time{}, time.Time{}, false
	}

	var s, e *time.Time
	hasStart, hasEnd := t.GanttBarStartDate != nil, t.GanttBarEndDate != nil

	if !a.IsClosed {
		switch {
		case hasStart && hasEnd:
			s, e = t.GanttBarStartDate, t.GanttBarEndDate
		case !hasStart && hasEnd:
			s, e = a.CreatedAt, t.GanttBarEndDate
		default:
			return time.Time{}, time.Time{}, false
		}
	} else {
		if a.CloseDate == nil {
			return time.Time{}, time.Time{}, false
		}
		if hasStart {
			s, e = t.GanttBarStartDate, a.CloseDate
		} else {
			s, e = a.CreatedAt, a.CloseDate
		}
	}

	if s == nil || e == nil || e.Before(*s) {
		return time.Time{}, time.Time{}, false
	}
	return *s, *e, true
}
