package timeline

import "time"

const dateLayout = "2006-01-02"

// dateOf truncates t to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// addBusinessDays moves n weekdays forward from the calendar date of t.
func addBusinessDays(t time.Time, n int) time.Time {
	d := dateOf(t)
	for i := 0; i < n; i++ {
		d = d.AddDate(0, 0, 1)
		for isWeekend(d) {
			d = d.AddDate(0, 0, 1)
		}
	}
	return d
}

// mergeLimit is the latest start date that still joins a segment ending on
// end when up to maxGap weekdays may separate them.
func mergeLimit(end time.Time, maxGap int) time.Time {
	if maxGap < 0 {
		maxGap = 0
	}
	return addBusinessDays(end, maxGap+1)
}

// formatInstant renders date-only values as YYYY-MM-DD and everything else
// as RFC 3339.
func formatInstant(t time.Time) string {
	if t.Equal(dateOf(t)) {
		return t.UTC().Format(dateLayout)
	}
	return t.Format(time.RFC3339)
}
