package leave

import (
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
)

// CalculateWorkingDays counts the dates in [start, end] that are neither a
// weekend day nor in holidays. It returns 0 when end is before start.
func CalculateWorkingDays(start, end time.Time, holidays holiday.Set) int {
	start, end = dateOnly(start), dateOnly(end)

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		if holidays.Contains(d) {
			continue
		}
		days++
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
