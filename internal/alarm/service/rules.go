package service

import (
	"time"

	"hydration/internal/platform/messages"
	"hydration/pkg/temporal"
)

// CheckBusinessHours reports each end of the window whose UTC clock time lies
// outside [open, closing]. Both edges are inclusive.
func CheckBusinessHours(startField, endField string, start, end time.Time, open, closing temporal.TimeOfDay) []temporal.Violation {
	var report temporal.Report
	if !temporal.Within(start, open, closing) {
		report.Add(startField, messages.KeyBusinessHours, open.String(), closing.String())
	}
	if !temporal.Within(end, open, closing) {
		report.Add(endField, messages.KeyBusinessHours, open.String(), closing.String())
	}
	return report.Violations()
}

// CheckInterval reports when the window is not a whole number of intervals or
// yields fewer than minNotifications reminders. The window must already be
// ordered.
func CheckInterval(field string, start, end time.Time, interval, minNotifications int) []temporal.Violation {
	if interval <= 0 {
		return []temporal.Violation{{Field: field, Key: messages.KeyIntervalPositive}}
	}
	var report temporal.Report
	window, step := end.Sub(start), intervalDuration(interval)
	if window%step != 0 {
		report.Add(field, messages.KeyIntervalMultiple, interval)
	}
	if int(window/step) < minNotifications {
		report.Add(field, messages.KeyMinNotifications, minNotifications)
	}
	return report.Violations()
}

// NotificationCount is the number of reminders the window yields.
func NotificationCount(start, end time.Time, interval int) int {
	if interval <= 0 || !start.Before(end) {
		return 0
	}
	return int(end.Sub(start) / intervalDuration(interval))
}

// Schedule lists the clock time of every reminder, starting at the window start.
func Schedule(start, end time.Time, interval int) []temporal.TimeOfDay {
	count := NotificationCount(start, end, interval)
	first, _ := temporal.ClockOf(start)
	out := make([]temporal.TimeOfDay, 0, count)
	for i := range count {
		out = append(out, first+temporal.TimeOfDay(i*interval))
	}
	return out
}

func intervalDuration(minutes int) time.Duration {
	return time.Duration(minutes) * time.Minute
}
