package temporal

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time with minute precision, in minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (24h).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// MustTimeOfDay is ParseTimeOfDay for constants; it panics on error.
func MustTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

// ClockOf returns the UTC clock time of t. Seconds count toward the next
// minute so that 22:00:30 lies after 22:00.
func ClockOf(t time.Time) (TimeOfDay, bool) {
	u := t.UTC()
	return TimeOfDay(u.Hour()*60 + u.Minute()), u.Second() != 0 || u.Nanosecond() != 0
}

// Within reports whether t's UTC clock time lies in [open, closing], both inclusive.
func Within(t time.Time, open, closing TimeOfDay) bool {
	tod, extra := ClockOf(t)
	if tod < open {
		return false
	}
	if tod > closing || (tod == closing && extra) {
		return false
	}
	return true
}

func (t TimeOfDay) Minutes() int { return int(t) }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}
