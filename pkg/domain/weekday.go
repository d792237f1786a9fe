package domain

import (
	"strings"

	dErrors "hydration/pkg/domain-errors"
)

// Weekday is a day on which alarms fire.
// Invariant: the value is one of the seven upper-case English day names.
//
// Construct via ParseWeekday at trust boundaries; direct casting bypasses the allowlist.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

// AllWeekdays lists days in ISO order.
var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var validWeekdays = map[Weekday]bool{
	Monday: true, Tuesday: true, Wednesday: true, Thursday: true,
	Friday: true, Saturday: true, Sunday: true,
}

// ParseWeekday accepts any letter case.
func ParseWeekday(s string) (Weekday, error) {
	d := Weekday(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid weekday: "+s)
	}
	return d, nil
}

func (d Weekday) IsValid() bool { return validWeekdays[d] }

func (d Weekday) String() string { return string(d) }
