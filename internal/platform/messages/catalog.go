// Package messages resolves violation message keys to English text.
package messages

import (
	"fmt"
	"strings"
	"time"

	"hydration/pkg/temporal"
)

// Keys owned by the application rather than the temporal package.
const (
	KeyBusinessHours         = "alarm.time.business.hours"
	KeyIntervalMultiple      = "time.range.interval.multiple"
	KeyMinNotifications      = "time.range.min.notifications"
	KeyIntervalPositive      = "time.range.interval.positive"
	KeyDayInvalid            = "alarm.day.invalid"
	KeyDayDuplicate          = "alarm.day.duplicate"
	KeyFilterVolumeRange     = "filter.volume.range"
	KeyFilterSortField       = "filter.sort.field.invalid"
	KeyFilterSortDirection   = "filter.sort.direction.invalid"
	KeyFilterPageSize        = "filter.page.size"
	KeyFilterPage            = "filter.page.invalid"
	KeyIntakeVolumeRange     = "intake.volume.range"
	KeyIntakeBackfill        = "intake.consumed.backfill"
	KeyRequired              = "field.required"
	KeyLength                = "field.length"
	KeyNumberRange           = "field.number.range"
	KeyInvalidNumber         = "field.number.invalid"
	KeyProfileWeightRange    = "profile.weight.range"
	KeyProfileDailyGoalRange = "profile.daily.goal.range"
)

var english = map[string]string{
	temporal.KeyInvalidFormat:    "must be an ISO-8601 timestamp with an offset",
	temporal.KeyUTCTimezone:      "must be in UTC",
	temporal.KeyNoMilliseconds:   "must not contain fractional seconds",
	temporal.KeyMustPast:         "must be in the past",
	temporal.KeyMustFuture:       "must be in the future",
	temporal.KeyMinimumAge:       "must be at least %v years ago",
	temporal.KeyRangeOrder:       "must be before the end of the range",
	temporal.KeyRangeSameDay:     "must fall on the same day as the start",
	temporal.KeyRangeSameOffset:  "must use the same offset as the start",
	temporal.KeyRangeMaxSpan:     "range must not exceed %v",
	temporal.KeyRangeMinInterval: "range must span at least %v minutes",

	KeyBusinessHours:         "must be between %v and %v",
	KeyIntervalMultiple:      "window must be a multiple of the %v minute interval",
	KeyMinNotifications:      "window must allow at least %v notifications",
	KeyIntervalPositive:      "interval must be greater than zero",
	KeyDayInvalid:            "must be one of MONDAY through SUNDAY",
	KeyDayDuplicate:          "must not repeat a day",
	KeyFilterVolumeRange:     "minimum volume must not exceed maximum volume",
	KeyFilterSortField:       "must be one of %v",
	KeyFilterSortDirection:   "must be ASC or DESC",
	KeyFilterPageSize:        "must be between 1 and %v",
	KeyFilterPage:            "must be zero or greater",
	KeyIntakeVolumeRange:     "must be between %v and %v ml",
	KeyIntakeBackfill:        "must be within the last %v",
	KeyRequired:              "is required",
	KeyLength:                "must be between %v and %v characters",
	KeyNumberRange:           "must be between %v and %v",
	KeyInvalidNumber:         "must be a whole number",
	KeyProfileWeightRange:    "must be between %v and %v kg",
	KeyProfileDailyGoalRange: "must be between %v and %v ml",
}

// Catalog renders message keys. Unknown keys render as the key itself.
type Catalog struct {
	templates map[string]string
}

// English returns the built-in English catalog.
func English() *Catalog {
	return &Catalog{templates: english}
}

// Render formats the template for key with args. Durations render as
// whole days when they are day multiples.
func (c *Catalog) Render(key string, args ...any) string {
	tmpl, ok := c.templates[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	formatted := make([]any, len(args))
	for i, a := range args {
		formatted[i] = formatArg(a)
	}
	return fmt.Sprintf(tmpl, formatted...)
}

// Has reports whether key has a template.
func (c *Catalog) Has(key string) bool {
	_, ok := c.templates[key]
	return ok
}

func formatArg(a any) any {
	switch v := a.(type) {
	case time.Duration:
		if v >= 24*time.Hour && v%(24*time.Hour) == 0 {
			days := int(v / (24 * time.Hour))
			if days == 1 {
				return "1 day"
			}
			return fmt.Sprintf("%d days", days)
		}
		return v.String()
	case []string:
		return strings.Join(v, ", ")
	default:
		return a
	}
}
