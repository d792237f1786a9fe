// Package policy loads the validation policy: business hours, notification
// limits, search limits and profile age limits. The policy can be reloaded at
// runtime; readers take one immutable snapshot per validation call.
package policy

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"hydration/pkg/temporal"
)

const (
	defaultBusinessOpen         = "06:00"
	defaultBusinessClose        = "22:00"
	defaultMinWindowMinutes     = 60
	defaultMinNotifications     = 1
	defaultMaxSearchSpanDays    = 31
	defaultMaxPageSize          = 100
	defaultDefaultPageSize      = 20
	defaultMinVolumeMl          = 1
	defaultMaxVolumeMl          = 5000
	defaultMinimumAge           = 13
	defaultMinDailyGoalMl       = 250
	defaultMaxDailyGoalMl       = 10000
	defaultIntakeBackfillWindow = 7
)

// SortableFields are the intake fields the stores know how to order by. A
// policy may narrow this list but never extend it.
var SortableFields = []string{"consumedAt", "volumeMl", "createdAt"}

// ErrInvalidPolicy reports a policy file that decodes but is inconsistent.
var ErrInvalidPolicy = errors.New("invalid policy")

// Policy is an immutable validated snapshot. Do not mutate a Policy obtained
// from a Holder.
type Policy struct {
	Alarm   AlarmPolicy
	Intake  IntakePolicy
	Profile ProfilePolicy
}

// AlarmPolicy bounds alarm windows.
type AlarmPolicy struct {
	BusinessOpen     temporal.TimeOfDay
	BusinessClose    temporal.TimeOfDay
	MinWindowMinutes int
	MinNotifications int
}

// IntakePolicy bounds intake logging and search.
type IntakePolicy struct {
	MinVolumeMl     int
	MaxVolumeMl     int
	MaxSearchSpan   time.Duration
	BackfillWindow  time.Duration
	SortFields      []string
	DefaultPageSize int
	MaxPageSize     int
}

// ProfilePolicy bounds profile fields.
type ProfilePolicy struct {
	MinimumAge     int
	MinDailyGoalMl int
	MaxDailyGoalMl int
}

// AllowsSortField reports whether field is in the sortable allow-list.
func (p IntakePolicy) AllowsSortField(field string) bool {
	for _, f := range p.SortFields {
		if f == field {
			return true
		}
	}
	return false
}

type rawPolicy struct {
	Alarm struct {
		BusinessHoursOpen    string `toml:"business_hours_open"`
		BusinessHoursClose   string `toml:"business_hours_close"`
		MinimumWindowMinutes int    `toml:"minimum_window_minutes"`
		MinimumNotifications int    `toml:"minimum_notifications"`
	} `toml:"alarm"`
	Intake struct {
		MinVolumeMl        int      `toml:"min_volume_ml"`
		MaxVolumeMl        int      `toml:"max_volume_ml"`
		MaxSearchSpanDays  int      `toml:"max_search_span_days"`
		BackfillWindowDays int      `toml:"backfill_window_days"`
		SortFields         []string `toml:"sort_fields"`
		DefaultPageSize    int      `toml:"default_page_size"`
		MaxPageSize        int      `toml:"max_page_size"`
	} `toml:"intake"`
	Profile struct {
		MinimumAge     int `toml:"minimum_age"`
		MinDailyGoalMl int `toml:"min_daily_goal_ml"`
		MaxDailyGoalMl int `toml:"max_daily_goal_ml"`
	} `toml:"profile"`
}

// Default returns the built-in policy used when no file is configured.
func Default() *Policy {
	p, err := normalize(rawPolicy{})
	if err != nil {
		panic(fmt.Sprintf("default policy: %v", err))
	}
	return p
}

// Load reads a TOML policy file. Missing keys take defaults.
func Load(path string) (*Policy, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file %q: %w", path, err)
	}
	return Parse(body)
}

// Parse decodes a TOML policy document.
func Parse(body []byte) (*Policy, error) {
	var raw rawPolicy
	if err := toml.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}
	return normalize(raw)
}

func normalize(raw rawPolicy) (*Policy, error) {
	open, err := temporal.ParseTimeOfDay(orDefault(raw.Alarm.BusinessHoursOpen, defaultBusinessOpen))
	if err != nil {
		return nil, fmt.Errorf("%w: alarm.business_hours_open: %v", ErrInvalidPolicy, err)
	}
	closing, err := temporal.ParseTimeOfDay(orDefault(raw.Alarm.BusinessHoursClose, defaultBusinessClose))
	if err != nil {
		return nil, fmt.Errorf("%w: alarm.business_hours_close: %v", ErrInvalidPolicy, err)
	}
	if open >= closing {
		return nil, fmt.Errorf("%w: business hours open %s must be before close %s", ErrInvalidPolicy, open, closing)
	}

	p := &Policy{
		Alarm: AlarmPolicy{
			BusinessOpen:     open,
			BusinessClose:    closing,
			MinWindowMinutes: orDefaultInt(raw.Alarm.MinimumWindowMinutes, defaultMinWindowMinutes),
			MinNotifications: orDefaultInt(raw.Alarm.MinimumNotifications, defaultMinNotifications),
		},
		Intake: IntakePolicy{
			MinVolumeMl:     orDefaultInt(raw.Intake.MinVolumeMl, defaultMinVolumeMl),
			MaxVolumeMl:     orDefaultInt(raw.Intake.MaxVolumeMl, defaultMaxVolumeMl),
			MaxSearchSpan:   days(orDefaultInt(raw.Intake.MaxSearchSpanDays, defaultMaxSearchSpanDays)),
			BackfillWindow:  days(orDefaultInt(raw.Intake.BackfillWindowDays, defaultIntakeBackfillWindow)),
			SortFields:      sortFields(raw.Intake.SortFields),
			DefaultPageSize: orDefaultInt(raw.Intake.DefaultPageSize, defaultDefaultPageSize),
			MaxPageSize:     orDefaultInt(raw.Intake.MaxPageSize, defaultMaxPageSize),
		},
		Profile: ProfilePolicy{
			MinimumAge:     orDefaultInt(raw.Profile.MinimumAge, defaultMinimumAge),
			MinDailyGoalMl: orDefaultInt(raw.Profile.MinDailyGoalMl, defaultMinDailyGoalMl),
			MaxDailyGoalMl: orDefaultInt(raw.Profile.MaxDailyGoalMl, defaultMaxDailyGoalMl),
		},
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Policy) validate() error {
	var problems []string
	window := p.Alarm.BusinessClose.Minutes() - p.Alarm.BusinessOpen.Minutes()
	if p.Alarm.MinWindowMinutes <= 0 || p.Alarm.MinWindowMinutes > window {
		problems = append(problems, "alarm.minimum_window_minutes must be positive and fit in business hours")
	}
	if p.Alarm.MinNotifications <= 0 {
		problems = append(problems, "alarm.minimum_notifications must be positive")
	}
	if p.Intake.MinVolumeMl <= 0 || p.Intake.MinVolumeMl > p.Intake.MaxVolumeMl {
		problems = append(problems, "intake volume bounds must be positive and ordered")
	}
	if p.Intake.MaxSearchSpan <= 0 || p.Intake.BackfillWindow <= 0 {
		problems = append(problems, "intake day spans must be positive")
	}
	if p.Intake.DefaultPageSize <= 0 || p.Intake.DefaultPageSize > p.Intake.MaxPageSize {
		problems = append(problems, "intake page sizes must be positive and ordered")
	}
	if len(p.Intake.SortFields) == 0 {
		problems = append(problems, "intake.sort_fields must name at least one field")
	}
	for _, f := range p.Intake.SortFields {
		if !slices.Contains(SortableFields, f) {
			problems = append(problems, fmt.Sprintf("intake.sort_fields: %q is not sortable", f))
		}
	}
	if p.Profile.MinimumAge <= 0 {
		problems = append(problems, "profile.minimum_age must be positive")
	}
	if p.Profile.MinDailyGoalMl <= 0 || p.Profile.MinDailyGoalMl > p.Profile.MaxDailyGoalMl {
		problems = append(problems, "profile daily goal bounds must be positive and ordered")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPolicy, strings.Join(problems, "; "))
	}
	return nil
}

func sortFields(in []string) []string {
	if len(in) == 0 {
		return append([]string(nil), SortableFields...)
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, f := range in {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func orDefaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
