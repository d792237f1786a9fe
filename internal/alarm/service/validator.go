package service

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"hydration/internal/alarm/models"
	"hydration/internal/platform/messages"
	"hydration/internal/policy"
	id "hydration/pkg/domain"
	"hydration/pkg/temporal"
)

const (
	fieldStart      = "settings.dailyStartTime"
	fieldEnd        = "settings.dailyEndTime"
	fieldInterval   = "settings.intervalMinutes"
	fieldActiveDays = "activeDays"
)

var (
	startField = temporal.StringField(fieldStart, func(r *models.UpdateRequest) *string {
		if r.Settings == nil {
			return nil
		}
		return r.Settings.DailyStartTime
	})
	endField = temporal.StringField(fieldEnd, func(r *models.UpdateRequest) *string {
		if r.Settings == nil {
			return nil
		}
		return r.Settings.DailyEndTime
	})
)

// Window is a validated alarm request.
type Window struct {
	Enabled    bool
	Start      time.Time
	End        time.Time
	Interval   int
	ActiveDays []id.Weekday
}

type compiled struct {
	policy  *policy.Policy
	binding *temporal.Binding[*models.UpdateRequest]
}

// Validator checks alarm requests against the current policy snapshot. The
// binding is rebuilt only when the snapshot changes.
type Validator struct {
	holder *policy.Holder
	cache  atomic.Pointer[compiled]
}

func NewValidator(holder *policy.Holder) *Validator {
	return &Validator{holder: holder}
}

func (v *Validator) compile(p *policy.Policy) (*compiled, error) {
	if c := v.cache.Load(); c != nil && c.policy == p {
		return c, nil
	}
	cfg, err := temporal.NewConfig(
		temporal.RequireSameDay(),
		temporal.RequireSameOffset(),
		temporal.MinimumIntervalMinutes(p.Alarm.MinWindowMinutes),
	)
	if err != nil {
		return nil, fmt.Errorf("alarm rule config: %w", err)
	}
	b, err := temporal.NewBinding(startField, endField, cfg)
	if err != nil {
		return nil, fmt.Errorf("alarm binding: %w", err)
	}
	c := &compiled{policy: p, binding: b}
	v.cache.Store(c)
	return c, nil
}

// Validate returns the accepted window or a *temporal.ValidationError listing
// every violation. A non-validation error means the policy could not be
// compiled into rules.
func (v *Validator) Validate(req *models.UpdateRequest) (*Window, error) {
	p := v.holder.Current()
	c, err := v.compile(p)
	if err != nil {
		return nil, err
	}

	var report temporal.Report
	start, end, violations := c.binding.Check(req)
	report.Merge("", violations...)

	if !hasViolationFor(violations, fieldStart) && start.IsNull() {
		report.Add(fieldStart, messages.KeyRequired)
	}
	if !hasViolationFor(violations, fieldEnd) && end.IsNull() {
		report.Add(fieldEnd, messages.KeyRequired)
	}

	var interval *int
	if req.Settings != nil {
		interval = req.Settings.IntervalMinutes
	}
	if interval == nil {
		report.Add(fieldInterval, messages.KeyRequired)
	}

	if !start.IsNull() && !end.IsNull() {
		report.Merge("", CheckBusinessHours(fieldStart, fieldEnd, start.Time(), end.Time(),
			p.Alarm.BusinessOpen, p.Alarm.BusinessClose)...)
		if len(violations) == 0 && interval != nil {
			report.Merge("", CheckInterval(fieldInterval, start.Time(), end.Time(),
				*interval, p.Alarm.MinNotifications)...)
		}
	}

	days := checkDays(&report, req.ActiveDays)

	if err := report.Err(); err != nil {
		return nil, err
	}
	return &Window{
		Enabled:    req.Enabled != nil && *req.Enabled,
		Start:      start.Time(),
		End:        end.Time(),
		Interval:   *interval,
		ActiveDays: days,
	}, nil
}

func checkDays(report *temporal.Report, raw []string) []id.Weekday {
	days := make([]id.Weekday, 0, len(raw))
	seen := make(map[id.Weekday]bool, len(raw))
	for i, s := range raw {
		field := fieldActiveDays + "[" + strconv.Itoa(i) + "]"
		d, err := id.ParseWeekday(s)
		if err != nil {
			report.Add(field, messages.KeyDayInvalid)
			continue
		}
		if seen[d] {
			report.Add(field, messages.KeyDayDuplicate)
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	return days
}

func hasViolationFor(vs []temporal.Violation, field string) bool {
	for _, v := range vs {
		if v.Field == field {
			return true
		}
	}
	return false
}
