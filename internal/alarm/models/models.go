package models

import (
	"time"

	id "hydration/pkg/domain"
)

// Alarm is a user's reminder schedule. The window is stored as two UTC
// instants on the same day; only their clock times matter for firing.
type Alarm struct {
	UserID          id.UserID
	Enabled         bool
	DailyStartTime  time.Time
	DailyEndTime    time.Time
	IntervalMinutes int
	ActiveDays      []id.Weekday
	UpdatedAt       time.Time
}

// UpdateRequest replaces a user's alarm.
type UpdateRequest struct {
	Enabled    *bool            `json:"enabled"`
	Settings   *SettingsRequest `json:"settings"`
	ActiveDays []string         `json:"activeDays"`
}

// SettingsRequest carries the alarm window as submitted.
type SettingsRequest struct {
	DailyStartTime  *string `json:"dailyStartTime"`
	DailyEndTime    *string `json:"dailyEndTime"`
	IntervalMinutes *int    `json:"intervalMinutes"`
}

// Response is the JSON view of an alarm with its derived schedule.
type Response struct {
	Enabled           bool             `json:"enabled"`
	Settings          SettingsResponse `json:"settings"`
	ActiveDays        []string         `json:"activeDays"`
	NotificationCount int              `json:"notificationCount"`
	Schedule          []string         `json:"schedule"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

type SettingsResponse struct {
	DailyStartTime  time.Time `json:"dailyStartTime"`
	DailyEndTime    time.Time `json:"dailyEndTime"`
	IntervalMinutes int       `json:"intervalMinutes"`
}

// DayStrings returns the active days as strings.
func (a *Alarm) DayStrings() []string {
	out := make([]string, 0, len(a.ActiveDays))
	for _, d := range a.ActiveDays {
		out = append(out, d.String())
	}
	return out
}
