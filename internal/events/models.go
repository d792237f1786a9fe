// Package events publishes domain events to NATS.
package events

import "time"

// Event types, appended to the configured subject prefix.
const (
	TypeIntakeLogged  = "intake.logged"
	TypeIntakeDeleted = "intake.deleted"
	TypeAlarmUpdated  = "alarm.updated"
	TypeProfileErased = "profile.erased"
)

// Event is emitted from services after a state change is persisted.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	UserID     string         `json:"userId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data,omitempty"`
}
