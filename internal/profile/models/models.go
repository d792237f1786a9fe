package models

import (
	"time"

	id "hydration/pkg/domain"
)

// DefaultDailyGoalMl is assigned to newly provisioned profiles.
const DefaultDailyGoalMl = 2000

// Profile is the local record for an identity provider subject.
type Profile struct {
	UserID      id.UserID
	Subject     string
	Email       string
	DisplayName string
	BirthDate   *time.Time
	WeightKg    *int
	DailyGoalMl int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpdateRequest replaces the editable profile fields.
type UpdateRequest struct {
	DisplayName *string `json:"displayName"`
	BirthDate   *string `json:"birthDate"`
	WeightKg    *int    `json:"weightKg"`
	DailyGoalMl *int    `json:"dailyGoalMl"`
}

// Response is the JSON view of a profile.
type Response struct {
	UserID      string     `json:"userId"`
	Email       string     `json:"email,omitempty"`
	DisplayName string     `json:"displayName"`
	BirthDate   *time.Time `json:"birthDate"`
	WeightKg    *int       `json:"weightKg"`
	DailyGoalMl int        `json:"dailyGoalMl"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ToResponse converts a profile to its JSON view.
func ToResponse(p *Profile) *Response {
	return &Response{
		UserID:      p.UserID.String(),
		Email:       p.Email,
		DisplayName: p.DisplayName,
		BirthDate:   p.BirthDate,
		WeightKg:    p.WeightKg,
		DailyGoalMl: p.DailyGoalMl,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
