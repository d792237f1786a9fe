package models

import (
	"time"

	id "hydration/pkg/domain"
)

// Sort directions accepted by search.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// Intake is one logged drink.
type Intake struct {
	ID         id.IntakeID
	UserID     id.UserID
	VolumeMl   int
	ConsumedAt time.Time
	CreatedAt  time.Time
}

// LogRequest records a drink.
type LogRequest struct {
	VolumeMl   *int    `json:"volumeMl"`
	ConsumedAt *string `json:"consumedAt"`
}

// SearchRequest holds raw query parameters. Empty strings mean absent.
type SearchRequest struct {
	From          *string
	To            *string
	MinVolume     string
	MaxVolume     string
	SortField     string
	SortDirection string
	Page          string
	Size          string
}

// Filter is a validated search. SortField is one of the allow-listed names.
type Filter struct {
	From          *time.Time
	To            *time.Time
	MinVolume     *int
	MaxVolume     *int
	SortField     string
	SortDirection string
	Page          int
	Size          int
}

// Page is one page of search results.
type Page struct {
	Items []*Intake
	Page  int
	Size  int
	Total int
}

// DailySummary is a user's intake for one UTC day against their goal.
type DailySummary struct {
	Date        string `json:"date"`
	TotalMl     int    `json:"totalMl"`
	Count       int    `json:"count"`
	GoalMl      int    `json:"goalMl"`
	RemainingMl int    `json:"remainingMl"`
	Percent     int    `json:"percent"`
}

// NewDailySummary derives the remaining volume and progress percentage.
func NewDailySummary(date string, total, count, goal int) *DailySummary {
	s := &DailySummary{Date: date, TotalMl: total, Count: count, GoalMl: goal}
	s.RemainingMl = max(goal-total, 0)
	if goal > 0 {
		s.Percent = total * 100 / goal
	}
	return s
}

// Response is the JSON view of an intake.
type Response struct {
	ID         string    `json:"id"`
	VolumeMl   int       `json:"volumeMl"`
	ConsumedAt time.Time `json:"consumedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PageResponse is the JSON view of a search page.
type PageResponse struct {
	Items []*Response `json:"items"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
	Total int         `json:"total"`
}

func ToResponse(i *Intake) *Response {
	return &Response{
		ID:         i.ID.String(),
		VolumeMl:   i.VolumeMl,
		ConsumedAt: i.ConsumedAt,
		CreatedAt:  i.CreatedAt,
	}
}

func ToPageResponse(p *Page) *PageResponse {
	items := make([]*Response, 0, len(p.Items))
	for _, i := range p.Items {
		items = append(items, ToResponse(i))
	}
	return &PageResponse{Items: items, Page: p.Page, Size: p.Size, Total: p.Total}
}
