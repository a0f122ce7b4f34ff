package models

import (
	"strings"
	"time"
)

// Default values applied when a stored report is missing optional fields
const (
	DefaultStatus     = "pending"
	DefaultReporter   = "Anonymous"
	DefaultTitle      = "Civic Issue"
	titlePreviewRunes = 30
)

// Report represents a citizen-submitted civic issue report
type Report struct {
	ID             string     `json:"id" db:"id"`
	Category       string     `json:"category" db:"category"`
	Latitude       float64    `json:"latitude" db:"latitude"`
	Longitude      float64    `json:"longitude" db:"longitude"`
	Address        string     `json:"address" db:"address"`
	Description    string     `json:"description" db:"description"`
	ManualUrgency  string     `json:"urgency" db:"urgency"`
	Contact        string     `json:"contact" db:"contact"`
	ImageURL       string     `json:"image_url" db:"image_url"`
	Classification string     `json:"classification" db:"classification"`
	SizeBucket     SizeBucket `json:"size_bucket" db:"size_bucket"`
	PriorityScore  int        `json:"priority_score" db:"priority_score"`
	Status         string     `json:"status" db:"status"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Title returns a short headline derived from the description
func (r Report) Title() string {
	desc := strings.TrimSpace(r.Description)
	if desc == "" {
		return DefaultTitle
	}
	runes := []rune(desc)
	if len(runes) > titlePreviewRunes {
		return string(runes[:titlePreviewRunes]) + "..."
	}
	return desc
}

// ReportedBy returns the contact or the anonymous placeholder
func (r Report) ReportedBy() string {
	if strings.TrimSpace(r.Contact) == "" {
		return DefaultReporter
	}
	return r.Contact
}

// EffectiveStatus returns the workflow status, defaulting to pending
func (r Report) EffectiveStatus() string {
	if r.Status == "" {
		return DefaultStatus
	}
	return r.Status
}

// Point is the location projection of a stored report used for clustering
type Point struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ReportQuery represents filters for listing reports
type ReportQuery struct {
	Categories []string `json:"categories"`
	Statuses   []string `json:"statuses"`
}

// Matches checks if a report matches the query criteria
func (q ReportQuery) Matches(r Report) bool {
	if len(q.Categories) > 0 && !contains(q.Categories, r.Category) {
		return false
	}
	if len(q.Statuses) > 0 && !contains(q.Statuses, r.EffectiveStatus()) {
		return false
	}
	return true
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
