package models

import (
	"strings"
	"testing"
)

func TestReportQuery_Matches(t *testing.T) {
	report := Report{
		ID:       "r-1",
		Category: "pothole",
		Status:   "",
	}

	tests := []struct {
		name     string
		query    ReportQuery
		expected bool
	}{
		{
			name:     "Empty query matches all",
			query:    ReportQuery{},
			expected: true,
		},
		{
			name:     "Category filter matches",
			query:    ReportQuery{Categories: []string{"garbage", "pothole"}},
			expected: true,
		},
		{
			name:     "Category filter doesn't match",
			query:    ReportQuery{Categories: []string{"garbage"}},
			expected: false,
		},
		{
			name:     "Empty status is treated as pending",
			query:    ReportQuery{Statuses: []string{"pending"}},
			expected: true,
		},
		{
			name:     "Status filter doesn't match",
			query:    ReportQuery{Statuses: []string{"resolved"}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(report); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestReport_ViewDefaults(t *testing.T) {
	long := strings.Repeat("a", 45)

	tests := []struct {
		name       string
		report     Report
		title      string
		reportedBy string
		status     string
	}{
		{
			name:       "Empty report",
			report:     Report{},
			title:      "Civic Issue",
			reportedBy: "Anonymous",
			status:     "pending",
		},
		{
			name:       "Short description",
			report:     Report{Description: "Deep pothole", Contact: "ravi@example.com", Status: "resolved"},
			title:      "Deep pothole",
			reportedBy: "ravi@example.com",
			status:     "resolved",
		},
		{
			name:       "Long description is truncated",
			report:     Report{Description: long},
			title:      strings.Repeat("a", 30) + "...",
			reportedBy: "Anonymous",
			status:     "pending",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.Title(); got != tt.title {
				t.Errorf("Expected title %q, got %q", tt.title, got)
			}
			if got := tt.report.ReportedBy(); got != tt.reportedBy {
				t.Errorf("Expected reporter %q, got %q", tt.reportedBy, got)
			}
			if got := tt.report.EffectiveStatus(); got != tt.status {
				t.Errorf("Expected status %q, got %q", tt.status, got)
			}
		})
	}
}
