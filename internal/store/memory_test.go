package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
	"github.com/rajasatyajit/CivicTriage/internal/models"
)

func seedStore(t *testing.T) *InMemoryStore {
	t.Helper()
	store := NewInMemoryStore()
	now := time.Now().UTC()
	reports := []models.Report{
		{ID: "p1", Category: "pothole", Latitude: 12.9716, Longitude: 77.5946, PriorityScore: 50, CreatedAt: now},
		{ID: "g1", Category: "garbage", Latitude: 12.9720, Longitude: 77.5950, PriorityScore: 40, Status: "resolved", CreatedAt: now},
		{ID: "p2", Category: "pothole", Latitude: 12.9717, Longitude: 77.5947, PriorityScore: 70, CreatedAt: now},
	}
	for _, r := range reports {
		if err := store.InsertReport(context.Background(), r); err != nil {
			t.Fatalf("Expected no error seeding, got %v", err)
		}
	}
	return store
}

func TestInMemoryStore_InsertReport(t *testing.T) {
	store := seedStore(t)

	if len(store.reports) != 3 {
		t.Errorf("Expected 3 reports, got %d", len(store.reports))
	}

	// Same id in a different category is a different report
	err := store.InsertReport(context.Background(), models.Report{ID: "p1", Category: "garbage"})
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	err = store.InsertReport(context.Background(), models.Report{ID: "p1", Category: "pothole"})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("Expected ErrConflict for duplicate, got %v", err)
	}
}

func TestInMemoryStore_QueryReports(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		query   models.ReportQuery
		wantIDs []string
	}{
		{"all", models.ReportQuery{}, []string{"p1", "g1", "p2"}},
		{"by category", models.ReportQuery{Categories: []string{"pothole"}}, []string{"p1", "p2"}},
		{"by default status", models.ReportQuery{Statuses: []string{"pending"}}, []string{"p1", "p2"}},
		{"by status", models.ReportQuery{Statuses: []string{"resolved"}}, []string{"g1"}},
		{"no match", models.ReportQuery{Categories: []string{"waterleak"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports, err := store.QueryReports(ctx, tt.query)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			ids := []string{}
			for _, r := range reports {
				ids = append(ids, r.ID)
			}
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("Unexpected ids (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInMemoryStore_GetReport(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	r, err := store.GetReport(ctx, "pothole", "p2")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r == nil || r.PriorityScore != 70 {
		t.Errorf("Expected report p2 with score 70, got %+v", r)
	}

	r, err = store.GetReport(ctx, "garbage", "p2")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if r != nil {
		t.Errorf("Expected nil for report in another category, got %+v", r)
	}
}

func TestInMemoryStore_UpdateStatus(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	if err := store.UpdateStatus(ctx, "pothole", "p1", "in_progress"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	r, _ := store.GetReport(ctx, "pothole", "p1")
	if r.Status != "in_progress" {
		t.Errorf("Expected status in_progress, got %s", r.Status)
	}
	if r.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set")
	}

	err := store.UpdateStatus(ctx, "pothole", "missing", "resolved")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryStore_DeleteReport(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	if err := store.DeleteReport(ctx, "pothole", "p1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Remaining reports must still be addressable after the index shift
	r, _ := store.GetReport(ctx, "pothole", "p2")
	if r == nil || r.ID != "p2" {
		t.Errorf("Expected p2 after delete, got %+v", r)
	}
	r, _ = store.GetReport(ctx, "garbage", "g1")
	if r == nil || r.ID != "g1" {
		t.Errorf("Expected g1 after delete, got %+v", r)
	}

	err := store.DeleteReport(ctx, "pothole", "p1")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestInMemoryStore_ListPoints(t *testing.T) {
	store := seedStore(t)

	points, err := store.ListPoints(context.Background(), "pothole")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []models.Point{
		{ID: "p1", Latitude: 12.9716, Longitude: 77.5946},
		{ID: "p2", Latitude: 12.9717, Longitude: 77.5947},
	}
	if diff := cmp.Diff(want, points); diff != "" {
		t.Errorf("Unexpected points (-want +got):\n%s", diff)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.ListPoints(ctx, "pothole"); err == nil {
		t.Error("Expected error for canceled context")
	}
}

func TestInMemoryStore_Health(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.Health(context.Background()); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
