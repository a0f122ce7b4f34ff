package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
	"github.com/rajasatyajit/CivicTriage/internal/models"
)

// InMemoryStore implements Store using in-memory storage. Reports are
// kept in insertion order so listings are deterministic.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports []models.Report
	index   map[string]int // category/id -> position in reports
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		index: make(map[string]int),
	}
}

func key(category, id string) string {
	return category + "/" + id
}

// InsertReport stores a new report
func (s *InMemoryStore) InsertReport(ctx context.Context, report models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(report.Category, report.ID)
	if _, exists := s.index[k]; exists {
		return fmt.Errorf("insert report %s: %w", k, apperrors.ErrConflict)
	}
	s.index[k] = len(s.reports)
	s.reports = append(s.reports, report)
	return nil
}

// QueryReports returns matching reports in insertion order
func (s *InMemoryStore) QueryReports(ctx context.Context, q models.ReportQuery) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Report{}
	for _, r := range s.reports {
		if q.Matches(r) {
			result = append(result, r)
		}
	}
	return result, nil
}

// GetReport retrieves a single report; nil when absent
func (s *InMemoryStore) GetReport(ctx context.Context, category, id string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, exists := s.index[key(category, id)]; exists {
		r := s.reports[i]
		return &r, nil
	}
	return nil, nil
}

// UpdateStatus changes the workflow status of a report
func (s *InMemoryStore) UpdateStatus(ctx context.Context, category, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, exists := s.index[key(category, id)]
	if !exists {
		return apperrors.ErrNotFound
	}
	s.reports[i].Status = status
	s.reports[i].UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteReport removes a report
func (s *InMemoryStore) DeleteReport(ctx context.Context, category, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(category, id)
	i, exists := s.index[k]
	if !exists {
		return apperrors.ErrNotFound
	}
	s.reports = append(s.reports[:i], s.reports[i+1:]...)
	delete(s.index, k)
	for j := i; j < len(s.reports); j++ {
		s.index[key(s.reports[j].Category, s.reports[j].ID)] = j
	}
	return nil
}

// ListPoints returns the coordinates of every report in category
func (s *InMemoryStore) ListPoints(ctx context.Context, category string) ([]models.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var points []models.Point
	for _, r := range s.reports {
		if r.Category == category {
			points = append(points, models.Point{ID: r.ID, Latitude: r.Latitude, Longitude: r.Longitude})
		}
	}
	return points, nil
}

// Health always returns nil for in-memory store
func (s *InMemoryStore) Health(ctx context.Context) error {
	return nil
}
