package intake

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/rajasatyajit/CivicTriage/config"
	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
	"github.com/rajasatyajit/CivicTriage/internal/logger"
	"github.com/rajasatyajit/CivicTriage/internal/models"
	"github.com/rajasatyajit/CivicTriage/internal/scoring"
)

// Scorer computes the priority of a submission
type Scorer interface {
	ScoreSubmission(ctx context.Context, sub models.Submission) models.ScoreResult
}

// Store interface for report storage
type Store interface {
	InsertReport(ctx context.Context, report models.Report) error
	QueryReports(ctx context.Context, q models.ReportQuery) ([]models.Report, error)
	GetReport(ctx context.Context, category, id string) (*models.Report, error)
	UpdateStatus(ctx context.Context, category, id, status string) error
	DeleteReport(ctx context.Context, category, id string) error
	Health(ctx context.Context) error
}

// SubmitRequest is a citizen report as received from a client
type SubmitRequest struct {
	Latitude       *float64               `json:"latitude"`
	Longitude      *float64               `json:"longitude"`
	Category       string                 `json:"category"`
	Classification string                 `json:"classification"`
	Address        string                 `json:"address"`
	Description    string                 `json:"description"`
	Urgency        string                 `json:"urgency"`
	Contact        string                 `json:"contact"`
	ImageURL       string                 `json:"image_url"`
	Detection      models.DetectionOutput `json:"detection"`
	Geocode        *models.GeocodeResult  `json:"geocode,omitempty"`
}

// ListOptions filters and pages a ranked listing
type ListOptions struct {
	Category string
	Status   string
	Limit    int
	Offset   int
}

// Service accepts, scores, stores and retrieves reports
type Service struct {
	store      Store
	scorer     Scorer
	categories models.CategorySet
	cfg        config.IntakeConfig
	sem        *semaphore.Weighted

	newID func() string
	now   func() time.Time
}

// New creates a new intake service
func New(store Store, scorer Scorer, categories models.CategorySet, cfg config.IntakeConfig) *Service {
	workers := cfg.MaxConcurrent
	if workers < 1 {
		workers = 1
	}

	logger.Info("Intake service initialized",
		"categories", categories.Names(),
		"max_concurrent", workers,
	)

	return &Service{
		store:      store,
		scorer:     scorer,
		categories: categories,
		cfg:        cfg,
		sem:        semaphore.NewWeighted(int64(workers)),
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Categories returns the configured report categories
func (s *Service) Categories() []string {
	return s.categories.Names()
}

// ResolveCategory picks the report category from the requested category,
// then the classifier label, then the fallback.
func (s *Service) ResolveCategory(req SubmitRequest) string {
	return s.categories.Resolve(req.Category, req.Classification)
}

// Submit scores a new report and stores it
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Report, models.ScoreResult, error) {
	lat, lng, err := validateCoordinates(req.Latitude, req.Longitude)
	if err != nil {
		return nil, models.ScoreResult{}, err
	}

	now := s.now().UTC()
	report := models.Report{
		ID:             s.newID(),
		Category:       s.ResolveCategory(req),
		Latitude:       lat,
		Longitude:      lng,
		Address:        strings.TrimSpace(req.Address),
		Description:    strings.TrimSpace(req.Description),
		ManualUrgency:  strings.TrimSpace(req.Urgency),
		Contact:        strings.TrimSpace(req.Contact),
		ImageURL:       strings.TrimSpace(req.ImageURL),
		Classification: strings.ToLower(strings.TrimSpace(req.Classification)),
		Status:         models.DefaultStatus,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if report.Address == "" && req.Geocode != nil {
		report.Address = req.Geocode.DisplayName
	}
	if report.Classification == "" {
		report.Classification = report.Category
	}

	result, err := s.score(ctx, report.Category, lat, lng, req)
	if err != nil {
		return nil, models.ScoreResult{}, err
	}
	report.PriorityScore = result.PriorityScore
	report.SizeBucket = result.SizeBucket

	if err := s.insertWithRetry(ctx, report); err != nil {
		return nil, models.ScoreResult{}, err
	}

	logger.WithContext(ctx).Info("Report submitted",
		"id", report.ID,
		"category", report.Category,
		"priority_score", report.PriorityScore,
		"size_bucket", report.SizeBucket,
	)

	return &report, result, nil
}

// Preview scores a report without storing it
func (s *Service) Preview(ctx context.Context, req SubmitRequest) (models.ScoreResult, error) {
	lat, lng, err := validateCoordinates(req.Latitude, req.Longitude)
	if err != nil {
		return models.ScoreResult{}, err
	}
	return s.score(ctx, s.ResolveCategory(req), lat, lng, req)
}

func (s *Service) score(ctx context.Context, category string, lat, lng float64, req SubmitRequest) (models.ScoreResult, error) {
	// Bound concurrent scorings; each one fans out to the geocoder and the store
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return models.ScoreResult{}, fmt.Errorf("acquire scoring slot: %w", apperrors.ErrServiceUnavailable)
	}
	defer s.sem.Release(1)

	return s.scorer.ScoreSubmission(ctx, models.Submission{
		Latitude:      lat,
		Longitude:     lng,
		Category:      category,
		Geocode:       req.Geocode,
		Detection:     req.Detection,
		ManualUrgency: req.Urgency,
	}), nil
}

func (s *Service) insertWithRetry(ctx context.Context, report models.Report) error {
	var err error
	for attempt := 0; attempt <= s.cfg.StoreRetryAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * s.cfg.StoreRetryDelay
			logger.Debug("Retrying insert", "id", report.ID, "attempt", attempt, "delay", delay)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err = s.store.InsertReport(ctx, report)
		if err == nil || errors.Is(err, apperrors.ErrConflict) {
			return err
		}

		logger.Warn("Insert attempt failed",
			"id", report.ID,
			"attempt", attempt+1,
			"error", err,
		)
	}
	return fmt.Errorf("store report after %d attempts: %w", s.cfg.StoreRetryAttempts+1, err)
}

// List returns reports ranked by priority, highest first, with the total
// number of matches before paging. An empty or unknown category lists
// every category.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]models.Report, int, error) {
	q := models.ReportQuery{}
	if cat, ok := s.categories.Lookup(opts.Category); ok {
		q.Categories = []string{cat}
	} else {
		q.Categories = s.categories.Names()
	}
	if st := strings.TrimSpace(opts.Status); st != "" {
		q.Statuses = []string{st}
	}

	reports, err := s.store.QueryReports(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	ranked := scoring.RankReports(reports)
	total := len(ranked)

	start := opts.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < total {
		end = start + opts.Limit
	}
	return ranked[start:end], total, nil
}

// Get returns one report
func (s *Service) Get(ctx context.Context, category, id string) (*models.Report, error) {
	cat, err := s.lookupCategory(category)
	if err != nil {
		return nil, err
	}
	r, err := s.store.GetReport(ctx, cat, id)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if r == nil {
		return nil, apperrors.ErrNotFound
	}
	return r, nil
}

// UpdateStatus sets the workflow status of a report
func (s *Service) UpdateStatus(ctx context.Context, category, id, status string) error {
	cat, err := s.lookupCategory(category)
	if err != nil {
		return err
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return apperrors.ValidationError{Field: "status", Message: "Status is required"}
	}
	if err := s.store.UpdateStatus(ctx, cat, id, status); err != nil {
		return err
	}
	logger.WithContext(ctx).Info("Report status updated", "id", id, "category", cat, "status", status)
	return nil
}

// Delete removes a report
func (s *Service) Delete(ctx context.Context, category, id string) error {
	cat, err := s.lookupCategory(category)
	if err != nil {
		return err
	}
	if err := s.store.DeleteReport(ctx, cat, id); err != nil {
		return err
	}
	logger.WithContext(ctx).Info("Report deleted", "id", id, "category", cat)
	return nil
}

// Health checks the backing store
func (s *Service) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

func (s *Service) lookupCategory(category string) (string, error) {
	cat, ok := s.categories.Lookup(category)
	if !ok {
		return "", apperrors.ValidationError{Field: "category", Message: "Invalid category"}
	}
	return cat, nil
}

// validateCoordinates requires both coordinates and checks their ranges
func validateCoordinates(lat, lng *float64) (float64, float64, error) {
	if lat == nil {
		return 0, 0, apperrors.ValidationError{Field: "latitude", Message: "is required"}
	}
	if lng == nil {
		return 0, 0, apperrors.ValidationError{Field: "longitude", Message: "is required"}
	}
	if math.IsNaN(*lat) || math.IsInf(*lat, 0) || *lat < -90 || *lat > 90 {
		return 0, 0, apperrors.ValidationError{Field: "latitude", Message: "must be between -90 and 90"}
	}
	if math.IsNaN(*lng) || math.IsInf(*lng, 0) || *lng < -180 || *lng > 180 {
		return 0, 0, apperrors.ValidationError{Field: "longitude", Message: "must be between -180 and 180"}
	}
	return *lat, *lng, nil
}
