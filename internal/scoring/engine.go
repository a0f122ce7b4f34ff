package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rajasatyajit/CivicTriage/internal/classifier"
	"github.com/rajasatyajit/CivicTriage/internal/cluster"
	"github.com/rajasatyajit/CivicTriage/internal/detection"
	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
	"github.com/rajasatyajit/CivicTriage/internal/logger"
	"github.com/rajasatyajit/CivicTriage/internal/metrics"
	"github.com/rajasatyajit/CivicTriage/internal/models"
)

// DefaultSignalTimeout bounds each remote signal lookup
const DefaultSignalTimeout = 5 * time.Second

// Geocoder resolves coordinates to a place description
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*models.GeocodeResult, error)
}

// Engine computes priority scores for submissions
type Engine struct {
	classifier    *classifier.Classifier
	analyzer      *cluster.Analyzer
	geocoder      Geocoder
	signalTimeout time.Duration
}

// NewEngine creates a scoring engine. geocoder may be nil, in which case
// submissions without a geocode result are classified by coordinates only.
func NewEngine(cls *classifier.Classifier, analyzer *cluster.Analyzer, geocoder Geocoder, signalTimeout time.Duration) *Engine {
	if signalTimeout <= 0 {
		signalTimeout = DefaultSignalTimeout
	}
	return &Engine{
		classifier:    cls,
		analyzer:      analyzer,
		geocoder:      geocoder,
		signalTimeout: signalTimeout,
	}
}

// ScoreSubmission scores one submission. Unavailable signals fall back to
// their defaults, so a result is always returned.
func (e *Engine) ScoreSubmission(ctx context.Context, sub models.Submission) models.ScoreResult {
	start := time.Now()
	log := logger.WithContext(ctx)

	geo := sub.Geocode
	repetition := 0

	// Neither goroutine returns an error; failures are absorbed as fallbacks.
	var g errgroup.Group

	if geo == nil && e.geocoder != nil {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, e.signalTimeout)
			defer cancel()

			res, err := e.geocoder.Reverse(sctx, sub.Latitude, sub.Longitude)
			if err != nil || res == nil {
				e.fallback(ctx, "geocode", err)
				return nil
			}
			geo = res
			return nil
		})
	}

	g.Go(func() error {
		sctx, cancel := context.WithTimeout(ctx, e.signalTimeout)
		defer cancel()

		score, err := e.analyzer.RepetitionScore(sctx, sub.Latitude, sub.Longitude, sub.Category, sub.ExcludeID)
		if err != nil {
			e.fallback(ctx, "repetition", err)
			return nil
		}
		repetition = score
		return nil
	})

	// Detection and manual input are local computations.
	interp := detection.Interpret(sub.Detection)
	size := models.SizeMedium
	if interp.Found {
		size = detection.Bucket(interp.Box.Area())
	}
	manual := classifier.ManualScore(sub.ManualUrgency)

	_ = g.Wait()

	breakdown := models.ScoreBreakdown{
		Location:   e.classifier.LocationScore(geo, sub.Latitude, sub.Longitude),
		Repetition: repetition,
		Size:       SizeScore(size),
		Manual:     manual,
	}
	result := models.ScoreResult{
		PriorityScore:    TotalScore(breakdown.Location, breakdown.Repetition, breakdown.Size, breakdown.Manual),
		SizeBucket:       size,
		Breakdown:        breakdown,
		GeocodeAvailable: geo != nil,
		DetectionShape:   string(interp.Shape),
	}

	metrics.RecordSubmissionScored(sub.Category, result.PriorityScore, time.Since(start))
	log.Debug("Submission scored",
		"category", sub.Category,
		"priority_score", result.PriorityScore,
		"location", breakdown.Location,
		"repetition", breakdown.Repetition,
		"size", breakdown.Size,
		"manual", breakdown.Manual,
	)

	return result
}

func (e *Engine) fallback(ctx context.Context, signal string, err error) {
	reason, cause := classifyFallback(err)

	metrics.RecordSignalFallback(signal, reason)
	logger.WithContext(ctx).Warn("Signal unavailable; using fallback",
		"signal", signal,
		"reason", reason,
		"error", apperrors.SignalError{Signal: signal, Err: cause},
	)
}

// classifyFallback names the fallback reason. Deadline expiries are
// reported as ErrTimeout.
func classifyFallback(err error) (string, error) {
	switch {
	case err == nil:
		return "empty", nil
	case errors.Is(err, apperrors.ErrTimeout):
		return "timeout", err
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout", fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
	case errors.Is(err, apperrors.ErrNoMatch):
		return "no_match", err
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		return "unavailable", err
	default:
		return "error", err
	}
}
