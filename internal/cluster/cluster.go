package cluster

import (
	"context"

	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
	"github.com/rajasatyajit/CivicTriage/internal/models"
	"github.com/rajasatyajit/CivicTriage/pkg/utils"
)

// DefaultRadiusMeters is the neighbourhood within which reports count as repeats
const DefaultRadiusMeters = 50.0

// MaxRepetitionScore is reached at SaturationCount nearby reports
const (
	MaxRepetitionScore = 30
	SaturationCount    = 6
	pointsPerReport    = 5
)

// PointSource lists the stored report locations of one category
type PointSource interface {
	ListPoints(ctx context.Context, category string) ([]models.Point, error)
}

// Analyzer counts nearby reports of the same category
type Analyzer struct {
	source  PointSource
	radiusM float64
}

// New creates an analyzer. A non-positive radius selects DefaultRadiusMeters.
func New(source PointSource, radiusM float64) *Analyzer {
	if radiusM <= 0 {
		radiusM = DefaultRadiusMeters
	}
	return &Analyzer{source: source, radiusM: radiusM}
}

// Count returns how many stored reports of category lie within the radius
// of (lat, lng), ignoring excludeID.
func (a *Analyzer) Count(ctx context.Context, lat, lng float64, category, excludeID string) (int, error) {
	if a.source == nil {
		return 0, apperrors.ErrServiceUnavailable
	}

	points, err := a.source.ListPoints(ctx, category)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, p := range points {
		if excludeID != "" && p.ID == excludeID {
			continue
		}
		if utils.WithinMeters(lat, lng, p.Latitude, p.Longitude, a.radiusM) {
			count++
		}
	}
	return count, nil
}

// RepetitionScore scores how often this spot has been reported. A failed
// lookup scores 0 and returns the cause.
func (a *Analyzer) RepetitionScore(ctx context.Context, lat, lng float64, category, excludeID string) (int, error) {
	count, err := a.Count(ctx, lat, lng, category, excludeID)
	if err != nil {
		return 0, err
	}
	return StepScore(count), nil
}

// StepScore maps a nearby-report count to the repetition score
func StepScore(count int) int {
	if count <= 0 {
		return 0
	}
	if count >= SaturationCount {
		return MaxRepetitionScore
	}
	return count * pointsPerReport
}
