package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
	"github.com/rajasatyajit/CivicTriage/internal/logger"
	"github.com/rajasatyajit/CivicTriage/internal/metrics"
	"github.com/rajasatyajit/CivicTriage/internal/models"
)

const (
	// DefaultGridMeters is the coordinate rounding applied to cache keys
	DefaultGridMeters = 25.0
	// DefaultCacheTTL is how long cached results are valid
	DefaultCacheTTL = 30 * 24 * time.Hour

	metersPerDegree = 111320.0
	noMatchMarker   = "-"
)

// Cached wraps a geocoder with a Redis read-through cache. Nearby points
// share a cache entry by rounding to a grid.
type Cached struct {
	next    Geocoder
	rdb     *redis.Client
	ttl     time.Duration
	gridDeg float64
}

// NewCached creates a cached geocoder
func NewCached(next Geocoder, rdb *redis.Client, ttl time.Duration, gridMeters float64) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if gridMeters <= 0 {
		gridMeters = DefaultGridMeters
	}
	return &Cached{
		next:    next,
		rdb:     rdb,
		ttl:     ttl,
		gridDeg: gridMeters / metersPerDegree,
	}
}

// Key returns the cache key for a coordinate
func (c *Cached) Key(lat, lng float64) string {
	return fmt.Sprintf("geocode:%.6f:%.6f", c.round(lat), c.round(lng))
}

func (c *Cached) round(coord float64) float64 {
	v := math.Round(coord/c.gridDeg) * c.gridDeg
	if v == 0 {
		// avoid "-0.000000" keys
		return 0
	}
	return v
}

// Reverse returns a cached result when present, otherwise asks the wrapped
// geocoder and stores its answer. Cache errors never fail the lookup.
func (c *Cached) Reverse(ctx context.Context, lat, lng float64) (*models.GeocodeResult, error) {
	key := c.Key(lat, lng)
	log := logger.WithContext(ctx)

	raw, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.RecordGeocodeCache("hit")
		if raw == noMatchMarker {
			return nil, apperrors.ErrNoMatch
		}
		var res models.GeocodeResult
		if err := json.Unmarshal([]byte(raw), &res); err == nil {
			return &res, nil
		}
		log.Warn("Discarding unreadable geocode cache entry", "key", key)
	case errors.Is(err, redis.Nil):
		metrics.RecordGeocodeCache("miss")
	default:
		metrics.RecordGeocodeCache("error")
		log.Warn("Geocode cache read failed", "key", key, "error", err)
	}

	res, err := c.next.Reverse(ctx, lat, lng)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoMatch) {
			c.store(ctx, key, noMatchMarker)
		}
		return nil, err
	}

	if data, err := json.Marshal(res); err == nil {
		c.store(ctx, key, string(data))
	}
	return res, nil
}

func (c *Cached) store(ctx context.Context, key, value string) {
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		logger.WithContext(ctx).Warn("Failed to cache geocode result", "key", key, "error", err)
	}
}
