package geocoder

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/rajasatyajit/CivicTriage/config"
	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
	"github.com/rajasatyajit/CivicTriage/internal/models"
)

// Geocoder resolves coordinates to a place description
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*models.GeocodeResult, error)
}

// Disabled is used when reverse geocoding is switched off
type Disabled struct{}

// Reverse always reports the service as unavailable
func (Disabled) Reverse(ctx context.Context, lat, lng float64) (*models.GeocodeResult, error) {
	return nil, apperrors.ErrServiceUnavailable
}

// New builds the configured geocoder. When rdb is non-nil the Nominatim
// client is wrapped in a Redis read-through cache.
func New(cfg config.GeocoderConfig, rdb *redis.Client) Geocoder {
	if !cfg.Enabled {
		return Disabled{}
	}

	client := NewNominatim(NominatimOptions{
		BaseURL:           cfg.BaseURL,
		UserAgent:         cfg.UserAgent,
		RequestsPerSecond: cfg.RequestsPerSecond,
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
	})
	if rdb == nil {
		return client
	}
	return NewCached(client, rdb, cfg.CacheTTL, cfg.CacheGridMeters)
}
