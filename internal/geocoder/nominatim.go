package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
	"github.com/rajasatyajit/CivicTriage/internal/models"
)

const (
	// DefaultBaseURL is the public Nominatim API endpoint
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent is sent on every request as Nominatim requires
	DefaultUserAgent = "CivicTriage/1.0"
)

// NominatimOptions configures the Nominatim client
type NominatimOptions struct {
	BaseURL           string
	UserAgent         string
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Nominatim is a rate limited client for the Nominatim reverse endpoint
type Nominatim struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type nominatimResponse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

// NewNominatim creates a client. Zero options select the public endpoint
// at one request per second.
func NewNominatim(opts NominatimOptions) *Nominatim {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Nominatim{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
}

// Reverse performs reverse geocoding. A location Nominatim cannot resolve
// returns ErrNoMatch.
func (n *Nominatim) Reverse(ctx context.Context, lat, lng float64) (*models.GeocodeResult, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("nominatim rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 7, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', 7, 64))
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nominatim returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var nr nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if nr.Error != "" {
		return nil, fmt.Errorf("nominatim: %s: %w", nr.Error, apperrors.ErrNoMatch)
	}

	return &models.GeocodeResult{DisplayName: nr.DisplayName, Address: nr.Address}, nil
}
