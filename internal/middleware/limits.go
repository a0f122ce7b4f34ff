package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
	"github.com/rajasatyajit/CivicTriage/internal/logger"
	"github.com/rajasatyajit/CivicTriage/internal/ratelimit"
)

// SubmissionRateLimit caps how many requests one client address may make
// per minute. Limiter failures let the request through.
func SubmissionRateLimit(limiter ratelimit.Limiter, perMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || perMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			d, err := limiter.CheckRate(r.Context(), clientIP(r), "submit", perMinute)
			if err != nil {
				logger.WithContext(r.Context()).Warn("Rate limiter unavailable; allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(d.ResetSeconds))

			if !d.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(d.ResetSeconds))
				writeRateLimited(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// errorBody matches the API's JSON error response
type errorBody struct {
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error:     http.StatusText(http.StatusTooManyRequests),
		Message:   apperrors.ErrRateLimit.Error(),
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// clientIP strips the port from RemoteAddr. chi's RealIP middleware has
// already applied X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
