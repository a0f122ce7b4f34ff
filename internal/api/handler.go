package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
	"github.com/rajasatyajit/CivicTriage/internal/intake"
	"github.com/rajasatyajit/CivicTriage/internal/logger"
)

// Handler handles HTTP requests for the API
type Handler struct {
	svc         *intake.Service
	submitLimit func(http.Handler) http.Handler
	version     string
	buildTime   string
	gitCommit   string
	startTime   time.Time
}

// NewHandler creates a new API handler
func NewHandler(svc *intake.Service, version, buildTime, gitCommit string) *Handler {
	return &Handler{
		svc:       svc,
		version:   version,
		buildTime: buildTime,
		gitCommit: gitCommit,
		startTime: time.Now(),
	}
}

// WithSubmissionLimit installs middleware applied to the POST report routes
func (h *Handler) WithSubmissionLimit(mw func(http.Handler) http.Handler) *Handler {
	h.submitLimit = mw
	return h
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		// Health check endpoints
		r.Get("/health", h.healthHandler)
		r.Get("/health/ready", h.readinessHandler)
		r.Get("/health/live", h.livenessHandler)

		r.Get("/categories", h.categoriesHandler)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", h.listReportsHandler)

			r.Group(func(r chi.Router) {
				if h.submitLimit != nil {
					r.Use(h.submitLimit)
				}
				r.Post("/", h.submitReportHandler)
				r.Post("/score", h.previewScoreHandler)
			})

			r.Get("/{category}/{id}", h.getReportHandler)
			r.Patch("/{category}/{id}", h.updateStatusHandler)
			r.Delete("/{category}/{id}", h.deleteReportHandler)
		})

		// System info
		r.Get("/version", h.versionHandler)
	})

	// Root health check
	r.Get("/health", h.healthHandler)
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler checks if the application is ready to serve traffic
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"store": "ok",
	}

	status := "ready"
	statusCode := http.StatusOK

	if err := h.svc.Health(ctx); err != nil {
		checks["store"] = "error: " + err.Error()
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// livenessHandler checks if the application is alive
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"git_commit": h.gitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

func (h *Handler) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"data": h.svc.Categories(),
	})
}

// writeServiceError maps service errors onto HTTP status codes
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if ve, ok := apperrors.AsValidation(err); ok {
		h.writeErrorResponse(w, r, http.StatusBadRequest, ve.Field+": "+ve.Message)
		return
	}
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		h.writeErrorResponse(w, r, http.StatusNotFound, "Report not found")
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		logger.WithContext(r.Context()).Error("Failed to "+action, "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

// writeJSONResponse writes a JSON response
func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetReqID(r.Context()),
	}

	h.writeJSONResponse(w, statusCode, response)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
