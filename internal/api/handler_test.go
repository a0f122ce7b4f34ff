package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rajasatyajit/CivicTriage/config"
	"github.com/rajasatyajit/CivicTriage/internal/intake"
	"github.com/rajasatyajit/CivicTriage/internal/logger"
	"github.com/rajasatyajit/CivicTriage/internal/models"
	"github.com/rajasatyajit/CivicTriage/internal/store"
)

// urgencyScorer scores purely from the urgency text so ranking is predictable
type urgencyScorer struct{}

func (urgencyScorer) ScoreSubmission(ctx context.Context, sub models.Submission) models.ScoreResult {
	score := map[string]int{"high": 90, "medium": 50, "low": 20}[sub.ManualUrgency]
	if score == 0 {
		score = 40
	}
	return models.ScoreResult{
		PriorityScore: score,
		SizeBucket:    models.SizeMedium,
		Breakdown:     models.ScoreBreakdown{Location: score - 20, Size: 10, Manual: 10},
	}
}

// unhealthyStore fails its health check
type unhealthyStore struct {
	*store.InMemoryStore
	err error
}

func (u unhealthyStore) Health(ctx context.Context) error { return u.err }

func newTestRouter(t *testing.T, st intake.Store) *chi.Mux {
	t.Helper()
	logger.Init("error", "text")

	cats, err := models.NewCategorySet([]string{"pothole", "garbage", "others"}, "others")
	if err != nil {
		t.Fatalf("category set: %v", err)
	}
	svc := intake.New(st, urgencyScorer{}, cats, config.IntakeConfig{
		MaxConcurrent:      2,
		StoreRetryAttempts: 0,
		StoreRetryDelay:    time.Millisecond,
	})

	r := chi.NewRouter()
	NewHandler(svc, "test-version", "test-build-time", "test-commit").RegisterRoutes(r)
	return r
}

func doRequest(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func submit(t *testing.T, r http.Handler, body string) SubmitResponse {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/v1/reports", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var resp SubmitResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode submit response: %v", err)
	}
	return resp
}

func TestHandler_HealthEndpoints(t *testing.T) {
	r := newTestRouter(t, store.NewInMemoryStore())

	tests := []struct {
		name           string
		endpoint       string
		expectedStatus int
		checkBody      bool
	}{
		{
			name:           "Basic health check",
			endpoint:       "/health",
			expectedStatus: http.StatusOK,
			checkBody:      true,
		},
		{
			name:           "V1 health check",
			endpoint:       "/v1/health",
			expectedStatus: http.StatusOK,
			checkBody:      true,
		},
		{
			name:           "Readiness check - healthy",
			endpoint:       "/v1/health/ready",
			expectedStatus: http.StatusOK,
			checkBody:      true,
		},
		{
			name:           "Liveness check",
			endpoint:       "/v1/health/live",
			expectedStatus: http.StatusOK,
			checkBody:      true,
		},
		{
			name:           "Version endpoint",
			endpoint:       "/v1/version",
			expectedStatus: http.StatusOK,
			checkBody:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, tt.endpoint, "")

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.checkBody {
				contentType := w.Header().Get("Content-Type")
				if contentType != "application/json" {
					t.Errorf("Expected Content-Type application/json, got %s", contentType)
				}

				var response map[string]interface{}
				if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
					t.Errorf("Failed to decode JSON response: %v", err)
				}

				if _, exists := response["timestamp"]; !exists {
					t.Error("Expected timestamp in response")
				}
			}
		})
	}
}

func TestHandler_ReadinessCheck_Unhealthy(t *testing.T) {
	st := unhealthyStore{InMemoryStore: store.NewInMemoryStore(), err: errors.New("database connection failed")}
	r := newTestRouter(t, st)

	w := doRequest(r, http.MethodGet, "/v1/health/ready", "")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

func TestHandler_Categories(t *testing.T) {
	r := newTestRouter(t, store.NewInMemoryStore())

	w := doRequest(r, http.MethodGet, "/v1/categories", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp struct {
		Data []string `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if strings.Join(resp.Data, ",") != "pothole,garbage,others" {
		t.Errorf("Expected pothole,garbage,others, got %v", resp.Data)
	}
}

func TestHandler_SubmitReport(t *testing.T) {
	r := newTestRouter(t, store.NewInMemoryStore())

	resp := submit(t, r, `{
		"latitude": 12.9172,
		"longitude": 77.6229,
		"category": "Pothole",
		"description": "Large pothole in the left lane near the junction",
		"urgency": "high",
		"image_url": "https://img.example/p.jpg",
		"detection": [0, 0, 200, 200],
		"geocode": {"display_name": "Hosur Road, Bengaluru"}
	}`)

	if resp.Report.ID == "" {
		t.Error("Expected a generated report id")
	}
	if resp.Report.Category != "pothole" {
		t.Errorf("Expected category pothole, got %s", resp.Report.Category)
	}
	if resp.Score.PriorityScore != 90 || resp.Report.PriorityScore != 90 {
		t.Errorf("Expected priority 90, got score %d report %d", resp.Score.PriorityScore, resp.Report.PriorityScore)
	}
	if resp.Report.Title != "Large pothole in the left lane..." {
		t.Errorf("Unexpected title %q", resp.Report.Title)
	}
	if resp.Report.Location != "Hosur Road, Bengaluru" {
		t.Errorf("Expected geocoded address as location, got %q", resp.Report.Location)
	}
	if resp.Report.Status != "pending" || resp.Report.ReportedBy != "Anonymous" {
		t.Errorf("Expected pending/Anonymous, got %s/%s", resp.Report.Status, resp.Report.ReportedBy)
	}
	if !resp.Report.HasImages || len(resp.Report.Images) != 1 {
		t.Errorf("Expected one image, got %v", resp.Report.Images)
	}
}

func TestHandler_SubmitReport_Invalid(t *testing.T) {
	r := newTestRouter(t, store.NewInMemoryStore())

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"latitude": `},
		{"latitude out of range", `{"latitude": 91, "longitude": 77.6}`},
		{"longitude out of range", `{"latitude": 12.9, "longitude": -181}`},
		{"non-numeric latitude", `{"latitude": "north", "longitude": 77.6}`},
		{"missing coordinates", `{"category": "pothole", "urgency": "high"}`},
		{"missing longitude", `{"latitude": 12.9}`},
		{"null latitude", `{"latitude": null, "longitude": 77.6}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/v1/reports", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error != "Bad Request" || resp.Message == "" {
				t.Errorf("Unexpected error response %+v", resp)
			}
		})
	}
}

func TestHandler_PreviewScore(t *testing.T) {
	st := store.NewInMemoryStore()
	r := newTestRouter(t, st)

	w := doRequest(r, http.MethodPost, "/v1/reports/score",
		`{"latitude": 12.97, "longitude": 77.59, "category": "unknown", "classification": "garbage", "urgency": "low"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp struct {
		Category string             `json:"category"`
		Score    models.ScoreResult `json:"score"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Category != "garbage" {
		t.Errorf("Expected category garbage, got %s", resp.Category)
	}
	if resp.Score.PriorityScore != 20 {
		t.Errorf("Expected priority 20, got %d", resp.Score.PriorityScore)
	}

	stored, _ := st.QueryReports(context.Background(), models.ReportQuery{})
	if len(stored) != 0 {
		t.Errorf("Expected preview to store nothing, got %d reports", len(stored))
	}
}

func TestHandler_ListReports(t *testing.T) {
	r := newTestRouter(t, store.NewInMemoryStore())

	submit(t, r, `{"latitude": 12.9, "longitude": 77.6, "category": "pothole", "urgency": "medium", "description": "A"}`)
	submit(t, r, `{"latitude": 12.9, "longitude": 77.6, "category": "pothole", "urgency": "high", "description": "B"}`)
	submit(t, r, `{"latitude": 12.9, "longitude": 77.6, "category": "garbage", "urgency": "low", "description": "C"}`)

	tests := []struct {
		name           string
		queryParams    string
		expectedStatus int
		expected       []string
		total          int
	}{
		{"all categories ranked", "", http.StatusOK, []string{"B", "A", "C"}, 3},
		{"single category", "?category=pothole", http.StatusOK, []string{"B", "A"}, 2},
		{"unknown category lists all", "?category=streetlight", http.StatusOK, []string{"B", "A", "C"}, 3},
		{"paged after ranking", "?limit=1&offset=1", http.StatusOK, []string{"A"}, 3},
		{"status filter", "?status=resolved", http.StatusOK, []string{}, 0},
		{"invalid limit", "?limit=invalid", http.StatusBadRequest, nil, 0},
		{"limit too large", "?limit=5000", http.StatusBadRequest, nil, 0},
		{"negative offset", "?offset=-1", http.StatusBadRequest, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, "/v1/reports"+tt.queryParams, "")
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp struct {
				Data  []ReportView `json:"data"`
				Count int          `json:"count"`
				Total int          `json:"total"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			got := make([]string, 0, len(resp.Data))
			for _, v := range resp.Data {
				got = append(got, v.Description)
			}
			if strings.Join(got, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
			if resp.Count != len(tt.expected) {
				t.Errorf("Expected count %d, got %d", len(tt.expected), resp.Count)
			}
			if resp.Total != tt.total {
				t.Errorf("Expected total %d, got %d", tt.total, resp.Total)
			}
		})
	}
}

func TestHandler_ReportLifecycle(t *testing.T) {
	r := newTestRouter(t, store.NewInMemoryStore())

	created := submit(t, r, `{"latitude": 12.9, "longitude": 77.6, "category": "garbage", "contact": "ravi@example.com"}`)
	path := "/v1/reports/garbage/" + created.Report.ID

	w := doRequest(r, http.MethodGet, path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var view ReportView
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if view.ReportedBy != "ravi@example.com" || view.Title != "Civic Issue" {
		t.Errorf("Unexpected view %+v", view)
	}

	w = doRequest(r, http.MethodPatch, path, `{"status": "in_progress"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	w = doRequest(r, http.MethodGet, path, "")
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if view.Status != "in_progress" {
		t.Errorf("Expected status in_progress, got %s", view.Status)
	}

	w = doRequest(r, http.MethodPatch, path, `{"status": "  "}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for blank status, got %d", http.StatusBadRequest, w.Code)
	}

	w = doRequest(r, http.MethodDelete, path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	w = doRequest(r, http.MethodGet, path, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d after delete, got %d", http.StatusNotFound, w.Code)
	}
}

func TestHandler_ReportErrors(t *testing.T) {
	r := newTestRouter(t, store.NewInMemoryStore())

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"get missing", http.MethodGet, "/v1/reports/pothole/nope", "", http.StatusNotFound},
		{"get invalid category", http.MethodGet, "/v1/reports/streetlight/nope", "", http.StatusBadRequest},
		{"update missing", http.MethodPatch, "/v1/reports/pothole/nope", `{"status":"resolved"}`, http.StatusNotFound},
		{"update malformed", http.MethodPatch, "/v1/reports/pothole/nope", `{`, http.StatusBadRequest},
		{"delete missing", http.MethodDelete, "/v1/reports/pothole/nope", "", http.StatusNotFound},
		{"delete invalid category", http.MethodDelete, "/v1/reports/streetlight/nope", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, tt.method, tt.path, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestHandler_SubmissionLimit(t *testing.T) {
	logger.Init("error", "text")
	cats, _ := models.NewCategorySet([]string{"others"}, "others")
	svc := intake.New(store.NewInMemoryStore(), urgencyScorer{}, cats, config.IntakeConfig{MaxConcurrent: 1})

	blocked := 0
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			blocked++
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
		})
	}

	r := chi.NewRouter()
	NewHandler(svc, "v", "b", "c").WithSubmissionLimit(deny).RegisterRoutes(r)

	w := doRequest(r, http.MethodPost, "/v1/reports", `{"latitude": 1, "longitude": 1}`)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status %d, got %d", http.StatusTooManyRequests, w.Code)
	}

	w = doRequest(r, http.MethodGet, "/v1/reports", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected listing to bypass the limit, got %d", w.Code)
	}
	if blocked != 1 {
		t.Errorf("Expected limiter to run once, ran %d times", blocked)
	}
}

func TestNewReportView(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	view := NewReportView(models.Report{
		ID:            "r1",
		Category:      "pothole",
		Description:   "  ",
		CreatedAt:     created,
		PriorityScore: 33,
	})

	if view.Title != "Civic Issue" {
		t.Errorf("Expected default title, got %q", view.Title)
	}
	if view.Status != "pending" {
		t.Errorf("Expected default status pending, got %s", view.Status)
	}
	if view.Classification != "pothole" {
		t.Errorf("Expected classification to default to category, got %s", view.Classification)
	}
	if view.HasImages || view.Images == nil || len(view.Images) != 0 {
		t.Errorf("Expected empty non-nil images, got %v", view.Images)
	}
	if !view.ReportedAt.Equal(created) {
		t.Errorf("Expected reportedAt %v, got %v", created, view.ReportedAt)
	}
}
