package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rajasatyajit/CivicTriage/internal/intake"
	"github.com/rajasatyajit/CivicTriage/internal/logger"
	"github.com/rajasatyajit/CivicTriage/internal/models"
)

const maxBodyBytes = 1 << 20

// ReportView is the listing representation of a stored report
type ReportView struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Location       string            `json:"location"`
	Urgency        string            `json:"urgency"`
	Status         string            `json:"status"`
	ReportedBy     string            `json:"reportedBy"`
	ReportedAt     time.Time         `json:"reportedAt"`
	Category       string            `json:"category"`
	HasImages      bool              `json:"hasImages"`
	Images         []string          `json:"images"`
	Latitude       float64           `json:"location_lat"`
	Longitude      float64           `json:"location_lng"`
	Classification string            `json:"classification"`
	PriorityScore  int               `json:"priority_score"`
	SizeBucket     models.SizeBucket `json:"size_bucket"`
}

// NewReportView renders a report for clients
func NewReportView(r models.Report) ReportView {
	images := []string{}
	if r.ImageURL != "" {
		images = append(images, r.ImageURL)
	}
	classification := r.Classification
	if classification == "" {
		classification = r.Category
	}
	return ReportView{
		ID:             r.ID,
		Title:          r.Title(),
		Description:    r.Description,
		Location:       r.Address,
		Urgency:        r.ManualUrgency,
		Status:         r.EffectiveStatus(),
		ReportedBy:     r.ReportedBy(),
		ReportedAt:     r.CreatedAt,
		Category:       r.Category,
		HasImages:      len(images) > 0,
		Images:         images,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Classification: classification,
		PriorityScore:  r.PriorityScore,
		SizeBucket:     r.SizeBucket,
	}
}

// SubmitResponse is returned for a newly stored report
type SubmitResponse struct {
	Report ReportView         `json:"report"`
	Score  models.ScoreResult `json:"score"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// submitReportHandler handles POST /reports
func (h *Handler) submitReportHandler(w http.ResponseWriter, r *http.Request) {
	var req intake.SubmitRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report, score, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "submit report")
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, SubmitResponse{
		Report: NewReportView(*report),
		Score:  score,
	})
}

// previewScoreHandler handles POST /reports/score
func (h *Handler) previewScoreHandler(w http.ResponseWriter, r *http.Request) {
	var req intake.SubmitRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	score, err := h.svc.Preview(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "score report")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"category": h.svc.ResolveCategory(req),
		"score":    score,
	})
}

// listReportsHandler handles GET /reports
func (h *Handler) listReportsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := parseListOptions(r)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	reports, total, err := h.svc.List(ctx, opts)
	if err != nil {
		h.writeServiceError(w, r, err, "list reports")
		return
	}

	views := make([]ReportView, 0, len(reports))
	for _, rep := range reports {
		views = append(views, NewReportView(rep))
	}

	response := map[string]interface{}{
		"data":      views,
		"count":     len(views),
		"total":     total,
		"timestamp": time.Now().UTC(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// getReportHandler handles GET /reports/{category}/{id}
func (h *Handler) getReportHandler(w http.ResponseWriter, r *http.Request) {
	category, id := chi.URLParam(r, "category"), chi.URLParam(r, "id")

	report, err := h.svc.Get(r.Context(), category, id)
	if err != nil {
		h.writeServiceError(w, r, err, "get report")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, NewReportView(*report))
}

// updateStatusHandler handles PATCH /reports/{category}/{id}
func (h *Handler) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	category, id := chi.URLParam(r, "category"), chi.URLParam(r, "id")

	var req statusRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), category, id, req.Status); err != nil {
		h.writeServiceError(w, r, err, "update report status")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Status updated successfully",
	})
}

// deleteReportHandler handles DELETE /reports/{category}/{id}
func (h *Handler) deleteReportHandler(w http.ResponseWriter, r *http.Request) {
	category, id := chi.URLParam(r, "category"), chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), category, id); err != nil {
		h.writeServiceError(w, r, err, "delete report")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Report deleted successfully",
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WithContext(r.Context()).Debug("Rejected request body", "error", err)
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// parseListOptions parses query parameters into ListOptions
func parseListOptions(r *http.Request) (intake.ListOptions, error) {
	q := r.URL.Query()
	opts := intake.ListOptions{
		Category: q.Get("category"),
		Status:   q.Get("status"),
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return opts, fmt.Errorf("invalid limit: %s", limitStr)
		}
		if limit < 0 || limit > 1000 {
			return opts, fmt.Errorf("limit must be between 0 and 1000")
		}
		opts.Limit = limit
	}

	if offsetStr := q.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return opts, fmt.Errorf("invalid offset: %s", offsetStr)
		}
		if offset < 0 {
			return opts, fmt.Errorf("offset must be non-negative")
		}
		opts.Offset = offset
	}

	return opts, nil
}
