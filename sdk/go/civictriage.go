package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Report is a stored report as rendered by the service
type Report struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	Urgency        string    `json:"urgency"`
	Status         string    `json:"status"`
	ReportedBy     string    `json:"reportedBy"`
	ReportedAt     time.Time `json:"reportedAt"`
	Category       string    `json:"category"`
	HasImages      bool      `json:"hasImages"`
	Images         []string  `json:"images"`
	Latitude       float64   `json:"location_lat"`
	Longitude      float64   `json:"location_lng"`
	Classification string    `json:"classification"`
	PriorityScore  int       `json:"priority_score"`
	SizeBucket     string    `json:"size_bucket"`
}

// Geocode is an optional client-side reverse geocoding result
type Geocode struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address,omitempty"`
}

// Submission is a new report
type Submission struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Category       string    `json:"category,omitempty"`
	Classification string    `json:"classification,omitempty"`
	Address        string    `json:"address,omitempty"`
	Description    string    `json:"description,omitempty"`
	Urgency        string    `json:"urgency,omitempty"`
	Contact        string    `json:"contact,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	Detection      []float64 `json:"detection,omitempty"`
	Geocode        *Geocode  `json:"geocode,omitempty"`
}

// Score is the priority computed for a submission
type Score struct {
	PriorityScore int    `json:"priority_score"`
	SizeBucket    string `json:"size_bucket"`
	Breakdown     struct {
		Location   int `json:"location"`
		Repetition int `json:"repetition"`
		Size       int `json:"size"`
		Manual     int `json:"manual"`
	} `json:"breakdown"`
}

// ReportList is one page of the ranked listing
type ReportList struct {
	Data  []Report `json:"data"`
	Count int      `json:"count"`
	Total int      `json:"total"`
}

// ListParams filters and pages ListReports
type ListParams struct {
	Category string
	Status   string
	Limit    int
	Offset   int
}

// APIError is a non-2xx response from the service
type APIError struct {
	StatusCode int
	Message    string `json:"message"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("civictriage: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("civictriage: HTTP %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	BaseURL   string
	UserAgent string
	HTTP      *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{BaseURL: baseURL, UserAgent: "civictriage-go-sdk", HTTP: http.DefaultClient}
}

func (c *Client) headers(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
}

// SubmitReport stores a new report and returns it with its score
func (c *Client) SubmitReport(ctx context.Context, s Submission) (*Report, *Score, error) {
	var out struct {
		Report Report `json:"report"`
		Score  Score  `json:"score"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/reports", s, &out); err != nil {
		return nil, nil, err
	}
	return &out.Report, &out.Score, nil
}

// GetReport fetches one report
func (c *Client) GetReport(ctx context.Context, category, id string) (*Report, error) {
	var out Report
	if err := c.do(ctx, http.MethodGet, reportPath(category, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PreviewScore scores a submission without storing it and returns the
// category the service resolved for it
func (c *Client) PreviewScore(ctx context.Context, s Submission) (string, *Score, error) {
	var out struct {
		Category string `json:"category"`
		Score    Score  `json:"score"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/reports/score", s, &out); err != nil {
		return "", nil, err
	}
	return out.Category, &out.Score, nil
}

// ListReports returns reports ranked by priority
func (c *Client) ListReports(ctx context.Context, p ListParams) (*ReportList, error) {
	q := url.Values{}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	path := "/v1/reports"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out ReportList
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus sets the workflow status of a report
func (c *Client) UpdateStatus(ctx context.Context, category, id, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPatch, reportPath(category, id), body, nil)
}

// DeleteReport removes a report
func (c *Client) DeleteReport(ctx context.Context, category, id string) error {
	return c.do(ctx, http.MethodDelete, reportPath(category, id), nil, nil)
}

func reportPath(category, id string) string {
	return "/v1/reports/" + url.PathEscape(category) + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	c.headers(req)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
