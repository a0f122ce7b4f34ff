package models

// SizeBucket classifies the detected issue size
type SizeBucket string

const (
	SizeSmall  SizeBucket = "small"
	SizeMedium SizeBucket = "medium"
	SizeLarge  SizeBucket = "large"
)

// GeocodeResult is a reverse-geocoded place description. Address maps
// place-type keys (road, highway, suburb, city, ...) to text.
type GeocodeResult struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address,omitempty"`
}

// DetectionOutput is the flat numeric output of the object-detection model
type DetectionOutput []float64

// Submission carries everything the scoring engine needs for one report
type Submission struct {
	Latitude      float64         `json:"latitude"`
	Longitude     float64         `json:"longitude"`
	Category      string          `json:"category"`
	Geocode       *GeocodeResult  `json:"geocode,omitempty"`
	Detection     DetectionOutput `json:"detection,omitempty"`
	ManualUrgency string          `json:"urgency"`
	ExcludeID     string          `json:"exclude_id,omitempty"`
}

// ScoreBreakdown holds the individual sub-scores before summation
type ScoreBreakdown struct {
	Location   int `json:"location"`
	Repetition int `json:"repetition"`
	Size       int `json:"size"`
	Manual     int `json:"manual"`
}

// ScoreResult is the outcome of scoring one submission
type ScoreResult struct {
	PriorityScore int            `json:"priority_score"`
	SizeBucket    SizeBucket     `json:"size_bucket"`
	Breakdown     ScoreBreakdown `json:"breakdown"`

	// Diagnostics
	GeocodeAvailable bool   `json:"geocode_available"`
	DetectionShape   string `json:"detection_shape"`
}
