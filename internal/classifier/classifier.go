package classifier

import (
	"sort"
	"strings"

	"github.com/rajasatyajit/CivicTriage/internal/models"
	"github.com/rajasatyajit/CivicTriage/pkg/utils"
)

// Manual severity scores
const (
	ManualHigh   = 15
	ManualMedium = 10
	ManualLow    = 5
)

// addressKeys are read first, in this order, when building the place text
var addressKeys = []string{
	"road", "route", "highway", "neighbourhood", "suburb", "quarter",
	"city_district", "city", "town", "village", "county", "state_district", "state",
}

// Classifier scores locations against a vocabulary
type Classifier struct {
	vocab       Vocabulary
	roadRadiusM float64
}

// New creates a new classifier instance. roadRadiusM is how close a
// point must be to a known major-road point to earn the top tier.
func New(vocab Vocabulary, roadRadiusM float64) *Classifier {
	return &Classifier{vocab: vocab, roadRadiusM: roadRadiusM}
}

// LocationScore classifies a location into one of the four tiers. The
// coordinate check and the text check are alternatives; the higher wins.
// geo may be nil, in which case only the coordinates are considered.
func (c *Classifier) LocationScore(geo *models.GeocodeResult, lat, lng float64) int {
	if c.nearMajorRoad(lat, lng) {
		return TierMajorRoad
	}
	if geo == nil {
		return TierDefault
	}

	text := PlaceText(geo)
	for _, tier := range c.vocab.Tiers {
		if utils.ContainsAnyWord(text, tier.Keywords) {
			return tier.Score
		}
	}
	return TierDefault
}

func (c *Classifier) nearMajorRoad(lat, lng float64) bool {
	for _, p := range c.vocab.MajorRoads {
		if utils.WithinMeters(lat, lng, p.Latitude, p.Longitude, c.roadRadiusM) {
			return true
		}
	}
	return false
}

// PlaceText concatenates the display name and every non-empty address
// field into one lower-cased string. Well-known keys come first, then the rest in
// sorted order.
func PlaceText(geo *models.GeocodeResult) string {
	if geo == nil {
		return ""
	}

	var parts []string
	add := func(v string) {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}

	add(geo.DisplayName)
	used := make(map[string]bool, len(addressKeys))
	for _, k := range addressKeys {
		used[k] = true
		add(geo.Address[k])
	}

	var rest []string
	for k := range geo.Address {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		add(geo.Address[k])
	}

	return strings.ToLower(strings.Join(parts, " "))
}

// ManualScore maps free-text urgency to a severity score
func ManualScore(urgency string) int {
	switch strings.ToLower(strings.TrimSpace(urgency)) {
	case "high", "urgent", "critical":
		return ManualHigh
	case "medium", "moderate":
		return ManualMedium
	case "low", "minor":
		return ManualLow
	default:
		return ManualMedium
	}
}
