package classifier

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
)

// Location tier scores, highest urgency first
const (
	TierMajorRoad   = 40
	TierCommercial  = 28
	TierResidential = 16
	TierDefault     = 8
)

// Tier maps a location score to the keywords that earn it
type Tier struct {
	Name     string   `yaml:"name"`
	Score    int      `yaml:"score"`
	Keywords []string `yaml:"keywords"`
}

// Landmark is a known major-road coordinate
type Landmark struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Vocabulary is the ordered keyword table plus the major-road points
// used by the location classifier.
type Vocabulary struct {
	Tiers      []Tier     `yaml:"tiers"`
	MajorRoads []Landmark `yaml:"major_roads"`
}

// DefaultVocabulary returns the built-in vocabulary
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Tiers: []Tier{
			{
				Name:  "major_road",
				Score: TierMajorRoad,
				Keywords: []string{
					"highway", "motorway", "expressway", "freeway", "trunk road",
					"national highway", "state highway", "nh", "sh", "main road",
					"arterial road", "ring road", "outer ring road", "bypass", "flyover",
					"elevated expressway",
					// named significant roads
					"mg road", "mahatma gandhi road", "hosur road", "bellary road",
					"tumkur road", "mysore road", "old madras road", "bannerghatta road",
				},
			},
			{
				Name:  "commercial",
				Score: TierCommercial,
				Keywords: []string{
					"market", "bazaar", "mall", "commercial", "shopping", "junction",
					"circle", "chowk", "square", "signal", "crossing", "bus stand",
					"bus station", "railway station", "metro station", "plaza",
				},
			},
			{
				Name:  "residential",
				Score: TierResidential,
				Keywords: []string{
					"residential", "colony", "nagar", "layout", "lane", "street",
					"cross", "neighbourhood", "neighborhood", "apartment", "apartments",
					"society", "housing", "enclave", "sector", "block",
				},
			},
		},
		MajorRoads: []Landmark{
			{Name: "Silk Board Junction", Latitude: 12.9172, Longitude: 77.6229},
			{Name: "Hebbal Flyover", Latitude: 13.0358, Longitude: 77.5970},
			{Name: "KR Puram Bridge", Latitude: 13.0070, Longitude: 77.6950},
			{Name: "Nayandahalli Junction", Latitude: 12.9467, Longitude: 77.5301},
			{Name: "Tin Factory", Latitude: 12.9968, Longitude: 77.6695},
		},
	}
}

// LoadVocabulary reads a YAML vocabulary file
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes and validates a YAML vocabulary. Tiers are
// returned ordered from highest to lowest score.
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	if err := v.Validate(); err != nil {
		return Vocabulary{}, err
	}
	sort.SliceStable(v.Tiers, func(i, j int) bool {
		return v.Tiers[i].Score > v.Tiers[j].Score
	})
	return v, nil
}

// Validate checks that every tier carries a known, unique score and at
// least one keyword. All problems are reported together.
func (v Vocabulary) Validate() error {
	var errs apperrors.MultiError
	seen := make(map[int]bool)
	for _, t := range v.Tiers {
		switch t.Score {
		case TierMajorRoad, TierCommercial, TierResidential:
			if seen[t.Score] {
				errs.Add(fmt.Errorf("tier %q: duplicate score %d", t.Name, t.Score))
			}
			seen[t.Score] = true
		default:
			errs.Add(fmt.Errorf("tier %q: score %d is not one of %d, %d, %d",
				t.Name, t.Score, TierMajorRoad, TierCommercial, TierResidential))
		}
		if len(t.Keywords) == 0 {
			errs.Add(fmt.Errorf("tier %q: no keywords", t.Name))
		}
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}
