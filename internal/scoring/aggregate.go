package scoring

import (
	"sort"

	"github.com/rajasatyajit/CivicTriage/internal/models"
)

// Size scores
const (
	SizeSmallScore  = 5
	SizeMediumScore = 10
	SizeLargeScore  = 15
)

// Bounds of the priority score
const (
	MinPriority = 8
	MaxPriority = 100
)

// SizeScore converts a size bucket to points. Unknown buckets score as medium.
func SizeScore(bucket models.SizeBucket) int {
	switch bucket {
	case models.SizeSmall:
		return SizeSmallScore
	case models.SizeLarge:
		return SizeLargeScore
	default:
		return SizeMediumScore
	}
}

// TotalScore sums the four sub-scores
func TotalScore(location, repetition, size, manual int) int {
	return location + repetition + size + manual
}

// RankReports returns a copy of reports ordered by priority, highest first.
// Reports with equal priority keep their relative order.
func RankReports(reports []models.Report) []models.Report {
	ranked := make([]models.Report, len(reports))
	copy(ranked, reports)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PriorityScore > ranked[j].PriorityScore
	})
	return ranked
}
