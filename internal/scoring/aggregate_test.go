package scoring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rajasatyajit/CivicTriage/internal/models"
)

func TestSizeScore(t *testing.T) {
	tests := []struct {
		bucket   models.SizeBucket
		expected int
	}{
		{models.SizeSmall, 5},
		{models.SizeMedium, 10},
		{models.SizeLarge, 15},
		{"", 10},
		{"huge", 10},
	}

	for _, tt := range tests {
		if got := SizeScore(tt.bucket); got != tt.expected {
			t.Errorf("Expected %d for %q, got %d", tt.expected, tt.bucket, got)
		}
	}
}

func TestTotalScore_Bounds(t *testing.T) {
	locations := []int{8, 16, 28, 40}
	repetitions := []int{0, 5, 10, 15, 20, 25, 30}
	sizes := []int{5, 10, 15}
	manuals := []int{5, 10, 15}

	for _, l := range locations {
		for _, r := range repetitions {
			for _, s := range sizes {
				for _, m := range manuals {
					total := TotalScore(l, r, s, m)
					if total != l+r+s+m {
						t.Fatalf("Expected exact sum for %d+%d+%d+%d, got %d", l, r, s, m, total)
					}
					if total < MinPriority || total > MaxPriority {
						t.Fatalf("Total %d out of range", total)
					}
				}
			}
		}
	}

	if got := TotalScore(40, 30, 15, 15); got != MaxPriority {
		t.Errorf("Expected maximum %d, got %d", MaxPriority, got)
	}
}

func TestRankReports(t *testing.T) {
	input := []models.Report{
		{ID: "A", PriorityScore: 50},
		{ID: "B", PriorityScore: 80},
		{ID: "C", PriorityScore: 50},
		{ID: "D", PriorityScore: 90},
	}

	ranked := RankReports(input)

	var ids []string
	for _, r := range ranked {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"D", "B", "A", "C"}, ids); diff != "" {
		t.Errorf("Unexpected order (-want +got):\n%s", diff)
	}

	// Input must be untouched
	if input[0].ID != "A" || input[3].ID != "D" {
		t.Errorf("Expected input order preserved, got %+v", input)
	}
}

func TestRankReports_Empty(t *testing.T) {
	if got := RankReports(nil); len(got) != 0 {
		t.Errorf("Expected empty result, got %d reports", len(got))
	}
}
