package filter

import (
	"testing"

	"github.com/hyperengineering/aequiflow/internal/types"
)

func TestBucketFor_Boundaries(t *testing.T) {
	scores := []int{0, 59, 60, 61, 79, 80, 81, 100}
	want := []Bucket{BucketLow, BucketLow, BucketMedium, BucketMedium, BucketMedium, BucketMedium, BucketHigh, BucketHigh}

	for i, score := range scores {
		if got := BucketFor(score); got != want[i] {
			t.Errorf("BucketFor(%d) = %s, want %s", score, got, want[i])
		}
	}
}

func TestConfidenceBuckets_ExhaustiveAndDisjoint(t *testing.T) {
	// Given: One project for every score in [0, 100]
	var projects []types.Project
	for score := 0; score <= 100; score++ {
		projects = append(projects, types.Project{ValidationScore: score})
	}

	// When: Projects are bucketed
	got := ConfidenceBuckets(projects)

	// Then: Every project lands in exactly one bucket
	if got.Total() != 101 {
		t.Errorf("Total = %d, want 101", got.Total())
	}
	if got.Low != 60 || got.Medium != 21 || got.High != 20 {
		t.Errorf("buckets = %+v, want low=60 medium=21 high=20", got)
	}
}

func TestConfidenceBuckets_Fixture(t *testing.T) {
	got := ConfidenceBuckets(fixtureProjects())

	want := BucketCounts{High: 2, Medium: 1, Low: 1}
	if got != want {
		t.Errorf("ConfidenceBuckets = %+v, want %+v", got, want)
	}
}
