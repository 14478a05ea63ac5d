package filter

import "github.com/hyperengineering/aequiflow/internal/types"

// Bucket is a validation confidence band.
type Bucket string

const (
	BucketHigh   Bucket = "high"
	BucketMedium Bucket = "medium"
	BucketLow    Bucket = "low"
)

// BucketFor classifies a validation score: high above 80, low below 60,
// medium for the closed interval [60, 80].
func BucketFor(score int) Bucket {
	switch {
	case score > 80:
		return BucketHigh
	case score < 60:
		return BucketLow
	default:
		return BucketMedium
	}
}

// BucketCounts is the number of projects per confidence bucket.
type BucketCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Total returns the number of projects counted.
func (c BucketCounts) Total() int {
	return c.High + c.Medium + c.Low
}

// ConfidenceBuckets partitions projects by validation score.
func ConfidenceBuckets(projects []types.Project) BucketCounts {
	var c BucketCounts
	for _, p := range projects {
		switch BucketFor(p.ValidationScore) {
		case BucketHigh:
			c.High++
		case BucketMedium:
			c.Medium++
		case BucketLow:
			c.Low++
		}
	}
	return c
}
