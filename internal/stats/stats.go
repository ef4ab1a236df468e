// Package stats computes deterministic rating statistics for a set of reviews.
// No model calls happen here: counting and averaging is a calculator's job.
package stats

import (
	"math"

	"github.com/TobiSchelling/seagull/internal/database"
)

// Compute aggregates rating statistics over the reviews of one period.
// An empty input yields the zero value, not an error.
func Compute(reviews []database.Review) database.RatingStats {
	var s database.RatingStats
	s.TotalReviews = len(reviews)
	if s.TotalReviews == 0 {
		return s
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
		switch r.Rating {
		case 1:
			s.Rating1++
		case 2:
			s.Rating2++
		case 3:
			s.Rating3++
		case 4:
			s.Rating4++
		case 5:
			s.Rating5++
		}
		if r.HasText() {
			s.ReviewsWithText++
		}
	}

	s.ReviewsWithoutText = s.TotalReviews - s.ReviewsWithText
	s.AvgRating = round2(float64(sum) / float64(s.TotalReviews))
	return s
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
