package review

import "math"

// Stats summarizes the ratings on a set of reviews. Only integer ratings
// in 1..5 count toward the average and distribution; fractional display
// ratings and out-of-range values are ignored.
type Stats struct {
	Count         int     `json:"count"`
	RatedCount    int     `json:"rated_count"`
	AverageRating float64 `json:"average_rating"`
	TotalLikes    int     `json:"total_likes"`

	// Distribution[i] is the number of valid ratings equal to i+1.
	Distribution [5]int `json:"distribution"`
}

// Summarize computes rating statistics over reviews.
func Summarize(reviews []Review) Stats {
	var s Stats
	s.Count = len(reviews)

	var sum int
	for _, r := range reviews {
		s.TotalLikes += r.Likes
		if !validRating(r.Rating) {
			continue
		}
		n := int(r.Rating)
		s.RatedCount++
		s.Distribution[n-1]++
		sum += n
	}

	if s.RatedCount > 0 {
		// Round to one decimal place for display.
		s.AverageRating = math.Round(float64(sum)/float64(s.RatedCount)*10) / 10
	}
	return s
}

// validRating reports whether rating is an integer in 1..5.
func validRating(rating float64) bool {
	if rating != math.Trunc(rating) {
		return false
	}
	return rating >= 1 && rating <= 5
}
