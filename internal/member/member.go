// Package member provides the member projection and dashboard statistics.
// Members are owned by the external identity provider; this application
// never stores them, only projects the fields it displays.
package member

import (
	"github.com/turnpage/turnpage/internal/review"
)

// Member is the identity-provider projection of a logged-in member.
type Member struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// DashboardStats aggregates a member's activity for the dashboard page.
type DashboardStats struct {
	ReviewsWritten int     `json:"reviews_written"`
	BooksReviewed  int     `json:"books_reviewed"`
	AverageRating  float64 `json:"average_rating"`
	LikesReceived  int     `json:"likes_received"`
}

// Dashboard computes aggregate statistics over a member's reviews. Only
// integer ratings 1..5 count toward the average, matching review.Summarize.
func Dashboard(reviews []review.Review) DashboardStats {
	stats := review.Summarize(reviews)

	books := make(map[string]struct{}, len(reviews))
	for _, r := range reviews {
		if r.BookID != "" {
			books[r.BookID] = struct{}{}
		}
	}

	return DashboardStats{
		ReviewsWritten: stats.Count,
		BooksReviewed:  len(books),
		AverageRating:  stats.AverageRating,
		LikesReceived:  stats.TotalLikes,
	}
}
