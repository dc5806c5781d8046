package member

import (
	"testing"

	"github.com/turnpage/turnpage/internal/review"
)

func TestDashboard(t *testing.T) {
	reviews := []review.Review{
		{ID: "r1", BookID: "b1", Rating: 5, Likes: 3},
		{ID: "r2", BookID: "b1", Rating: 4, Likes: 0},
		{ID: "r3", BookID: "b2", Rating: 3, Likes: 7},
		{ID: "r4", BookID: "b3", Rating: 0, Likes: 1}, // unrated, still a review
	}

	stats := Dashboard(reviews)

	if stats.ReviewsWritten != 4 {
		t.Errorf("ReviewsWritten = %d, want 4", stats.ReviewsWritten)
	}
	if stats.BooksReviewed != 3 {
		t.Errorf("BooksReviewed = %d, want 3", stats.BooksReviewed)
	}
	// (5+4+3)/3 = 4.0; the unrated review is excluded from the average.
	if stats.AverageRating != 4.0 {
		t.Errorf("AverageRating = %v, want 4.0", stats.AverageRating)
	}
	if stats.LikesReceived != 11 {
		t.Errorf("LikesReceived = %d, want 11", stats.LikesReceived)
	}
}

func TestDashboard_Empty(t *testing.T) {
	stats := Dashboard(nil)
	if stats != (DashboardStats{}) {
		t.Errorf("stats = %+v, want zero value", stats)
	}
}
