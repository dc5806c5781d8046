package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/turnpage/turnpage/internal/book"
	"github.com/turnpage/turnpage/internal/middleware"
	"github.com/turnpage/turnpage/internal/review"
	"github.com/turnpage/turnpage/internal/validate"
)

// ReviewHandlers holds dependencies for review and reply HTTP handlers.
type ReviewHandlers struct {
	reviews review.Repository
	books   book.Repository
}

// NewReviewHandlers creates a new ReviewHandlers instance.
func NewReviewHandlers(reviews review.Repository, books book.Repository) *ReviewHandlers {
	return &ReviewHandlers{
		reviews: reviews,
		books:   books,
	}
}

// CreateReviewRequest represents the request body for posting a review.
type CreateReviewRequest struct {
	Reviewer string  `json:"reviewer,omitempty"`
	Rating   float64 `json:"rating"`
	Body     string  `json:"body"`
}

// UpdateReviewRequest represents the request body for editing a review.
// Only includes mutable fields.
type UpdateReviewRequest struct {
	Rating *float64 `json:"rating,omitempty"`
	Body   *string  `json:"body,omitempty"`
}

// CreateReplyRequest represents the request body for replying to a review.
type CreateReplyRequest struct {
	Content    string `json:"content"`
	AuthorName string `json:"author_name,omitempty"`
}

// ListReviews handles GET /books/{id}/reviews - reviews for a book,
// newest first, with rating statistics.
func (h *ReviewHandlers) ListReviews(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	reviews, err := h.reviews.ListByBook(r.Context(), bookID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list reviews", "error", err, "book_id", bookID)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load reviews")
		return
	}

	writeJSON(w, r, http.StatusOK, struct {
		Reviews []review.Review `json:"reviews"`
		Stats   review.Stats    `json:"stats"`
	}{Reviews: reviews, Stats: review.Summarize(reviews)})
}

// CreateReview handles POST /books/{id}/reviews. Requires authentication;
// the review is owned by the posting member.
func (h *ReviewHandlers) CreateReview(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	rating, err := validate.Rating(req.Rating)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeInvalidRating, err.Error())
		return
	}

	body, err := validate.ReviewBody(req.Body)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "review body is required and must be at most 5000 characters")
		return
	}

	reviewer, err := validate.ReviewerName(req.Reviewer)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "reviewer name contains invalid characters")
		return
	}
	if reviewer == "" {
		reviewer = "Anonymous"
	}

	// The book must exist before a review can be attached to it.
	if _, err := h.books.Get(r.Context(), bookID); err != nil {
		if errors.Is(err, book.ErrNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Book not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get book", "error", err, "book_id", bookID)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load book")
		return
	}

	rv := &review.Review{
		ID:       uuid.New().String(),
		BookID:   bookID,
		Reviewer: reviewer,
		Rating:   float64(rating),
		Body:     body,
		OwnerID:  middleware.GetMemberID(r.Context()),
	}

	if err := h.reviews.Insert(r.Context(), rv); err != nil {
		slog.ErrorContext(r.Context(), "failed to insert review", "error", err, "book_id", bookID)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to store review")
		return
	}

	writeJSON(w, r, http.StatusCreated, rv)
}

// getOwnedReview loads a review and checks the caller owns it. Writes the
// error response and returns nil when the caller should stop.
func (h *ReviewHandlers) getOwnedReview(w http.ResponseWriter, r *http.Request, id string) *review.Review {
	rv, err := h.reviews.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Review not found")
			return nil
		}
		slog.ErrorContext(r.Context(), "failed to get review", "error", err, "review_id", id)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load review")
		return nil
	}

	memberID := middleware.GetMemberID(r.Context())
	if rv.OwnerID == "" || rv.OwnerID != memberID {
		fail(w, r, http.StatusForbidden, ErrCodeForbidden, "Only the review's author can modify it")
		return nil
	}
	return rv
}

// UpdateReview handles PATCH /reviews/{id}. Only the owning member may
// edit, and only the rating and body are mutable.
func (h *ReviewHandlers) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	rv := h.getOwnedReview(w, r, id)
	if rv == nil {
		return
	}

	if req.Rating != nil {
		rating, err := validate.Rating(*req.Rating)
		if err != nil {
			fail(w, r, http.StatusBadRequest, ErrCodeInvalidRating, err.Error())
			return
		}
		rv.Rating = float64(rating)
	}

	if req.Body != nil {
		body, err := validate.ReviewBody(*req.Body)
		if err != nil {
			fail(w, r, http.StatusBadRequest, ErrCodeValidation, "review body is required and must be at most 5000 characters")
			return
		}
		rv.Body = body
	}

	if err := h.reviews.Update(r.Context(), rv); err != nil {
		slog.ErrorContext(r.Context(), "failed to update review", "error", err, "review_id", id)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to update review")
		return
	}

	writeJSON(w, r, http.StatusOK, rv)
}

// DeleteReview handles DELETE /reviews/{id}. Only the owning member may
// delete.
func (h *ReviewHandlers) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if rv := h.getOwnedReview(w, r, id); rv == nil {
		return
	}

	if err := h.reviews.Remove(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "failed to delete review", "error", err, "review_id", id)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to delete review")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// adjustLikes applies a like-counter delta and writes the updated review.
func (h *ReviewHandlers) adjustLikes(w http.ResponseWriter, r *http.Request, delta int) {
	id := chi.URLParam(r, "id")

	rv, err := h.reviews.IncrementLikes(r.Context(), id, delta)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Review not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to adjust likes", "error", err, "review_id", id)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to update likes")
		return
	}

	writeJSON(w, r, http.StatusOK, rv)
}

// LikeReview handles POST /reviews/{id}/like.
func (h *ReviewHandlers) LikeReview(w http.ResponseWriter, r *http.Request) {
	h.adjustLikes(w, r, 1)
}

// UnlikeReview handles POST /reviews/{id}/unlike. The counter never goes
// below zero.
func (h *ReviewHandlers) UnlikeReview(w http.ResponseWriter, r *http.Request) {
	h.adjustLikes(w, r, -1)
}

// ListReplies handles GET /reviews/{id}/replies - replies oldest first.
func (h *ReviewHandlers) ListReplies(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	replies, err := h.reviews.ListReplies(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list replies", "error", err, "review_id", id)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load replies")
		return
	}

	writeJSON(w, r, http.StatusOK, replies)
}

// CreateReply handles POST /reviews/{id}/replies. Requires authentication.
func (h *ReviewHandlers) CreateReply(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "id")

	var req CreateReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	content, err := validate.ReplyContent(req.Content)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "reply content is required and must be at most 2000 characters")
		return
	}

	name, err := validate.ReviewerName(req.AuthorName)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "author name contains invalid characters")
		return
	}
	if name == "" {
		name = "Member"
	}

	if _, err := h.reviews.Get(r.Context(), reviewID); err != nil {
		if errors.Is(err, review.ErrNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Review not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get review", "error", err, "review_id", reviewID)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load review")
		return
	}

	reply := &review.Reply{
		ID:         uuid.New().String(),
		ReviewID:   reviewID,
		Content:    content,
		AuthorID:   middleware.GetMemberID(r.Context()),
		AuthorName: name,
	}

	if err := h.reviews.InsertReply(r.Context(), reply); err != nil {
		slog.ErrorContext(r.Context(), "failed to insert reply", "error", err, "review_id", reviewID)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to store reply")
		return
	}

	writeJSON(w, r, http.StatusCreated, reply)
}

// DeleteReply handles DELETE /replies/{id}. Only the reply's author may
// delete it.
func (h *ReviewHandlers) DeleteReply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	reply, err := h.reviews.GetReply(r.Context(), id)
	if err != nil {
		if errors.Is(err, review.ErrReplyNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Reply not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get reply", "error", err, "reply_id", id)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load reply")
		return
	}

	memberID := middleware.GetMemberID(r.Context())
	if reply.AuthorID == "" || reply.AuthorID != memberID {
		fail(w, r, http.StatusForbidden, ErrCodeForbidden, "Only the reply's author can delete it")
		return
	}

	if err := h.reviews.RemoveReply(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "failed to delete reply", "error", err, "reply_id", id)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to delete reply")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
