package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/turnpage/turnpage/internal/book"
	"github.com/turnpage/turnpage/internal/covers"
	"github.com/turnpage/turnpage/internal/middleware"
	"github.com/turnpage/turnpage/internal/review"
	"github.com/turnpage/turnpage/internal/validate"
)

// BookHandlers holds dependencies for catalog HTTP handlers.
type BookHandlers struct {
	books   book.Repository
	reviews review.Repository
	covers  *covers.Resolver // Optional, can be nil
}

// NewBookHandlers creates a new BookHandlers instance.
// coverResolver is optional and can be nil to skip cover backfill.
func NewBookHandlers(books book.Repository, reviews review.Repository, coverResolver *covers.Resolver) *BookHandlers {
	return &BookHandlers{
		books:   books,
		reviews: reviews,
		covers:  coverResolver,
	}
}

// BookDetail is a book with its reviews and rating statistics.
type BookDetail struct {
	book.Book
	Reviews []review.Review `json:"reviews"`
	Stats   review.Stats    `json:"stats"`
}

// SuggestBookRequest represents the request body for suggesting a book.
type SuggestBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	Note   string `json:"note,omitempty"`
}

// fillCover backfills a missing cover image from the public book APIs.
// A lookup miss leaves the book unchanged.
func (h *BookHandlers) fillCover(r *http.Request, b *book.Book) {
	if h.covers == nil || b.CoverImage != "" {
		return
	}
	if url, ok := h.covers.Cover(r.Context(), b.Title, b.Author); ok {
		b.CoverImage = url
	}
}

// ListBooks handles GET /books - returns the whole catalog.
func (h *BookHandlers) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list books", "error", err)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load catalog")
		return
	}

	for i := range books {
		h.fillCover(r, &books[i])
	}

	writeJSON(w, r, http.StatusOK, books)
}

// GetBook handles GET /books/{id} - returns one book with its reviews
// and rating statistics.
func (h *BookHandlers) GetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, err := h.books.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Book not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get book", "error", err, "book_id", id)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load book")
		return
	}
	h.fillCover(r, b)

	reviews, err := h.reviews.ListByBook(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list reviews", "error", err, "book_id", id)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load reviews")
		return
	}

	writeJSON(w, r, http.StatusOK, BookDetail{
		Book:    *b,
		Reviews: reviews,
		Stats:   review.Summarize(reviews),
	})
}

// ListFeatured handles GET /books/featured - returns the curated
// featured list in collection order.
func (h *BookHandlers) ListFeatured(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.ListFeatured(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list featured books", "error", err)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load featured books")
		return
	}

	for i := range books {
		h.fillCover(r, &books[i])
	}

	writeJSON(w, r, http.StatusOK, books)
}

// SuggestBook handles POST /books/suggestions - stores a member-submitted
// suggestion. Requires authentication.
func (h *BookHandlers) SuggestBook(w http.ResponseWriter, r *http.Request) {
	var req SuggestBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	title, err := validate.SuggestionField(req.Title)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "title is required and must be at most 200 characters")
		return
	}

	author := ""
	if req.Author != "" {
		if author, err = validate.SuggestionField(req.Author); err != nil {
			fail(w, r, http.StatusBadRequest, ErrCodeValidation, "author must be at most 200 characters")
			return
		}
	}

	note, err := validate.SuggestionReason(req.Note)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "note must be at most 2000 characters")
		return
	}

	s := &book.Suggestion{
		ID:       uuid.New().String(),
		Title:    title,
		Author:   author,
		Note:     note,
		MemberID: middleware.GetMemberID(r.Context()),
	}

	if err := h.books.Suggest(r.Context(), s); err != nil {
		slog.ErrorContext(r.Context(), "failed to store suggestion", "error", err)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to store suggestion")
		return
	}

	writeJSON(w, r, http.StatusCreated, s)
}
