package api

import (
	"log/slog"
	"net/http"

	"github.com/turnpage/turnpage/internal/book"
	"github.com/turnpage/turnpage/internal/search"
	"github.com/turnpage/turnpage/internal/validate"
)

// SearchHandlers holds dependencies for the search HTTP handlers.
type SearchHandlers struct {
	search *search.Service
}

// NewSearchHandlers creates a new SearchHandlers instance.
func NewSearchHandlers(service *search.Service) *SearchHandlers {
	return &SearchHandlers{search: service}
}

// SearchResponse is the search result envelope. NoMatches distinguishes
// "nothing matched" from a failed search, which returns an error instead.
type SearchResponse struct {
	Query     string           `json:"query"`
	Results   []book.WithMatch `json:"results"`
	NoMatches bool             `json:"no_matches"`
}

// Search handles GET /search?q= - runs the ranking pipeline over the
// catalog and returns ordered matches with explanations.
func (h *SearchHandlers) Search(w http.ResponseWriter, r *http.Request) {
	query, err := validate.SearchQuery(r.URL.Query().Get("q"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "query parameter q is required and must be at most 300 characters")
		return
	}

	results, err := h.search.Search(r.Context(), query)
	if err != nil {
		slog.ErrorContext(r.Context(), "search failed", "error", err, "query", query)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Search is temporarily unavailable")
		return
	}

	if results == nil {
		results = []book.WithMatch{}
	}

	writeJSON(w, r, http.StatusOK, SearchResponse{
		Query:     query,
		Results:   results,
		NoMatches: len(results) == 0,
	})
}
