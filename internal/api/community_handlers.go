package api

import (
	"log/slog"
	"net/http"

	"github.com/turnpage/turnpage/internal/community"
)

// CommunityHandlers holds dependencies for gallery and testimonial
// handlers.
type CommunityHandlers struct {
	community community.Repository
}

// NewCommunityHandlers creates a new CommunityHandlers instance.
func NewCommunityHandlers(repo community.Repository) *CommunityHandlers {
	return &CommunityHandlers{community: repo}
}

// ListGallery handles GET /gallery.
func (h *CommunityHandlers) ListGallery(w http.ResponseWriter, r *http.Request) {
	items, err := h.community.ListGallery(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list gallery", "error", err)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load gallery")
		return
	}

	writeJSON(w, r, http.StatusOK, items)
}

// ListTestimonials handles GET /testimonials.
func (h *CommunityHandlers) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	items, err := h.community.ListTestimonials(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list testimonials", "error", err)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load testimonials")
		return
	}

	writeJSON(w, r, http.StatusOK, items)
}
