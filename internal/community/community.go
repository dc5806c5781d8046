// Package community provides the read-only community content surfaces:
// the photo gallery and member testimonials.
package community

import (
	"context"
	"sync"
	"time"

	"github.com/turnpage/turnpage/internal/cms"
)

// galleryTimeout bounds the gallery fetch independently of the CMS
// client's uniform timeout; gallery pages carry large image sets and the
// page renders fine with a partial or empty gallery.
const galleryTimeout = 5 * time.Second

// GalleryItem is one image in the club gallery.
type GalleryItem struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Image   string `json:"image"`
	Caption string `json:"caption,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

// Testimonial is a member quote displayed on the landing page.
type Testimonial struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Quote  string `json:"quote"`
	Avatar string `json:"avatar,omitempty"`
}

// Repository defines community content reads.
type Repository interface {
	// ListGallery returns every gallery item.
	ListGallery(ctx context.Context) ([]GalleryItem, error)

	// ListTestimonials returns every testimonial.
	ListTestimonials(ctx context.Context) ([]Testimonial, error)
}

// CMSRepository is the Repository backed by the hosted data-items API.
type CMSRepository struct {
	client *cms.Client
}

// NewCMSRepository creates a community repository over the CMS client.
func NewCMSRepository(client *cms.Client) *CMSRepository {
	return &CMSRepository{client: client}
}

// ListGallery returns every gallery item. Items without an image are
// dropped at the boundary; a gallery record with no image renders as a
// broken tile.
func (r *CMSRepository) ListGallery(ctx context.Context) ([]GalleryItem, error) {
	ctx, cancel := context.WithTimeout(ctx, galleryTimeout)
	defer cancel()

	records, err := r.client.Query(ctx, cms.CollectionGallery, nil)
	if err != nil {
		return nil, err
	}
	items := make([]GalleryItem, 0, len(records))
	for _, rec := range records {
		image := rec.Str("image")
		if image == "" {
			continue
		}
		items = append(items, GalleryItem{
			ID:      rec.ID(),
			Title:   rec.Str("title"),
			Image:   image,
			Caption: rec.Str("caption"),
			EventID: rec.Str("eventId"),
		})
	}
	return items, nil
}

// ListTestimonials returns every testimonial.
func (r *CMSRepository) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	records, err := r.client.Query(ctx, cms.CollectionTestimonials, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Testimonial, 0, len(records))
	for _, rec := range records {
		out = append(out, Testimonial{
			ID:     rec.ID(),
			Name:   rec.StrOr("name", "A club member"),
			Quote:  rec.Str("quote"),
			Avatar: rec.Str("avatar"),
		})
	}
	return out, nil
}

// InMemoryRepository is an in-memory Repository used for testing.
type InMemoryRepository struct {
	mu           sync.RWMutex
	Gallery      []GalleryItem
	Testimonials []Testimonial
}

// ListGallery returns the stored gallery items.
func (r *InMemoryRepository) ListGallery(ctx context.Context) ([]GalleryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]GalleryItem, len(r.Gallery))
	copy(out, r.Gallery)
	return out, nil
}

// ListTestimonials returns the stored testimonials.
func (r *InMemoryRepository) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Testimonial, len(r.Testimonials))
	copy(out, r.Testimonials)
	return out, nil
}
