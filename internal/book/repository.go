package book

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turnpage/turnpage/internal/cms"
)

// ErrNotFound indicates the requested book does not exist.
var ErrNotFound = errors.New("book: not found")

// Repository defines catalog data operations.
type Repository interface {
	// List returns the whole catalog.
	List(ctx context.Context) ([]Book, error)

	// Get retrieves a book by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Book, error)

	// ListFeatured returns the books referenced by the FeaturedBooks
	// collection, in collection order.
	ListFeatured(ctx context.Context) ([]Book, error)

	// Suggest stores a member-submitted book suggestion.
	Suggest(ctx context.Context, s *Suggestion) error
}

// CMSRepository is the Repository backed by the hosted data-items API.
type CMSRepository struct {
	client *cms.Client
}

// NewCMSRepository creates a catalog repository over the CMS client.
func NewCMSRepository(client *cms.Client) *CMSRepository {
	return &CMSRepository{client: client}
}

// List returns the whole catalog.
func (r *CMSRepository) List(ctx context.Context) ([]Book, error) {
	records, err := r.client.Query(ctx, cms.CollectionBooks, nil)
	if err != nil {
		return nil, err
	}
	books := make([]Book, 0, len(records))
	for _, rec := range records {
		books = append(books, FromRecord(rec))
	}
	return books, nil
}

// Get retrieves a book by ID.
func (r *CMSRepository) Get(ctx context.Context, id string) (*Book, error) {
	rec, err := r.client.Get(ctx, cms.CollectionBooks, id)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b := FromRecord(rec)
	return &b, nil
}

// ListFeatured resolves FeaturedBooks entries to full book records. Entries
// pointing at missing books are skipped rather than failing the page.
func (r *CMSRepository) ListFeatured(ctx context.Context) ([]Book, error) {
	records, err := r.client.Query(ctx, cms.CollectionFeaturedBooks, nil)
	if err != nil {
		return nil, err
	}

	books := make([]Book, 0, len(records))
	for _, rec := range records {
		bookID := rec.Str("bookId")
		if bookID == "" {
			continue
		}
		b, err := r.Get(ctx, bookID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		books = append(books, *b)
	}
	return books, nil
}

// Suggest stores a member-submitted book suggestion.
func (r *CMSRepository) Suggest(ctx context.Context, s *Suggestion) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt == "" {
		s.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := r.client.Insert(ctx, cms.CollectionBookSuggestions, map[string]any{
		"_id":      s.ID,
		"title":    s.Title,
		"author":   s.Author,
		"note":     s.Note,
		"memberId": s.MemberID,
	})
	return err
}

// InMemoryRepository is an in-memory Repository used for testing and
// development.
type InMemoryRepository struct {
	mu          sync.RWMutex
	books       map[string]Book
	featured    []string
	suggestions []Suggestion
}

// NewInMemoryRepository creates an empty in-memory catalog.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{books: make(map[string]Book)}
}

// Add stores a book, assigning an ID if absent.
func (r *InMemoryRepository) Add(b Book) Book {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	r.books[b.ID] = b
	return b
}

// Feature marks a book ID as featured.
func (r *InMemoryRepository) Feature(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.featured = append(r.featured, id)
}

// List returns the catalog in stable title order.
func (r *InMemoryRepository) List(ctx context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	books := make([]Book, 0, len(r.books))
	for _, b := range r.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

// Get retrieves a book by ID.
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

// ListFeatured returns featured books in the order they were marked.
func (r *InMemoryRepository) ListFeatured(ctx context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	books := make([]Book, 0, len(r.featured))
	for _, id := range r.featured {
		if b, ok := r.books[id]; ok {
			books = append(books, b)
		}
	}
	return books, nil
}

// Suggest stores a suggestion.
func (r *InMemoryRepository) Suggest(ctx context.Context, s *Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	r.suggestions = append(r.suggestions, *s)
	return nil
}

// Suggestions returns stored suggestions (test helper).
func (r *InMemoryRepository) Suggestions() []Suggestion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Suggestion, len(r.suggestions))
	copy(out, r.suggestions)
	return out
}
