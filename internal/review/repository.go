package review

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turnpage/turnpage/internal/cms"
)

// Repository errors.
var (
	ErrNotFound      = errors.New("review: not found")
	ErrReplyNotFound = errors.New("review: reply not found")
)

// Repository defines review and reply data operations.
type Repository interface {
	// ListByBook returns all reviews for a book, newest first.
	ListByBook(ctx context.Context, bookID string) ([]Review, error)

	// ListByOwner returns all reviews written by a member.
	ListByOwner(ctx context.Context, ownerID string) ([]Review, error)

	// Get retrieves a review by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Review, error)

	// Insert stores a new review, assigning its ID and timestamp.
	Insert(ctx context.Context, r *Review) error

	// Update replaces the mutable fields of a review. Ownership is
	// enforced by the caller; concurrent edits are last-write-wins.
	Update(ctx context.Context, r *Review) error

	// Remove deletes a review.
	Remove(ctx context.Context, id string) error

	// IncrementLikes adjusts the like counter by delta, floored at zero.
	// This is a read-then-write with a race window, acceptable because
	// likes are non-critical low-contention counters.
	IncrementLikes(ctx context.Context, id string, delta int) (*Review, error)

	// ListReplies returns all replies to a review, oldest first.
	ListReplies(ctx context.Context, reviewID string) ([]Reply, error)

	// GetReply retrieves a reply by ID, or ErrReplyNotFound.
	GetReply(ctx context.Context, id string) (*Reply, error)

	// InsertReply stores a new reply.
	InsertReply(ctx context.Context, rp *Reply) error

	// RemoveReply deletes a reply. Authorship is enforced by the caller.
	RemoveReply(ctx context.Context, id string) error
}

// CMSRepository is the Repository backed by the hosted data-items API.
type CMSRepository struct {
	client *cms.Client
}

// NewCMSRepository creates a review repository over the CMS client.
func NewCMSRepository(client *cms.Client) *CMSRepository {
	return &CMSRepository{client: client}
}

// ListByBook returns all reviews for a book, newest first.
func (r *CMSRepository) ListByBook(ctx context.Context, bookID string) ([]Review, error) {
	records, err := r.client.Query(ctx, cms.CollectionReviews, map[string]any{"bookId": bookID})
	if err != nil {
		return nil, err
	}
	return sortReviews(decodeReviews(records)), nil
}

// ListByOwner returns all reviews written by a member, newest first.
func (r *CMSRepository) ListByOwner(ctx context.Context, ownerID string) ([]Review, error) {
	records, err := r.client.Query(ctx, cms.CollectionReviews, map[string]any{"ownerId": ownerID})
	if err != nil {
		return nil, err
	}
	return sortReviews(decodeReviews(records)), nil
}

// Get retrieves a review by ID.
func (r *CMSRepository) Get(ctx context.Context, id string) (*Review, error) {
	rec, err := r.client.Get(ctx, cms.CollectionReviews, id)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rv := FromRecord(rec)
	return &rv, nil
}

// Insert stores a new review.
func (r *CMSRepository) Insert(ctx context.Context, rv *Review) error {
	if rv.ID == "" {
		rv.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	rv.CreatedAt = &now

	item := rv.ToItem()
	item["_id"] = rv.ID
	_, err := r.client.Insert(ctx, cms.CollectionReviews, item)
	return err
}

// Update replaces the mutable fields of a review.
func (r *CMSRepository) Update(ctx context.Context, rv *Review) error {
	_, err := r.client.Update(ctx, cms.CollectionReviews, rv.ID, rv.ToItem())
	if errors.Is(err, cms.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Remove deletes a review.
func (r *CMSRepository) Remove(ctx context.Context, id string) error {
	err := r.client.Remove(ctx, cms.CollectionReviews, id)
	if errors.Is(err, cms.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// IncrementLikes adjusts the like counter by delta, floored at zero.
func (r *CMSRepository) IncrementLikes(ctx context.Context, id string, delta int) (*Review, error) {
	rv, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rv.Likes += delta
	if rv.Likes < 0 {
		rv.Likes = 0
	}
	if err := r.Update(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// ListReplies returns all replies to a review, oldest first.
func (r *CMSRepository) ListReplies(ctx context.Context, reviewID string) ([]Reply, error) {
	records, err := r.client.Query(ctx, cms.CollectionReplies, map[string]any{"reviewId": reviewID})
	if err != nil {
		return nil, err
	}
	replies := make([]Reply, 0, len(records))
	for _, rec := range records {
		replies = append(replies, ReplyFromRecord(rec))
	}
	sort.SliceStable(replies, func(i, j int) bool {
		return earlier(replies[i].CreatedAt, replies[j].CreatedAt)
	})
	return replies, nil
}

// GetReply retrieves a reply by ID.
func (r *CMSRepository) GetReply(ctx context.Context, id string) (*Reply, error) {
	rec, err := r.client.Get(ctx, cms.CollectionReplies, id)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, ErrReplyNotFound
		}
		return nil, err
	}
	rp := ReplyFromRecord(rec)
	return &rp, nil
}

// InsertReply stores a new reply.
func (r *CMSRepository) InsertReply(ctx context.Context, rp *Reply) error {
	if rp.ID == "" {
		rp.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	rp.CreatedAt = &now

	item := rp.ToItem()
	item["_id"] = rp.ID
	_, err := r.client.Insert(ctx, cms.CollectionReplies, item)
	return err
}

// RemoveReply deletes a reply.
func (r *CMSRepository) RemoveReply(ctx context.Context, id string) error {
	err := r.client.Remove(ctx, cms.CollectionReplies, id)
	if errors.Is(err, cms.ErrNotFound) {
		return ErrReplyNotFound
	}
	return err
}

func decodeReviews(records []cms.Record) []Review {
	reviews := make([]Review, 0, len(records))
	for _, rec := range records {
		reviews = append(reviews, FromRecord(rec))
	}
	return reviews
}

func sortReviews(reviews []Review) []Review {
	sort.SliceStable(reviews, func(i, j int) bool {
		return earlier(reviews[j].CreatedAt, reviews[i].CreatedAt)
	})
	return reviews
}

// earlier orders possibly-nil timestamps; nil sorts last.
func earlier(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}

// InMemoryRepository is an in-memory Repository used for testing and
// development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	reviews map[string]Review
	replies map[string]Reply
}

// NewInMemoryRepository creates an empty in-memory review repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		reviews: make(map[string]Review),
		replies: make(map[string]Reply),
	}
}

// ListByBook returns all reviews for a book, newest first.
func (r *InMemoryRepository) ListByBook(ctx context.Context, bookID string) ([]Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Review
	for _, rv := range r.reviews {
		if rv.BookID == bookID {
			out = append(out, rv)
		}
	}
	return sortReviews(out), nil
}

// ListByOwner returns all reviews written by a member, newest first.
func (r *InMemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Review
	for _, rv := range r.reviews {
		if rv.OwnerID == ownerID {
			out = append(out, rv)
		}
	}
	return sortReviews(out), nil
}

// Get retrieves a review by ID.
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rv, ok := r.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rv, nil
}

// Insert stores a new review.
func (r *InMemoryRepository) Insert(ctx context.Context, rv *Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rv.ID == "" {
		rv.ID = uuid.New().String()
	}
	if rv.CreatedAt == nil {
		now := time.Now().UTC()
		rv.CreatedAt = &now
	}
	r.reviews[rv.ID] = *rv
	return nil
}

// Update replaces a stored review.
func (r *InMemoryRepository) Update(ctx context.Context, rv *Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[rv.ID]; !ok {
		return ErrNotFound
	}
	r.reviews[rv.ID] = *rv
	return nil
}

// Remove deletes a review.
func (r *InMemoryRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

// IncrementLikes adjusts the like counter by delta, floored at zero.
func (r *InMemoryRepository) IncrementLikes(ctx context.Context, id string, delta int) (*Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	rv.Likes += delta
	if rv.Likes < 0 {
		rv.Likes = 0
	}
	r.reviews[id] = rv
	return &rv, nil
}

// ListReplies returns all replies to a review, oldest first.
func (r *InMemoryRepository) ListReplies(ctx context.Context, reviewID string) ([]Reply, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Reply
	for _, rp := range r.replies {
		if rp.ReviewID == reviewID {
			out = append(out, rp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return earlier(out[i].CreatedAt, out[j].CreatedAt)
	})
	return out, nil
}

// GetReply retrieves a reply by ID.
func (r *InMemoryRepository) GetReply(ctx context.Context, id string) (*Reply, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rp, ok := r.replies[id]
	if !ok {
		return nil, ErrReplyNotFound
	}
	return &rp, nil
}

// InsertReply stores a new reply.
func (r *InMemoryRepository) InsertReply(ctx context.Context, rp *Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rp.ID == "" {
		rp.ID = uuid.New().String()
	}
	if rp.CreatedAt == nil {
		now := time.Now().UTC()
		rp.CreatedAt = &now
	}
	r.replies[rp.ID] = *rp
	return nil
}

// RemoveReply deletes a reply.
func (r *InMemoryRepository) RemoveReply(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.replies[id]; !ok {
		return ErrReplyNotFound
	}
	delete(r.replies, id)
	return nil
}
