package event

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/turnpage/turnpage/internal/cms"
)

// ErrNotFound indicates the requested event does not exist.
var ErrNotFound = errors.New("event: not found")

// Repository defines event data operations.
type Repository interface {
	// List returns every event, unclassified and unordered.
	List(ctx context.Context) ([]Event, error)

	// Get retrieves an event by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Event, error)
}

// CMSRepository is the Repository backed by the hosted data-items API.
type CMSRepository struct {
	client *cms.Client
}

// NewCMSRepository creates an event repository over the CMS client.
func NewCMSRepository(client *cms.Client) *CMSRepository {
	return &CMSRepository{client: client}
}

// List returns every event in the Events collection.
func (r *CMSRepository) List(ctx context.Context) ([]Event, error) {
	records, err := r.client.Query(ctx, cms.CollectionEvents, nil)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(records))
	for _, rec := range records {
		events = append(events, FromRecord(rec))
	}
	return events, nil
}

// Get retrieves an event by ID.
func (r *CMSRepository) Get(ctx context.Context, id string) (*Event, error) {
	rec, err := r.client.Get(ctx, cms.CollectionEvents, id)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	e := FromRecord(rec)
	return &e, nil
}

// InMemoryRepository is an in-memory Repository used for testing and
// development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events map[string]Event
}

// NewInMemoryRepository creates an empty in-memory event repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{events: make(map[string]Event)}
}

// Add stores an event, assigning an ID if absent.
func (r *InMemoryRepository) Add(e Event) Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.events[e.ID] = e
	return e
}

// List returns every stored event.
func (r *InMemoryRepository) List(ctx context.Context) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		events = append(events, e)
	}
	return events, nil
}

// Get retrieves an event by ID.
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}
