package shop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// cartTTL bounds how long an abandoned cart survives.
const cartTTL = 30 * 24 * time.Hour

// CartRepository stores one cart per member. The original product kept the
// cart in browser-local storage; server-side the same contract is a
// per-member key-value slot, kept entirely out of the search core's
// dependency graph.
type CartRepository interface {
	// Get returns the member's cart. A missing cart is an empty cart,
	// not an error.
	Get(ctx context.Context, memberID string) (Cart, error)

	// Set replaces the member's cart.
	Set(ctx context.Context, memberID string, cart Cart) error

	// Clear deletes the member's cart.
	Clear(ctx context.Context, memberID string) error
}

// RedisCartRepository stores carts as JSON values in Redis.
type RedisCartRepository struct {
	client *redis.Client
}

// NewRedisCartRepository creates a cart repository over a Redis client.
func NewRedisCartRepository(client *redis.Client) *RedisCartRepository {
	return &RedisCartRepository{client: client}
}

func cartKey(memberID string) string {
	return "cart:" + memberID
}

// Get returns the member's cart.
func (r *RedisCartRepository) Get(ctx context.Context, memberID string) (Cart, error) {
	raw, err := r.client.Get(ctx, cartKey(memberID)).Bytes()
	if err == redis.Nil {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("cart: read: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		// A corrupt value is unrecoverable; treat as empty rather than
		// locking the member out of their cart.
		return Cart{}, nil
	}
	return cart, nil
}

// Set replaces the member's cart.
func (r *RedisCartRepository) Set(ctx context.Context, memberID string, cart Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(memberID), raw, cartTTL).Err(); err != nil {
		return fmt.Errorf("cart: write: %w", err)
	}
	return nil
}

// Clear deletes the member's cart.
func (r *RedisCartRepository) Clear(ctx context.Context, memberID string) error {
	if err := r.client.Del(ctx, cartKey(memberID)).Err(); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}

// InMemoryCartRepository is an in-memory CartRepository used for testing
// and development.
type InMemoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string]Cart
}

// NewInMemoryCartRepository creates an empty in-memory cart store.
func NewInMemoryCartRepository() *InMemoryCartRepository {
	return &InMemoryCartRepository{carts: make(map[string]Cart)}
}

// Get returns the member's cart.
func (r *InMemoryCartRepository) Get(ctx context.Context, memberID string) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cart := r.carts[memberID]
	// Copy the slice so callers cannot mutate stored state.
	out := Cart{Items: make([]CartItem, len(cart.Items))}
	copy(out.Items, cart.Items)
	return out, nil
}

// Set replaces the member's cart.
func (r *InMemoryCartRepository) Set(ctx context.Context, memberID string, cart Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := Cart{Items: make([]CartItem, len(cart.Items))}
	copy(stored.Items, cart.Items)
	r.carts[memberID] = stored
	return nil
}

// Clear deletes the member's cart.
func (r *InMemoryCartRepository) Clear(ctx context.Context, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, memberID)
	return nil
}
