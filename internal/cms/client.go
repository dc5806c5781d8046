package cms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
)

// Client errors.
var (
	// ErrNotFound indicates the requested item does not exist in the collection.
	ErrNotFound = errors.New("cms: item not found")

	// ErrUpstream indicates the CMS returned a non-success status.
	ErrUpstream = errors.New("cms: upstream error")
)

// Default client tuning. Every call site gets the same timeout and retry
// policy; reads are retried because the data-items API is idempotent for
// queries, writes are attempted exactly once.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 3
	initialRetryDelay  = 200 * time.Millisecond
	maxRetryDelay      = 2 * time.Second
)

// Client talks to the hosted data-items API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRetries overrides the read retry budget.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// New creates a Client for the data-items API at baseURL.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// queryRequest is the body for collection queries.
type queryRequest struct {
	Filter map[string]any `json:"filter,omitempty"`
	Limit  int            `json:"limit,omitempty"`
}

// queryResponse is the envelope for query results.
type queryResponse struct {
	Items []Record `json:"items"`
}

// itemResponse is the envelope for single-item operations.
type itemResponse struct {
	Item Record `json:"item"`
}

// Query returns all items in collection matching filter. A nil filter
// returns the whole collection.
func (c *Client) Query(ctx context.Context, collection string, filter map[string]any) ([]Record, error) {
	body, err := json.Marshal(queryRequest{Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("cms: encode query: %w", err)
	}

	var resp queryResponse
	err = c.doRetry(ctx, func() error {
		return c.do(ctx, http.MethodPost, c.collectionPath(collection)+"/query", body, &resp)
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Ping verifies the store is reachable with a minimal query against the
// books collection. Used by health checks.
func (c *Client) Ping(ctx context.Context) error {
	body, err := json.Marshal(queryRequest{Limit: 1})
	if err != nil {
		return fmt.Errorf("cms: encode query: %w", err)
	}
	var resp queryResponse
	return c.do(ctx, http.MethodPost, c.collectionPath(CollectionBooks)+"/query", body, &resp)
}

// Find returns the first item matching filter, or ErrNotFound.
func (c *Client) Find(ctx context.Context, collection string, filter map[string]any) (Record, error) {
	body, err := json.Marshal(queryRequest{Filter: filter, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("cms: encode query: %w", err)
	}

	var resp queryResponse
	err = c.doRetry(ctx, func() error {
		return c.do(ctx, http.MethodPost, c.collectionPath(collection)+"/query", body, &resp)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, ErrNotFound
	}
	return resp.Items[0], nil
}

// Get retrieves a single item by ID, or ErrNotFound.
func (c *Client) Get(ctx context.Context, collection, id string) (Record, error) {
	var resp itemResponse
	err := c.doRetry(ctx, func() error {
		return c.do(ctx, http.MethodGet, c.itemPath(collection, id), nil, &resp)
	})
	if err != nil {
		return nil, err
	}
	return resp.Item, nil
}

// Insert stores a new item and returns the stored record (with its ID).
func (c *Client) Insert(ctx context.Context, collection string, item map[string]any) (Record, error) {
	body, err := json.Marshal(map[string]any{"item": item})
	if err != nil {
		return nil, fmt.Errorf("cms: encode item: %w", err)
	}

	var resp itemResponse
	if err := c.do(ctx, http.MethodPost, c.collectionPath(collection), body, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

// Update replaces fields on an existing item. Last write wins; the remote
// store performs no optimistic-concurrency check.
func (c *Client) Update(ctx context.Context, collection, id string, item map[string]any) (Record, error) {
	body, err := json.Marshal(map[string]any{"item": item})
	if err != nil {
		return nil, fmt.Errorf("cms: encode item: %w", err)
	}

	var resp itemResponse
	if err := c.do(ctx, http.MethodPatch, c.itemPath(collection, id), body, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

// Remove deletes an item by ID. Removing a missing item returns ErrNotFound.
func (c *Client) Remove(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, c.itemPath(collection, id), nil, nil)
}

func (c *Client) collectionPath(collection string) string {
	return c.baseURL + "/v2/collections/" + collection + "/items"
}

func (c *Client) itemPath(collection, id string) string {
	return c.collectionPath(collection) + "/" + id
}

// doRetry runs op with bounded exponential backoff. Only transient failures
// (network errors, 5xx) are retried; ErrNotFound and context cancellation
// abort immediately.
func (c *Client) doRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialRetryDelay
	bo.MaxInterval = maxRetryDelay

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx))
}

// do performs a single HTTP round trip with the uniform timeout and decodes
// a JSON response into out (if out is non-nil).
func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("cms: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cms: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		// Drain a little of the body for the error message without trusting
		// the upstream to bound it.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, string(snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cms: decode response: %w", err)
	}
	return nil
}
