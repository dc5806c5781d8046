// Package covers resolves book cover image URLs from public lookup
// services. Lookups decorate AI recommendation cards only; a miss is never
// an error and nothing downstream requires a cover to exist.
package covers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// lookupTimeout bounds each provider call. Covers are decoration; a slow
// provider must not hold up a chat response.
const lookupTimeout = 3 * time.Second

// Provider resolves a cover URL for a title/author pair.
type Provider interface {
	// Cover returns an image URL, or "" and false on a miss or failure.
	Cover(ctx context.Context, title, author string) (string, bool)
}

// Resolver tries providers in order and returns the first hit.
type Resolver struct {
	providers []Provider
}

// NewResolver creates a Resolver with the default provider chain: Open
// Library first, then Google Books.
func NewResolver() *Resolver {
	hc := &http.Client{Timeout: lookupTimeout}
	return &Resolver{providers: []Provider{
		&OpenLibrary{httpClient: hc},
		&GoogleBooks{httpClient: hc},
	}}
}

// NewResolverWith creates a Resolver over an explicit provider chain
// (used in tests).
func NewResolverWith(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// Cover returns the first provider hit, or "" and false if every provider
// misses.
func (r *Resolver) Cover(ctx context.Context, title, author string) (string, bool) {
	for _, p := range r.providers {
		if u, ok := p.Cover(ctx, title, author); ok {
			return u, true
		}
	}
	return "", false
}

// OpenLibrary looks up covers through the Open Library search API.
type OpenLibrary struct {
	httpClient *http.Client
}

// Cover implements Provider.
func (p *OpenLibrary) Cover(ctx context.Context, title, author string) (string, bool) {
	q := url.Values{}
	q.Set("title", title)
	q.Set("author", author)
	q.Set("limit", "1")

	var payload struct {
		Docs []struct {
			CoverID int `json:"cover_i"`
		} `json:"docs"`
	}
	if !fetchJSON(ctx, p.httpClient, "https://openlibrary.org/search.json?"+q.Encode(), &payload) {
		return "", false
	}
	if len(payload.Docs) == 0 || payload.Docs[0].CoverID == 0 {
		return "", false
	}
	return "https://covers.openlibrary.org/b/id/" +
		strconv.Itoa(payload.Docs[0].CoverID) + "-M.jpg", true
}

// GoogleBooks looks up covers through the Google Books volumes API.
type GoogleBooks struct {
	httpClient *http.Client
}

// Cover implements Provider.
func (p *GoogleBooks) Cover(ctx context.Context, title, author string) (string, bool) {
	q := url.Values{}
	q.Set("q", "intitle:"+title+"+inauthor:"+author)
	q.Set("maxResults", "1")

	var payload struct {
		Items []struct {
			VolumeInfo struct {
				ImageLinks struct {
					Thumbnail string `json:"thumbnail"`
				} `json:"imageLinks"`
			} `json:"volumeInfo"`
		} `json:"items"`
	}
	if !fetchJSON(ctx, p.httpClient, "https://www.googleapis.com/books/v1/volumes?"+q.Encode(), &payload) {
		return "", false
	}
	if len(payload.Items) == 0 || payload.Items[0].VolumeInfo.ImageLinks.Thumbnail == "" {
		return "", false
	}
	return payload.Items[0].VolumeInfo.ImageLinks.Thumbnail, true
}

// fetchJSON performs a GET and decodes the JSON body. Any failure is a
// miss, not an error.
func fetchJSON(ctx context.Context, hc *http.Client, rawURL string, out any) bool {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := hc.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	return json.NewDecoder(resp.Body).Decode(out) == nil
}
