// Package cms provides a client for the hosted headless-CMS data-items API.
// All persistent entities (books, reviews, events, gallery, merchandise,
// testimonials) live in named collections behind this API; the application
// holds only request-scoped projections of the records it reads.
package cms

import (
	"time"
)

// Collection names used by the application.
const (
	CollectionBooks           = "Books"
	CollectionReviews         = "Reviews"
	CollectionReplies         = "Replies"
	CollectionEvents          = "Events"
	CollectionGallery         = "Gallery"
	CollectionMerchandise     = "Merchandise"
	CollectionTestimonials    = "Testimonials"
	CollectionBookSuggestions = "BookSuggestions"
	CollectionFeaturedBooks   = "FeaturedBooks"
)

// Record is a single data item returned by the CMS. Remote records are
// loosely-typed bags of optional fields, so all field access goes through
// defaulting getters. Callers decode a Record into a typed model exactly
// once, at the boundary; internal logic never re-checks for missing fields.
type Record map[string]any

// ID returns the record identifier. The CMS writes it as "_id"; older
// records use "id".
func (r Record) ID() string {
	if id := r.Str("_id"); id != "" {
		return id
	}
	return r.Str("id")
}

// Str returns the string value for key, or "" if missing or not a string.
func (r Record) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// StrOr returns the string value for key, or def if missing or empty.
func (r Record) StrOr(key, def string) string {
	if v := r.Str(key); v != "" {
		return v
	}
	return def
}

// Float returns the numeric value for key, or 0 if missing or not numeric.
// JSON numbers decode as float64; integers stored by older writers are
// handled as well.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Int returns the value for key truncated to an int, or 0 if missing.
func (r Record) Int(key string) int {
	return int(r.Float(key))
}

// Bool returns the boolean value for key, or false if missing.
func (r Record) Bool(key string) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return false
}

// Strings returns the value for key as a string slice. Non-string elements
// are skipped rather than failing the whole record.
func (r Record) Strings(key string) []string {
	raw, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, el := range raw {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Map returns the value for key as a nested Record, or nil if missing.
func (r Record) Map(key string) Record {
	if v, ok := r[key].(map[string]any); ok {
		return Record(v)
	}
	return nil
}

// Time parses the value for key as RFC 3339 or a bare ISO date. The second
// return value reports whether a usable timestamp was present.
func (r Record) Time(key string) (time.Time, bool) {
	s := r.Str(key)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
