package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPMetrics records request duration, count, and response size for
// every request. It must run inside Logging so the shared responseWriter
// captures status and size once.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			rw, ok := w.(*responseWriter)
			if !ok {
				rw = &responseWriter{ResponseWriter: w, statusCode: http.StatusOK, ctx: r.Context()}
			}

			next.ServeHTTP(rw, r)

			metrics.ObserveHTTPRequest(
				r.Method,
				normalizePath(r.URL.Path),
				strconv.Itoa(rw.statusCode),
				time.Since(start).Seconds(),
				int64(rw.size),
			)
		})
	}
}

// normalizePath collapses path parameters so metrics cardinality stays
// bounded. "/books/abc123" becomes "/books/{id}".
func normalizePath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "/"
	}

	switch segments[0] {
	case "books":
		if len(segments) >= 2 {
			if len(segments) >= 3 && segments[2] == "reviews" {
				return "/books/{id}/reviews"
			}
			return "/books/{id}"
		}
	case "reviews":
		if len(segments) >= 2 {
			if len(segments) >= 3 {
				switch segments[2] {
				case "like":
					return "/reviews/{id}/like"
				case "unlike":
					return "/reviews/{id}/unlike"
				case "replies":
					return "/reviews/{id}/replies"
				}
			}
			return "/reviews/{id}"
		}
	case "replies":
		if len(segments) >= 2 {
			return "/replies/{id}"
		}
	case "events":
		if len(segments) >= 2 {
			if len(segments) >= 3 && segments[2] == "calendar.ics" {
				return "/events/{id}/calendar.ics"
			}
			return "/events/{id}"
		}
	case "products":
		if len(segments) >= 2 {
			return "/products/{id}"
		}
	case "cart":
		if len(segments) >= 2 {
			return "/cart/{product_id}"
		}
	}

	return "/" + strings.Join(segments, "/")
}
