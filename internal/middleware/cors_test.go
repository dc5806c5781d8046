package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(origins []string) http.Handler {
	return CORS(DefaultCORSConfig(origins))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
}

func TestCORS_AllowedOrigin(t *testing.T) {
	handler := corsHandler([]string{"https://turnpage.club"})

	r := httptest.NewRequest(http.MethodGet, "/books", nil)
	r.Header.Set("Origin", "https://turnpage.club")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://turnpage.club" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}
}

func TestCORS_RejectedOrigin(t *testing.T) {
	handler := corsHandler([]string{"https://turnpage.club"})

	r := httptest.NewRequest(http.MethodGet, "/books", nil)
	r.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin should be absent, got %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	handler := corsHandler([]string{"https://turnpage.club"})

	r := httptest.NewRequest(http.MethodOptions, "/reviews/r1", nil)
	r.Header.Set("Origin", "https://turnpage.club")
	r.Header.Set("Access-Control-Request-Method", "PATCH")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("missing Allow-Methods")
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("Max-Age = %q", got)
	}
}

func TestCORS_NoOriginsConfigured(t *testing.T) {
	handler := corsHandler(nil)

	r := httptest.NewRequest(http.MethodGet, "/books", nil)
	r.Header.Set("Origin", "https://anywhere.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want pass-through", w.Code)
	}
}

func TestCORS_SameOriginRequest(t *testing.T) {
	handler := corsHandler([]string{"https://turnpage.club"})

	// No Origin header at all.
	r := httptest.NewRequest(http.MethodGet, "/books", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
