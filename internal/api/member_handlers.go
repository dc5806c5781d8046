package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/turnpage/turnpage/internal/auth"
	"github.com/turnpage/turnpage/internal/book"
	"github.com/turnpage/turnpage/internal/member"
	"github.com/turnpage/turnpage/internal/middleware"
	"github.com/turnpage/turnpage/internal/review"
)

// stateCookieName carries the OAuth CSRF state between login and callback.
const stateCookieName = "turnpage_oauth_state"

// missingBookTitle stands in when a review's book no longer resolves; a
// dangling review must still render on the dashboard.
const missingBookTitle = "Book Not Found"

// MemberHandlers holds dependencies for login and member HTTP handlers.
type MemberHandlers struct {
	oauth    *auth.OAuthClient
	sessions *auth.SessionService
	reviews  review.Repository
	books    book.Repository
	secure   bool
}

// NewMemberHandlers creates a new MemberHandlers instance. secure
// controls the Secure flag on the state cookie and should be true outside
// development.
func NewMemberHandlers(oauth *auth.OAuthClient, sessions *auth.SessionService, reviews review.Repository, books book.Repository, secure bool) *MemberHandlers {
	return &MemberHandlers{
		oauth:    oauth,
		sessions: sessions,
		reviews:  reviews,
		books:    books,
		secure:   secure,
	}
}

// SessionResponse carries a freshly minted session token and the member
// it belongs to.
type SessionResponse struct {
	Token  string        `json:"token"`
	Member member.Member `json:"member"`
}

// MemberDashboard is the member profile with aggregate review statistics
// and the member's own reviews.
type MemberDashboard struct {
	Member  member.Member         `json:"member"`
	Stats   member.DashboardStats `json:"stats"`
	Reviews []DashboardReview     `json:"reviews"`
}

// DashboardReview is a member review joined with its book's title for
// display.
type DashboardReview struct {
	review.Review
	BookTitle string `json:"book_title"`
}

// newState returns a random hex string for OAuth CSRF protection.
func newState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Login handles GET /auth/login - redirects the member to the identity
// provider with a CSRF state bound to a cookie.
func (h *MemberHandlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := newState()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to generate oauth state", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to start login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth.AuthorizationURL(state), http.StatusFound)
}

// Callback handles GET /auth/callback - verifies the CSRF state,
// exchanges the code, resolves the member, and mints a session token.
func (h *MemberHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || state == "" || cookie.Value != state {
		fail(w, r, http.StatusBadRequest, ErrCodeAuthFailed, "Login state mismatch, try again")
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeAuthFailed, "Missing authorization code")
		return
	}

	tokens, err := h.oauth.ExchangeCode(r.Context(), code)
	if err != nil {
		slog.ErrorContext(r.Context(), "oauth code exchange failed", "error", err)
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Login failed")
		return
	}

	m, err := h.oauth.CurrentMember(r.Context(), tokens.AccessToken)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to resolve member", "error", err)
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Login failed")
		return
	}

	token, err := h.sessions.Issue(m.ID, m.Email, m.Nickname)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue session token", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create session")
		return
	}

	writeJSON(w, r, http.StatusOK, SessionResponse{Token: token, Member: *m})
}

// Me handles GET /me - the authenticated member's identity from the
// session claims.
func (h *MemberHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetSessionClaims(r.Context())
	if claims == nil {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	writeJSON(w, r, http.StatusOK, member.Member{
		ID:       claims.Subject,
		Email:    claims.Email,
		Nickname: claims.Nickname,
	})
}

// Dashboard handles GET /me/dashboard - the member's reviews plus
// aggregate statistics.
func (h *MemberHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := GetSessionClaims(r.Context())
	if claims == nil {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}
	memberID := middleware.GetMemberID(r.Context())

	reviews, err := h.reviews.ListByOwner(r.Context(), memberID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list member reviews", "error", err)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load reviews")
		return
	}

	writeJSON(w, r, http.StatusOK, MemberDashboard{
		Member: member.Member{
			ID:       claims.Subject,
			Email:    claims.Email,
			Nickname: claims.Nickname,
		},
		Stats:   member.Dashboard(reviews),
		Reviews: h.joinBookTitles(r, reviews),
	})
}

// joinBookTitles resolves each review's book title. A review pointing at
// a deleted book keeps the placeholder title rather than failing the
// whole dashboard.
func (h *MemberHandlers) joinBookTitles(r *http.Request, reviews []review.Review) []DashboardReview {
	titles := make(map[string]string, len(reviews))
	out := make([]DashboardReview, len(reviews))
	for i, rv := range reviews {
		title, ok := titles[rv.BookID]
		if !ok {
			title = missingBookTitle
			b, err := h.books.Get(r.Context(), rv.BookID)
			switch {
			case err == nil:
				title = b.Title
			case !errors.Is(err, book.ErrNotFound):
				slog.WarnContext(r.Context(), "book lookup failed for dashboard review",
					"book_id", rv.BookID, "error", err)
			}
			titles[rv.BookID] = title
		}
		out[i] = DashboardReview{Review: rv, BookTitle: title}
	}
	return out
}
