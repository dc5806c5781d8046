package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/turnpage/turnpage/internal/auth"
	"github.com/turnpage/turnpage/internal/middleware"
)

// sessionClaimsKey is the context key for the full session claims.
type sessionClaimsKey struct{}

// GetSessionClaims returns the validated session claims from context, or
// nil for anonymous requests.
func GetSessionClaims(ctx context.Context) *auth.SessionClaims {
	if claims, ok := ctx.Value(sessionClaimsKey{}).(*auth.SessionClaims); ok {
		return claims
	}
	return nil
}

// bearerToken extracts the token from the Authorization header, or "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

// RequireMember rejects requests without a valid session token. On
// success the member ID and claims are stored on the request context.
func RequireMember(sessions *auth.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
				return
			}

			claims, err := sessions.Validate(token)
			if err != nil {
				fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Invalid or expired session")
				return
			}

			ctx := middleware.SetMemberID(r.Context(), claims.Subject)
			ctx = context.WithValue(ctx, sessionClaimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalMember attaches member identity when a valid token is present
// but lets anonymous requests through.
func OptionalMember(sessions *auth.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := sessions.Validate(token); err == nil {
					ctx := middleware.SetMemberID(r.Context(), claims.Subject)
					ctx = context.WithValue(ctx, sessionClaimsKey{}, claims)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
