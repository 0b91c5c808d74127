package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/http/response"
	"github.com/DragonRU1/silentauth/internal/security"
	"github.com/DragonRU1/silentauth/internal/service"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
	ApiKeyContextKey contextKey = "api_key"
)

// RequireAuth validates the Bearer identity assertion and stashes its claims
// in the request context.
func RequireAuth(verifier service.IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing or invalid Authorization header", nil)
				return
			}
			claims, err := verifier.VerifyIdentity(strings.TrimSpace(auth[7:]))
			if err != nil {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid or expired token", nil)
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the authenticated user's role. It must run
// after RequireAuth.
func RequireRole(role domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.Role != string(role) {
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.IdentityClaims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.IdentityClaims)
	return c, ok
}
