package middleware

import (
	"context"
	"net/http"

	"github.com/DragonRU1/silentauth/internal/http/response"
	"github.com/DragonRU1/silentauth/internal/service"
)

// RequireAPIKey authenticates the X-API-Key header through the credential
// resolver and stashes the resolved key in the request context. The resolver
// is linear in the candidate set, so this middleware sits only on routes that
// genuinely need it.
func RequireAPIKey(resolver service.CredentialResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-API-Key")
			if raw == "" {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing X-API-Key header", nil)
				return
			}
			key, err := resolver.Resolve(r.Context(), raw)
			if err != nil {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid API key", nil)
				return
			}
			ctx := context.WithValue(r.Context(), ApiKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope gates a route on a capability of the resolved key. Scope
// checks live here, at the call site, never inside the resolver.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := ApiKeyFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing API key", nil)
				return
			}
			for _, s := range key.Scopes {
				if s == scope {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "API key lacks "+scope+" scope", nil)
		})
	}
}

func ApiKeyFromContext(ctx context.Context) (*service.ResolvedKey, bool) {
	k, ok := ctx.Value(ApiKeyContextKey).(*service.ResolvedKey)
	return k, ok
}
