package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/gameofchests/internal/api/apierr"
	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/services/identity"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Auth creates authentication middleware
func Auth(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			id, err := provider.Verify(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// extractToken extracts the bearer token from the request.
// EventSource and WebSocket clients cannot set headers, so they may pass
// the token as a query parameter instead.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// WithIdentity returns a context carrying id
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// GetIdentity returns the authenticated identity from the request context
func GetIdentity(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(model.Identity)
	return id, ok && id != ""
}

// MustGetIdentity returns the authenticated identity or panics
func MustGetIdentity(ctx context.Context) model.Identity {
	id, ok := GetIdentity(ctx)
	if !ok {
		panic("no identity in context - auth middleware not applied?")
	}
	return id
}
