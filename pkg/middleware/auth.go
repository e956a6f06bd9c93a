package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/campusmart/pkg/auth"
	"github.com/shashiranjanraj/campusmart/pkg/response"
)

// userKey is the unexported context key for the authenticated user id.
type userKey struct{}

// UserID extracts the authenticated user id stored by Auth.
// Returns an empty string on unauthenticated requests.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userKey{}).(string); ok {
		return id
	}
	return ""
}

// Auth returns a middleware that requires a valid Bearer token and stores
// the token's user id in the request context for handlers to read via
// UserID.
func Auth(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				response.Unauthorized(w)
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
