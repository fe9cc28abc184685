package request

import (
	"context"
	"net/http"
)

type contextKey int

const (
	userKey contextKey = iota
)

// WithUser binds the caller identity to the request context.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// UserFrom extracts the caller identity set by ParseUser.
func UserFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey).(string)
	return userID, ok && userID != ""
}

// ParseUser reads the caller identity from the X-User-Id header. Routes
// decide for themselves whether an identity is required.
func ParseUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := r.Header.Get("X-User-Id"); userID != "" {
				r = r.WithContext(WithUser(r.Context(), userID))
			}

			next.ServeHTTP(w, r)
		})
	}
}
