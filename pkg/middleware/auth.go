package middleware

import (
	"context"
	"net/http"
	"strings"
)

const UserIDKey contextKey = "user_id"

// UserIDHeader carries the user id resolved by the identity
// collaborator (gateway or auth proxy). This service never validates
// credentials itself; it only requires the resolved, opaque id.
const UserIDHeader = "X-User-ID"

// Identity lifts the resolved user id from the request headers into
// the context. Requests without the header pass through; handlers
// that require identity reject them individually.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if userID != "" {
				ctx := context.WithValue(r.Context(), UserIDKey, userID)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFrom returns the resolved user id, or "" when the request was
// anonymous.
func UserIDFrom(ctx context.Context) string {
	if v := ctx.Value(UserIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
