package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

const adminKey ctxKey = iota + 1

// IdentifyAdmin marks requests that carry the admin bearer token. It never
// rejects; handlers use IsAdmin to decide how much error detail to show.
func IdentifyAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validToken(r, token) {
				r = r.WithContext(WithAdmin(r.Context()))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests without the admin bearer token.
// With an empty token every request is rejected.
func RequireAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !validToken(r, token) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="ytslider-admin"`)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Admin token required.")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context())))
		})
	}
}

// IsAdmin reports whether the request was authenticated as an admin.
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(adminKey).(bool)
	return v
}

// WithAdmin returns a context flagged as admin.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey, true)
}

func validToken(r *http.Request, token string) bool {
	if token == "" {
		return false
	}
	header := r.Header.Get("Authorization")
	got, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(token)) == 1
}
