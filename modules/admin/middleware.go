package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/harmonia-labs/harmonia/handler"
)

var userContextKey = handler.NewContextKey("admin_user")

// UserFromContext returns the authenticated admin user, or nil outside the
// protected area.
func UserFromContext(ctx context.Context) *User {
	return handler.ContextValue[*User](ctx, userContextKey)
}

// ActorFromContext adapts the admin user for audit logging.
func ActorFromContext(ctx context.Context) (string, bool) {
	user := UserFromContext(ctx)
	if user == nil {
		return "", false
	}
	return user.Username, true
}

// Middleware authenticates requests with the admin bearer token and injects
// the admin user into the request context. Requests without a valid token
// get a 401 JSON envelope.
func Middleware(storage Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, r)
				return
			}

			username, _, err := ParseToken(token)
			if err != nil {
				unauthorized(w, r)
				return
			}

			user, err := storage.GetUserByUsername(r.Context(), username)
			if err != nil {
				unauthorized(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	_ = handler.JSONError(handler.ErrUnauthorized).Render(w, r)
}
