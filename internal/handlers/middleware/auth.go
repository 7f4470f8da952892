package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/handlers/render"
	"github.com/nkiryanov/gym/internal/handlers/userctx"
	"github.com/nkiryanov/gym/internal/models"
)

type principalResolver interface {
	Principal(ctx context.Context, authHeader string) (models.User, error)
}

// AuthMiddleware resolves the Authorization header into the request principal.
// Requests without a usable access token never reach next
func AuthMiddleware(auth principalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := auth.Principal(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				render.Error(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(userctx.WithPrincipal(r.Context(), u)))
		})
	}
}

// RequireRole lets through principals with one of the roles.
// Must be used after AuthMiddleware
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := userctx.Principal(r.Context())
			if !ok {
				render.Error(w, apperrors.InvalidToken())
				return
			}
			if !slices.Contains(roles, u.Role) {
				render.Error(w, apperrors.Forbidden())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
