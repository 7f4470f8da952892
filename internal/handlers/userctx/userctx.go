package userctx

import (
	"context"

	"github.com/nkiryanov/gym/internal/models"
)

type principalKey struct{}

// WithPrincipal stores the authenticated user of the request
func WithPrincipal(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, principalKey{}, u)
}

// Principal returns the authenticated user. False for anonymous requests
func Principal(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(principalKey{}).(models.User)
	return u, ok
}
