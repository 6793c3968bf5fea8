package auth

import (
	"context"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

type claimsKey struct{}

// WithClaims stores the resolved session in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom returns the session stored by WithClaims, or nil.
func ClaimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}

// FromContext returns the signed-in identity, if any.
func FromContext(ctx context.Context) (domain.Identity, bool) {
	c := ClaimsFrom(ctx)
	if c == nil {
		return domain.Identity{}, false
	}
	return c.Identity(), true
}
