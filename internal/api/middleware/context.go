package middleware

import (
	"context"

	"github.com/eventura/server/internal/auth"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// WithClaims returns ctx carrying the validated token claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext extracts the authenticated caller's claims, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}
