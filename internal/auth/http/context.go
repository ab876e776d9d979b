// Package http provides the /auth handlers and the authentication middleware.
package http

import (
	"context"

	authDomain "github.com/allisson/iou/internal/auth/domain"
)

// bearerTokenKey is a context key type for storing the caller's access token.
type bearerTokenKey struct{}

// claimsKey is a context key type for storing decoded token claims.
type claimsKey struct{}

// WithBearerToken stores the caller's access token, without its scheme, in the context.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey{}, token)
}

// GetBearerToken retrieves the caller's access token from the context.
// Returns ("", false) when LoginRequiredMiddleware did not run.
func GetBearerToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerTokenKey{}).(string)
	return token, ok
}

// WithClaims stores decoded token claims in the context.
func WithClaims(ctx context.Context, claims *authDomain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaims retrieves decoded token claims from the context.
// Returns (claims, true) if present, or (nil, false) if the token could not be decoded.
func GetClaims(ctx context.Context) (*authDomain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*authDomain.Claims)
	return claims, ok
}
