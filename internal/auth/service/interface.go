// Package service provides the identity provider client, claims decoding and the
// forwarding authorization used to call the engine on behalf of a request.
package service

import (
	"context"

	authDomain "github.com/allisson/iou/internal/auth/domain"
)

// IdentityClient defines all network interaction with the identity provider.
type IdentityClient interface {
	// Ready reports whether the provider and its realm answer. It never fails;
	// any error counts as not ready.
	Ready(ctx context.Context) bool

	// Login runs the password grant. A rejected login yields ErrInvalidLogin.
	Login(ctx context.Context, username, password string) (*authDomain.Token, error)

	// Refresh runs the refresh grant. A rejected refresh token yields ErrInvalidRefreshToken.
	// When the provider omits a new refresh token the old one is kept.
	Refresh(ctx context.Context, refreshToken string) (*authDomain.Token, error)

	// Logout ends the session of refreshToken on behalf of bearerToken.
	Logout(ctx context.Context, bearerToken, refreshToken string) error

	// Authorize validates a raw Authorization header against the provider.
	// A rejected header yields ErrInvalidBearerToken.
	Authorize(ctx context.Context, authorizationHeader string) error

	// Party returns the party of the caller identified by a raw Authorization header.
	Party(ctx context.Context, authorizationHeader string) (authDomain.Party, error)
}
