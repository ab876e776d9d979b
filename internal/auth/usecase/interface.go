// Package usecase defines business logic interfaces for authentication operations.
package usecase

import (
	"context"

	authDomain "github.com/allisson/iou/internal/auth/domain"
)

// TokenUseCase defines the token lifecycle operations exposed under /auth.
// Tokens are issued and revoked by the identity provider; nothing is stored locally.
type TokenUseCase interface {
	// Login exchanges a username and password for a token.
	// Returns ErrInvalidLogin if the identity provider rejects the credentials.
	Login(ctx context.Context, username, password string) (*authDomain.Token, error)

	// Refresh exchanges a refresh token for a new token.
	// Returns ErrInvalidRefreshToken if the identity provider rejects it.
	Refresh(ctx context.Context, refreshToken string) (*authDomain.Token, error)

	// Logout ends the session bound to refreshToken. bearerToken is the caller's access
	// token without its scheme.
	Logout(ctx context.Context, bearerToken, refreshToken string) error
}
