package usecase

import (
	"context"
	"log/slog"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	authService "github.com/allisson/iou/internal/auth/service"
)

// tokenUseCase implements TokenUseCase on top of the identity provider.
type tokenUseCase struct {
	identity authService.IdentityClient
	logger   *slog.Logger
}

// Login delegates the password grant to the identity provider.
func (t *tokenUseCase) Login(ctx context.Context, username, password string) (*authDomain.Token, error) {
	token, err := t.identity.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("user logged in", slog.String("username", username))
	return token, nil
}

// Refresh delegates the refresh grant to the identity provider.
func (t *tokenUseCase) Refresh(ctx context.Context, refreshToken string) (*authDomain.Token, error) {
	return t.identity.Refresh(ctx, refreshToken)
}

// Logout revokes the session at the identity provider.
func (t *tokenUseCase) Logout(ctx context.Context, bearerToken, refreshToken string) error {
	return t.identity.Logout(ctx, bearerToken, refreshToken)
}

// NewTokenUseCase creates a new TokenUseCase.
func NewTokenUseCase(identity authService.IdentityClient, logger *slog.Logger) TokenUseCase {
	return &tokenUseCase{
		identity: identity,
		logger:   logger,
	}
}
