package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	"github.com/allisson/iou/internal/auth/http/dto"
	authUseCase "github.com/allisson/iou/internal/auth/usecase"
)

// RunLogin runs the password grant against the identity provider and prints the
// issued token in text or JSON format. Useful to obtain a bearer token for
// calling the API by hand.
//
// Requirements: the identity provider must be reachable at KEYCLOAK_URL.
func RunLogin(
	ctx context.Context,
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
	username string,
	password string,
	format string,
	io IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("logging in", slog.String("username", username))

	token, err := tokenUseCase.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("failed to login: %w", err)
	}

	if format == formatJSON {
		if err := outputJSON(dto.MapTokenToResponse(token), io.Writer); err != nil {
			return err
		}
	} else {
		outputTokenText(token, io.Writer)
	}

	logger.Info("login succeeded",
		slog.String("username", username),
		slog.Int("expires_in", token.ExpiresIn),
	)

	return nil
}

// outputTokenText outputs the token in human-readable text format.
func outputTokenText(token *authDomain.Token, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nLogin successful!")
	_, _ = fmt.Fprintf(writer, "Access token: %s\n", token.AccessToken)
	_, _ = fmt.Fprintf(writer, "Expires in: %d seconds\n", token.ExpiresIn)
	_, _ = fmt.Fprintf(writer, "Refresh token: %s\n", token.RefreshToken)
}
