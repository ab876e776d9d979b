package dto

import (
	authDomain "github.com/allisson/iou/internal/auth/domain"
)

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// MapTokenToResponse converts a domain token to an API response.
func MapTokenToResponse(token *authDomain.Token) TokenResponse {
	return TokenResponse{
		AccessToken:  token.AccessToken,
		ExpiresIn:    token.ExpiresIn,
		RefreshToken: token.RefreshToken,
	}
}
