package service

import (
	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	apperrors "github.com/allisson/iou/internal/errors"
)

var claimsParser = jwt.NewParser()

// DecodeClaims reads the payload of an access token without verifying its signature.
// Call it only for tokens the identity provider has already accepted.
func DecodeClaims(accessToken string) (*authDomain.Claims, error) {
	claims := &authDomain.Claims{}
	if _, _, err := claimsParser.ParseUnverified(accessToken, claims); err != nil {
		return nil, apperrors.Wrap(authDomain.ErrInvalidBearerToken, err.Error())
	}
	return claims, nil
}
