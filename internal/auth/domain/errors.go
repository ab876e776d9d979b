package domain

import (
	"github.com/allisson/iou/internal/errors"
)

// Identity provider errors. Compare with errors.Is; detail is attached with errors.WithCode.
var (
	// ErrInvalidLogin indicates the identity provider rejected the username and password.
	ErrInvalidLogin = errors.Coded(errors.CodeInvalidLogin)

	// ErrInvalidRefreshToken indicates the identity provider rejected the refresh token.
	ErrInvalidRefreshToken = errors.Coded(errors.CodeInvalidRefreshToken)

	// ErrInvalidBearerToken indicates a missing, malformed or rejected bearer token.
	ErrInvalidBearerToken = errors.Coded(errors.CodeInvalidBearerToken)

	// ErrLoginRequired indicates the request needs a valid bearer token.
	ErrLoginRequired = errors.Coded(errors.CodeLoginRequired)

	// ErrIdentityProvider indicates an unexpected identity provider response or transport failure.
	ErrIdentityProvider = errors.Coded(errors.CodeInternalServerError)
)
