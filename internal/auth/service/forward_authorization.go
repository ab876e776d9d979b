package service

import (
	"context"
	"net/http"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	apperrors "github.com/allisson/iou/internal/errors"
)

// ForwardAuthorization turns an inbound request into the capability presented to the engine.
type ForwardAuthorization struct {
	identity IdentityClient
}

// NewForwardAuthorization creates a ForwardAuthorization backed by identity.
func NewForwardAuthorization(identity IdentityClient) *ForwardAuthorization {
	return &ForwardAuthorization{identity: identity}
}

// BearerToken returns the raw Authorization header of r.
func (f *ForwardAuthorization) BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.Wrap(authDomain.ErrInvalidBearerToken, "authorization header is missing")
	}
	return header, nil
}

// Forward wraps the Authorization header of r without contacting the identity provider.
func (f *ForwardAuthorization) Forward(r *http.Request) (*authDomain.Capability, error) {
	header, err := f.BearerToken(r)
	if err != nil {
		return nil, err
	}
	return authDomain.NewCapability(header)
}

// Party validates the caller eagerly and returns its party.
func (f *ForwardAuthorization) Party(ctx context.Context, r *http.Request) (authDomain.Party, error) {
	header, err := f.BearerToken(r)
	if err != nil {
		return authDomain.Party{}, err
	}
	return f.identity.Party(ctx, header)
}
