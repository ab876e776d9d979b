// Package mocks provides mock implementations of the identity services for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/iou/internal/auth/domain"
)

// MockIdentityClient is a mock implementation of IdentityClient for testing.
type MockIdentityClient struct {
	mock.Mock
}

// Ready mocks the Ready method of IdentityClient.
func (m *MockIdentityClient) Ready(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// Login mocks the Login method of IdentityClient.
func (m *MockIdentityClient) Login(ctx context.Context, username, password string) (*authDomain.Token, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Token), args.Error(1)
}

// Refresh mocks the Refresh method of IdentityClient.
func (m *MockIdentityClient) Refresh(ctx context.Context, refreshToken string) (*authDomain.Token, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Token), args.Error(1)
}

// Logout mocks the Logout method of IdentityClient.
func (m *MockIdentityClient) Logout(ctx context.Context, bearerToken, refreshToken string) error {
	args := m.Called(ctx, bearerToken, refreshToken)
	return args.Error(0)
}

// Authorize mocks the Authorize method of IdentityClient.
func (m *MockIdentityClient) Authorize(ctx context.Context, authorizationHeader string) error {
	args := m.Called(ctx, authorizationHeader)
	return args.Error(0)
}

// Party mocks the Party method of IdentityClient.
func (m *MockIdentityClient) Party(ctx context.Context, authorizationHeader string) (authDomain.Party, error) {
	args := m.Called(ctx, authorizationHeader)
	return args.Get(0).(authDomain.Party), args.Error(1)
}
