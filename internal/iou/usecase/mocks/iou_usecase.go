// Package mocks provides a mock IouUseCase for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	engineDomain "github.com/allisson/iou/internal/engine/domain"
	iouDomain "github.com/allisson/iou/internal/iou/domain"
)

// MockIouUseCase is a mock implementation of IouUseCase.
type MockIouUseCase struct {
	mock.Mock
}

func (m *MockIouUseCase) Create(
	ctx context.Context,
	issuer authDomain.Party,
	payee string,
	amount float64,
	auth engineDomain.AuthorizationProvider,
) (*iouDomain.IouDetails, error) {
	args := m.Called(ctx, issuer, payee, amount, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*iouDomain.IouDetails), args.Error(1)
}

func (m *MockIouUseCase) AmountOwed(
	ctx context.Context,
	iouID uuid.UUID,
	auth engineDomain.AuthorizationProvider,
) (float64, error) {
	args := m.Called(ctx, iouID, auth)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockIouUseCase) Pay(
	ctx context.Context,
	iouID uuid.UUID,
	amount float64,
	auth engineDomain.AuthorizationProvider,
) (float64, error) {
	args := m.Called(ctx, iouID, amount, auth)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockIouUseCase) Forgive(ctx context.Context, iouID uuid.UUID, auth engineDomain.AuthorizationProvider) error {
	args := m.Called(ctx, iouID, auth)
	return args.Error(0)
}

func (m *MockIouUseCase) RegisterEvent(
	ctx context.Context,
	iouID uuid.UUID,
	event iouDomain.Event,
	auth engineDomain.AuthorizationProvider,
) error {
	args := m.Called(ctx, iouID, event, auth)
	return args.Error(0)
}
