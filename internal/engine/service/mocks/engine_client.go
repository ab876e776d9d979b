// Package mocks provides a mock EngineClient for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	engineDomain "github.com/allisson/iou/internal/engine/domain"
	engineService "github.com/allisson/iou/internal/engine/service"
)

// MockEngineClient is a mock implementation of EngineClient.
type MockEngineClient struct {
	mock.Mock
}

func (m *MockEngineClient) Ready(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockEngineClient) CreateProtocol(
	ctx context.Context,
	prototypeID string,
	parties []engineDomain.Party,
	arguments []engineDomain.Value,
	auth engineDomain.AuthorizationProvider,
) (uuid.UUID, error) {
	args := m.Called(ctx, prototypeID, parties, arguments, auth)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockEngineClient) SelectAction(
	ctx context.Context,
	protocolID uuid.UUID,
	action string,
	arguments []engineDomain.Value,
	auth engineDomain.AuthorizationProvider,
) (engineDomain.Value, error) {
	args := m.Called(ctx, protocolID, action, arguments, auth)
	return args.Get(0).(engineDomain.Value), args.Error(1)
}

func (m *MockEngineClient) GetProtocolState(
	ctx context.Context,
	protocolID uuid.UUID,
	auth engineDomain.AuthorizationProvider,
) (*engineDomain.ProtocolState, error) {
	args := m.Called(ctx, protocolID, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engineDomain.ProtocolState), args.Error(1)
}

// Notifications replays the notifications given as the first return value
// through fn before returning the configured error.
func (m *MockEngineClient) Notifications(
	ctx context.Context,
	from int64,
	auth engineDomain.AuthorizationProvider,
	fn engineService.NotificationHandler,
) error {
	args := m.Called(ctx, from, auth, fn)
	if batch, ok := args.Get(0).([]engineDomain.Notification); ok {
		for _, n := range batch {
			if err := fn(n); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}
