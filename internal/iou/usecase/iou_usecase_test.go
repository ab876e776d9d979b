package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	engineDomain "github.com/allisson/iou/internal/engine/domain"
	engineMocks "github.com/allisson/iou/internal/engine/service/mocks"
	iouDomain "github.com/allisson/iou/internal/iou/domain"
	"github.com/allisson/iou/internal/iou/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAuth(t *testing.T) *authDomain.Capability {
	t.Helper()
	capability, err := authDomain.NewCapability("Bearer aToken")
	require.NoError(t, err)
	return capability
}

func TestIouUseCase_Create(t *testing.T) {
	ctx := context.Background()
	auth := testAuth(t)
	issuer := authDomain.UserParty("issuer", "alice")
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		engine := &engineMocks.MockEngineClient{}
		uc := usecase.NewIouUseCase(engine, discardLogger())

		expectedParties := []engineDomain.Party{
			issuer.ToEngine(),
			authDomain.UserParty("payee", "bob").ToEngine(),
		}
		engine.On("CreateProtocol", ctx, "/seed/Iou", expectedParties,
			[]engineDomain.Value{engineDomain.Number(100)}, auth).
			Return(id, nil).Once()
		engine.On("GetProtocolState", ctx, id, auth).Return(&engineDomain.ProtocolState{
			ID: id,
			Parties: map[string]engineDomain.Party{
				"issuer": issuer.ToEngine(),
				"payee":  authDomain.UserParty("payee", "bob").ToEngine(),
			},
			Fields: map[string]engineDomain.Value{"forAmount": engineDomain.Number(100)},
		}, nil).Once()

		details, err := uc.Create(ctx, issuer, "bob", 100, auth)
		require.NoError(t, err)
		assert.Equal(t, &iouDomain.IouDetails{ID: id, Payee: "bob", Issuer: "alice", Amount: 100}, details)
		engine.AssertExpectations(t)
	})

	t.Run("Error_CreateRejected", func(t *testing.T) {
		engine := &engineMocks.MockEngineClient{}
		uc := usecase.NewIouUseCase(engine, discardLogger())
		rejected := &engineDomain.RuntimeError{OriginCode: engineDomain.OriginCodeInvalidClaim}

		engine.On("CreateProtocol", ctx, "/seed/Iou", mock.Anything, mock.Anything, auth).
			Return(uuid.Nil, rejected).Once()

		details, err := uc.Create(ctx, issuer, "bob", 100, auth)
		assert.Nil(t, details)
		assert.ErrorIs(t, err, rejected)
		engine.AssertNotCalled(t, "GetProtocolState", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_StateLookup", func(t *testing.T) {
		engine := &engineMocks.MockEngineClient{}
		uc := usecase.NewIouUseCase(engine, discardLogger())
		notFound := &engineDomain.NoSuchItemError{Item: id.String()}

		engine.On("CreateProtocol", ctx, "/seed/Iou", mock.Anything, mock.Anything, auth).Return(id, nil).Once()
		engine.On("GetProtocolState", ctx, id, auth).Return(nil, notFound).Once()

		_, err := uc.Create(ctx, issuer, "bob", 100, auth)
		assert.ErrorIs(t, err, notFound)
	})
}

func TestIouUseCase_Actions(t *testing.T) {
	ctx := context.Background()
	auth := testAuth(t)
	id := uuid.New()

	t.Run("AmountOwed", func(t *testing.T) {
		engine := &engineMocks.MockEngineClient{}
		uc := usecase.NewIouUseCase(engine, discardLogger())
		engine.On("SelectAction", ctx, id, "getAmountOwed", []engineDomain.Value(nil), auth).
			Return(engineDomain.Number(40), nil).Once()

		owed, err := uc.AmountOwed(ctx, id, auth)
		require.NoError(t, err)
		assert.Equal(t, 40.0, owed)
	})

	t.Run("AmountOwed_NotANumber", func(t *testing.T) {
		engine := &engineMocks.MockEngineClient{}
		uc := usecase.NewIouUseCase(engine, discardLogger())
		engine.On("SelectAction", ctx, id, "getAmountOwed", mock.Anything, auth).
			Return(engineDomain.Text("forty"), nil).Once()

		_, err := uc.AmountOwed(ctx, id, auth)
		assert.Error(t, err)
	})

	t.Run("Pay", func(t *testing.T) {
		engine := &engineMocks.MockEngineClient{}
		uc := usecase.NewIouUseCase(engine, discardLogger())
		engine.On("SelectAction", ctx, id, "pay", []engineDomain.Value{engineDomain.Number(10)}, auth).
			Return(engineDomain.Number(30), nil).Once()

		owed, err := uc.Pay(ctx, id, 10, auth)
		require.NoError(t, err)
		assert.Equal(t, 30.0, owed)
	})

	t.Run("Forgive", func(t *testing.T) {
		engine := &engineMocks.MockEngineClient{}
		uc := usecase.NewIouUseCase(engine, discardLogger())
		engine.On("SelectAction", ctx, id, "forgive", []engineDomain.Value(nil), auth).
			Return(engineDomain.Value{}, nil).Once()

		assert.NoError(t, uc.Forgive(ctx, id, auth))
		engine.AssertExpectations(t)
	})

	t.Run("Forgive_Unauthorized", func(t *testing.T) {
		engine := &engineMocks.MockEngineClient{}
		uc := usecase.NewIouUseCase(engine, discardLogger())
		engine.On("SelectAction", ctx, id, "forgive", mock.Anything, auth).
			Return(engineDomain.Value{}, &engineDomain.AuthorizationError{Status: 403}).Once()

		var authErr *engineDomain.AuthorizationError
		assert.True(t, errors.As(uc.Forgive(ctx, id, auth), &authErr))
	})

	t.Run("RegisterEvent", func(t *testing.T) {
		engine := &engineMocks.MockEngineClient{}
		uc := usecase.NewIouUseCase(engine, discardLogger())
		event := iouDomain.Event{Type: iouDomain.EventTypePayment, Amount: 10, Remaining: 30}
		engine.On("SelectAction", ctx, id, "registerEvent", []engineDomain.Value{event.Value()}, auth).
			Return(engineDomain.Value{}, nil).Once()

		assert.NoError(t, uc.RegisterEvent(ctx, id, event, auth))
		engine.AssertExpectations(t)
	})
}
