// Package usecase implements the IOU operations on top of the protocol engine.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	engineDomain "github.com/allisson/iou/internal/engine/domain"
	iouDomain "github.com/allisson/iou/internal/iou/domain"
)

// IouUseCase creates IOUs and dispatches their actions with the caller's authorization.
type IouUseCase interface {
	// Create opens an IOU of amount issued by issuer to the user named payee.
	Create(
		ctx context.Context,
		issuer authDomain.Party,
		payee string,
		amount float64,
		auth engineDomain.AuthorizationProvider,
	) (*iouDomain.IouDetails, error)

	// AmountOwed returns what is still owed on the IOU.
	AmountOwed(ctx context.Context, iouID uuid.UUID, auth engineDomain.AuthorizationProvider) (float64, error)

	// Pay pays amount towards the IOU and returns the amount still owed.
	Pay(ctx context.Context, iouID uuid.UUID, amount float64, auth engineDomain.AuthorizationProvider) (float64, error)

	// Forgive cancels the IOU.
	Forgive(ctx context.Context, iouID uuid.UUID, auth engineDomain.AuthorizationProvider) error

	// RegisterEvent records event on the IOU.
	RegisterEvent(
		ctx context.Context,
		iouID uuid.UUID,
		event iouDomain.Event,
		auth engineDomain.AuthorizationProvider,
	) error
}
