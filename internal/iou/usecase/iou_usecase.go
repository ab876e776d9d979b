package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	engineDomain "github.com/allisson/iou/internal/engine/domain"
	engineService "github.com/allisson/iou/internal/engine/service"
	iouDomain "github.com/allisson/iou/internal/iou/domain"
)

// iouUseCase implements IouUseCase with an EngineClient.
type iouUseCase struct {
	engine engineService.EngineClient
	logger *slog.Logger
}

// NewIouUseCase creates a new IouUseCase.
func NewIouUseCase(engine engineService.EngineClient, logger *slog.Logger) IouUseCase {
	return &iouUseCase{
		engine: engine,
		logger: logger,
	}
}

// Create instantiates the IOU prototype and reads back its details.
func (i *iouUseCase) Create(
	ctx context.Context,
	issuer authDomain.Party,
	payee string,
	amount float64,
	auth engineDomain.AuthorizationProvider,
) (*iouDomain.IouDetails, error) {
	parties := []engineDomain.Party{
		issuer.ToEngine(),
		authDomain.UserParty(iouDomain.PayeeParty, payee).ToEngine(),
	}

	id, err := i.engine.CreateProtocol(
		ctx,
		iouDomain.PrototypeID,
		parties,
		[]engineDomain.Value{engineDomain.Number(amount)},
		auth,
	)
	if err != nil {
		return nil, err
	}

	state, err := i.engine.GetProtocolState(ctx, id, auth)
	if err != nil {
		return nil, err
	}

	details, err := iouDomain.DetailsFromState(state)
	if err != nil {
		return nil, err
	}

	i.logger.Info("iou created",
		slog.String("iou_id", details.ID.String()),
		slog.String("issuer", details.Issuer),
		slog.String("payee", details.Payee),
	)
	return details, nil
}

func (i *iouUseCase) AmountOwed(
	ctx context.Context,
	iouID uuid.UUID,
	auth engineDomain.AuthorizationProvider,
) (float64, error) {
	return i.numberAction(ctx, iouID, iouDomain.ActionGetAmountOwed, nil, auth)
}

func (i *iouUseCase) Pay(
	ctx context.Context,
	iouID uuid.UUID,
	amount float64,
	auth engineDomain.AuthorizationProvider,
) (float64, error) {
	return i.numberAction(ctx, iouID, iouDomain.ActionPay, []engineDomain.Value{engineDomain.Number(amount)}, auth)
}

func (i *iouUseCase) Forgive(ctx context.Context, iouID uuid.UUID, auth engineDomain.AuthorizationProvider) error {
	_, err := i.engine.SelectAction(ctx, iouID, iouDomain.ActionForgive, nil, auth)
	return err
}

func (i *iouUseCase) RegisterEvent(
	ctx context.Context,
	iouID uuid.UUID,
	event iouDomain.Event,
	auth engineDomain.AuthorizationProvider,
) error {
	_, err := i.engine.SelectAction(ctx, iouID, iouDomain.ActionRegisterEvent, []engineDomain.Value{event.Value()}, auth)
	return err
}

// numberAction runs an action whose result is a number.
func (i *iouUseCase) numberAction(
	ctx context.Context,
	iouID uuid.UUID,
	action string,
	arguments []engineDomain.Value,
	auth engineDomain.AuthorizationProvider,
) (float64, error) {
	result, err := i.engine.SelectAction(ctx, iouID, action, arguments, auth)
	if err != nil {
		return 0, err
	}

	amount, err := result.AsNumber()
	if err != nil {
		return 0, fmt.Errorf("iou %s %s: %w", iouID, action, err)
	}
	return amount, nil
}
