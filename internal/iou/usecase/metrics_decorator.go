package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	engineDomain "github.com/allisson/iou/internal/engine/domain"
	iouDomain "github.com/allisson/iou/internal/iou/domain"
	"github.com/allisson/iou/internal/metrics"
)

// iouUseCaseWithMetrics decorates IouUseCase with metrics instrumentation.
type iouUseCaseWithMetrics struct {
	next    IouUseCase
	metrics metrics.BusinessMetrics
}

// NewIouUseCaseWithMetrics wraps an IouUseCase with metrics recording.
func NewIouUseCaseWithMetrics(useCase IouUseCase, m metrics.BusinessMetrics) IouUseCase {
	return &iouUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (i *iouUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, "iou", operation, status)
	i.metrics.RecordDuration(ctx, "iou", operation, time.Since(start), status)
}

func (i *iouUseCaseWithMetrics) Create(
	ctx context.Context,
	issuer authDomain.Party,
	payee string,
	amount float64,
	auth engineDomain.AuthorizationProvider,
) (*iouDomain.IouDetails, error) {
	start := time.Now()
	details, err := i.next.Create(ctx, issuer, payee, amount, auth)
	i.record(ctx, "iou_create", start, err)
	return details, err
}

func (i *iouUseCaseWithMetrics) AmountOwed(
	ctx context.Context,
	iouID uuid.UUID,
	auth engineDomain.AuthorizationProvider,
) (float64, error) {
	start := time.Now()
	amount, err := i.next.AmountOwed(ctx, iouID, auth)
	i.record(ctx, "iou_amount_owed", start, err)
	return amount, err
}

func (i *iouUseCaseWithMetrics) Pay(
	ctx context.Context,
	iouID uuid.UUID,
	amount float64,
	auth engineDomain.AuthorizationProvider,
) (float64, error) {
	start := time.Now()
	owed, err := i.next.Pay(ctx, iouID, amount, auth)
	i.record(ctx, "iou_pay", start, err)
	return owed, err
}

func (i *iouUseCaseWithMetrics) Forgive(
	ctx context.Context,
	iouID uuid.UUID,
	auth engineDomain.AuthorizationProvider,
) error {
	start := time.Now()
	err := i.next.Forgive(ctx, iouID, auth)
	i.record(ctx, "iou_forgive", start, err)
	return err
}

func (i *iouUseCaseWithMetrics) RegisterEvent(
	ctx context.Context,
	iouID uuid.UUID,
	event iouDomain.Event,
	auth engineDomain.AuthorizationProvider,
) error {
	start := time.Now()
	err := i.next.RegisterEvent(ctx, iouID, event, auth)
	i.record(ctx, "iou_register_event", start, err)
	return err
}
