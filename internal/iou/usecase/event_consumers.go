package usecase

import (
	"context"
	"fmt"
	"log/slog"

	engineDomain "github.com/allisson/iou/internal/engine/domain"
	iouDomain "github.com/allisson/iou/internal/iou/domain"
)

// IouCompleteConsumer registers an IouComplete event on the IOU referenced by
// a /seed/IouComplete notification.
type IouCompleteConsumer struct {
	ious   IouUseCase
	logger *slog.Logger
}

// NewIouCompleteConsumer creates an IouCompleteConsumer.
func NewIouCompleteConsumer(ious IouUseCase, logger *slog.Logger) *IouCompleteConsumer {
	return &IouCompleteConsumer{ious: ious, logger: logger}
}

// Consume ignores notifications of any other type.
func (c *IouCompleteConsumer) Consume(
	ctx context.Context,
	n engineDomain.Notification,
	auth engineDomain.AuthorizationProvider,
) error {
	if n.Payload.Name != iouDomain.NotificationIouComplete || len(n.Payload.Arguments) == 0 {
		return nil
	}

	iouID, err := n.Payload.Arguments[0].AsProtocolReference()
	if err != nil {
		return fmt.Errorf("notification %d: %w", n.ID, err)
	}

	c.logger.Info("iou complete",
		slog.Int64("notification_id", n.ID),
		slog.String("iou_id", iouID.String()),
	)
	return c.ious.RegisterEvent(ctx, iouID, iouDomain.Event{Type: iouDomain.EventTypeIouComplete}, auth)
}

// PaymentConsumer registers a Payment event on the IOU referenced by a
// /seed/Payment notification.
type PaymentConsumer struct {
	ious   IouUseCase
	logger *slog.Logger
}

// NewPaymentConsumer creates a PaymentConsumer.
func NewPaymentConsumer(ious IouUseCase, logger *slog.Logger) *PaymentConsumer {
	return &PaymentConsumer{ious: ious, logger: logger}
}

// Consume expects the arguments (iou reference, amount paid, amount remaining).
func (c *PaymentConsumer) Consume(
	ctx context.Context,
	n engineDomain.Notification,
	auth engineDomain.AuthorizationProvider,
) error {
	if n.Payload.Name != iouDomain.NotificationPayment || len(n.Payload.Arguments) == 0 {
		return nil
	}
	if len(n.Payload.Arguments) < 3 {
		return fmt.Errorf("notification %d: payment carries %d arguments, want 3", n.ID, len(n.Payload.Arguments))
	}

	iouID, err := n.Payload.Arguments[0].AsProtocolReference()
	if err != nil {
		return fmt.Errorf("notification %d: %w", n.ID, err)
	}
	amount, err := n.Payload.Arguments[1].AsNumber()
	if err != nil {
		return fmt.Errorf("notification %d: %w", n.ID, err)
	}
	remaining, err := n.Payload.Arguments[2].AsNumber()
	if err != nil {
		return fmt.Errorf("notification %d: %w", n.ID, err)
	}

	c.logger.Info("iou payment",
		slog.Int64("notification_id", n.ID),
		slog.String("iou_id", iouID.String()),
		slog.Float64("amount", amount),
		slog.Float64("remaining", remaining),
	)
	return c.ious.RegisterEvent(ctx, iouID, iouDomain.Event{
		Type:      iouDomain.EventTypePayment,
		Amount:    amount,
		Remaining: remaining,
	}, auth)
}
