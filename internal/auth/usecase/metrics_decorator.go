package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	"github.com/allisson/iou/internal/metrics"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", operation, status)
	t.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// Login records metrics for login operations.
func (t *tokenUseCaseWithMetrics) Login(
	ctx context.Context,
	username, password string,
) (*authDomain.Token, error) {
	start := time.Now()
	token, err := t.next.Login(ctx, username, password)
	t.record(ctx, "login", start, err)
	return token, err
}

// Refresh records metrics for refresh operations.
func (t *tokenUseCaseWithMetrics) Refresh(ctx context.Context, refreshToken string) (*authDomain.Token, error) {
	start := time.Now()
	token, err := t.next.Refresh(ctx, refreshToken)
	t.record(ctx, "refresh", start, err)
	return token, err
}

// Logout records metrics for logout operations.
func (t *tokenUseCaseWithMetrics) Logout(ctx context.Context, bearerToken, refreshToken string) error {
	start := time.Now()
	err := t.next.Logout(ctx, bearerToken, refreshToken)
	t.record(ctx, "logout", start, err)
	return err
}
