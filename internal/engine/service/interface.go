// Package service implements the client of the protocol engine.
package service

import (
	"context"

	"github.com/google/uuid"

	engineDomain "github.com/allisson/iou/internal/engine/domain"
)

// NotificationHandler receives stream notifications in arrival order. Returning
// an error ends the subscription with that error.
type NotificationHandler func(engineDomain.Notification) error

// EngineClient creates and drives protocols on the engine on behalf of a caller.
// Every call presents the caller's authorization; failures are reported as
// engineDomain.AuthorizationError, engineDomain.NoSuchItemError or
// engineDomain.RuntimeError when the engine says so.
type EngineClient interface {
	// Ready reports whether the engine answers its health endpoint. It never fails.
	Ready(ctx context.Context) bool

	CreateProtocol(
		ctx context.Context,
		prototypeID string,
		parties []engineDomain.Party,
		arguments []engineDomain.Value,
		auth engineDomain.AuthorizationProvider,
	) (uuid.UUID, error)

	SelectAction(
		ctx context.Context,
		protocolID uuid.UUID,
		action string,
		arguments []engineDomain.Value,
		auth engineDomain.AuthorizationProvider,
	) (engineDomain.Value, error)

	GetProtocolState(
		ctx context.Context,
		protocolID uuid.UUID,
		auth engineDomain.AuthorizationProvider,
	) (*engineDomain.ProtocolState, error)

	// Notifications subscribes to the notification stream after cursor from and
	// calls fn for each notification. It returns nil when the engine closes the
	// stream and ctx.Err() when ctx is cancelled.
	Notifications(
		ctx context.Context,
		from int64,
		auth engineDomain.AuthorizationProvider,
		fn NotificationHandler,
	) error
}
