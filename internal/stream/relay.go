// Package stream relays the engine notification stream to SSE clients.
package stream

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	engineDomain "github.com/allisson/iou/internal/engine/domain"
	engineService "github.com/allisson/iou/internal/engine/service"
	"github.com/allisson/iou/internal/httputil"
)

// errStreamClosed is reported when the engine ends a subscription on its own.
var errStreamClosed = errors.New("engine closed the notification stream")

// Consumer reacts to a notification with the subscriber's authorization.
type Consumer interface {
	Consume(ctx context.Context, n engineDomain.Notification, auth engineDomain.AuthorizationProvider) error
}

// Forwarder turns an inbound request into the capability presented to the engine.
type Forwarder interface {
	Forward(r *http.Request) (*authDomain.Capability, error)
}

// Config bounds the re-subscription of a dropped engine stream.
type Config struct {
	MaxReconnections   int
	ReconnectionPeriod time.Duration
}

// Relay subscribes to the engine on behalf of each SSE client, runs the
// consumers on every notification and forwards it to the client.
type Relay struct {
	engine    engineService.EngineClient
	forwarder Forwarder
	consumers []Consumer
	config    Config
	logger    *slog.Logger
}

// NewRelay creates a Relay. Consumers run in the given order.
func NewRelay(
	engine engineService.EngineClient,
	forwarder Forwarder,
	consumers []Consumer,
	config Config,
	logger *slog.Logger,
) *Relay {
	return &Relay{
		engine:    engine,
		forwarder: forwarder,
		consumers: consumers,
		config:    config,
		logger:    logger,
	}
}

// Handler serves GET /iou/sse. Failures before the stream opens go through the
// error translation middleware; later ones end the stream with an "error" event
// carrying the error envelope.
func (r *Relay) Handler(c *gin.Context) {
	auth, err := r.forwarder.Forward(c.Request)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", sse.ContentType)
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	err = r.Run(ctx, auth, func(n engineDomain.Notification) error {
		if err := sse.Encode(c.Writer, sse.Event{
			Id:    strconv.FormatInt(n.ID, 10),
			Event: n.Payload.Name,
			Data:  n,
		}); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	})
	if err == nil || ctx.Err() != nil {
		return
	}

	code := httputil.Classify(err)
	trace := uuid.New()
	r.logger.Error("notification stream ended",
		slog.String("trace", trace.String()),
		slog.String("error_code", string(code)),
		slog.Any("error", err),
	)
	_ = sse.Encode(c.Writer, sse.Event{
		Event: "error",
		Data:  httputil.ErrorResponse{Code: code, Trace: trace},
	})
	c.Writer.Flush()
}

// Run subscribes from the start of the stream and calls emit for every
// notification after the consumers ran. A dropped subscription is resumed from
// the last delivered cursor with a constant backoff; the reconnection budget is
// restored whenever a subscription delivered something. Run stops when ctx
// is cancelled or emit fails. Engine authorization failures and unparsable
// streams are not retried.
func (r *Relay) Run(
	ctx context.Context,
	auth engineDomain.AuthorizationProvider,
	emit func(engineDomain.Notification) error,
) error {
	var b backoff.BackOff = backoff.NewConstantBackOff(r.config.ReconnectionPeriod)
	b = backoff.WithMaxRetries(b, uint64(max(r.config.MaxReconnections, 0)))
	b = backoff.WithContext(b, ctx)

	cursor := engineDomain.InitialCursor
	subscribe := func() error {
		delivered := false
		err := r.engine.Notifications(ctx, cursor, auth, func(n engineDomain.Notification) error {
			r.consume(ctx, n, auth)
			if err := emit(n); err != nil {
				return backoff.Permanent(err)
			}
			cursor = n.ID
			delivered = true
			return nil
		})
		if delivered {
			b.Reset()
		}

		var (
			authErr   *engineDomain.AuthorizationError
			formatErr *engineDomain.StreamFormatError
		)
		switch {
		case ctx.Err() != nil:
			return backoff.Permanent(ctx.Err())
		case errors.As(err, &authErr), errors.As(err, &formatErr):
			return backoff.Permanent(err)
		case err == nil:
			return errStreamClosed
		default:
			return err
		}
	}

	return backoff.RetryNotify(subscribe, b, func(err error, wait time.Duration) {
		r.logger.Warn("resubscribing to notification stream",
			slog.Int64("cursor", cursor),
			slog.Duration("wait", wait),
			slog.Any("error", err),
		)
	})
}

// consume runs every consumer in order. A failing consumer does not stop delivery.
func (r *Relay) consume(ctx context.Context, n engineDomain.Notification, auth engineDomain.AuthorizationProvider) {
	for _, consumer := range r.consumers {
		if err := consumer.Consume(ctx, n, auth); err != nil {
			r.logger.Error("notification consumer failed",
				slog.Int64("notification_id", n.ID),
				slog.String("notification", n.Payload.Name),
				slog.Any("error", err),
			)
		}
	}
}
