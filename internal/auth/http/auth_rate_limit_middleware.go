package http

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/iou/internal/errors"
	"github.com/allisson/iou/internal/httputil"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = time.Hour
)

// clientBucket is the token bucket of one client address.
type clientBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// authLimiter tracks a token bucket per client address.
type authLimiter struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	limit   rate.Limit
	burst   int
}

func newAuthLimiter(rps float64, burst int) *authLimiter {
	return &authLimiter{
		buckets: make(map[string]*clientBucket),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
}

// take consumes a token for client. When the bucket is empty it returns false
// and the wait until the next token.
func (l *authLimiter) take(client string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	bucket, ok := l.buckets[client]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[client] = bucket
	}
	bucket.seen = now
	l.mu.Unlock()

	reservation := bucket.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Second
	}
	delay := reservation.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	reservation.CancelAt(now)
	return false, delay
}

// sweep drops buckets idle since before cutoff.
func (l *authLimiter) sweep(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for client, bucket := range l.buckets {
		if bucket.seen.Before(cutoff) {
			delete(l.buckets, client)
		}
	}
}

// AuthRateLimitMiddleware throttles /auth/login and /auth/refresh per client IP
// (c.ClientIP, so forwarding headers are honored) with a token bucket of rps and
// burst. A throttled request fails with ErrBadRequest and a Retry-After header
// in whole seconds. Idle buckets are swept until ctx is cancelled.
func AuthRateLimitMiddleware(
	ctx context.Context,
	rps float64,
	burst int,
	logger *slog.Logger,
) gin.HandlerFunc {
	limiter := newAuthLimiter(rps, burst)

	go func() {
		ticker := time.NewTicker(limiterSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				limiter.sweep(now.Add(-limiterIdleTTL))
			}
		}
	}()

	return func(c *gin.Context) {
		client := c.ClientIP()

		allowed, wait := limiter.take(client, time.Now())
		if allowed {
			c.Next()
			return
		}

		retryAfter := max(int(math.Ceil(wait.Seconds())), 1)
		logger.Debug("auth rate limit exceeded",
			slog.String("client_ip", client),
			slog.Int("retry_after", retryAfter))

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		httputil.Fail(c, apperrors.Wrapf(apperrors.ErrBadRequest, "rate limit exceeded for %s", client))
	}
}
