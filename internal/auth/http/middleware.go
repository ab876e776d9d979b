package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	authService "github.com/allisson/iou/internal/auth/service"
	apperrors "github.com/allisson/iou/internal/errors"
	"github.com/allisson/iou/internal/httputil"
)

// LoginRequiredMiddleware admits only requests carrying a bearer token the identity
// provider accepts.
//
// The middleware:
// 1. Requires an Authorization header of the form "Bearer <token>" (case-insensitive scheme)
// 2. Validates the raw header with IdentityClient.Authorize
// 3. Stores the token and its decoded claims in the request context
//
// Error handling:
//   - Missing or malformed Authorization header → 401 LoginRequired
//   - Token rejected by the identity provider → 401 LoginRequired
//   - Other identity provider failures → 500 InternalServerError
//
// Claims are decoded without signature verification, only after the provider accepted
// the token. A token that is not a JWT is admitted without claims.
func LoginRequiredMiddleware(identity authService.IdentityClient, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.Request)
		if !ok {
			logger.Debug("login required: missing or malformed authorization header")
			httputil.Fail(c, apperrors.Wrap(authDomain.ErrLoginRequired, "bearer token is missing"))
			return
		}

		ctx := c.Request.Context()
		if err := identity.Authorize(ctx, c.GetHeader("Authorization")); err != nil {
			if apperrors.Is(err, authDomain.ErrInvalidBearerToken) {
				logger.Debug("login required: bearer token rejected", slog.Any("error", err))
				httputil.Fail(c, apperrors.WithCode(apperrors.CodeLoginRequired, err))
				return
			}
			httputil.Fail(c, err)
			return
		}

		ctx = WithBearerToken(ctx, token)
		if claims, err := authService.DecodeClaims(token); err == nil {
			ctx = WithClaims(ctx, claims)
		} else {
			logger.Debug("bearer token claims not decoded", slog.Any("error", err))
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// bearerToken strips the scheme from a "Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	const bearerPrefix = "bearer "

	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
