// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	engineDomain "github.com/allisson/iou/internal/engine/domain"
	apperrors "github.com/allisson/iou/internal/errors"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code  apperrors.Code `json:"code"`
	Trace uuid.UUID      `json:"trace"`
}

// Classify maps err to exactly one error code. Errors outside the known set map to
// InternalServerError.
func Classify(err error) apperrors.Code {
	var (
		authErr    *engineDomain.AuthorizationError
		noItemErr  *engineDomain.NoSuchItemError
		runtimeErr *engineDomain.RuntimeError
		streamErr  *engineDomain.StreamFormatError
	)

	if code, ok := apperrors.CodeOf(err); ok {
		return code
	}

	switch {
	case apperrors.Is(err, apperrors.ErrMissingParameter):
		return apperrors.CodeMissingParameter
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return apperrors.CodeInvalidParameter
	case apperrors.As(err, &authErr):
		return apperrors.CodeLoginRequired
	case apperrors.As(err, &noItemErr):
		return apperrors.CodeItemNotFound
	case apperrors.As(err, &runtimeErr):
		if runtimeErr.OriginCode == engineDomain.OriginCodeInvalidClaim {
			return apperrors.CodeInvalidClaim
		}
		return apperrors.CodeInternalServerError
	case apperrors.As(err, &streamErr):
		return apperrors.CodeBadGateway
	case apperrors.Is(err, apperrors.ErrRouteNotFound), apperrors.Is(err, apperrors.ErrNotFound):
		return apperrors.CodeRouteNotFound
	case apperrors.Is(err, apperrors.ErrConflict):
		return apperrors.CodeConflict
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return apperrors.CodeLoginRequired
	case apperrors.Is(err, apperrors.ErrBadRequest):
		return apperrors.CodeBadRequest
	default:
		return apperrors.CodeInternalServerError
	}
}

// IsDecodeFailure reports whether err came from decoding request input.
func IsDecodeFailure(err error) bool {
	return apperrors.Is(err, apperrors.ErrInvalidInput) || apperrors.Is(err, apperrors.ErrMissingParameter)
}

// HandleErrorGin classifies err, logs it under a fresh trace id and writes the error envelope.
// The error detail is only logged, never written to the client.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) uuid.UUID {
	code := Classify(err)
	status := apperrors.StatusOf(code)
	trace := uuid.New()

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.String("trace", trace.String()),
			slog.Int("status_code", status),
			slog.String("error_code", string(code)),
			slog.Any("error", err),
		)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Trace: trace})
	return trace
}

// Fail records err on the context and stops the handler chain. The error
// translation middleware renders the response.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
