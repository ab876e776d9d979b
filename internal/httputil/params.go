package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/allisson/iou/internal/errors"
)

// ParseFloatParam parses the named path parameter as a float64.
func ParseFloatParam(c *gin.Context, name string) (float64, error) {
	raw := c.Param(name)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "path parameter %s=%q", name, raw)
	}
	return value, nil
}

// ParseUUIDParam parses the named path parameter as a UUID.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	value, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "path parameter %s=%q", name, raw)
	}
	return value, nil
}

// RequiredParam returns the named path parameter or ErrMissingParameter when it is empty.
func RequiredParam(c *gin.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", apperrors.Wrapf(apperrors.ErrMissingParameter, "path parameter %s", name)
	}
	return value, nil
}
