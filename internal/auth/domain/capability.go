package domain

import (
	"strings"

	"github.com/allisson/iou/internal/errors"
)

// Capability is the delegated authorization of one request: the caller's raw
// Authorization header, presented unchanged to downstream calls.
type Capability struct {
	header string
}

// NewCapability wraps header. A blank header is rejected with ErrInvalidBearerToken.
func NewCapability(header string) (*Capability, error) {
	if strings.TrimSpace(header) == "" {
		return nil, errors.Wrap(ErrInvalidBearerToken, "authorization header is missing")
	}
	return &Capability{header: header}, nil
}

// Header returns the wrapped Authorization header value.
func (c *Capability) Header() string {
	return c.header
}

// Authorization splits the header into scheme and credential. A header without
// that shape yields ErrInvalidBearerToken.
func (c *Capability) Authorization() (scheme, credential string, err error) {
	scheme, credential, ok := strings.Cut(strings.TrimSpace(c.header), " ")
	credential = strings.TrimSpace(credential)
	if !ok || scheme == "" || credential == "" {
		return "", "", errors.Wrap(ErrInvalidBearerToken, "authorization header is malformed")
	}
	return scheme, credential, nil
}
