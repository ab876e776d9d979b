package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/allisson/iou/internal/config"
	apperrors "github.com/allisson/iou/internal/errors"
)

// RequestDecoder reads an /auth request body into dst.
// Decode failures are returned wrapped in ErrInvalidInput.
type RequestDecoder interface {
	Decode(c *gin.Context, dst any) error
}

// JSONRequestDecoder decodes application/json bodies.
type JSONRequestDecoder struct{}

func (JSONRequestDecoder) Decode(c *gin.Context, dst any) error {
	if err := c.ShouldBindWith(dst, binding.JSON); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

// FormRequestDecoder decodes application/x-www-form-urlencoded bodies.
type FormRequestDecoder struct{}

func (FormRequestDecoder) Decode(c *gin.Context, dst any) error {
	if err := c.ShouldBindWith(dst, binding.Form); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

// NegotiatingRequestDecoder picks the form decoder for form content types and the
// JSON decoder otherwise.
type NegotiatingRequestDecoder struct{}

func (NegotiatingRequestDecoder) Decode(c *gin.Context, dst any) error {
	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		return FormRequestDecoder{}.Decode(c, dst)
	default:
		return JSONRequestDecoder{}.Decode(c, dst)
	}
}

// NewRequestDecoder returns the decoder for an AUTH_REQUEST_FORMAT value.
func NewRequestDecoder(format string) (RequestDecoder, error) {
	switch format {
	case config.AuthRequestFormatJSON:
		return JSONRequestDecoder{}, nil
	case config.AuthRequestFormatForm:
		return FormRequestDecoder{}, nil
	case config.AuthRequestFormatNegotiate, "":
		return NegotiatingRequestDecoder{}, nil
	default:
		return nil, fmt.Errorf("unknown auth request format %q", format)
	}
}
