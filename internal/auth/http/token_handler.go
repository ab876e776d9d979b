package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	"github.com/allisson/iou/internal/auth/http/dto"
	authUseCase "github.com/allisson/iou/internal/auth/usecase"
	apperrors "github.com/allisson/iou/internal/errors"
	"github.com/allisson/iou/internal/httputil"
	customValidation "github.com/allisson/iou/internal/validation"
)

// AuthHandler handles the /auth login, refresh and logout endpoints.
// Request bodies are read with the configured RequestDecoder.
type AuthHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	decoder      RequestDecoder
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(
	tokenUseCase authUseCase.TokenUseCase,
	decoder RequestDecoder,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		tokenUseCase: tokenUseCase,
		decoder:      decoder,
		logger:       logger,
	}
}

// LoginHandler exchanges a username and password for a token.
// POST /auth/login - No authentication required.
// Returns 200 OK with access_token, expires_in and refresh_token.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := h.decoder.Decode(c, &req); err != nil {
		httputil.Fail(c, err)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.Fail(c, customValidation.WrapValidationError(err))
		return
	}

	token, err := h.tokenUseCase.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenToResponse(token))
}

// RefreshHandler exchanges a refresh token for a new token.
// POST /auth/refresh - No authentication required.
func (h *AuthHandler) RefreshHandler(c *gin.Context) {
	var req dto.RefreshRequest
	if err := h.decoder.Decode(c, &req); err != nil {
		httputil.Fail(c, err)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.Fail(c, customValidation.WrapValidationError(err))
		return
	}

	token, err := h.tokenUseCase.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenToResponse(token))
}

// LogoutHandler ends the caller's session.
// POST /auth/logout - Requires LoginRequiredMiddleware.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	var req dto.LogoutRequest
	if c.Request.ContentLength != 0 {
		if err := h.decoder.Decode(c, &req); err != nil {
			httputil.Fail(c, err)
			return
		}
	}

	token, ok := GetBearerToken(c.Request.Context())
	if !ok {
		httputil.Fail(c, apperrors.Wrap(authDomain.ErrLoginRequired, "logout without bearer token"))
		return
	}

	if err := h.tokenUseCase.Logout(c.Request.Context(), token, req.RefreshToken); err != nil {
		httputil.Fail(c, err)
		return
	}

	c.Status(http.StatusOK)
}
