// Package http provides the /iou handlers.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	"github.com/allisson/iou/internal/httputil"
	"github.com/allisson/iou/internal/iou/http/dto"
	iouUseCase "github.com/allisson/iou/internal/iou/usecase"
)

// Authorizer derives the engine authorization of a request.
type Authorizer interface {
	Forward(r *http.Request) (*authDomain.Capability, error)
	Party(ctx context.Context, r *http.Request) (authDomain.Party, error)
}

// IouHandler handles the IOU endpoints. All routes sit behind LoginRequiredMiddleware.
type IouHandler struct {
	iouUseCase iouUseCase.IouUseCase
	authorizer Authorizer
	logger     *slog.Logger
}

// NewIouHandler creates a new IOU handler.
func NewIouHandler(useCase iouUseCase.IouUseCase, authorizer Authorizer, logger *slog.Logger) *IouHandler {
	return &IouHandler{
		iouUseCase: useCase,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreateHandler issues an IOU from the caller to a payee.
// POST /iou/:amount/:payee
// Returns 201 Created with the IOU details.
func (h *IouHandler) CreateHandler(c *gin.Context) {
	amount, err := httputil.ParseFloatParam(c, "amount")
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	payee, err := httputil.RequiredParam(c, "payee")
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	auth, err := h.authorizer.Forward(c.Request)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	issuer, err := h.authorizer.Party(c.Request.Context(), c.Request)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	details, err := h.iouUseCase.Create(c.Request.Context(), issuer, payee, amount, auth)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateIouResponse{Iou: details})
}

// AmountOwedHandler returns what is still owed on an IOU.
// GET /iou/:iouId/amountOwed
func (h *IouHandler) AmountOwedHandler(c *gin.Context) {
	iouID, err := httputil.ParseUUIDParam(c, "iouId")
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	auth, err := h.authorizer.Forward(c.Request)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	amount, err := h.iouUseCase.AmountOwed(c.Request.Context(), iouID, auth)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AmountResponse{Amount: amount})
}

// PayHandler pays towards an IOU and returns the amount still owed.
// PATCH /iou/:iouId/pay/:amount
func (h *IouHandler) PayHandler(c *gin.Context) {
	iouID, err := httputil.ParseUUIDParam(c, "iouId")
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	amount, err := httputil.ParseFloatParam(c, "amount")
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	auth, err := h.authorizer.Forward(c.Request)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	owed, err := h.iouUseCase.Pay(c.Request.Context(), iouID, amount, auth)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AmountResponse{Amount: owed})
}

// ForgiveHandler forgives an IOU.
// PUT /iou/:iouId/forgive
// Returns 204 No Content.
func (h *IouHandler) ForgiveHandler(c *gin.Context) {
	iouID, err := httputil.ParseUUIDParam(c, "iouId")
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	auth, err := h.authorizer.Forward(c.Request)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	if err := h.iouUseCase.Forgive(c.Request.Context(), iouID, auth); err != nil {
		httputil.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
