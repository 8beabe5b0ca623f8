package order

import (
	"errors"
	"net/http"

	"tripcart/internal/domain"
	"tripcart/internal/gateway/headout"
	"tripcart/internal/gateway/payment"
	"tripcart/internal/middleware"
	cartmod "tripcart/internal/modules/cart"
	"tripcart/internal/modules/promo"
	"tripcart/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders", h.CreateOrder)
	rg.PATCH("/orders", h.AdvanceOrder)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	owner, ok := middleware.OwnerFrom(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "IDENTITY_ERROR", "must provide a valid user id or guest id")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	ord, err := h.service.GetOrCreateOrder(c.Request.Context(), owner, req)
	if err != nil {
		h.writeError(c, err, "Failed to create order")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"order": ord})
}

func (h *Handler) AdvanceOrder(c *gin.Context) {
	owner, ok := middleware.OwnerFrom(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "IDENTITY_ERROR", "must provide a valid user id or guest id")
		return
	}

	var req AdvanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	ord, err := h.service.AdvanceOrder(c.Request.Context(), owner, req)
	if err != nil {
		h.writeError(c, err, "Failed to advance order")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": ord})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, cartmod.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "No open cart or order to check out")
	case errors.Is(err, ErrOrderBusy):
		response.Error(c, http.StatusConflict, "ORDER_BUSY", "The order is being advanced by another request")
	case errors.Is(err, ErrDuplicatePayment):
		response.Error(c, http.StatusConflict, "DUPLICATE_PAYMENT", "A payment already exists for this order")
	case errors.Is(err, promo.ErrInvalidPromoCode):
		response.Error(c, http.StatusBadRequest, "INVALID_PROMO_CODE", "The promo code is not valid")
	case errors.Is(err, promo.ErrPromoAlreadyUsed):
		response.Error(c, http.StatusConflict, "PROMO_ALREADY_USED", "The promo code was already used")
	case errors.Is(err, payment.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "A card token, wallet source or stored customer is required")
	case errors.Is(err, payment.ErrGateway), errors.Is(err, headout.ErrGateway), errors.Is(err, ErrGateway):
		response.Error(c, http.StatusBadGateway, "GATEWAY_ERROR", "An upstream provider call failed")
	case errors.Is(err, domain.ErrIdentity):
		response.Error(c, http.StatusBadRequest, "IDENTITY_ERROR", "must provide a valid user id or guest id")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
