package cart

import (
	"errors"
	"net/http"
	"strconv"

	"tripcart/internal/domain"
	"tripcart/internal/middleware"
	"tripcart/internal/pkg/response"
	pkgvalidator "tripcart/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cart", h.GetCart)
	rg.POST("/cart/items", h.AddItem)
	rg.PATCH("/cart/items/:id", h.UpdateItem)
	rg.DELETE("/cart/items/:id", h.RemoveItem)
}

func (h *Handler) GetCart(c *gin.Context) {
	owner, ok := middleware.OwnerFrom(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "IDENTITY_ERROR", "must provide a valid user id or guest id")
		return
	}

	cart, err := h.service.GetOpenCart(c.Request.Context(), owner)
	if err != nil {
		h.writeError(c, err, "Failed to load cart")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cart": cart})
}

func (h *Handler) AddItem(c *gin.Context) {
	owner, ok := middleware.OwnerFrom(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "IDENTITY_ERROR", "must provide a valid user id or guest id")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if details := validateOptions(req.AgeGroupOptions); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid age group options", details)
		return
	}

	ref, err := h.service.AddItem(c.Request.Context(), owner, req)
	if err != nil {
		h.writeError(c, err, "Failed to add cart item")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cart_id": ref.CartID, "item_id": ref.ItemID})
}

func (h *Handler) UpdateItem(c *gin.Context) {
	owner, ok := middleware.OwnerFrom(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "IDENTITY_ERROR", "must provide a valid user id or guest id")
		return
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if details := validateOptions(req.AgeGroupOptions); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid age group options", details)
		return
	}

	if err := h.service.UpdateItem(c.Request.Context(), owner, itemID, req.AgeGroupOptions); err != nil {
		h.writeError(c, err, "Failed to update cart item")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"item_id": itemID})
}

func (h *Handler) RemoveItem(c *gin.Context) {
	owner, ok := middleware.OwnerFrom(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "IDENTITY_ERROR", "must provide a valid user id or guest id")
		return
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}

	if err := h.service.RemoveItem(c.Request.Context(), owner, itemID); err != nil {
		h.writeError(c, err, "Failed to remove cart item")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"item_id": itemID})
}

func validateOptions(opts []domain.AgeGroupOption) map[string]string {
	for _, opt := range opts {
		if details := pkgvalidator.Validate(opt); details != nil {
			return details
		}
	}
	return nil
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "An accompanying adult is required for child or infant travellers")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "DUPLICATE_CART_ITEM", "This inventory slot is already in the cart")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Cart or item not found")
	case errors.Is(err, domain.ErrIdentity):
		response.Error(c, http.StatusBadRequest, "IDENTITY_ERROR", "must provide a valid user id or guest id")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
