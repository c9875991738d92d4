package handler

import (
	"github.com/commerce/backend/internal/application/checkout"
	"github.com/commerce/backend/internal/interfaces/http/dto"
	"github.com/commerce/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartHandler serves the customer cart endpoints
type CartHandler struct {
	BaseHandler
	service *checkout.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service *checkout.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart endpoints
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	carts := rg.Group("/cart")
	{
		carts.GET("", h.GetCart)
		carts.POST("/items", h.AddItem)
		carts.PATCH("/items/:itemID", h.UpdateItem)
		carts.DELETE("/items/:itemID", h.RemoveItem)
		carts.POST("/coupon", h.ApplyCoupon)
		carts.DELETE("/coupon", h.RemoveCoupon)
	}
}

// GetCart returns the customer's cart with a non-binding price preview
// GET /api/v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Customer authentication required")
		return
	}

	resp, err := h.service.GetCart(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem adds a product to the cart
// POST /api/v1/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Customer authentication required")
		return
	}

	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	var variantID *uuid.UUID
	if req.VariantID != nil {
		id, err := uuid.Parse(*req.VariantID)
		if err != nil {
			h.BadRequest(c, "Invalid variant ID")
			return
		}
		variantID = &id
	}

	resp, err := h.service.AddItem(c.Request.Context(), customerID, productID, variantID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateItem changes the quantity of a cart line
// PATCH /api/v1/cart/items/:itemID
func (h *CartHandler) UpdateItem(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Customer authentication required")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.UpdateItemQuantity(c.Request.Context(), customerID, itemID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem removes a line from the cart
// DELETE /api/v1/cart/items/:itemID
func (h *CartHandler) RemoveItem(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Customer authentication required")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	resp, err := h.service.RemoveItem(c.Request.Context(), customerID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApplyCoupon attaches a coupon code to the cart
// POST /api/v1/cart/coupon
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Customer authentication required")
		return
	}

	var req dto.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.ApplyCoupon(c.Request.Context(), customerID, req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveCoupon detaches the coupon from the cart
// DELETE /api/v1/cart/coupon
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Customer authentication required")
		return
	}

	resp, err := h.service.RemoveCoupon(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
