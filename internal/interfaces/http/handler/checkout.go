package handler

import (
	"github.com/commerce/backend/internal/application/checkout"
	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"github.com/commerce/backend/internal/interfaces/http/dto"
	"github.com/commerce/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader deduplicates retried checkout requests
const IdempotencyKeyHeader = "Idempotency-Key"

// CheckoutHandler serves order creation
type CheckoutHandler struct {
	BaseHandler
	service *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// RegisterRoutes registers the checkout endpoints
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checkout/orders", h.CreateOrder)
}

// CreateOrder materializes the customer's cart into a pending order
// POST /api/v1/checkout/orders
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Customer authentication required")
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	address := valueobject.Address{
		FullName:   req.ShippingAddress.FullName,
		Phone:      req.ShippingAddress.Phone,
		Line1:      req.ShippingAddress.Line1,
		Line2:      req.ShippingAddress.Line2,
		District:   req.ShippingAddress.District,
		City:       req.ShippingAddress.City,
		PostalCode: req.ShippingAddress.PostalCode,
		Country:    req.ShippingAddress.Country,
	}
	if address.Country == "" {
		address.Country = "TR"
	}
	if err := address.Validate(); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := checkout.CreateOrderInput{
		CustomerID:      customerID,
		PaymentMethod:   order.PaymentMethod(req.PaymentMethod),
		ShippingAddress: address,
		CouponCode:      req.CouponCode,
		Notes:           req.Notes,
		IdempotencyKey:  c.GetHeader(IdempotencyKeyHeader),
	}

	resp, err := h.service.CreateOrder(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
