package handler

import (
	"github.com/commerce/backend/internal/application/checkout"
	"github.com/commerce/backend/internal/interfaces/http/dto"
	"github.com/commerce/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler serves order retrieval, payment and cancellation
type OrderHandler struct {
	BaseHandler
	orders   *checkout.Service
	payments *checkout.PaymentService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *checkout.Service, payments *checkout.PaymentService) *OrderHandler {
	return &OrderHandler{orders: orders, payments: payments}
}

// RegisterRoutes registers the order endpoints
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:orderID", h.GetOrder)
		orders.GET("/:orderID/status", h.GetOrderStatus)
		orders.POST("/:orderID/payment", h.ProcessPayment)
		orders.POST("/:orderID/cancel", h.CancelOrder)
	}
}

// loadOwnedOrder fetches the order and checks it belongs to the caller.
// Foreign orders are reported as not found to avoid leaking their existence.
func (h *OrderHandler) loadOwnedOrder(c *gin.Context) (*checkout.OrderResponse, bool) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Customer authentication required")
		return nil, false
	}

	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return nil, false
	}

	resp, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	if resp.CustomerID != customerID {
		h.NotFound(c, "Order not found")
		return nil, false
	}
	return resp, true
}

// GetOrder returns the full order view
// GET /api/v1/orders/:orderID
func (h *OrderHandler) GetOrder(c *gin.Context) {
	resp, ok := h.loadOwnedOrder(c)
	if !ok {
		return
	}
	h.Success(c, resp)
}

// GetOrderStatus returns the order and payment status
// GET /api/v1/orders/:orderID/status
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	o, ok := h.loadOwnedOrder(c)
	if !ok {
		return
	}

	resp, err := h.orders.GetOrderStatus(c.Request.Context(), o.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListOrders returns the customer's orders, newest first
// GET /api/v1/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Customer authentication required")
		return
	}

	resp, err := h.orders.ListOrders(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ProcessPayment runs the payment attempt for a pending order
// POST /api/v1/orders/:orderID/payment
func (h *OrderHandler) ProcessPayment(c *gin.Context) {
	o, ok := h.loadOwnedOrder(c)
	if !ok {
		return
	}

	// Card token is optional; cash on delivery sends no body at all.
	var req dto.ProcessPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	resp, err := h.payments.ProcessPayment(c.Request.Context(), checkout.ProcessPaymentInput{
		OrderID:   o.ID,
		CardToken: req.CardToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CancelOrder cancels an order that has not shipped yet
// POST /api/v1/orders/:orderID/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	o, ok := h.loadOwnedOrder(c)
	if !ok {
		return
	}

	var req dto.CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	resp, err := h.orders.CancelOrder(c.Request.Context(), checkout.CancelOrderInput{
		OrderID: o.ID,
		Reason:  req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
