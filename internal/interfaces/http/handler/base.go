package handler

import (
	"errors"
	"net/http"

	"github.com/commerce/backend/internal/domain/cart"
	"github.com/commerce/backend/internal/domain/inventory"
	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/payment"
	"github.com/commerce/backend/internal/domain/pricing"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/interfaces/http/dto"
	"github.com/commerce/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// getCustomerID extracts the authenticated customer ID
func getCustomerID(c *gin.Context) (uuid.UUID, error) {
	customerIDStr := middleware.GetCustomerID(c)
	if customerIDStr == "" {
		return uuid.Nil, errors.New("customer ID not found in context")
	}
	return uuid.Parse(customerIDStr)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// errorCode sends an error response deriving the status from the error code
func (h *BaseHandler) errorCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// HandleError translates domain errors into API error responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var emptyCart *cart.EmptyCartError
	if errors.As(err, &emptyCart) {
		h.errorCode(c, dto.ErrCodeEmptyCart, emptyCart.Error())
		return
	}

	var couponErr *pricing.CouponInvalidError
	if errors.As(err, &couponErr) {
		h.errorCode(c, dto.ErrCodeCouponInvalid, couponErr.Error())
		return
	}

	var stockErr *inventory.InsufficientStockError
	if errors.As(err, &stockErr) {
		h.errorCode(c, dto.ErrCodeInsufficientStock, stockErr.Error())
		return
	}

	var stateErr *order.StateConflictError
	if errors.As(err, &stateErr) {
		h.errorCode(c, dto.ErrCodeOrderStateConflict, stateErr.Error())
		return
	}

	var declined *payment.DeclinedError
	if errors.As(err, &declined) {
		h.errorCode(c, dto.ErrCodePaymentDeclined, declined.Error())
		return
	}

	var gatewayTimeout *payment.GatewayTimeoutError
	if errors.As(err, &gatewayTimeout) {
		h.errorCode(c, dto.ErrCodePaymentGatewayTimeout, gatewayTimeout.Error())
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.errorCode(c, domainErr.Code, domainErr.Message)
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
