package dto

import "net/http"

// Error codes returned by the checkout API. Handlers translate typed
// domain errors into these codes; the status map below decides the
// HTTP status line.
const (
	ErrCodeUnknown      = "UNKNOWN"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"

	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeCouponInvalid      = "COUPON_INVALID"
	ErrCodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeOrderStateConflict = "ORDER_STATE_CONFLICT"
	ErrCodeDuplicateRequest   = "DUPLICATE_REQUEST"

	ErrCodePaymentDeclined       = "PAYMENT_DECLINED"
	ErrCodePaymentGatewayTimeout = "PAYMENT_GATEWAY_TIMEOUT"
	ErrCodePaymentAlreadySettled = "PAYMENT_ALREADY_SETTLED"
	ErrCodeUnsupportedPayment    = "UNSUPPORTED_PAYMENT_METHOD"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:      http.StatusInternalServerError,
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,

	"INVALID_INPUT":        http.StatusBadRequest,
	"ALREADY_EXISTS":       http.StatusConflict,
	"INVALID_STATE":        http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	ErrCodeEmptyCart:          http.StatusUnprocessableEntity,
	ErrCodeCouponInvalid:      http.StatusUnprocessableEntity,
	ErrCodeProductUnavailable: http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:  http.StatusConflict,
	ErrCodeOrderStateConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:   http.StatusConflict,

	ErrCodePaymentDeclined:       http.StatusPaymentRequired,
	ErrCodePaymentGatewayTimeout: http.StatusGatewayTimeout,
	ErrCodePaymentAlreadySettled: http.StatusConflict,
	ErrCodeUnsupportedPayment:    http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
