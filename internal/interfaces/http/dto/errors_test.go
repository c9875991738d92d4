package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	cases := []struct {
		code   string
		status int
	}{
		{ErrCodeEmptyCart, http.StatusUnprocessableEntity},
		{ErrCodeCouponInvalid, http.StatusUnprocessableEntity},
		{ErrCodeProductUnavailable, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientStock, http.StatusConflict},
		{ErrCodeOrderStateConflict, http.StatusConflict},
		{ErrCodeDuplicateRequest, http.StatusConflict},
		{ErrCodePaymentAlreadySettled, http.StatusConflict},
		{ErrCodePaymentDeclined, http.StatusPaymentRequired},
		{ErrCodePaymentGatewayTimeout, http.StatusGatewayTimeout},
		{ErrCodeUnsupportedPayment, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, GetHTTPStatus(tc.code), "code %s", tc.code)
	}

	t.Run("defaults to internal server error", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_NEW"))
	})
}

func TestResponseConstructors(t *testing.T) {
	t.Run("success response wraps data", func(t *testing.T) {
		resp := NewSuccessResponse(map[string]string{"k": "v"})
		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Data)
		assert.Nil(t, resp.Error)
	})

	t.Run("error response carries code and request id", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeEmptyCart, "Cart is empty", "req-1")
		assert.False(t, resp.Success)
		assert.Equal(t, ErrCodeEmptyCart, resp.Error.Code)
		assert.Equal(t, "req-1", resp.Error.RequestID)
	})

	t.Run("validation response lists field details", func(t *testing.T) {
		details := []ValidationDetail{{Field: "quantity", Message: "must be at least 1"}}
		resp := NewValidationErrorResponse("Validation failed", "req-2", details)
		assert.False(t, resp.Success)
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		assert.Len(t, resp.Error.Details, 1)
	})
}
