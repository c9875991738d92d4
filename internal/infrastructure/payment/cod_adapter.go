package payment

import (
	"context"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/payment"
)

// CashOnDeliveryAdapter settles orders paid at the door. Authorization
// always succeeds with no transaction id; the money moves when the courier
// collects it.
type CashOnDeliveryAdapter struct{}

// NewCashOnDeliveryAdapter creates a cash on delivery adapter
func NewCashOnDeliveryAdapter() *CashOnDeliveryAdapter {
	return &CashOnDeliveryAdapter{}
}

// Method returns the payment method this adapter handles
func (a *CashOnDeliveryAdapter) Method() order.PaymentMethod {
	return order.PaymentMethodCashOnDelivery
}

// Authorize always succeeds
func (a *CashOnDeliveryAdapter) Authorize(_ context.Context, _ payment.AuthorizeRequest) (*payment.Result, error) {
	return &payment.Result{Method: a.Method()}, nil
}

var _ payment.Gateway = (*CashOnDeliveryAdapter)(nil)
