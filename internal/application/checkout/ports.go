package checkout

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metrics records business counters for the checkout flows. Implemented by
// the telemetry package; NopMetrics is used when telemetry is disabled.
type Metrics interface {
	OrderCreated(ctx context.Context, paymentMethod string)
	OrderCancelled(ctx context.Context)
	PaymentProcessed(ctx context.Context, paymentMethod, outcome string)
}

// NopMetrics discards all measurements
type NopMetrics struct{}

func (NopMetrics) OrderCreated(context.Context, string)            {}
func (NopMetrics) OrderCancelled(context.Context)                  {}
func (NopMetrics) PaymentProcessed(context.Context, string, string) {}

// OrderConfirmation is the payload handed to the notification port after a
// successful payment
type OrderConfirmation struct {
	OrderID     uuid.UUID
	OrderNumber string
	CustomerID  uuid.UUID
	Total       decimal.Decimal
}

// NotificationPort delivers customer-facing notifications. Delivery is
// best effort; checkout never fails because a notification did.
type NotificationPort interface {
	OrderConfirmed(ctx context.Context, confirmation OrderConfirmation) error
}
