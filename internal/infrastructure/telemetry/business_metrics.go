package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics holds the counters for checkout and outbox activity.
// It implements the metric ports of the application and event packages.
type BusinessMetrics struct {
	ordersCreated       *Counter
	ordersCancelled     *Counter
	paymentsProcessed   *Counter
	outboxPublished     *Counter
	outboxPublishFailed *Counter
}

// NewBusinessMetrics creates the business counters on the given meter
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) *BusinessMetrics {
	return &BusinessMetrics{
		ordersCreated: NewCounter(meter,
			"commerce.orders.created",
			"Number of orders created at checkout", logger),
		ordersCancelled: NewCounter(meter,
			"commerce.orders.cancelled",
			"Number of orders cancelled", logger),
		paymentsProcessed: NewCounter(meter,
			"commerce.payments.processed",
			"Number of payment attempts by outcome", logger),
		outboxPublished: NewCounter(meter,
			"commerce.outbox.published",
			"Number of outbox events published to the broker", logger),
		outboxPublishFailed: NewCounter(meter,
			"commerce.outbox.publish_failed",
			"Number of outbox publish cycles that hit a broker failure", logger),
	}
}

// OrderCreated records a created order labelled by payment method
func (m *BusinessMetrics) OrderCreated(ctx context.Context, paymentMethod string) {
	m.ordersCreated.Inc(ctx, attribute.String("payment_method", paymentMethod))
}

// OrderCancelled records a cancelled order
func (m *BusinessMetrics) OrderCancelled(ctx context.Context) {
	m.ordersCancelled.Inc(ctx)
}

// PaymentProcessed records a payment attempt labelled by method and outcome
func (m *BusinessMetrics) PaymentProcessed(ctx context.Context, paymentMethod, outcome string) {
	m.paymentsProcessed.Inc(ctx,
		attribute.String("payment_method", paymentMethod),
		attribute.String("outcome", outcome),
	)
}

// OutboxPublished records events published in a relay cycle
func (m *BusinessMetrics) OutboxPublished(ctx context.Context, count int) {
	m.outboxPublished.Add(ctx, int64(count))
}

// OutboxPublishFailed records a broker publish failure
func (m *BusinessMetrics) OutboxPublishFailed(ctx context.Context) {
	m.outboxPublishFailed.Inc(ctx)
}
