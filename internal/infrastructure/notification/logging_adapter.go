package notification

import (
	"context"

	"github.com/commerce/backend/internal/application/checkout"
	"go.uber.org/zap"
)

// LoggingNotifier implements the notification port by logging. Delivery
// over email or SMS belongs to a separate notification system consuming the
// outbox events; this adapter keeps the port exercised in the meantime.
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier creates a logging notifier
func NewLoggingNotifier(logger *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger.Named("notification")}
}

// OrderConfirmed logs the confirmation
func (n *LoggingNotifier) OrderConfirmed(_ context.Context, c checkout.OrderConfirmation) error {
	n.logger.Info("order confirmation notification",
		zap.String("order_id", c.OrderID.String()),
		zap.String("order_number", c.OrderNumber),
		zap.String("customer_id", c.CustomerID.String()),
		zap.String("total", c.Total.String()),
	)
	return nil
}

var _ checkout.NotificationPort = (*LoggingNotifier)(nil)
