package order

import (
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateType is the aggregate type recorded on outbox rows
const AggregateType = "order"

// Event type constants. Broker topics are derived from these together with
// the aggregate type.
const (
	EventTypeCreated         = "order.created"
	EventTypeConfirmed       = "order.confirmed"
	EventTypePaymentFailed   = "order.payment_failed"
	EventTypeProcessing      = "order.processing"
	EventTypeShipped         = "order.shipped"
	EventTypeDelivered       = "order.delivered"
	EventTypeCancelled       = "order.cancelled"
	EventTypeRefundRequested = "order.refund_requested"
)

// ItemInfo carries line item data inside events
type ItemInfo struct {
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func itemInfos(o *Order) []ItemInfo {
	items := make([]ItemInfo, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemInfo{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
	}
	return items
}

// CreatedEvent is raised when checkout materializes a cart into an order
type CreatedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Items         []ItemInfo      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Shipping      decimal.Decimal `json:"shipping"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	CouponCode    *string         `json:"coupon_code,omitempty"`
}

// NewCreatedEvent creates a CreatedEvent
func NewCreatedEvent(o *Order) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreated, AggregateType, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		PaymentMethod:   o.PaymentMethod,
		Items:           itemInfos(o),
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Shipping:        o.Shipping,
		Discount:        o.Discount,
		Total:           o.Total,
		CouponCode:      o.CouponCode,
	}
}

// ConfirmedEvent is raised when payment succeeds and the order is confirmed
type ConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Total         decimal.Decimal `json:"total"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// NewConfirmedEvent creates a ConfirmedEvent
func NewConfirmedEvent(o *Order) *ConfirmedEvent {
	return &ConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConfirmed, AggregateType, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Total:           o.Total,
		TransactionID:   o.TransactionID,
	}
}

// PaymentFailedEvent is raised on a terminal payment decline
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
	Reason      string    `json:"reason"`
}

// NewPaymentFailedEvent creates a PaymentFailedEvent
func NewPaymentFailedEvent(o *Order, reason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentFailed, AggregateType, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Reason:          reason,
	}
}

// ProcessingEvent is raised when fulfillment starts
type ProcessingEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// NewProcessingEvent creates a ProcessingEvent
func NewProcessingEvent(o *Order) *ProcessingEvent {
	return &ProcessingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProcessing, AggregateType, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
	}
}

// ShippedEvent is raised when the order is handed to the carrier
type ShippedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// NewShippedEvent creates a ShippedEvent
func NewShippedEvent(o *Order) *ShippedEvent {
	return &ShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipped, AggregateType, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
	}
}

// DeliveredEvent is raised when the customer receives the order
type DeliveredEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// NewDeliveredEvent creates a DeliveredEvent
func NewDeliveredEvent(o *Order) *DeliveredEvent {
	return &DeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDelivered, AggregateType, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
	}
}

// CancelledEvent is raised when the order is cancelled
type CancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID  `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	Reason      string     `json:"reason"`
	Items       []ItemInfo `json:"items"`
}

// NewCancelledEvent creates a CancelledEvent
func NewCancelledEvent(o *Order, reason string) *CancelledEvent {
	return &CancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCancelled, AggregateType, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Reason:          reason,
		Items:           itemInfos(o),
	}
}

// RefundRequestedEvent is raised when a paid order is cancelled. The payment
// subsystem consumes it and executes the refund asynchronously.
type RefundRequestedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// NewRefundRequestedEvent creates a RefundRequestedEvent
func NewRefundRequestedEvent(o *Order) *RefundRequestedEvent {
	return &RefundRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundRequested, AggregateType, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Amount:          o.Total,
		TransactionID:   o.TransactionID,
	}
}
