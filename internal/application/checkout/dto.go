package checkout

import (
	"time"

	"github.com/commerce/backend/internal/domain/cart"
	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/pricing"
	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderInput is the application-level request to materialize the
// customer's cart into an order
type CreateOrderInput struct {
	CustomerID      uuid.UUID
	PaymentMethod   order.PaymentMethod
	ShippingAddress valueobject.Address
	// CouponCode overrides the coupon attached to the cart when set
	CouponCode *string
	Notes      string
	// IdempotencyKey deduplicates retried checkout requests. Optional.
	IdempotencyKey string
}

// ProcessPaymentInput carries the payment attempt for a pending order
type ProcessPaymentInput struct {
	OrderID   uuid.UUID
	CardToken string
}

// CancelOrderInput carries a cancellation request
type CancelOrderInput struct {
	OrderID uuid.UUID
	Reason  string
}

// OrderItemResponse is one order line in API responses
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse is the full order view returned by checkout operations
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	Status          order.Status        `json:"status"`
	PaymentStatus   order.PaymentStatus `json:"payment_status"`
	PaymentMethod   order.PaymentMethod `json:"payment_method"`
	CouponCode      *string             `json:"coupon_code,omitempty"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Tax             decimal.Decimal     `json:"tax"`
	Shipping        decimal.Decimal     `json:"shipping"`
	Discount        decimal.Decimal     `json:"discount"`
	Total           decimal.Decimal     `json:"total"`
	ShippingAddress valueobject.Address `json:"shipping_address"`
	Notes           string              `json:"notes,omitempty"`
	TransactionID   string              `json:"transaction_id,omitempty"`
	CancelReason    string              `json:"cancel_reason,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toOrderItemResponses(items []order.Item) []OrderItemResponse {
	out := make([]OrderItemResponse, len(items))
	for i, item := range items {
		out[i] = OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
	}
	return out
}

// ToOrderResponse maps an order aggregate to its response view
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		CouponCode:      o.CouponCode,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Shipping:        o.Shipping,
		Discount:        o.Discount,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		TransactionID:   o.TransactionID,
		CancelReason:    o.CancelReason,
		Items:           toOrderItemResponses(o.Items),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// OrderStatusResponse is the lightweight status read model
type OrderStatusResponse struct {
	OrderID       uuid.UUID           `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	Status        order.Status        `json:"status"`
	PaymentStatus order.PaymentStatus `json:"payment_status"`
	Total         decimal.Decimal     `json:"total"`
	Items         []OrderItemResponse `json:"items"`
}

// ToOrderStatusResponse maps an order to its status view
func ToOrderStatusResponse(o *order.Order) OrderStatusResponse {
	return OrderStatusResponse{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total,
		Items:         toOrderItemResponses(o.Items),
	}
}

// PaymentResponse is returned by ProcessPayment
type PaymentResponse struct {
	OrderID       uuid.UUID           `json:"order_id"`
	Status        order.Status        `json:"status"`
	PaymentStatus order.PaymentStatus `json:"payment_status"`
	TransactionID string              `json:"transaction_id,omitempty"`
}

// CartItemResponse is one cart line in API responses
type CartItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartResponse is the cart view with a totals preview. The preview uses the
// same pricing rules as checkout, so the storefront shows the amounts the
// order will carry.
type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	CustomerID uuid.UUID          `json:"customer_id"`
	CouponCode *string            `json:"coupon_code,omitempty"`
	Items      []CartItemResponse `json:"items"`
	Totals     pricing.Breakdown  `json:"totals"`
}

// ToCartResponse maps a cart and its pricing preview to the response view
func ToCartResponse(c *cart.Cart, totals pricing.Breakdown) CartResponse {
	items := make([]CartItemResponse, len(c.Items))
	for i, item := range c.Items {
		items[i] = CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPriceSnapshot,
			Subtotal:  item.Subtotal(),
		}
	}
	return CartResponse{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		CouponCode: c.CouponCode,
		Items:      items,
		Totals:     totals,
	}
}
