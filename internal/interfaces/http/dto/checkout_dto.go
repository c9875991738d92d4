package dto

// AddCartItemRequest adds a product to the customer's cart
type AddCartItemRequest struct {
	ProductID string  `json:"product_id" binding:"required,uuid"`
	VariantID *string `json:"variant_id" binding:"omitempty,uuid"`
	Quantity  int64   `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest changes the quantity of a cart line.
// Quantity zero removes the line.
type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity" binding:"min=0"`
}

// ApplyCouponRequest attaches a coupon code to the cart
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required,max=50"`
}

// ShippingAddressRequest is the shipping destination for an order
type ShippingAddressRequest struct {
	FullName   string `json:"full_name" binding:"required,max=120"`
	Phone      string `json:"phone" binding:"omitempty,max=30"`
	Line1      string `json:"line1" binding:"required,max=255"`
	Line2      string `json:"line2" binding:"omitempty,max=255"`
	District   string `json:"district" binding:"omitempty,max=100"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"omitempty,max=20"`
	Country    string `json:"country" binding:"omitempty,len=2"`
}

// CreateOrderRequest materializes the cart into an order
type CreateOrderRequest struct {
	PaymentMethod   string                 `json:"payment_method" binding:"required,oneof=card bank_card cash_on_delivery"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" binding:"required"`
	CouponCode      *string                `json:"coupon_code" binding:"omitempty,max=50"`
	Notes           string                 `json:"notes" binding:"omitempty,max=500"`
}

// ProcessPaymentRequest triggers the payment attempt for a pending order
type ProcessPaymentRequest struct {
	CardToken string `json:"card_token" binding:"omitempty,max=255"`
}

// CancelOrderRequest cancels an order with an optional reason
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=255"`
}
