package cart

import (
	"time"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a line in the customer's working set. UnitPriceSnapshot is the
// catalog price at add time; checkout re-validates it against the current
// catalog price before creating an order.
type CartItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CartID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID         *uuid.UUID      `gorm:"type:uuid"`
	Quantity          int64           `gorm:"not null"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// Subtotal returns unit price snapshot times quantity
func (i *CartItem) Subtotal() decimal.Decimal {
	return i.UnitPriceSnapshot.Mul(decimal.NewFromInt(i.Quantity))
}

func (i *CartItem) matches(productID uuid.UUID, variantID *uuid.UUID) bool {
	if i.ProductID != productID {
		return false
	}
	if i.VariantID == nil && variantID == nil {
		return true
	}
	if i.VariantID == nil || variantID == nil {
		return false
	}
	return *i.VariantID == *variantID
}

// Cart is the customer's working set of line items until checkout. One cart
// per customer; it is cleared, not deleted, when an order is created from it.
type Cart struct {
	shared.BaseAggregateRoot
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	CouponCode *string    `gorm:"size:50"`
	Items      []CartItem `gorm:"foreignKey:CartID;references:ID"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// NewCart creates an empty cart for a customer
func NewCart(customerID uuid.UUID) (*Cart, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Items:             make([]CartItem, 0),
	}, nil
}

// IsEmpty returns true when the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal returns the sum of all line subtotals at snapshot prices
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].Subtotal())
	}
	return total
}

// AddItem adds a product to the cart or merges into an existing line for the
// same product/variant. The unit price snapshot is refreshed on merge.
func (c *Cart) AddItem(productID uuid.UUID, variantID *uuid.UUID, quantity int64, unitPrice decimal.Decimal) (*CartItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	for idx := range c.Items {
		if c.Items[idx].matches(productID, variantID) {
			c.Items[idx].Quantity += quantity
			c.Items[idx].UnitPriceSnapshot = unitPrice
			c.Items[idx].UpdatedAt = now
			c.UpdatedAt = now
			return &c.Items[idx], nil
		}
	}

	item := CartItem{
		ID:                uuid.New(),
		CartID:            c.ID,
		ProductID:         productID,
		VariantID:         variantID,
		Quantity:          quantity,
		UnitPriceSnapshot: unitPrice,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	c.Items = append(c.Items, item)
	c.UpdatedAt = now
	return &c.Items[len(c.Items)-1], nil
}

// UpdateItemQuantity sets the quantity of an existing line
func (c *Cart) UpdateItemQuantity(itemID uuid.UUID, quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	for idx := range c.Items {
		if c.Items[idx].ID == itemID {
			c.Items[idx].Quantity = quantity
			c.Items[idx].UpdatedAt = time.Now()
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Cart item not found")
}

// RemoveItem removes a line from the cart
func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	for idx := range c.Items {
		if c.Items[idx].ID == itemID {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Cart item not found")
}

// ApplyCoupon attaches a coupon code to the cart. Validity is checked at
// pricing time, not here - the code may become invalid before checkout.
func (c *Cart) ApplyCoupon(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_COUPON", "Coupon code cannot be empty")
	}
	c.CouponCode = &code
	c.UpdatedAt = time.Now()
	return nil
}

// RemoveCoupon detaches any coupon code
func (c *Cart) RemoveCoupon() {
	c.CouponCode = nil
	c.UpdatedAt = time.Now()
}

// Clear empties the cart after a successful checkout. The cart row survives
// so the customer keeps the same cart identity.
func (c *Cart) Clear() {
	c.Items = make([]CartItem, 0)
	c.CouponCode = nil
	c.UpdatedAt = time.Now()
}
