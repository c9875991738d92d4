package pricing

import (
	"context"
	"time"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponType determines how a coupon's value is interpreted
type CouponType string

const (
	// CouponTypePercentage discounts a percentage of the subtotal
	CouponTypePercentage CouponType = "percentage"
	// CouponTypeFixed discounts a fixed amount
	CouponTypeFixed CouponType = "fixed"
)

// IsValid returns true if the coupon type is known
func (t CouponType) IsValid() bool {
	return t == CouponTypePercentage || t == CouponTypeFixed
}

// Coupon is a discount rule owned by the marketing module; pricing only
// validates and applies it. UsageCount is incremented by the checkout
// transaction when an order using the coupon is created.
type Coupon struct {
	shared.BaseEntity
	Code            string
	Type            CouponType
	Value           decimal.Decimal
	MinimumPurchase decimal.Decimal
	MaximumDiscount *decimal.Decimal
	UsageLimit      int
	UsageCount      int
	StartsAt        time.Time
	EndsAt          time.Time
	Active          bool
}

// TableName returns the table name for GORM
func (Coupon) TableName() string {
	return "coupons"
}

// Validate checks whether the coupon may be applied to a cart with the given
// subtotal at the given time. Returns a CouponInvalidError with a reason code
// on rejection.
func (c *Coupon) Validate(subtotal decimal.Decimal, now time.Time) error {
	if !c.Active {
		return NewCouponInvalidError(c.Code, CouponReasonInactive)
	}
	if now.Before(c.StartsAt) {
		return NewCouponInvalidError(c.Code, CouponReasonNotStarted)
	}
	if now.After(c.EndsAt) {
		return NewCouponInvalidError(c.Code, CouponReasonExpired)
	}
	if c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit {
		return NewCouponInvalidError(c.Code, CouponReasonExhausted)
	}
	if subtotal.LessThan(c.MinimumPurchase) {
		return NewCouponInvalidError(c.Code, CouponReasonBelowMinimum)
	}
	return nil
}

// DiscountFor computes the discount this coupon grants on the given subtotal.
// Percentage discounts are capped at MaximumDiscount when set; fixed
// discounts never exceed the subtotal.
func (c *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	switch c.Type {
	case CouponTypePercentage:
		discount := subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(2)
		if c.MaximumDiscount != nil && discount.GreaterThan(*c.MaximumDiscount) {
			discount = *c.MaximumDiscount
		}
		return discount
	case CouponTypeFixed:
		if c.Value.GreaterThan(subtotal) {
			return subtotal
		}
		return c.Value
	}
	return decimal.Zero
}

// CouponRepository defines the interface for coupon lookup and usage tracking
type CouponRepository interface {
	// FindByCode finds an active or inactive coupon by its code
	FindByCode(ctx context.Context, code string) (*Coupon, error)

	// IncrementUsage atomically increments usage_count for a coupon.
	// Called inside the checkout transaction when the order commits.
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}
