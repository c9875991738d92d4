package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rules holds the pricing constants applied to every quote. The tax rate is
// KDV, the flat Turkish VAT applied at order level rather than per item.
type Rules struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingRate      decimal.Decimal
}

// DefaultRules returns the standard rule set (18% KDV, free shipping over
// 500, flat rate 25)
func DefaultRules() Rules {
	return Rules{
		TaxRate:               decimal.NewFromFloat(0.18),
		FreeShippingThreshold: decimal.NewFromInt(500),
		FlatShippingRate:      decimal.NewFromInt(25),
	}
}

// LineItem is one priced order line
type LineItem struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Breakdown is the result of a quote
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Engine computes order totals. It is a pure function over its inputs and
// never touches storage; coupon lookup happens in the caller.
type Engine struct {
	rules Rules
}

// NewEngine creates a pricing engine with the given rules
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Quote computes subtotal, tax, shipping, discount and total for the given
// lines. coupon may be nil. Returns CouponInvalidError when the coupon does
// not apply; no partial result is returned on error.
//
// total = max(0, subtotal + tax + shipping - discount)
func (e *Engine) Quote(items []LineItem, coupon *Coupon, now time.Time) (Breakdown, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
	}

	tax := subtotal.Mul(e.rules.TaxRate).Round(2)

	shipping := e.rules.FlatShippingRate
	if subtotal.GreaterThan(e.rules.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	discount := decimal.Zero
	if coupon != nil {
		if err := coupon.Validate(subtotal, now); err != nil {
			return Breakdown{}, err
		}
		discount = coupon.DiscountFor(subtotal)
	}

	total := subtotal.Add(tax).Add(shipping).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Breakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
	}, nil
}
