package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponValidate(t *testing.T) {
	now := time.Now()
	subtotal := money("200")

	base := func() *Coupon {
		return &Coupon{
			Code:            "SUMMER25",
			Type:            CouponTypePercentage,
			Value:           money("25"),
			MinimumPurchase: money("100"),
			UsageLimit:      10,
			UsageCount:      0,
			StartsAt:        now.Add(-24 * time.Hour),
			EndsAt:          now.Add(24 * time.Hour),
			Active:          true,
		}
	}

	t.Run("accepts a live coupon", func(t *testing.T) {
		assert.NoError(t, base().Validate(subtotal, now))
	})

	t.Run("rejects an inactive coupon", func(t *testing.T) {
		c := base()
		c.Active = false
		assertReason(t, c.Validate(subtotal, now), CouponReasonInactive)
	})

	t.Run("rejects a coupon before its window opens", func(t *testing.T) {
		c := base()
		c.StartsAt = now.Add(time.Hour)
		assertReason(t, c.Validate(subtotal, now), CouponReasonNotStarted)
	})

	t.Run("rejects a coupon after its window closes", func(t *testing.T) {
		c := base()
		c.EndsAt = now.Add(-time.Minute)
		assertReason(t, c.Validate(subtotal, now), CouponReasonExpired)
	})

	t.Run("rejects a coupon at its usage limit", func(t *testing.T) {
		c := base()
		c.UsageCount = 10
		assertReason(t, c.Validate(subtotal, now), CouponReasonExhausted)
	})

	t.Run("ignores the usage limit when zero", func(t *testing.T) {
		c := base()
		c.UsageLimit = 0
		c.UsageCount = 9999
		assert.NoError(t, c.Validate(subtotal, now))
	})

	t.Run("rejects a subtotal below the minimum purchase", func(t *testing.T) {
		c := base()
		assertReason(t, c.Validate(money("99.99"), now), CouponReasonBelowMinimum)
	})

	t.Run("accepts a subtotal exactly at the minimum purchase", func(t *testing.T) {
		assert.NoError(t, base().Validate(money("100"), now))
	})
}

func TestCouponDiscountFor(t *testing.T) {
	t.Run("percentage discount rounds to cents", func(t *testing.T) {
		c := &Coupon{Type: CouponTypePercentage, Value: money("15")}
		discount := c.DiscountFor(money("33.33"))
		assert.True(t, discount.Equal(money("5.00")), "discount %s", discount)
	})

	t.Run("percentage cap does not affect smaller discounts", func(t *testing.T) {
		cap := money("100")
		c := &Coupon{Type: CouponTypePercentage, Value: money("10"), MaximumDiscount: &cap}
		discount := c.DiscountFor(money("200"))
		assert.True(t, discount.Equal(money("20")), "discount %s", discount)
	})

	t.Run("unknown type discounts nothing", func(t *testing.T) {
		c := &Coupon{Type: CouponType("bogus"), Value: money("10")}
		assert.True(t, c.DiscountFor(money("200")).IsZero())
	})
}

func assertReason(t *testing.T, err error, reason string) {
	t.Helper()
	require.Error(t, err)
	var invalid *CouponInvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, reason, invalid.Reason)
}

func TestCouponTypeIsValid(t *testing.T) {
	assert.True(t, CouponTypePercentage.IsValid())
	assert.True(t, CouponTypeFixed.IsValid())
	assert.False(t, CouponType("free-stuff").IsValid())
}
