package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/commerce/backend/internal/domain/cart"
	"github.com/commerce/backend/internal/domain/pricing"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cartFixture struct {
	carts    *MockCartRepository
	products *MockCatalogReader
	coupons  *MockCouponRepository
	service  *CartService
}

func newCartFixture() *cartFixture {
	f := &cartFixture{
		carts:    new(MockCartRepository),
		products: new(MockCatalogReader),
		coupons:  new(MockCouponRepository),
	}
	scope := NewNoOpTransactionScope(new(MockOrderRepository), f.carts, new(MockLedgerRepository), f.products, f.coupons)
	f.service = NewCartService(scope, pricing.NewEngine(pricing.DefaultRules()), zap.NewNop())
	return f
}

func TestCartServiceGetCart(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("returns the cart with a totals preview", func(t *testing.T) {
		f := newCartFixture()
		c, err := cart.NewCart(customerID)
		require.NoError(t, err)
		_, err = c.AddItem(uuid.New(), nil, 2, decimal.NewFromInt(50))
		require.NoError(t, err)

		f.carts.On("FindOrCreateByCustomer", ctx, customerID).Return(c, nil)

		resp, err := f.service.GetCart(ctx, customerID)
		require.NoError(t, err)

		assert.Equal(t, customerID, resp.CustomerID)
		require.Len(t, resp.Items, 1)
		assert.True(t, resp.Totals.Subtotal.Equal(decimal.NewFromInt(100)))
		assert.True(t, resp.Totals.Total.Equal(decimal.NewFromInt(143)), "total %s", resp.Totals.Total)
	})

	t.Run("previews a stale coupon as zero discount", func(t *testing.T) {
		f := newCartFixture()
		c, err := cart.NewCart(customerID)
		require.NoError(t, err)
		_, err = c.AddItem(uuid.New(), nil, 1, decimal.NewFromInt(100))
		require.NoError(t, err)
		require.NoError(t, c.ApplyCoupon("EXPIRED"))

		expired := &pricing.Coupon{
			Code:     "EXPIRED",
			Type:     pricing.CouponTypeFixed,
			Value:    decimal.NewFromInt(20),
			StartsAt: time.Now().Add(-48 * time.Hour),
			EndsAt:   time.Now().Add(-24 * time.Hour),
			Active:   true,
		}

		f.carts.On("FindOrCreateByCustomer", ctx, customerID).Return(c, nil)
		f.coupons.On("FindByCode", ctx, "EXPIRED").Return(expired, nil)

		resp, err := f.service.GetCart(ctx, customerID)
		require.NoError(t, err, "the cart view never fails on a stale coupon")
		assert.True(t, resp.Totals.Discount.IsZero())
	})
}

func TestCartServiceAddItem(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("adds at the current catalog price", func(t *testing.T) {
		f := newCartFixture()
		productID := uuid.New()
		c, err := cart.NewCart(customerID)
		require.NoError(t, err)

		f.products.On("GetProduct", ctx, productID).Return(activeProduct(productID, 75, 10), nil)
		f.carts.On("FindOrCreateByCustomer", ctx, customerID).Return(c, nil)
		f.carts.On("Save", ctx, c).Return(nil)

		resp, err := f.service.AddItem(ctx, customerID, productID, nil, 2)
		require.NoError(t, err)

		require.Len(t, resp.Items, 1)
		assert.True(t, resp.Items[0].UnitPrice.Equal(decimal.NewFromInt(75)))
		f.carts.AssertExpectations(t)
	})

	t.Run("rejects an inactive product", func(t *testing.T) {
		f := newCartFixture()
		productID := uuid.New()
		inactive := activeProduct(productID, 75, 10)
		inactive.Active = false

		f.products.On("GetProduct", ctx, productID).Return(inactive, nil)

		_, err := f.service.AddItem(ctx, customerID, productID, nil, 1)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_UNAVAILABLE", domainErr.Code)
		f.carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects an unknown product", func(t *testing.T) {
		f := newCartFixture()
		productID := uuid.New()
		f.products.On("GetProduct", ctx, productID).Return(nil, shared.ErrNotFound)

		_, err := f.service.AddItem(ctx, customerID, productID, nil, 1)
		require.Error(t, err)
	})
}

func TestCartServiceApplyCoupon(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	liveCoupon := func() *pricing.Coupon {
		return &pricing.Coupon{
			Code:            "WELCOME10",
			Type:            pricing.CouponTypePercentage,
			Value:           decimal.NewFromInt(10),
			MinimumPurchase: decimal.NewFromInt(100),
			StartsAt:        time.Now().Add(-time.Hour),
			EndsAt:          time.Now().Add(time.Hour),
			Active:          true,
		}
	}

	cartWithSubtotal := func(t *testing.T, amount int64) *cart.Cart {
		t.Helper()
		c, err := cart.NewCart(customerID)
		require.NoError(t, err)
		_, err = c.AddItem(uuid.New(), nil, 1, decimal.NewFromInt(amount))
		require.NoError(t, err)
		return c
	}

	t.Run("attaches a valid coupon", func(t *testing.T) {
		f := newCartFixture()
		c := cartWithSubtotal(t, 200)

		f.carts.On("FindOrCreateByCustomer", ctx, customerID).Return(c, nil)
		f.coupons.On("FindByCode", ctx, "WELCOME10").Return(liveCoupon(), nil)
		f.carts.On("Save", ctx, c).Return(nil)

		resp, err := f.service.ApplyCoupon(ctx, customerID, "WELCOME10")
		require.NoError(t, err)

		require.NotNil(t, resp.CouponCode)
		assert.Equal(t, "WELCOME10", *resp.CouponCode)
		assert.True(t, resp.Totals.Discount.Equal(decimal.NewFromInt(20)))
	})

	t.Run("rejects an unknown code", func(t *testing.T) {
		f := newCartFixture()
		c := cartWithSubtotal(t, 200)

		f.carts.On("FindOrCreateByCustomer", ctx, customerID).Return(c, nil)
		f.coupons.On("FindByCode", ctx, "NOPE").Return(nil, shared.ErrNotFound)

		_, err := f.service.ApplyCoupon(ctx, customerID, "NOPE")

		var invalid *pricing.CouponInvalidError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, pricing.CouponReasonNotFound, invalid.Reason)
		assert.Nil(t, c.CouponCode)
	})

	t.Run("rejects a coupon below its minimum purchase", func(t *testing.T) {
		f := newCartFixture()
		c := cartWithSubtotal(t, 50)

		f.carts.On("FindOrCreateByCustomer", ctx, customerID).Return(c, nil)
		f.coupons.On("FindByCode", ctx, "WELCOME10").Return(liveCoupon(), nil)

		_, err := f.service.ApplyCoupon(ctx, customerID, "WELCOME10")

		var invalid *pricing.CouponInvalidError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, pricing.CouponReasonBelowMinimum, invalid.Reason)
		f.carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCartServiceMutations(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("updates a line quantity", func(t *testing.T) {
		f := newCartFixture()
		c, err := cart.NewCart(customerID)
		require.NoError(t, err)
		item, err := c.AddItem(uuid.New(), nil, 1, decimal.NewFromInt(10))
		require.NoError(t, err)

		f.carts.On("FindOrCreateByCustomer", ctx, customerID).Return(c, nil)
		f.carts.On("Save", ctx, c).Return(nil)

		resp, err := f.service.UpdateItemQuantity(ctx, customerID, item.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Items[0].Quantity)
	})

	t.Run("removes a line", func(t *testing.T) {
		f := newCartFixture()
		c, err := cart.NewCart(customerID)
		require.NoError(t, err)
		item, err := c.AddItem(uuid.New(), nil, 1, decimal.NewFromInt(10))
		require.NoError(t, err)

		f.carts.On("FindOrCreateByCustomer", ctx, customerID).Return(c, nil)
		f.carts.On("Save", ctx, c).Return(nil)

		resp, err := f.service.RemoveItem(ctx, customerID, item.ID)
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
	})

	t.Run("does not save when the mutation fails", func(t *testing.T) {
		f := newCartFixture()
		c, err := cart.NewCart(customerID)
		require.NoError(t, err)

		f.carts.On("FindOrCreateByCustomer", ctx, customerID).Return(c, nil)

		_, err = f.service.RemoveItem(ctx, customerID, uuid.New())
		require.Error(t, err)
		f.carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("removes the coupon", func(t *testing.T) {
		f := newCartFixture()
		c, err := cart.NewCart(customerID)
		require.NoError(t, err)
		require.NoError(t, c.ApplyCoupon("WELCOME10"))

		f.carts.On("FindOrCreateByCustomer", ctx, customerID).Return(c, nil)
		f.carts.On("Save", ctx, c).Return(nil)

		resp, err := f.service.RemoveCoupon(ctx, customerID)
		require.NoError(t, err)
		assert.Nil(t, resp.CouponCode)
	})
}
