package persistence

import (
	"context"
	"testing"

	"github.com/commerce/backend/internal/domain/cart"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&cart.Cart{}, &cart.CartItem{})
	require.NoError(t, err)

	return db
}

func TestGormCartRepository_FindByCustomer(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()

	t.Run("returns not found for an unknown customer", func(t *testing.T) {
		_, err := repo.FindByCustomer(ctx, uuid.New())
		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("loads the cart with its items", func(t *testing.T) {
		customerID := uuid.New()
		c, err := cart.NewCart(customerID)
		require.NoError(t, err)
		_, err = c.AddItem(uuid.New(), nil, 2, decimal.NewFromInt(50))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, c))

		loaded, err := repo.FindByCustomer(ctx, customerID)
		require.NoError(t, err)

		assert.Equal(t, c.ID, loaded.ID)
		require.Len(t, loaded.Items, 1)
		assert.Equal(t, int64(2), loaded.Items[0].Quantity)
		assert.True(t, loaded.Items[0].UnitPriceSnapshot.Equal(decimal.NewFromInt(50)))
	})
}

func TestGormCartRepository_FindOrCreateByCustomer(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()

	customerID := uuid.New()

	created, err := repo.FindOrCreateByCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, created.IsEmpty())

	again, err := repo.FindOrCreateByCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID, "one cart per customer")
}

func TestGormCartRepository_Save(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	c, err := cart.NewCart(customerID)
	require.NoError(t, err)
	itemA, err := c.AddItem(uuid.New(), nil, 1, decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = c.AddItem(uuid.New(), nil, 2, decimal.NewFromInt(20))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	t.Run("reconciles removed items", func(t *testing.T) {
		require.NoError(t, c.RemoveItem(itemA.ID))
		require.NoError(t, repo.Save(ctx, c))

		loaded, err := repo.FindByCustomer(ctx, customerID)
		require.NoError(t, err)
		require.Len(t, loaded.Items, 1)
		assert.NotEqual(t, itemA.ID, loaded.Items[0].ID)
	})

	t.Run("persists quantity updates", func(t *testing.T) {
		require.NoError(t, c.UpdateItemQuantity(c.Items[0].ID, 9))
		require.NoError(t, repo.Save(ctx, c))

		loaded, err := repo.FindByCustomer(ctx, customerID)
		require.NoError(t, err)
		require.Len(t, loaded.Items, 1)
		assert.Equal(t, int64(9), loaded.Items[0].Quantity)
	})

	t.Run("persists the coupon code", func(t *testing.T) {
		require.NoError(t, c.ApplyCoupon("WELCOME10"))
		require.NoError(t, repo.Save(ctx, c))

		loaded, err := repo.FindByCustomer(ctx, customerID)
		require.NoError(t, err)
		require.NotNil(t, loaded.CouponCode)
		assert.Equal(t, "WELCOME10", *loaded.CouponCode)
	})
}

func TestGormCartRepository_Clear(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	c, err := cart.NewCart(customerID)
	require.NoError(t, err)
	_, err = c.AddItem(uuid.New(), nil, 2, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, c.ApplyCoupon("WELCOME10"))
	require.NoError(t, repo.Save(ctx, c))

	require.NoError(t, repo.Clear(ctx, c.ID))

	loaded, err := repo.FindByCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, loaded.ID, "the cart row survives")
	assert.Empty(t, loaded.Items)
	assert.Nil(t, loaded.CouponCode)
}
