package persistence

import (
	"context"
	"errors"

	"github.com/commerce/backend/internal/domain/cart"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByCustomer finds the customer's cart with its items
func (r *GormCartRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&c, "customer_id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindOrCreateByCustomer finds the customer's cart, creating an empty one
// when none exists
func (r *GormCartRepository) FindOrCreateByCustomer(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	c, err := r.FindByCustomer(ctx, customerID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c, err = cart.NewCart(customerID)
	if err != nil {
		return nil, err
	}
	if createErr := r.db.WithContext(ctx).Omit("Items").Create(c).Error; createErr != nil {
		// Another request for the same customer may have won the race on
		// the unique customer_id index.
		if existing, findErr := r.FindByCustomer(ctx, customerID); findErr == nil {
			return existing, nil
		}
		return nil, createErr
	}
	return c, nil
}

// Save persists the cart and reconciles its items
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	if err := r.db.WithContext(ctx).Omit("Items").Save(c).Error; err != nil {
		return err
	}

	currentItemIDs := make([]uuid.UUID, len(c.Items))
	for i, item := range c.Items {
		currentItemIDs[i] = item.ID
	}
	itemQuery := r.db.WithContext(ctx).Where("cart_id = ?", c.ID)
	if len(currentItemIDs) > 0 {
		itemQuery = itemQuery.Where("id NOT IN ?", currentItemIDs)
	}
	if err := itemQuery.Delete(&cart.CartItem{}).Error; err != nil {
		return err
	}
	for i := range c.Items {
		c.Items[i].CartID = c.ID
		if err := r.db.WithContext(ctx).Save(&c.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Clear deletes all items and the coupon code, keeping the cart row
func (r *GormCartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&cart.CartItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&cart.Cart{}).
		Where("id = ?", cartID).
		Update("coupon_code", nil).Error
}

var _ cart.Repository = (*GormCartRepository)(nil)
