package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for cart persistence
type Repository interface {
	// FindByCustomer finds the customer's cart with its items, or returns
	// shared.ErrNotFound when the customer has never carted anything
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*Cart, error)

	// FindOrCreateByCustomer finds the customer's cart, creating an empty one
	// when none exists
	FindOrCreateByCustomer(ctx context.Context, customerID uuid.UUID) (*Cart, error)

	// Save persists the cart and reconciles its items
	Save(ctx context.Context, c *Cart) error

	// Clear deletes all items and the coupon code, keeping the cart row
	Clear(ctx context.Context, cartID uuid.UUID) error
}
