package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commerce/backend/internal/domain/cart"
	"github.com/commerce/backend/internal/domain/pricing"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService manages the customer's cart ahead of checkout
type CartService struct {
	scope  TransactionScope
	engine *pricing.Engine
	logger *zap.Logger
}

// NewCartService creates a cart service
func NewCartService(scope TransactionScope, engine *pricing.Engine, logger *zap.Logger) *CartService {
	return &CartService{scope: scope, engine: engine, logger: logger}
}

// GetCart returns the customer's cart with a totals preview, creating an
// empty cart on first access
func (s *CartService) GetCart(ctx context.Context, customerID uuid.UUID) (*CartResponse, error) {
	var resp *CartResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.Carts().FindOrCreateByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		r := ToCartResponse(c, s.preview(ctx, repos, c))
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// preview quotes the cart at snapshot prices. A coupon that no longer
// applies is shown with zero discount rather than failing the cart view;
// checkout itself rejects it properly.
func (s *CartService) preview(ctx context.Context, repos TransactionalRepositories, c *cart.Cart) pricing.Breakdown {
	lines := make([]pricing.LineItem, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, pricing.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPriceSnapshot,
		})
	}

	var coupon *pricing.Coupon
	if c.CouponCode != nil {
		found, err := repos.Coupons().FindByCode(ctx, *c.CouponCode)
		if err == nil {
			coupon = found
		}
	}

	quote, err := s.engine.Quote(lines, coupon, time.Now())
	if err != nil {
		quote, _ = s.engine.Quote(lines, nil, time.Now())
	}
	return quote
}

// AddItem puts a product into the cart at its current catalog price
func (s *CartService) AddItem(ctx context.Context, customerID, productID uuid.UUID, variantID *uuid.UUID, quantity int64) (*CartResponse, error) {
	var resp *CartResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.Products().GetProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("load product %s: %w", productID, err)
		}
		if !product.Active {
			return shared.NewDomainError("PRODUCT_UNAVAILABLE",
				fmt.Sprintf("Product %s is no longer available", product.Name))
		}

		c, err := repos.Carts().FindOrCreateByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		if _, err := c.AddItem(productID, variantID, quantity, product.Price); err != nil {
			return err
		}
		if err := repos.Carts().Save(ctx, c); err != nil {
			return err
		}
		r := ToCartResponse(c, s.preview(ctx, repos, c))
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateItemQuantity sets the quantity of a cart line
func (s *CartService) UpdateItemQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int64) (*CartResponse, error) {
	return s.mutate(ctx, customerID, func(c *cart.Cart) error {
		return c.UpdateItemQuantity(itemID, quantity)
	})
}

// RemoveItem removes a cart line
func (s *CartService) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*CartResponse, error) {
	return s.mutate(ctx, customerID, func(c *cart.Cart) error {
		return c.RemoveItem(itemID)
	})
}

// ApplyCoupon attaches a coupon to the cart after validating it against the
// current subtotal
func (s *CartService) ApplyCoupon(ctx context.Context, customerID uuid.UUID, code string) (*CartResponse, error) {
	var resp *CartResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.Carts().FindOrCreateByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		coupon, err := repos.Coupons().FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return &pricing.CouponInvalidError{Code: code, Reason: pricing.CouponReasonNotFound}
			}
			return err
		}
		if err := coupon.Validate(c.Subtotal(), time.Now()); err != nil {
			return err
		}
		if err := c.ApplyCoupon(code); err != nil {
			return err
		}
		if err := repos.Carts().Save(ctx, c); err != nil {
			return err
		}
		r := ToCartResponse(c, s.preview(ctx, repos, c))
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RemoveCoupon detaches any coupon from the cart
func (s *CartService) RemoveCoupon(ctx context.Context, customerID uuid.UUID) (*CartResponse, error) {
	return s.mutate(ctx, customerID, func(c *cart.Cart) error {
		c.RemoveCoupon()
		return nil
	})
}

func (s *CartService) mutate(ctx context.Context, customerID uuid.UUID, fn func(c *cart.Cart) error) (*CartResponse, error) {
	var resp *CartResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.Carts().FindOrCreateByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		if err := repos.Carts().Save(ctx, c); err != nil {
			return err
		}
		r := ToCartResponse(c, s.preview(ctx, repos, c))
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
