package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commerce/backend/internal/domain/cart"
	"github.com/commerce/backend/internal/domain/inventory"
	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/pricing"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// idempotencyTTL bounds how long a checkout idempotency key stays claimed
const idempotencyTTL = 24 * time.Hour

// orderNumberAttempts bounds retries on an order number collision
const orderNumberAttempts = 3

// Service orchestrates the checkout flow. CreateOrder and CancelOrder each
// run inside a single database transaction so that order rows, stock ledger
// entries, coupon usage and outbox events commit together. Payment is a
// separate phase handled by PaymentService.
type Service struct {
	scope       TransactionScope
	engine      *pricing.Engine
	numbers     order.NumberGenerator
	idempotency shared.IdempotencyStore
	metrics     Metrics
	logger      *zap.Logger
}

// NewService creates a checkout service. idempotency may be nil, in which
// case Idempotency-Key headers are ignored.
func NewService(
	scope TransactionScope,
	engine *pricing.Engine,
	numbers order.NumberGenerator,
	idempotency shared.IdempotencyStore,
	metrics Metrics,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Service{
		scope:       scope,
		engine:      engine,
		numbers:     numbers,
		idempotency: idempotency,
		metrics:     metrics,
		logger:      logger,
	}
}

// CreateOrder materializes the customer's cart into a pending order. Prices
// are re-read from the catalog, stock is reserved all-or-nothing, the
// order.created event is written to the outbox and the cart is cleared, all
// in one transaction. The returned order awaits payment.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderResponse, error) {
	key := ""
	if input.IdempotencyKey != "" && s.idempotency != nil {
		key = fmt.Sprintf("checkout:order:%s:%s", input.CustomerID, input.IdempotencyKey)
		claimed, err := s.idempotency.Begin(ctx, key, idempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("claim idempotency key: %w", err)
		}
		if !claimed {
			return s.replayOrder(ctx, key)
		}
	}

	resp, err := s.createOrder(ctx, input)
	if key != "" {
		if err != nil {
			if relErr := s.idempotency.Release(ctx, key); relErr != nil {
				s.logger.Warn("failed to release idempotency key",
					zap.String("key", key), zap.Error(relErr))
			}
		} else if storeErr := s.idempotency.StoreResult(ctx, key, resp.ID.String(), idempotencyTTL); storeErr != nil {
			s.logger.Warn("failed to store idempotency result",
				zap.String("key", key), zap.Error(storeErr))
		}
	}
	if err != nil {
		return nil, err
	}

	s.metrics.OrderCreated(ctx, string(input.PaymentMethod))
	s.logger.Info("order created",
		zap.String("order_id", resp.ID.String()),
		zap.String("order_number", resp.OrderNumber),
		zap.String("customer_id", input.CustomerID.String()),
		zap.String("total", resp.Total.String()))
	return resp, nil
}

// replayOrder returns the order a previous request with the same key
// created. When that request is still in flight there is no result yet and
// the caller gets a retryable conflict.
func (s *Service) replayOrder(ctx context.Context, key string) (*OrderResponse, error) {
	stored, err := s.idempotency.GetResult(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read idempotency result: %w", err)
	}
	if stored == "" {
		return nil, shared.NewDomainError("DUPLICATE_REQUEST", "A request with this idempotency key is already in progress")
	}
	orderID, err := uuid.Parse(stored)
	if err != nil {
		return nil, fmt.Errorf("corrupt idempotency result %q: %w", stored, err)
	}

	var resp *OrderResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		r := ToOrderResponse(o)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// createOrder runs the checkout transaction. Order numbers are date-scoped
// sequences, so two concurrent checkouts can draw the same one; the unique
// index decides the winner and the loser retries with a fresh number.
func (s *Service) createOrder(ctx context.Context, input CreateOrderInput) (*OrderResponse, error) {
	var resp *OrderResponse
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		resp, err = s.createOrderOnce(ctx, input)
		if !errors.Is(err, order.ErrNumberConflict) {
			break
		}
	}
	return resp, err
}

func (s *Service) createOrderOnce(ctx context.Context, input CreateOrderInput) (*OrderResponse, error) {
	orderNumber, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	var resp *OrderResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.Carts().FindByCustomer(ctx, input.CustomerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return &cart.EmptyCartError{CustomerID: input.CustomerID}
			}
			return err
		}
		if c.IsEmpty() {
			return &cart.EmptyCartError{CustomerID: input.CustomerID}
		}

		couponCode := c.CouponCode
		if input.CouponCode != nil {
			couponCode = input.CouponCode
		}
		var coupon *pricing.Coupon
		if couponCode != nil {
			coupon, err = repos.Coupons().FindByCode(ctx, *couponCode)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return &pricing.CouponInvalidError{Code: *couponCode, Reason: pricing.CouponReasonNotFound}
				}
				return err
			}
		}

		// Reprice every line from the current catalog state. The cart's
		// snapshot is a display price only; the order carries what the
		// catalog says now.
		type pricedLine struct {
			item cart.CartItem
			name string
		}
		lines := make([]pricing.LineItem, 0, len(c.Items))
		priced := make([]pricedLine, 0, len(c.Items))
		for _, item := range c.Items {
			product, err := repos.Products().GetProduct(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("load product %s: %w", item.ProductID, err)
			}
			if !product.Active {
				return shared.NewDomainError("PRODUCT_UNAVAILABLE",
					fmt.Sprintf("Product %s is no longer available", product.Name))
			}
			line := item
			line.UnitPriceSnapshot = product.Price
			lines = append(lines, pricing.LineItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
			priced = append(priced, pricedLine{item: line, name: product.Name})
		}

		quote, err := s.engine.Quote(lines, coupon, time.Now())
		if err != nil {
			return err
		}

		o, err := order.NewOrder(orderNumber, input.CustomerID, input.PaymentMethod, input.ShippingAddress, order.Totals{
			Subtotal: quote.Subtotal,
			Tax:      quote.Tax,
			Shipping: quote.Shipping,
			Discount: quote.Discount,
			Total:    quote.Total,
		}, couponCode)
		if err != nil {
			return err
		}
		if input.Notes != "" {
			o.SetNotes(input.Notes)
		}
		for _, pl := range priced {
			if _, err := o.AddItem(pl.item.ProductID, pl.item.VariantID, pl.name, pl.item.Quantity, pl.item.UnitPriceSnapshot); err != nil {
				return err
			}
		}

		// Reservation quantities aggregate per product; two variants of one
		// product draw from the same stock pool.
		ledger := inventory.NewStockLedger(repos.Products(), repos.Ledger())
		if err := ledger.Reserve(ctx, o.ID, reservationLines(c.Items)); err != nil {
			return err
		}

		o.AddDomainEvent(order.NewCreatedEvent(o))
		if err := repos.Orders().SaveWithEvents(ctx, o); err != nil {
			return err
		}

		if coupon != nil {
			if err := repos.Coupons().IncrementUsage(ctx, coupon.ID); err != nil {
				return fmt.Errorf("increment coupon usage: %w", err)
			}
		}

		if err := repos.Carts().Clear(ctx, c.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		r := ToOrderResponse(o)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// reservationLines folds cart items into per-product reservation quantities
func reservationLines(items []cart.CartItem) []inventory.ReservationLine {
	byProduct := make(map[uuid.UUID]int64, len(items))
	ordered := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, seen := byProduct[item.ProductID]; !seen {
			ordered = append(ordered, item.ProductID)
		}
		byProduct[item.ProductID] += item.Quantity
	}
	lines := make([]inventory.ReservationLine, 0, len(ordered))
	for _, id := range ordered {
		lines = append(lines, inventory.ReservationLine{ProductID: id, Quantity: byProduct[id]})
	}
	return lines
}

// CancelOrder cancels an order that has not shipped yet. Reserved stock is
// released and the cancellation events go to the outbox in the same
// transaction. Releasing is idempotent, so repeating a cancellation after a
// partial failure is safe.
func (s *Service) CancelOrder(ctx context.Context, input CancelOrderInput) (*OrderResponse, error) {
	var resp *OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if err := o.Cancel(input.Reason); err != nil {
			return err
		}

		ledger := inventory.NewStockLedger(repos.Products(), repos.Ledger())
		if err := ledger.Release(ctx, o.ID); err != nil {
			return err
		}

		if err := repos.Orders().SaveWithEvents(ctx, o); err != nil {
			return err
		}
		r := ToOrderResponse(o)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderCancelled(ctx)
	s.logger.Info("order cancelled",
		zap.String("order_id", resp.ID.String()),
		zap.String("reason", input.Reason))
	return resp, nil
}

// GetOrder returns the full order view
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var resp *OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		r := ToOrderResponse(o)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListOrders returns the customer's orders, newest first
func (s *Service) ListOrders(ctx context.Context, customerID uuid.UUID) ([]OrderResponse, error) {
	var resp []OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		orders, err := repos.Orders().FindByCustomer(ctx, customerID, 50, 0)
		if err != nil {
			return err
		}
		resp = make([]OrderResponse, len(orders))
		for i, o := range orders {
			resp[i] = ToOrderResponse(o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetOrderStatus returns the lightweight status read model
func (s *Service) GetOrderStatus(ctx context.Context, orderID uuid.UUID) (*OrderStatusResponse, error) {
	var resp *OrderStatusResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		r := ToOrderStatusResponse(o)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
