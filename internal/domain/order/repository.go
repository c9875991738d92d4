package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists orders. Implementations bound to a transaction scope
// write the aggregate and its pending domain events atomically.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByIDForUpdate loads the order under a row lock. Mutating flows
	// use it so two compensating paths (cancel racing a payment decline)
	// serialize instead of both releasing the same reservation.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, error)
	// SaveWithEvents persists the order, its items and every collected
	// domain event as outbox rows in the same transaction, then clears the
	// aggregate's event list.
	SaveWithEvents(ctx context.Context, o *Order) error
}

// NumberGenerator produces unique human-readable order numbers
type NumberGenerator interface {
	Next(ctx context.Context) (string, error)
}
