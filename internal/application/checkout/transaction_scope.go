package checkout

import (
	"context"

	"github.com/commerce/backend/internal/domain/cart"
	"github.com/commerce/backend/internal/domain/catalog"
	"github.com/commerce/backend/internal/domain/inventory"
	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/pricing"
)

// TransactionScope provides transactional access to the checkout
// repositories. Everything executed within one scope commits or rolls back
// atomically, which is what keeps order rows, stock ledger entries and
// outbox events consistent with each other.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error the transaction is rolled back,
	// otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all checkout repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// Orders returns the order repository scoped to the current transaction.
	// SaveWithEvents on this repository also writes the aggregate's domain
	// events to the outbox table.
	Orders() order.Repository
	// Carts returns the cart repository scoped to the current transaction
	Carts() cart.Repository
	// Ledger returns the stock ledger repository scoped to the current transaction
	Ledger() inventory.LedgerRepository
	// Products returns the catalog reader scoped to the current transaction.
	// GetProductForUpdate takes a row lock inside this transaction.
	Products() catalog.Reader
	// Coupons returns the coupon repository scoped to the current transaction
	Coupons() pricing.CouponRepository
}

// NoOpTransactionScope runs the function without a real transaction. Used
// in tests where the repositories are mocks.
type NoOpTransactionScope struct {
	orders  order.Repository
	carts   cart.Repository
	ledger  inventory.LedgerRepository
	catalog catalog.Reader
	coupons pricing.CouponRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	orders order.Repository,
	carts cart.Repository,
	ledger inventory.LedgerRepository,
	products catalog.Reader,
	coupons pricing.CouponRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orders:  orders,
		carts:   carts,
		ledger:  ledger,
		catalog: products,
		coupons: coupons,
	}
}

// Execute runs the function directly against the wrapped repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Orders returns the order repository
func (s *NoOpTransactionScope) Orders() order.Repository { return s.orders }

// Carts returns the cart repository
func (s *NoOpTransactionScope) Carts() cart.Repository { return s.carts }

// Ledger returns the stock ledger repository
func (s *NoOpTransactionScope) Ledger() inventory.LedgerRepository { return s.ledger }

// Products returns the catalog reader
func (s *NoOpTransactionScope) Products() catalog.Reader { return s.catalog }

// Coupons returns the coupon repository
func (s *NoOpTransactionScope) Coupons() pricing.CouponRepository { return s.coupons }
