package persistence

import (
	"context"

	"github.com/commerce/backend/internal/application/checkout"
	"github.com/commerce/backend/internal/domain/cart"
	"github.com/commerce/backend/internal/domain/catalog"
	"github.com/commerce/backend/internal/domain/inventory"
	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/pricing"
	"github.com/commerce/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTransactionScope implements checkout.TransactionScope using GORM
// transactions. Every repository handed to the callback shares one
// transaction, so order rows, ledger entries and outbox events commit or
// roll back together.
type GormTransactionScope struct {
	db     *gorm.DB
	outbox shared.OutboxEventSaver
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB, outbox shared.OutboxEventSaver) *GormTransactionScope {
	return &GormTransactionScope{db: db, outbox: outbox}
}

// Execute runs the given function within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos checkout.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, outbox: s.outbox})
	})
}

type gormTransactionalRepositories struct {
	tx     *gorm.DB
	outbox shared.OutboxEventSaver
}

// Orders returns the order repository scoped to the current transaction
func (r *gormTransactionalRepositories) Orders() order.Repository {
	return NewGormOrderRepository(r.tx, r.outbox)
}

// Carts returns the cart repository scoped to the current transaction
func (r *gormTransactionalRepositories) Carts() cart.Repository {
	return NewGormCartRepository(r.tx)
}

// Ledger returns the stock ledger repository scoped to the current transaction
func (r *gormTransactionalRepositories) Ledger() inventory.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

// Products returns the catalog reader scoped to the current transaction
func (r *gormTransactionalRepositories) Products() catalog.Reader {
	return NewGormCatalogReader(r.tx)
}

// Coupons returns the coupon repository scoped to the current transaction
func (r *gormTransactionalRepositories) Coupons() pricing.CouponRepository {
	return NewGormCouponRepository(r.tx)
}

var _ checkout.TransactionScope = (*GormTransactionScope)(nil)
var _ checkout.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
