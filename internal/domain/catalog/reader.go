package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInfo is the read model this core needs from the catalog module.
// The catalog owns product CRUD; checkout only reads prices and stock.
type ProductInfo struct {
	ID             uuid.UUID
	Name           string
	SKU            string
	Price          decimal.Decimal
	StockQuantity  int64
	TrackInventory bool
	Active         bool
}

// Reader is the catalog read port consumed by pricing re-validation and
// stock reservation.
type Reader interface {
	// GetProduct returns the current catalog state of a product
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductInfo, error)

	// GetProductForUpdate returns the product while holding its row lock for
	// the remainder of the surrounding transaction. Concurrent reservations
	// of the same product serialize on this lock.
	GetProductForUpdate(ctx context.Context, productID uuid.UUID) (*ProductInfo, error)
}
