package inventory

import (
	"context"

	"github.com/google/uuid"
)

// LedgerRepository persists stock ledger entries. The ledger is append-only.
type LedgerRepository interface {
	Create(ctx context.Context, entries ...*LedgerEntry) error
	// SumByProduct returns the sum of all deltas for a product, zero when
	// the product has no entries.
	SumByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*LedgerEntry, error)
	ExistsForOrder(ctx context.Context, orderID uuid.UUID, reason Reason) (bool, error)
}
