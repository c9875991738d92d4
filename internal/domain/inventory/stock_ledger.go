package inventory

import (
	"context"
	"fmt"

	"github.com/commerce/backend/internal/domain/catalog"
	"github.com/google/uuid"
)

// ReservationLine is one product/quantity pair of a reservation request
type ReservationLine struct {
	ProductID uuid.UUID
	Quantity  int64
}

// StockLedger reserves and releases stock through append-only ledger
// entries. It is meant to run inside the caller's database transaction so
// that reservations commit or roll back together with the order.
type StockLedger struct {
	products catalog.Reader
	entries  LedgerRepository
}

// NewStockLedger creates a stock ledger service
func NewStockLedger(products catalog.Reader, entries LedgerRepository) *StockLedger {
	return &StockLedger{products: products, entries: entries}
}

// Reserve holds stock for every line or none at all. Products that do not
// track inventory pass through without an entry. The product rows are read
// with a row lock so concurrent reservations for the same product serialize
// instead of both passing the availability check.
func (s *StockLedger) Reserve(ctx context.Context, orderID uuid.UUID, lines []ReservationLine) error {
	pending := make([]*LedgerEntry, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("invalid reservation quantity %d for product %s", line.Quantity, line.ProductID)
		}

		product, err := s.products.GetProductForUpdate(ctx, line.ProductID)
		if err != nil {
			return fmt.Errorf("load product %s: %w", line.ProductID, err)
		}
		if !product.TrackInventory {
			continue
		}

		sum, err := s.entries.SumByProduct(ctx, line.ProductID)
		if err != nil {
			return fmt.Errorf("sum ledger for product %s: %w", line.ProductID, err)
		}
		available := product.StockQuantity + sum
		if available < line.Quantity {
			return &InsufficientStockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: available,
			}
		}

		pending = append(pending, NewReserveEntry(line.ProductID, orderID, line.Quantity))
	}

	if len(pending) == 0 {
		return nil
	}
	return s.entries.Create(ctx, pending...)
}

// Release returns an order's reserved stock. Calling it again for the same
// order is a no-op, so cancellation flows may retry safely. Orders that
// never reserved anything also pass through.
func (s *StockLedger) Release(ctx context.Context, orderID uuid.UUID) error {
	released, err := s.entries.ExistsForOrder(ctx, orderID, ReasonRelease)
	if err != nil {
		return fmt.Errorf("check release entries for order %s: %w", orderID, err)
	}
	if released {
		return nil
	}

	existing, err := s.entries.FindByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load ledger entries for order %s: %w", orderID, err)
	}

	mirrors := make([]*LedgerEntry, 0, len(existing))
	for _, entry := range existing {
		if entry.Reason != ReasonReserve {
			continue
		}
		mirrors = append(mirrors, NewReleaseEntry(entry.ProductID, orderID, -entry.Delta))
	}
	if len(mirrors) == 0 {
		return nil
	}
	return s.entries.Create(ctx, mirrors...)
}

// Restock records inbound stock for a product
func (s *StockLedger) Restock(ctx context.Context, productID uuid.UUID, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("invalid restock quantity %d for product %s", quantity, productID)
	}
	return s.entries.Create(ctx, NewRestockEntry(productID, quantity))
}

// Available returns the sellable quantity for a product
func (s *StockLedger) Available(ctx context.Context, productID uuid.UUID) (int64, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("load product %s: %w", productID, err)
	}
	if !product.TrackInventory {
		return 0, nil
	}
	sum, err := s.entries.SumByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("sum ledger for product %s: %w", productID, err)
	}
	return product.StockQuantity + sum, nil
}
