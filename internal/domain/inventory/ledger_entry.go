package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Reason classifies a stock ledger movement
type Reason string

const (
	ReasonReserve Reason = "reserve"
	ReasonRelease Reason = "release"
	ReasonRestock Reason = "restock"
)

// IsValid checks if the reason is known
func (r Reason) IsValid() bool {
	return r == ReasonReserve || r == ReasonRelease || r == ReasonRestock
}

// LedgerEntry is an append-only stock movement. Negative deltas reserve
// stock, positive deltas return it. Available stock for a product is its
// base quantity plus the sum of its ledger deltas; entries are never
// updated or deleted.
type LedgerEntry struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderID   *uuid.UUID `gorm:"type:uuid;index"`
	Delta     int64      `gorm:"not null"`
	Reason    Reason     `gorm:"size:20;not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "stock_ledger_entries"
}

// NewReserveEntry creates a reservation movement for an order line
func NewReserveEntry(productID, orderID uuid.UUID, quantity int64) *LedgerEntry {
	return &LedgerEntry{
		ID:        uuid.New(),
		ProductID: productID,
		OrderID:   &orderID,
		Delta:     -quantity,
		Reason:    ReasonReserve,
		CreatedAt: time.Now(),
	}
}

// NewReleaseEntry mirrors a reservation back into available stock
func NewReleaseEntry(productID, orderID uuid.UUID, quantity int64) *LedgerEntry {
	return &LedgerEntry{
		ID:        uuid.New(),
		ProductID: productID,
		OrderID:   &orderID,
		Delta:     quantity,
		Reason:    ReasonRelease,
		CreatedAt: time.Now(),
	}
}

// NewRestockEntry records inbound stock outside any order
func NewRestockEntry(productID uuid.UUID, quantity int64) *LedgerEntry {
	return &LedgerEntry{
		ID:        uuid.New(),
		ProductID: productID,
		Delta:     quantity,
		Reason:    ReasonRestock,
		CreatedAt: time.Now(),
	}
}
