package persistence

import (
	"context"

	"github.com/commerce/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerRepository implements inventory.LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Create appends ledger entries
func (r *GormLedgerRepository) Create(ctx context.Context, entries ...*inventory.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// SumByProduct returns the sum of all deltas for a product
func (r *GormLedgerRepository) SumByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&sum).Error
	return sum, err
}

// FindByOrder returns all entries written for an order
func (r *GormLedgerRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*inventory.LedgerEntry, error) {
	var entries []*inventory.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// ExistsForOrder reports whether the order has any entry with the reason
func (r *GormLedgerRepository) ExistsForOrder(ctx context.Context, orderID uuid.UUID, reason inventory.Reason) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Where("order_id = ? AND reason = ?", orderID, reason).
		Count(&count).Error
	return count > 0, err
}

var _ inventory.LedgerRepository = (*GormLedgerRepository)(nil)
