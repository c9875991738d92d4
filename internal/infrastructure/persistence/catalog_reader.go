package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/commerce/backend/internal/domain/catalog"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productRow maps the products table. The catalog module owns this table;
// checkout only reads from it.
type productRow struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name           string          `gorm:"size:255;not null"`
	SKU            string          `gorm:"size:100;not null;uniqueIndex"`
	Price          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	StockQuantity  int64           `gorm:"not null"`
	TrackInventory bool            `gorm:"not null"`
	Active         bool            `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (productRow) TableName() string {
	return "products"
}

// GormCatalogReader implements catalog.Reader against the products table
type GormCatalogReader struct {
	db *gorm.DB
}

// NewGormCatalogReader creates a new GormCatalogReader
func NewGormCatalogReader(db *gorm.DB) *GormCatalogReader {
	return &GormCatalogReader{db: db}
}

// GetProduct returns the current catalog state of a product
func (r *GormCatalogReader) GetProduct(ctx context.Context, productID uuid.UUID) (*catalog.ProductInfo, error) {
	var row productRow
	if err := r.db.WithContext(ctx).
		First(&row, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return toProductInfo(&row), nil
}

// GetProductForUpdate returns the product while holding its row lock for
// the remainder of the surrounding transaction
func (r *GormCatalogReader) GetProductForUpdate(ctx context.Context, productID uuid.UUID) (*catalog.ProductInfo, error) {
	var row productRow
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return toProductInfo(&row), nil
}

func toProductInfo(row *productRow) *catalog.ProductInfo {
	return &catalog.ProductInfo{
		ID:             row.ID,
		Name:           row.Name,
		SKU:            row.SKU,
		Price:          row.Price,
		StockQuantity:  row.StockQuantity,
		TrackInventory: row.TrackInventory,
		Active:         row.Active,
	}
}

var _ catalog.Reader = (*GormCatalogReader)(nil)
