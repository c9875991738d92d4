package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/commerce/backend/internal/domain/order"
	"gorm.io/gorm"
)

// GormOrderNumberGenerator issues human-readable order numbers.
// Format: SO-YYYYMMDD-NNNN (e.g., SO-20260831-0001), numbered per day.
type GormOrderNumberGenerator struct {
	db *gorm.DB
}

// NewGormOrderNumberGenerator creates a new generator
func NewGormOrderNumberGenerator(db *gorm.DB) *GormOrderNumberGenerator {
	return &GormOrderNumberGenerator{db: db}
}

// Next returns the next free order number. The unique index on
// orders.order_number is the real guarantee; a collision under concurrency
// surfaces as a constraint violation and the checkout retries.
func (g *GormOrderNumberGenerator) Next(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("SO-%s-", time.Now().Format("20060102"))

	var last order.Order
	err := g.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var next int64 = 1
	if err == nil && last.OrderNumber != "" {
		parts := strings.Split(last.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				next = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%04d", prefix, next), nil
}

var _ order.NumberGenerator = (*GormOrderNumberGenerator)(nil)
