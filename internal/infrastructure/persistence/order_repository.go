package persistence

import (
	"context"
	"errors"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM. Instances are
// created per transaction by the checkout transaction scope, so all writes
// here share the scope's transaction.
type GormOrderRepository struct {
	db     *gorm.DB
	outbox shared.OutboxEventSaver
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB, outbox shared.OutboxEventSaver) *GormOrderRepository {
	return &GormOrderRepository{db: db, outbox: outbox}
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByIDForUpdate finds an order with its items, locking the order row
// until the surrounding transaction ends
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByNumber finds an order by its order number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByCustomer lists a customer's orders, newest first
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	var orders []*order.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	return orders, err
}

// SaveWithEvents persists the order, reconciles its items and appends the
// aggregate's domain events to the outbox, all on the current transaction.
// The event list is cleared after a successful save.
func (r *GormOrderRepository) SaveWithEvents(ctx context.Context, o *order.Order) error {
	if err := r.db.WithContext(ctx).Omit("Items").Save(o).Error; err != nil {
		// The only duplicate a fresh order can hit is the unique index on
		// order_number; ids are uuids.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return order.ErrNumberConflict
		}
		return err
	}

	currentItemIDs := make([]uuid.UUID, len(o.Items))
	for i, item := range o.Items {
		currentItemIDs[i] = item.ID
	}
	itemQuery := r.db.WithContext(ctx).Where("order_id = ?", o.ID)
	if len(currentItemIDs) > 0 {
		itemQuery = itemQuery.Where("id NOT IN ?", currentItemIDs)
	}
	if err := itemQuery.Delete(&order.Item{}).Error; err != nil {
		return err
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := r.db.WithContext(ctx).Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}

	events := o.GetDomainEvents()
	if len(events) > 0 {
		if err := r.outbox.SaveEvents(ctx, r.db, events...); err != nil {
			return err
		}
	}
	o.ClearDomainEvents()
	return nil
}
