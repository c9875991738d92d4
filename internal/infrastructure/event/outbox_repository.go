package event

import (
	"context"
	"fmt"
	"time"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOutboxRepository implements shared.OutboxRepository using GORM
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new GORM-based outbox repository
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// WithTx returns a repository instance bound to the given transaction
func (r *GormOutboxRepository) WithTx(tx *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: tx}
}

// Save persists one or more outbox events
func (r *GormOutboxRepository) Save(ctx context.Context, events ...*shared.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(events).Error
}

// FindUnpublished retrieves unpublished events in creation order up to
// limit. The rows are locked with FOR UPDATE SKIP LOCKED so concurrent
// relay instances claim disjoint sets; the caller must run inside a
// transaction for the locks to hold.
func (r *GormOutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]*shared.OutboxEvent, error) {
	var events []*shared.OutboxEvent
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("published_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// MarkPublished sets published_at for a single row. It fails when the row
// was already published, which would indicate a locking bug.
func (r *GormOutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&shared.OutboxEvent{}).
		Where("id = ? AND published_at IS NULL", id).
		Update("published_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("outbox event %s already published or missing", id)
	}
	return nil
}

// CountUnpublished returns the number of rows still awaiting relay
func (r *GormOutboxRepository) CountUnpublished(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&shared.OutboxEvent{}).
		Where("published_at IS NULL").
		Count(&count).Error
	return count, err
}

// DeletePublishedBefore removes relayed rows older than the cutoff
func (r *GormOutboxRepository) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("published_at IS NOT NULL AND published_at < ?", cutoff).
		Delete(&shared.OutboxEvent{})
	return result.RowsAffected, result.Error
}

var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)
