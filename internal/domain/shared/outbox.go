package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is a domain event persisted in the same transaction as the
// aggregate mutation that produced it, pending relay to the message broker.
// PublishedAt is nil until the relay has delivered the event; it is set at
// most once, under a row-level lock held by the relay.
type OutboxEvent struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AggregateType string     `gorm:"size:100;not null"`
	AggregateID   string     `gorm:"size:100;not null;index"`
	EventType     string     `gorm:"size:100;not null"`
	Payload       []byte     `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time  `gorm:"index"`
	PublishedAt   *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (OutboxEvent) TableName() string {
	return "outbox_events"
}

// NewOutboxEvent creates an outbox row for a domain event
func NewOutboxEvent(event DomainEvent, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		ID:            event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID().String(),
		EventType:     event.EventType(),
		Payload:       payload,
		CreatedAt:     event.OccurredAt(),
	}
}

// Topic returns the broker topic this event is relayed to
func (e *OutboxEvent) Topic() string {
	return e.AggregateType + "-" + e.EventType
}

// IsPublished returns true once the event has been relayed
func (e *OutboxEvent) IsPublished() bool {
	return e.PublishedAt != nil
}

// MarkPublished records the relay time. Marking twice is an error: the
// relay must never deliver a row it did not hold the lock for.
func (e *OutboxEvent) MarkPublished(at time.Time) error {
	if e.PublishedAt != nil {
		return errors.New("outbox event already published")
	}
	e.PublishedAt = &at
	return nil
}

// OutboxRepository defines the interface for outbox persistence
type OutboxRepository interface {
	// Save persists one or more outbox events, normally inside the caller's transaction
	Save(ctx context.Context, events ...*OutboxEvent) error
	// FindUnpublished retrieves unpublished events in creation order up to limit,
	// locking the returned rows so concurrent relay instances claim disjoint sets
	FindUnpublished(ctx context.Context, limit int) ([]*OutboxEvent, error)
	// MarkPublished sets published_at for a single locked row
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	// CountUnpublished returns the number of rows still awaiting relay
	CountUnpublished(ctx context.Context) (int64, error)
	// DeletePublishedBefore removes relayed rows older than the cutoff
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// OutboxEventSaver saves domain events to the outbox table within a transaction.
// Repositories use it to implement the transactional outbox pattern: event rows
// are written in the same transaction as the business mutation.
type OutboxEventSaver interface {
	// SaveEvents saves domain events to the outbox within the current transaction.
	// The txProvider should be a *gorm.DB transaction.
	SaveEvents(ctx context.Context, txProvider interface{}, events ...DomainEvent) error
}

// MessageBroker publishes relayed events to an external broker. Messages with
// the same key preserve their relative order at the broker.
type MessageBroker interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
	Close() error
}
