package event

import (
	"context"
	"fmt"

	"github.com/commerce/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxSaver implements shared.OutboxEventSaver. Repositories hand it
// their transaction so the event rows land in the same commit as the
// aggregate mutation.
type OutboxSaver struct {
	serializer *Serializer
}

// NewOutboxSaver creates a new OutboxSaver
func NewOutboxSaver(serializer *Serializer) *OutboxSaver {
	return &OutboxSaver{serializer: serializer}
}

// SaveEvents saves domain events to the outbox within the given transaction
func (s *OutboxSaver) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be *gorm.DB, got %T", txProvider)
	}

	rows := make([]*shared.OutboxEvent, 0, len(events))
	for _, e := range events {
		payload, err := s.serializer.Serialize(e)
		if err != nil {
			return fmt.Errorf("serialize event %s: %w", e.EventType(), err)
		}
		rows = append(rows, shared.NewOutboxEvent(e, payload))
	}

	return NewGormOutboxRepository(tx).Save(ctx, rows...)
}

var _ shared.OutboxEventSaver = (*OutboxSaver)(nil)
