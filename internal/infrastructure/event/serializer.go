package event

import (
	"encoding/json"

	"github.com/commerce/backend/internal/domain/shared"
)

// Serializer turns domain events into outbox payloads. Payloads are plain
// JSON; consumers resolve the concrete shape from the event_type column.
type Serializer struct{}

// NewSerializer creates a serializer
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Serialize serializes a domain event to JSON bytes
func (s *Serializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}
