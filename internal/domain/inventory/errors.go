package inventory

import (
	"fmt"

	"github.com/google/uuid"
)

// InsufficientStockError is returned when a reservation asks for more units
// than are available. The whole reservation is rejected; no partial
// quantities are ever held back.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
