package cart

import (
	"fmt"

	"github.com/google/uuid"
)

// EmptyCartError signals a checkout attempt against a cart with no items
type EmptyCartError struct {
	CustomerID uuid.UUID
}

// Error implements the error interface
func (e *EmptyCartError) Error() string {
	return fmt.Sprintf("cart for customer %s is empty", e.CustomerID)
}
