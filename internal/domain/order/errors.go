package order

import (
	"errors"
	"fmt"
)

// ErrNumberConflict signals that the generated order number lost a race to
// a concurrent checkout. The caller retries with a fresh number.
var ErrNumberConflict = errors.New("order number already taken")

// StateConflictError signals a transition not present in the order state
// machine. The order is never mutated when this is returned.
type StateConflictError struct {
	From Status
	To   Status
}

// Error implements the error interface
func (e *StateConflictError) Error() string {
	return fmt.Sprintf("illegal order transition %s -> %s", e.From, e.To)
}
