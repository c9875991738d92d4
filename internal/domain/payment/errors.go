package payment

import (
	"fmt"

	"github.com/commerce/backend/internal/domain/order"
)

// DeclinedError is a definitive refusal from the processor. The charge did
// not and will not happen.
type DeclinedError struct {
	Method order.PaymentMethod
	Code   string
	Reason string
}

func (e *DeclinedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment declined by %s (%s): %s", e.Method, e.Code, e.Reason)
	}
	return fmt.Sprintf("payment declined by %s: %s", e.Method, e.Reason)
}

// GatewayTimeoutError means the processor did not answer in time. The
// outcome of the charge is unknown and the order must stay payable.
type GatewayTimeoutError struct {
	Method order.PaymentMethod
	Err    error
}

func (e *GatewayTimeoutError) Error() string {
	return fmt.Sprintf("payment gateway %s timed out: %v", e.Method, e.Err)
}

func (e *GatewayTimeoutError) Unwrap() error {
	return e.Err
}
