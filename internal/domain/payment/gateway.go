package payment

import (
	"context"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AuthorizeRequest carries everything a gateway needs to charge an order
type AuthorizeRequest struct {
	OrderID     uuid.UUID
	OrderNumber string
	CustomerID  uuid.UUID
	Amount      valueobject.Money
	// CardToken is the tokenized card reference collected client side.
	// Empty for cash on delivery.
	CardToken string
}

// Result is a successful authorization
type Result struct {
	TransactionID string
	Method        order.PaymentMethod
}

// Gateway authorizes payments against one processor. Implementations must
// honor the context deadline; the application layer treats a deadline
// expiry as an unknown outcome, not a decline.
type Gateway interface {
	Method() order.PaymentMethod
	Authorize(ctx context.Context, req AuthorizeRequest) (*Result, error)
}

// Registry resolves the gateway for a payment method
type Registry interface {
	Gateway(method order.PaymentMethod) (Gateway, error)
}
