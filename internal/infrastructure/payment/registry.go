package payment

import (
	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/payment"
	"github.com/commerce/backend/internal/domain/shared"
)

// GatewayRegistry resolves payment gateways by method
type GatewayRegistry struct {
	gateways map[order.PaymentMethod]payment.Gateway
}

// NewGatewayRegistry creates a registry over the given gateways
func NewGatewayRegistry(gateways ...payment.Gateway) *GatewayRegistry {
	m := make(map[order.PaymentMethod]payment.Gateway, len(gateways))
	for _, g := range gateways {
		m[g.Method()] = g
	}
	return &GatewayRegistry{gateways: m}
}

// Gateway returns the gateway for a payment method
func (r *GatewayRegistry) Gateway(method order.PaymentMethod) (payment.Gateway, error) {
	g, ok := r.gateways[method]
	if !ok {
		return nil, shared.NewDomainError("UNSUPPORTED_PAYMENT_METHOD",
			"No payment gateway is configured for method "+string(method))
	}
	return g, nil
}

var _ payment.Registry = (*GatewayRegistry)(nil)
