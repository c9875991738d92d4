package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/payment"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"go.uber.org/zap"
)

// StripeAdapter implements the payment gateway port for card payments via
// Stripe PaymentIntents
type StripeAdapter struct {
	logger *zap.Logger
}

// NewStripeAdapter creates a Stripe adapter. The API key is process-global
// in stripe-go, so it is set once here.
func NewStripeAdapter(apiKey string, logger *zap.Logger) (*StripeAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("stripe: API key is required")
	}
	stripe.Key = apiKey
	return &StripeAdapter{logger: logger}, nil
}

// Method returns the payment method this adapter handles
func (a *StripeAdapter) Method() order.PaymentMethod {
	return order.PaymentMethodCard
}

// Authorize creates and confirms a PaymentIntent for the order amount.
// Amounts go to Stripe in kuruş.
func (a *StripeAdapter) Authorize(ctx context.Context, req payment.AuthorizeRequest) (*payment.Result, error) {
	a.logger.Debug("Creating Stripe payment intent",
		zap.String("order_id", req.OrderID.String()),
		zap.String("amount", req.Amount.String()))

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.Amount.Amount().Shift(2).IntPart()),
		Currency:      stripe.String(strings.ToLower(string(req.Amount.Currency()))),
		PaymentMethod: stripe.String(req.CardToken),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.Metadata = map[string]string{
		"order_id":     req.OrderID.String(),
		"order_number": req.OrderNumber,
		"customer_id":  req.CustomerID.String(),
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, a.classifyError(req, err)
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusRequiresCapture:
		return &payment.Result{TransactionID: intent.ID, Method: a.Method()}, nil
	default:
		return nil, &payment.DeclinedError{
			Method: a.Method(),
			Code:   string(intent.Status),
			Reason: fmt.Sprintf("payment intent ended in status %s", intent.Status),
		}
	}
}

func (a *StripeAdapter) classifyError(req payment.AuthorizeRequest, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &payment.GatewayTimeoutError{Method: a.Method(), Err: err}
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
			code := string(stripeErr.Code)
			if stripeErr.DeclineCode != "" {
				code = string(stripeErr.DeclineCode)
			}
			return &payment.DeclinedError{
				Method: a.Method(),
				Code:   code,
				Reason: stripeErr.Msg,
			}
		case stripe.ErrorTypeAPI:
			return &payment.GatewayTimeoutError{Method: a.Method(), Err: err}
		}
	}

	return fmt.Errorf("stripe: authorize order %s: %w", req.OrderID, err)
}

var _ payment.Gateway = (*StripeAdapter)(nil)
