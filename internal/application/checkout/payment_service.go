package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commerce/backend/internal/domain/inventory"
	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/payment"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

const defaultPaymentTimeout = 15 * time.Second

// PaymentService settles pending orders. The gateway call runs outside any
// database transaction: holding row locks across an external network call
// would serialize the whole checkout table on the processor's latency.
type PaymentService struct {
	scope    TransactionScope
	gateways payment.Registry
	notifier NotificationPort
	metrics  Metrics
	timeout  time.Duration
	logger   *zap.Logger
}

// NewPaymentService creates a payment service. timeout bounds the gateway
// call; zero selects the default.
func NewPaymentService(
	scope TransactionScope,
	gateways payment.Registry,
	notifier NotificationPort,
	metrics Metrics,
	timeout time.Duration,
	logger *zap.Logger,
) *PaymentService {
	if timeout <= 0 {
		timeout = defaultPaymentTimeout
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &PaymentService{
		scope:    scope,
		gateways: gateways,
		notifier: notifier,
		metrics:  metrics,
		timeout:  timeout,
		logger:   logger,
	}
}

// ProcessPayment authorizes payment for a pending order.
//
// Success confirms the order and writes the order.confirmed event. A
// definitive decline fails the order terminally and releases its stock. A
// gateway timeout leaves the order untouched so the customer may retry:
// the charge outcome is unknown and only the processor can say.
func (s *PaymentService) ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*PaymentResponse, error) {
	snapshot, err := s.loadPayable(ctx, input)
	if err != nil {
		return nil, err
	}

	gateway, err := s.gateways.Gateway(snapshot.PaymentMethod)
	if err != nil {
		return nil, err
	}

	amount, err := valueobject.NewMoney(snapshot.Total, valueobject.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	authCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	result, err := gateway.Authorize(authCtx, payment.AuthorizeRequest{
		OrderID:     snapshot.ID,
		OrderNumber: snapshot.OrderNumber,
		CustomerID:  snapshot.CustomerID,
		Amount:      amount,
		CardToken:   input.CardToken,
	})
	if err != nil {
		return s.handleAuthorizeError(ctx, input, snapshot, err)
	}

	resp, err := s.confirm(ctx, input, result)
	if err != nil {
		// The charge went through but our own commit failed. The order is
		// still pending/pending; a retried ProcessPayment must not charge
		// again, which is why this is logged at error level for follow-up.
		s.logger.Error("payment authorized but order confirmation failed",
			zap.String("order_id", input.OrderID.String()),
			zap.String("transaction_id", result.TransactionID),
			zap.Error(err))
		return nil, err
	}

	s.metrics.PaymentProcessed(ctx, string(snapshot.PaymentMethod), "succeeded")
	s.notify(snapshot)
	s.logger.Info("payment succeeded",
		zap.String("order_id", input.OrderID.String()),
		zap.String("transaction_id", result.TransactionID))
	return resp, nil
}

// loadPayable fetches the order and verifies it still awaits payment
func (s *PaymentService) loadPayable(ctx context.Context, input ProcessPaymentInput) (*OrderResponse, error) {
	var snapshot *OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if o.PaymentStatus != order.PaymentStatusPending {
			return shared.NewDomainError("PAYMENT_ALREADY_SETTLED", "Payment has already been settled for this order")
		}
		if o.Status != order.StatusPending {
			return &order.StateConflictError{From: o.Status, To: order.StatusConfirmed}
		}
		r := ToOrderResponse(o)
		snapshot = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *PaymentService) handleAuthorizeError(ctx context.Context, input ProcessPaymentInput, snapshot *OrderResponse, err error) (*PaymentResponse, error) {
	var declined *payment.DeclinedError
	if errors.As(err, &declined) {
		if _, failErr := s.failTerminally(ctx, input, declined.Reason); failErr != nil {
			return nil, failErr
		}
		s.metrics.PaymentProcessed(ctx, string(snapshot.PaymentMethod), "declined")
		s.logger.Warn("payment declined",
			zap.String("order_id", input.OrderID.String()),
			zap.String("code", declined.Code),
			zap.String("reason", declined.Reason))
		return nil, declined
	}

	var timeout *payment.GatewayTimeoutError
	if errors.As(err, &timeout) || errors.Is(err, context.DeadlineExceeded) {
		if timeout == nil {
			timeout = &payment.GatewayTimeoutError{Method: snapshot.PaymentMethod, Err: err}
		}
		s.metrics.PaymentProcessed(ctx, string(snapshot.PaymentMethod), "timeout")
		s.logger.Warn("payment gateway timed out, order left payable",
			zap.String("order_id", input.OrderID.String()),
			zap.Error(err))
		return nil, timeout
	}

	return nil, fmt.Errorf("authorize payment for order %s: %w", input.OrderID, err)
}

// failTerminally moves the order to failed, releases its stock and writes
// the payment_failed event, all in one transaction.
func (s *PaymentService) failTerminally(ctx context.Context, input ProcessPaymentInput, reason string) (*PaymentResponse, error) {
	var resp *PaymentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if err := o.MarkPaymentFailed(reason); err != nil {
			return err
		}

		ledger := inventory.NewStockLedger(repos.Products(), repos.Ledger())
		if err := ledger.Release(ctx, o.ID); err != nil {
			return err
		}

		if err := repos.Orders().SaveWithEvents(ctx, o); err != nil {
			return err
		}
		resp = &PaymentResponse{
			OrderID:       o.ID,
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *PaymentService) confirm(ctx context.Context, input ProcessPaymentInput, result *payment.Result) (*PaymentResponse, error) {
	var resp *PaymentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if err := o.MarkPaid(result.TransactionID); err != nil {
			return err
		}
		if err := repos.Orders().SaveWithEvents(ctx, o); err != nil {
			return err
		}
		resp = &PaymentResponse{
			OrderID:       o.ID,
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			TransactionID: o.TransactionID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// notify sends the confirmation without blocking the payment response
func (s *PaymentService) notify(snapshot *OrderResponse) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.notifier.OrderConfirmed(ctx, OrderConfirmation{
			OrderID:     snapshot.ID,
			OrderNumber: snapshot.OrderNumber,
			CustomerID:  snapshot.CustomerID,
			Total:       snapshot.Total,
		}); err != nil {
			s.logger.Warn("order confirmation notification failed",
				zap.String("order_id", snapshot.ID.String()),
				zap.Error(err))
		}
	}()
}
