package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/commerce/backend/internal/domain/inventory"
	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/payment"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// channelNotifier records confirmations so tests can wait for the
// fire-and-forget notification goroutine.
type channelNotifier struct {
	confirmed chan OrderConfirmation
}

func newChannelNotifier() *channelNotifier {
	return &channelNotifier{confirmed: make(chan OrderConfirmation, 1)}
}

func (n *channelNotifier) OrderConfirmed(_ context.Context, confirmation OrderConfirmation) error {
	n.confirmed <- confirmation
	return nil
}

type paymentFixture struct {
	orders   *MockOrderRepository
	ledger   *MockLedgerRepository
	products *MockCatalogReader
	registry *MockRegistry
	gateway  *MockGateway
	notifier *channelNotifier
	service  *PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		orders:   new(MockOrderRepository),
		ledger:   new(MockLedgerRepository),
		products: new(MockCatalogReader),
		registry: new(MockRegistry),
		gateway:  &MockGateway{method: order.PaymentMethodCard},
		notifier: newChannelNotifier(),
	}
	scope := NewNoOpTransactionScope(f.orders, new(MockCartRepository), f.ledger, f.products, new(MockCouponRepository))
	f.service = NewPaymentService(scope, f.registry, f.notifier, nil, time.Second, zap.NewNop())
	return f
}

func payableOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder("ORD-20260101-0020", uuid.New(), order.PaymentMethodCard, shippingAddress(), order.Totals{
		Subtotal: decimal.NewFromInt(100),
		Tax:      decimal.NewFromInt(18),
		Shipping: decimal.NewFromInt(25),
		Discount: decimal.Zero,
		Total:    decimal.NewFromInt(143),
	}, nil)
	require.NoError(t, err)
	return o
}

func TestPaymentServiceProcessPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms the order on successful authorization", func(t *testing.T) {
		f := newPaymentFixture()
		o := payableOrder(t)

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("FindByIDForUpdate", ctx, o.ID).Return(o, nil)
		f.registry.On("Gateway", order.PaymentMethodCard).Return(f.gateway, nil)
		f.gateway.On("Authorize", mock.Anything, mock.MatchedBy(func(req payment.AuthorizeRequest) bool {
			return req.OrderID == o.ID &&
				req.Amount.Currency() == valueobject.DefaultCurrency &&
				req.Amount.Amount().Equal(o.Total)
		})).Return(&payment.Result{TransactionID: "txn_abc", Method: order.PaymentMethodCard}, nil)
		f.orders.On("SaveWithEvents", ctx, o).Return(nil)

		resp, err := f.service.ProcessPayment(ctx, ProcessPaymentInput{OrderID: o.ID, CardToken: "tok_visa"})
		require.NoError(t, err)

		assert.Equal(t, order.StatusConfirmed, resp.Status)
		assert.Equal(t, order.PaymentStatusPaid, resp.PaymentStatus)
		assert.Equal(t, "txn_abc", resp.TransactionID)

		select {
		case confirmation := <-f.notifier.confirmed:
			assert.Equal(t, o.ID, confirmation.OrderID)
			assert.Equal(t, o.OrderNumber, confirmation.OrderNumber)
		case <-time.After(time.Second):
			t.Fatal("confirmation notification never arrived")
		}
	})

	t.Run("fails the order terminally on a decline", func(t *testing.T) {
		f := newPaymentFixture()
		o := payableOrder(t)
		reserve := inventory.NewReserveEntry(uuid.New(), o.ID, 2)

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("FindByIDForUpdate", ctx, o.ID).Return(o, nil)
		f.registry.On("Gateway", order.PaymentMethodCard).Return(f.gateway, nil)
		f.gateway.On("Authorize", mock.Anything, mock.Anything).
			Return(nil, &payment.DeclinedError{Method: order.PaymentMethodCard, Code: "card_declined", Reason: "insufficient funds"})
		f.ledger.On("ExistsForOrder", ctx, o.ID, inventory.ReasonRelease).Return(false, nil)
		f.ledger.On("FindByOrder", ctx, o.ID).Return([]*inventory.LedgerEntry{reserve}, nil)
		f.ledger.On("Create", ctx, mock.Anything).Return(nil)
		f.orders.On("SaveWithEvents", ctx, o).Return(nil)

		_, err := f.service.ProcessPayment(ctx, ProcessPaymentInput{OrderID: o.ID, CardToken: "tok_bad"})

		var declined *payment.DeclinedError
		require.ErrorAs(t, err, &declined)
		assert.Equal(t, "card_declined", declined.Code)

		assert.Equal(t, order.StatusFailed, o.Status)
		assert.Equal(t, order.PaymentStatusFailed, o.PaymentStatus)
		f.ledger.AssertCalled(t, "Create", ctx, mock.Anything)
		// The release runs over the locked order row, never the plain read.
		f.orders.AssertCalled(t, "FindByIDForUpdate", ctx, o.ID)
	})

	t.Run("leaves the order payable on a gateway timeout", func(t *testing.T) {
		f := newPaymentFixture()
		o := payableOrder(t)

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.registry.On("Gateway", order.PaymentMethodCard).Return(f.gateway, nil)
		f.gateway.On("Authorize", mock.Anything, mock.Anything).
			Return(nil, &payment.GatewayTimeoutError{Method: order.PaymentMethodCard, Err: context.DeadlineExceeded})

		_, err := f.service.ProcessPayment(ctx, ProcessPaymentInput{OrderID: o.ID, CardToken: "tok_slow"})

		var timeout *payment.GatewayTimeoutError
		require.ErrorAs(t, err, &timeout)

		assert.Equal(t, order.StatusPending, o.Status)
		assert.Equal(t, order.PaymentStatusPending, o.PaymentStatus)
		f.orders.AssertNotCalled(t, "SaveWithEvents", mock.Anything, mock.Anything)
		f.ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("wraps a bare deadline expiry as a timeout", func(t *testing.T) {
		f := newPaymentFixture()
		o := payableOrder(t)

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.registry.On("Gateway", order.PaymentMethodCard).Return(f.gateway, nil)
		f.gateway.On("Authorize", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

		_, err := f.service.ProcessPayment(ctx, ProcessPaymentInput{OrderID: o.ID})

		var timeout *payment.GatewayTimeoutError
		require.ErrorAs(t, err, &timeout)
		assert.Equal(t, order.StatusPending, o.Status)
	})

	t.Run("rejects an already settled order before touching the gateway", func(t *testing.T) {
		f := newPaymentFixture()
		o := payableOrder(t)
		require.NoError(t, o.MarkPaid("txn_first"))

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.service.ProcessPayment(ctx, ProcessPaymentInput{OrderID: o.ID})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PAYMENT_ALREADY_SETTLED", domainErr.Code)
		f.registry.AssertNotCalled(t, "Gateway", mock.Anything)
	})

	t.Run("rejects an order that is no longer pending", func(t *testing.T) {
		f := newPaymentFixture()
		o := payableOrder(t)
		require.NoError(t, o.Cancel("customer cancelled"))

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.service.ProcessPayment(ctx, ProcessPaymentInput{OrderID: o.ID})
		require.Error(t, err)
		f.registry.AssertNotCalled(t, "Gateway", mock.Anything)
	})

	t.Run("propagates an unsupported payment method", func(t *testing.T) {
		f := newPaymentFixture()
		o := payableOrder(t)
		unsupported := shared.NewDomainError("UNSUPPORTED_PAYMENT_METHOD", "No gateway for this method")

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.registry.On("Gateway", order.PaymentMethodCard).Return(nil, unsupported)

		_, err := f.service.ProcessPayment(ctx, ProcessPaymentInput{OrderID: o.ID})
		require.ErrorIs(t, err, unsupported)
	})

	t.Run("surfaces unexpected gateway errors verbatim", func(t *testing.T) {
		f := newPaymentFixture()
		o := payableOrder(t)
		boom := errors.New("tls handshake failed")

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.registry.On("Gateway", order.PaymentMethodCard).Return(f.gateway, nil)
		f.gateway.On("Authorize", mock.Anything, mock.Anything).Return(nil, boom)

		_, err := f.service.ProcessPayment(ctx, ProcessPaymentInput{OrderID: o.ID})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, order.StatusPending, o.Status, "unknown failures never fail the order")
	})
}
