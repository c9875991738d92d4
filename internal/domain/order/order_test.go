package order

import (
	"testing"

	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress() valueobject.Address {
	addr, err := valueobject.NewAddress("Ayşe Yılmaz", "Atatürk Cad. 15", "Istanbul", "TR")
	if err != nil {
		panic(err)
	}
	return addr
}

func testTotals() Totals {
	return Totals{
		Subtotal: decimal.NewFromInt(100),
		Tax:      decimal.NewFromInt(18),
		Shipping: decimal.NewFromInt(25),
		Discount: decimal.Zero,
		Total:    decimal.NewFromInt(143),
	}
}

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("ORD-20260101-0001", uuid.New(), PaymentMethodCard, testAddress(), testTotals(), nil)
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("creates a pending order", func(t *testing.T) {
		customerID := uuid.New()
		o, err := NewOrder("ORD-20260101-0001", customerID, PaymentMethodCard, testAddress(), testTotals(), nil)
		require.NoError(t, err)

		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
		assert.Equal(t, customerID, o.CustomerID)
		assert.NotEmpty(t, o.ID)
		assert.Empty(t, o.Items)
	})

	t.Run("fails with empty order number", func(t *testing.T) {
		_, err := NewOrder("", uuid.New(), PaymentMethodCard, testAddress(), testTotals(), nil)
		require.Error(t, err)
	})

	t.Run("fails with nil customer", func(t *testing.T) {
		_, err := NewOrder("ORD-1", uuid.Nil, PaymentMethodCard, testAddress(), testTotals(), nil)
		require.Error(t, err)
	})

	t.Run("fails with unsupported payment method", func(t *testing.T) {
		_, err := NewOrder("ORD-1", uuid.New(), PaymentMethod("barter"), testAddress(), testTotals(), nil)
		require.Error(t, err)
	})

	t.Run("fails with invalid address", func(t *testing.T) {
		_, err := NewOrder("ORD-1", uuid.New(), PaymentMethodCard, valueobject.Address{}, testTotals(), nil)
		require.Error(t, err)
	})

	t.Run("fails when the total disagrees with its breakdown", func(t *testing.T) {
		totals := testTotals()
		totals.Total = decimal.NewFromInt(999)
		_, err := NewOrder("ORD-1", uuid.New(), PaymentMethodCard, testAddress(), totals, nil)
		require.Error(t, err)
	})

	t.Run("accepts a discount floored total", func(t *testing.T) {
		totals := Totals{
			Subtotal: decimal.NewFromInt(10),
			Tax:      decimal.NewFromInt(2),
			Shipping: decimal.NewFromInt(25),
			Discount: decimal.NewFromInt(100),
			Total:    decimal.Zero,
		}
		_, err := NewOrder("ORD-1", uuid.New(), PaymentMethodCard, testAddress(), totals, nil)
		require.NoError(t, err)
	})
}

func TestStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusShipped, false},
		{StatusConfirmed, StatusProcessing, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusConfirmed, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusFailed, StatusPending, false},
	}

	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		assert.Equal(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())

	assert.True(t, StatusPending.IsCancellable())
	assert.True(t, StatusConfirmed.IsCancellable())
	assert.True(t, StatusProcessing.IsCancellable())
	assert.False(t, StatusShipped.IsCancellable())

	assert.True(t, StatusPending.IsValid())
	assert.False(t, Status("unknown").IsValid())
}

func TestOrderMarkPaid(t *testing.T) {
	t.Run("confirms the order and records the transaction", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkPaid("txn_123"))

		assert.Equal(t, StatusConfirmed, o.Status)
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
		assert.Equal(t, "txn_123", o.TransactionID)
		require.NotNil(t, o.ConfirmedAt)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeConfirmed, events[0].EventType())
	})

	t.Run("rejects a second settlement", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkPaid("txn_123"))
		require.Error(t, o.MarkPaid("txn_456"))
		assert.Equal(t, "txn_123", o.TransactionID)
	})
}

func TestOrderMarkPaymentFailed(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.MarkPaymentFailed("card declined"))

	assert.Equal(t, StatusFailed, o.Status)
	assert.Equal(t, PaymentStatusFailed, o.PaymentStatus)

	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypePaymentFailed, events[0].EventType())

	t.Run("is terminal", func(t *testing.T) {
		require.Error(t, o.MarkPaid("txn_123"))
		require.Error(t, o.Cancel("changed my mind"))
	})
}

func TestOrderFulfillment(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.MarkPaid("txn_123"))
	require.NoError(t, o.StartProcessing())
	require.NoError(t, o.Ship())
	require.NoError(t, o.Deliver())

	assert.Equal(t, StatusDelivered, o.Status)
	require.NotNil(t, o.ShippedAt)
	require.NotNil(t, o.DeliveredAt)

	types := make([]string, 0)
	for _, e := range o.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{
		EventTypeConfirmed,
		EventTypeProcessing,
		EventTypeShipped,
		EventTypeDelivered,
	}, types)

	t.Run("delivered is terminal", func(t *testing.T) {
		require.Error(t, o.Cancel("too late"))
	})
}

func TestOrderCancel(t *testing.T) {
	t.Run("cancels a pending order", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Cancel("changed my mind"))

		assert.Equal(t, StatusCancelled, o.Status)
		assert.Equal(t, "changed my mind", o.CancelReason)
		require.NotNil(t, o.CancelledAt)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeCancelled, events[0].EventType())
	})

	t.Run("emits a refund intent when the order was paid", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkPaid("txn_123"))
		o.ClearDomainEvents()

		require.NoError(t, o.Cancel("wrong size"))

		types := make([]string, 0)
		for _, e := range o.GetDomainEvents() {
			types = append(types, e.EventType())
		}
		assert.Equal(t, []string{EventTypeCancelled, EventTypeRefundRequested}, types)
	})

	t.Run("rejects cancellation after shipping", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkPaid("txn_123"))
		require.NoError(t, o.StartProcessing())
		require.NoError(t, o.Ship())

		err := o.Cancel("too late")
		require.Error(t, err)

		var conflict *StateConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, StatusShipped, conflict.From)
		assert.Equal(t, StatusCancelled, conflict.To)
		assert.Equal(t, StatusShipped, o.Status)
	})
}

func TestOrderAddItem(t *testing.T) {
	t.Run("adds a line to a pending order", func(t *testing.T) {
		o := newTestOrder(t)
		item, err := o.AddItem(uuid.New(), nil, "Kettle", 2, decimal.NewFromInt(50))
		require.NoError(t, err)

		assert.Equal(t, o.ID, item.OrderID)
		assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(100)))
		assert.Len(t, o.Items, 1)
	})

	t.Run("rejects items once the order left pending", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkPaid("txn_123"))

		_, err := o.AddItem(uuid.New(), nil, "Kettle", 1, decimal.NewFromInt(50))
		require.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		o := newTestOrder(t)
		_, err := o.AddItem(uuid.New(), nil, "Kettle", 0, decimal.NewFromInt(50))
		require.Error(t, err)
	})
}
