package order

import (
	"time"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

// IsValid checks if the status is a known order status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for states with no outgoing transitions
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusFailed
}

// CanTransitionTo checks if the status can transition to the target status.
// pending -> confirmed -> processing -> shipped -> delivered, with a
// cancellation branch out of the first three states and a terminal failure
// branch out of pending.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled || target == StatusFailed
	case StatusConfirmed:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	case StatusDelivered, StatusCancelled, StatusFailed:
		return false
	}
	return false
}

// IsCancellable returns true while the customer may still cancel
func (s Status) IsCancellable() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// PaymentStatus tracks payment settlement independently of the order status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// IsValid checks if the payment status is known
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid || s == PaymentStatusFailed
}

// PaymentMethod identifies the gateway used to settle an order
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodBankCard       PaymentMethod = "bank_card"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCard || m == PaymentMethodBankCard || m == PaymentMethodCashOnDelivery
}

// Item is a line item of an order. Unit price is the catalog price at order
// time and never changes afterwards.
type Item struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID *uuid.UUID      `gorm:"type:uuid"`
	Name      string          `gorm:"size:255;not null"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// NewItem creates an order line
func NewItem(orderID, productID uuid.UUID, variantID *uuid.UUID, name string, quantity int64, unitPrice decimal.Decimal) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return &Item{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: productID,
		VariantID: variantID,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice.Mul(decimal.NewFromInt(quantity)),
		CreatedAt: time.Now(),
	}, nil
}

// Order is the aggregate root for a customer order. Status and payment
// status are mutated only through the transition methods below; every legal
// transition emits a domain event for the outbox.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string              `gorm:"size:50;not null;uniqueIndex"`
	CustomerID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status          Status              `gorm:"size:20;not null;index"`
	PaymentStatus   PaymentStatus       `gorm:"size:20;not null"`
	PaymentMethod   PaymentMethod       `gorm:"size:30;not null"`
	CouponCode      *string             `gorm:"size:50"`
	Subtotal        decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Tax             decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Shipping        decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Discount        decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Total           decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	ShippingAddress valueobject.Address `gorm:"type:jsonb"`
	Notes           string              `gorm:"type:text"`
	TransactionID   string              `gorm:"size:100"`
	CancelReason    string              `gorm:"size:255"`
	ConfirmedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	Items           []Item `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// Totals bundles the monetary breakdown an order is created with
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// NewOrder creates an order in pending/pending with its items. The totals
// invariant total == subtotal + tax + shipping - discount (floored at zero)
// is enforced here; callers compute totals through the pricing engine.
func NewOrder(orderNumber string, customerID uuid.UUID, method PaymentMethod, address valueobject.Address, totals Totals, couponCode *string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unsupported payment method")
	}
	if err := address.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	if totals.Total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Order total cannot be negative")
	}

	expected := totals.Subtotal.Add(totals.Tax).Add(totals.Shipping).Sub(totals.Discount)
	if expected.IsNegative() {
		expected = decimal.Zero
	}
	if !expected.Equal(totals.Total) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Order total does not match its breakdown")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		Status:            StatusPending,
		PaymentStatus:     PaymentStatusPending,
		PaymentMethod:     method,
		CouponCode:        couponCode,
		Subtotal:          totals.Subtotal,
		Tax:               totals.Tax,
		Shipping:          totals.Shipping,
		Discount:          totals.Discount,
		Total:             totals.Total,
		ShippingAddress:   address,
		Items:             make([]Item, 0),
	}

	return o, nil
}

// AddItem appends a line to a freshly created order. Items are immutable
// once the order is persisted.
func (o *Order) AddItem(productID uuid.UUID, variantID *uuid.UUID, name string, quantity int64, unitPrice decimal.Decimal) (*Item, error) {
	if o.Status != StatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to an order past creation")
	}
	item, err := NewItem(o.ID, productID, variantID, name, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	return &o.Items[len(o.Items)-1], nil
}

// transition moves the order to the target status or returns a
// StateConflictError without mutating anything.
func (o *Order) transition(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return &StateConflictError{From: o.Status, To: target}
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// MarkPaid records a successful payment authorization and confirms the
// order. A paid payment status is required before confirmed, so both move
// together here.
func (o *Order) MarkPaid(transactionID string) error {
	if o.PaymentStatus != PaymentStatusPending {
		return shared.NewDomainError("PAYMENT_ALREADY_SETTLED", "Payment has already been settled for this order")
	}
	if err := o.transition(StatusConfirmed); err != nil {
		return err
	}
	now := time.Now()
	o.PaymentStatus = PaymentStatusPaid
	o.TransactionID = transactionID
	o.ConfirmedAt = &now
	o.AddDomainEvent(NewConfirmedEvent(o))
	return nil
}

// MarkPaymentFailed records a terminal payment decline. The order moves to
// failed; the customer sees a failed order, not a vanished one.
func (o *Order) MarkPaymentFailed(reason string) error {
	if o.PaymentStatus != PaymentStatusPending {
		return shared.NewDomainError("PAYMENT_ALREADY_SETTLED", "Payment has already been settled for this order")
	}
	if err := o.transition(StatusFailed); err != nil {
		return err
	}
	o.PaymentStatus = PaymentStatusFailed
	o.Notes = reason
	o.AddDomainEvent(NewPaymentFailedEvent(o, reason))
	return nil
}

// StartProcessing moves a confirmed order into fulfillment
func (o *Order) StartProcessing() error {
	if err := o.transition(StatusProcessing); err != nil {
		return err
	}
	o.AddDomainEvent(NewProcessingEvent(o))
	return nil
}

// Ship marks the order as handed to the carrier. After this point only
// status, payment status and notes may change.
func (o *Order) Ship() error {
	if err := o.transition(StatusShipped); err != nil {
		return err
	}
	now := time.Now()
	o.ShippedAt = &now
	o.AddDomainEvent(NewShippedEvent(o))
	return nil
}

// Deliver marks the order as received by the customer
func (o *Order) Deliver() error {
	if err := o.transition(StatusDelivered); err != nil {
		return err
	}
	now := time.Now()
	o.DeliveredAt = &now
	o.AddDomainEvent(NewDeliveredEvent(o))
	return nil
}

// Cancel cancels the order with a reason. Permitted only from pending,
// confirmed or processing. When the order was already paid a refund-intent
// event is emitted for the payment subsystem; refund execution is
// asynchronous and outside this aggregate.
func (o *Order) Cancel(reason string) error {
	wasPaid := o.PaymentStatus == PaymentStatusPaid
	if err := o.transition(StatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	o.CancelReason = reason
	o.CancelledAt = &now
	o.AddDomainEvent(NewCancelledEvent(o, reason))
	if wasPaid {
		o.AddDomainEvent(NewRefundRequestedEvent(o))
	}
	return nil
}

// SetNotes updates the free-form notes field
func (o *Order) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
}
