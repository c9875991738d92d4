package checkout

import (
	"context"
	"time"

	"github.com/commerce/backend/internal/domain/cart"
	"github.com/commerce/backend/internal/domain/catalog"
	"github.com/commerce/backend/internal/domain/inventory"
	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/payment"
	"github.com/commerce/backend/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*order.Order, error) {
	args := m.Called(ctx, customerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) SaveWithEvents(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// MockCartRepository is a mock implementation of cart.Repository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) FindOrCreateByCustomer(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of inventory.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entries ...*inventory.LedgerEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockLedgerRepository) SumByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*inventory.LedgerEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ExistsForOrder(ctx context.Context, orderID uuid.UUID, reason inventory.Reason) (bool, error) {
	args := m.Called(ctx, orderID, reason)
	return args.Bool(0), args.Error(1)
}

// MockCatalogReader is a mock implementation of catalog.Reader
type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) GetProduct(ctx context.Context, productID uuid.UUID) (*catalog.ProductInfo, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductInfo), args.Error(1)
}

func (m *MockCatalogReader) GetProductForUpdate(ctx context.Context, productID uuid.UUID) (*catalog.ProductInfo, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductInfo), args.Error(1)
}

// MockCouponRepository is a mock implementation of pricing.CouponRepository
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) FindByCode(ctx context.Context, code string) (*pricing.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Coupon), args.Error(1)
}

func (m *MockCouponRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNumberGenerator is a mock implementation of order.NumberGenerator
type MockNumberGenerator struct {
	mock.Mock
}

func (m *MockNumberGenerator) Next(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Begin(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) StoreResult(ctx context.Context, key, result string, ttl time.Duration) error {
	args := m.Called(ctx, key, result, ttl)
	return args.Error(0)
}

func (m *MockIdempotencyStore) GetResult(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockGateway is a mock implementation of payment.Gateway
type MockGateway struct {
	mock.Mock
	method order.PaymentMethod
}

func (m *MockGateway) Method() order.PaymentMethod {
	return m.method
}

func (m *MockGateway) Authorize(ctx context.Context, req payment.AuthorizeRequest) (*payment.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Result), args.Error(1)
}

// MockRegistry is a mock implementation of payment.Registry
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Gateway(method order.PaymentMethod) (payment.Gateway, error) {
	args := m.Called(method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(payment.Gateway), args.Error(1)
}

// MockNotifier is a mock implementation of NotificationPort
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderConfirmed(ctx context.Context, confirmation OrderConfirmation) error {
	args := m.Called(ctx, confirmation)
	return args.Error(0)
}
