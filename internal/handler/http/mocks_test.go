package http_test

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/vasiliy-maslov/marketfresh/internal/cart"
	"github.com/vasiliy-maslov/marketfresh/internal/coldchain"
	"github.com/vasiliy-maslov/marketfresh/internal/order"
	"github.com/vasiliy-maslov/marketfresh/internal/payment"
	"github.com/vasiliy-maslov/marketfresh/internal/product"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListProducts(ctx context.Context, filter product.Filter) ([]product.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) SeedIfEmpty(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) CreateCart(ctx context.Context) (*cart.Cart, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) SetItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, cartID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartService) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	args := m.Called(ctx, cartID, productID)
	return args.Error(0)
}

type MockColdChainService struct {
	mock.Mock
}

func (m *MockColdChainService) ComputeForCart(ctx context.Context, cartID uuid.UUID) (*coldchain.Summary, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coldchain.Summary), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, in order.CreateInput) (*order.Order, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateIntent(ctx context.Context, orderID uuid.UUID) (*payment.Intent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockPaymentService) ConfirmIntent(ctx context.Context, intentID uuid.UUID) (*payment.Intent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}
