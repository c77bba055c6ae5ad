package mocks

import (
	"context"

	"roomservice/internal/domain"
	"roomservice/internal/infra/xendit"
	"roomservice/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockInvoiceClient struct {
	mock.Mock
}

type MockNotifier struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.Order, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByGuest(ctx context.Context, roomID, guestID string) ([]domain.Order, error) {
	args := m.Called(ctx, roomID, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID string, expected []domain.OrderStatus, to domain.OrderStatus, reason string) (bool, error) {
	args := m.Called(ctx, orderID, expected, to, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) MarkRoomBilled(ctx context.Context, roomID string) ([]string, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockOrderRepository) SetPaymentLink(ctx context.Context, orderID, paymentID, paymentURL, paymentMethod string) error {
	args := m.Called(ctx, orderID, paymentID, paymentURL, paymentMethod)
	return args.Error(0)
}

func (m *MockOrderRepository) ApplyPaymentStatus(ctx context.Context, externalID string, update repository.PaymentUpdate) (bool, error) {
	args := m.Called(ctx, externalID, update)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) RoomBillingSnapshot(ctx context.Context) ([]domain.RoomBillingSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoomBillingSummary), args.Error(1)
}

func (m *MockInvoiceClient) CreateInvoice(ctx context.Context, req xendit.CreateInvoiceRequest) (*xendit.Invoice, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*xendit.Invoice), args.Error(1)
}

func (m *MockInvoiceClient) GetInvoice(ctx context.Context, invoiceID string) (*xendit.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*xendit.Invoice), args.Error(1)
}

func (m *MockInvoiceClient) ExpireInvoice(ctx context.Context, invoiceID string) (*xendit.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*xendit.Invoice), args.Error(1)
}

func (m *MockNotifier) NotifyRoom(ctx context.Context, roomID string, event any) error {
	args := m.Called(ctx, roomID, event)
	return args.Error(0)
}

func (m *MockPublisher) Publish(ctx context.Context, pattern string, data any) error {
	args := m.Called(ctx, pattern, data)
	return args.Error(0)
}
