package invoicing

import (
	"context"
	"time"

	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/stretchr/testify/mock"
)

// MockInvoiceRepository is a mock implementation of invoicing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Insert(ctx context.Context, inv *invoicing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, inv *invoicing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id string) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, filter invoicing.ListFilter) (*invoicing.InvoicePage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.InvoicePage), args.Error(1)
}

// MockCustomerRepository is a mock implementation of invoicing.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) List(ctx context.Context) ([]invoicing.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicing.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *invoicing.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockViewCache is a mock implementation of shared.ViewCache
type MockViewCache struct {
	mock.Mock
}

func (m *MockViewCache) Get(ctx context.Context, path, variant string) ([]byte, bool, error) {
	args := m.Called(ctx, path, variant)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockViewCache) Generation(ctx context.Context, path string) (uint64, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockViewCache) Set(ctx context.Context, path, variant string, value []byte, ttl time.Duration, generation uint64) (bool, error) {
	args := m.Called(ctx, path, variant, value, ttl, generation)
	return args.Bool(0), args.Error(1)
}

func (m *MockViewCache) Invalidate(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockViewCache) Close() error {
	return m.Called().Error(0)
}
