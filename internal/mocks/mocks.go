package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/phenrril/sheetstore/internal/domain"
)

type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) Fetch(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

type MockTableSource struct {
	mock.Mock
}

func (m *MockTableSource) FetchTable(ctx context.Context) (domain.Table, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Table), args.Error(1)
}

type MockOrderSink struct {
	mock.Mock
}

func (m *MockOrderSink) Send(ctx context.Context, o domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderSubmitted(ctx context.Context, o domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockCatalogCache struct {
	mock.Mock
}

func (m *MockCatalogCache) Get(ctx context.Context) ([]domain.Product, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]domain.Product), args.Bool(1)
}

func (m *MockCatalogCache) Set(ctx context.Context, products []domain.Product, ttl time.Duration) {
	m.Called(ctx, products, ttl)
}
