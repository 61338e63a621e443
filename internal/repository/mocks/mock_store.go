package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"portfolioapi/internal/repository"
)

type MockStore[T any] struct {
	mock.Mock
}

var _ repository.Store[struct{}] = (*MockStore[struct{}])(nil)

func (m *MockStore[T]) Create(ctx context.Context, item *T) (*T, error) {
	args := m.Called(ctx, item)
	if f, ok := args.Get(0).(func(*T) *T); ok {
		return f(item), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockStore[T]) FindByID(ctx context.Context, id string) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockStore[T]) FindOne(ctx context.Context, f repository.Filter) (*T, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockStore[T]) List(ctx context.Context, f repository.Filter, pq repository.PageQuery) (*repository.PageResult[T], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[T]), args.Error(1)
}

func (m *MockStore[T]) FindAll(ctx context.Context, f repository.Filter) ([]T, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockStore[T]) Update(ctx context.Context, id string, set repository.Fields) (*T, error) {
	args := m.Called(ctx, id, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockStore[T]) UpdateMany(ctx context.Context, f repository.Filter, set repository.Fields) (int, error) {
	args := m.Called(ctx, f, set)
	return args.Int(0), args.Error(1)
}

func (m *MockStore[T]) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore[T]) DeleteMany(ctx context.Context, f repository.Filter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockStore[T]) Count(ctx context.Context, f repository.Filter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}
