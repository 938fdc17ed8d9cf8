package cachemanager

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockCacheManager[K ~string, V any] struct {
	mock.Mock
}

func newMockCacheManager[K ~string, V any](t interface {
	mock.TestingT
	Cleanup(func())
}) *mockCacheManager[K, V] {
	m := &mockCacheManager[K, V]{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	args := m.Called(ctx, key)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager[K, V]) Delete(ctx context.Context, keys ...K) {
	m.Called(ctx, keys)
}

func (m *mockCacheManager[K, V]) Flush(ctx context.Context) {
	m.Called(ctx)
}

func (m *mockCacheManager[K, V]) Len() int {
	return m.Called().Int(0)
}
