package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockRateLimitRepository struct {
	mock.Mock
}

func (m *MockRateLimitRepository) Increment(ctx context.Context, key string, ceiling int64, expiresAt time.Time) (int64, bool, error) {
	args := m.Called(ctx, key, ceiling, expiresAt)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockRateLimitRepository) Count(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRateLimitRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
