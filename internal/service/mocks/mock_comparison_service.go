package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"doccompare/internal/model"
)

type MockComparisonService struct {
	mock.Mock
}

func (m *MockComparisonService) Compare(ctx context.Context, doc1Text, doc2Text string) (*model.ComparisonResult, error) {
	args := m.Called(ctx, doc1Text, doc2Text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ComparisonResult), args.Error(1)
}
