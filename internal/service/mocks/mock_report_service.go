package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"doccompare/internal/model"
	"doccompare/internal/report"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Render(ctx context.Context, req model.ReportRequest) (*report.Document, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Document), args.Error(1)
}

func (m *MockReportService) Publish(ctx context.Context, req model.ReportRequest) (*model.PublishedReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublishedReport), args.Error(1)
}
