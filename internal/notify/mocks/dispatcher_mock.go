package mocks

import (
	"context"

	"eventbot/internal/model"

	"github.com/stretchr/testify/mock"
)

type DispatcherMock struct {
	mock.Mock
}

func NewDispatcherMock() *DispatcherMock {
	return &DispatcherMock{}
}

func (m *DispatcherMock) Notify(ctx context.Context, eventID int64, text string) (*model.DeliveryReport, error) {
	args := m.Called(ctx, eventID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryReport), args.Error(1)
}

func (m *DispatcherMock) Probe(ctx context.Context, eventID int64) (*model.DeliveryReport, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryReport), args.Error(1)
}
