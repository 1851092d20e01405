package mocks

import (
	"context"

	"eventbot/internal/model"

	"github.com/stretchr/testify/mock"
)

type EventServiceMock struct {
	mock.Mock
}

func NewEventServiceMock() *EventServiceMock {
	return &EventServiceMock{}
}

func (m *EventServiceMock) CreateEvent(ctx context.Context, title, description, date string) (*model.Event, error) {
	args := m.Called(ctx, title, description, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) GetActiveEvents(ctx context.Context) ([]*model.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *EventServiceMock) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) ListEventsWithCounts(ctx context.Context, activeOnly bool) ([]*model.EventSummary, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EventSummary), args.Error(1)
}

func (m *EventServiceMock) DeactivateEvent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *EventServiceMock) RegisterUser(ctx context.Context, eventID int64, user model.Participant) (bool, error) {
	args := m.Called(ctx, eventID, user)
	return args.Bool(0), args.Error(1)
}

func (m *EventServiceMock) GetRegistrations(ctx context.Context, eventID int64) ([]*model.Registration, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Registration), args.Error(1)
}

func (m *EventServiceMock) RecordRsvp(ctx context.Context, eventID int64, user model.Participant, response model.RsvpAnswer) (*model.RsvpResult, error) {
	args := m.Called(ctx, eventID, user, response)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RsvpResult), args.Error(1)
}

func (m *EventServiceMock) GetRsvpCounts(ctx context.Context, eventID int64) (model.RsvpCounts, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(model.RsvpCounts), args.Error(1)
}

func (m *EventServiceMock) GetRsvpResponses(ctx context.Context, eventID int64) ([]*model.RsvpResponse, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RsvpResponse), args.Error(1)
}
