package mocks

import (
	"context"

	"eventbot/internal/model"

	"github.com/stretchr/testify/mock"
)

type MessengerMock struct {
	mock.Mock
}

func NewMessengerMock() *MessengerMock {
	return &MessengerMock{}
}

func (m *MessengerMock) Send(ctx context.Context, chatID int64, msg model.OutgoingMessage) (int, error) {
	args := m.Called(ctx, chatID, msg)
	return args.Int(0), args.Error(1)
}

func (m *MessengerMock) Post(ctx context.Context, channel string, msg model.OutgoingMessage) (int, error) {
	args := m.Called(ctx, channel, msg)
	return args.Int(0), args.Error(1)
}

func (m *MessengerMock) Answer(ctx context.Context, callbackID, text string) error {
	args := m.Called(ctx, callbackID, text)
	return args.Error(0)
}

func (m *MessengerMock) Edit(ctx context.Context, chatID int64, messageID int, msg model.OutgoingMessage) error {
	args := m.Called(ctx, chatID, messageID, msg)
	return args.Error(0)
}
