package apperrors

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidInput      = errors.New("invalid input")
	ErrEventNotFound     = errors.New("event not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrStorage           = errors.New("storage failure")
	ErrDelivery          = errors.New("delivery failed")
	ErrRecipientBlocked  = errors.New("recipient blocked the bot")
	ErrChatNotFound      = errors.New("chat not found")
	ErrChannelNotAllowed = errors.New("not enough rights to post in channel")
)
