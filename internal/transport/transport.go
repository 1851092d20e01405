// Package transport is the contract between the bot and the chat platform.
package transport

import (
	"context"

	"eventbot/internal/model"
)

// Messenger delivers outgoing messages.
//
// Implementations map platform failures onto apperrors: a recipient that blocked
// the bot or never opened a chat yields ErrRecipientBlocked, an unknown chat
// ErrChatNotFound, a channel the bot cannot post to ErrChannelNotAllowed.
type Messenger interface {
	// Send writes a private message and returns its message id.
	Send(ctx context.Context, chatID int64, msg model.OutgoingMessage) (int, error)
	// Post publishes to a channel addressed by @name or numeric id.
	Post(ctx context.Context, channel string, msg model.OutgoingMessage) (int, error)
	// Answer acknowledges a button press with a short notice.
	Answer(ctx context.Context, callbackID, text string) error
	// Edit replaces the text and keyboard of a message the bot sent earlier.
	Edit(ctx context.Context, chatID int64, messageID int, msg model.OutgoingMessage) error
}
