// Package bot turns inbound chat interactions into store operations and replies.
package bot

import (
	"context"
	"errors"
	"time"

	"eventbot/internal/model"
	"eventbot/internal/notify"
	"eventbot/internal/service"
	"eventbot/internal/session"
	"eventbot/internal/transport"
	apperrors "eventbot/pkg/app_errors"
	"eventbot/pkg/logger"

	"go.uber.org/zap"
)

const finishTimeout = 2 * time.Second

type Engine struct {
	events     service.EventService
	sessions   session.Tracker
	dispatcher notify.Dispatcher
	messenger  transport.Messenger
	admins     map[int64]struct{}
	channelID  string
	logger     *zap.Logger
}

// NewEngine wires the engine. channelID may be empty, in which case event cards
// are posted into the chat that asked for them.
func NewEngine(
	events service.EventService,
	sessions session.Tracker,
	dispatcher notify.Dispatcher,
	messenger transport.Messenger,
	adminIDs []int64,
	channelID string,
) *Engine {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Engine{
		events:     events,
		sessions:   sessions,
		dispatcher: dispatcher,
		messenger:  messenger,
		admins:     admins,
		channelID:  channelID,
		logger:     logger.WithComponent("bot"),
	}
}

func (e *Engine) IsAdmin(userID int64) bool {
	_, ok := e.admins[userID]
	return ok
}

// Handle processes one update and returns the reply to deliver, or nil for none.
// It never fails: errors become user-facing replies and operator logs.
func (e *Engine) Handle(ctx context.Context, u model.Update) *model.Reply {
	in, err := ParseInteraction(u)
	if err != nil {
		return e.fail(u, "parse", err)
	}

	e.logger.Debug("Handling interaction",
		zap.String("trace_id", u.TraceID),
		zap.String("kind", string(u.Kind)),
		zap.Int64("user_id", u.Sender.UserID),
	)

	switch in := in.(type) {
	case Command:
		return e.handleCommand(ctx, u, in)
	case ButtonCallback:
		return e.handleButton(ctx, u, in)
	case TextMessage:
		return e.handleText(ctx, u, in)
	}
	return nil
}

// respond replaces the pressed message when the update came from a button.
func respond(u model.Update, text string, kb model.Keyboard) *model.Reply {
	return &model.Reply{Text: text, Keyboard: kb, Edit: u.Kind == model.UpdateCallback}
}

// notice answers a button press with a toast, or a plain message otherwise.
func notice(u model.Update, text string) *model.Reply {
	if u.Kind == model.UpdateCallback {
		return &model.Reply{Notice: text}
	}
	return &model.Reply{Text: text}
}

func (e *Engine) refuse(u model.Update, action string) *model.Reply {
	e.logger.Info("Refused admin action",
		zap.String("trace_id", u.TraceID),
		zap.Int64("user_id", u.Sender.UserID),
		zap.String("action", action),
	)
	return notice(u, msgRefusal)
}

// fail maps an error onto the reply the user sees.
func (e *Engine) fail(u model.Update, op string, err error) *model.Reply {
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		return notice(u, msgEventNotFound)
	case errors.Is(err, apperrors.ErrInvalidInput):
		e.logger.Warn("Malformed interaction",
			zap.String("trace_id", u.TraceID),
			zap.String("op", op),
			zap.Error(err),
		)
		return notice(u, msgUnknownAction)
	}

	e.logger.Error("Interaction failed",
		zap.String("trace_id", u.TraceID),
		zap.String("op", op),
		zap.Int64("user_id", u.Sender.UserID),
		zap.Error(err),
	)
	return notice(u, msgTryLater)
}

// transition runs fn with the sender's current state while holding their session lock.
func (e *Engine) transition(ctx context.Context, u model.Update, fn func(state session.State) *model.Reply) *model.Reply {
	unlock, err := e.sessions.Lock(ctx, u.Sender.UserID)
	if err != nil {
		return e.fail(u, "session lock", err)
	}
	defer unlock()

	state, err := e.sessions.Get(ctx, u.Sender.UserID)
	if err != nil {
		return e.fail(u, "session get", err)
	}
	return fn(state)
}

// finish returns the sender to Idle after a completed flow. The flow's work is
// already done, so a failure here is only logged.
func (e *Engine) finish(ctx context.Context, u model.Update) {
	// a long fan-out may have used up the interaction deadline; the flow must still end
	clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	if err := e.sessions.Clear(clearCtx, u.Sender.UserID); err != nil {
		e.logger.Error("Failed to clear session",
			zap.String("trace_id", u.TraceID),
			zap.Int64("user_id", u.Sender.UserID),
			zap.Error(err),
		)
	}
}
