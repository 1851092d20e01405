package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventbot/internal/model"
	"eventbot/internal/render"
	"eventbot/internal/session"
	apperrors "eventbot/pkg/app_errors"
)

func (e *Engine) startCreate(ctx context.Context, u model.Update) *model.Reply {
	return e.transition(ctx, u, func(session.State) *model.Reply {
		if err := e.sessions.Set(ctx, u.Sender.UserID, session.AwaitingEventTitle{}); err != nil {
			return e.fail(u, "start create", err)
		}
		return respond(u, promptTitle, render.CancelKeyboard())
	})
}

func (e *Engine) startNotify(ctx context.Context, u model.Update, eventID int64) *model.Reply {
	event, err := e.events.GetEvent(ctx, eventID)
	if err != nil {
		return e.fail(u, "start notify", err)
	}
	if !event.IsActive {
		return e.fail(u, "start notify", apperrors.ErrEventNotFound)
	}

	return e.transition(ctx, u, func(session.State) *model.Reply {
		if err := e.sessions.Set(ctx, u.Sender.UserID, session.AwaitingNotificationMessage{EventID: eventID}); err != nil {
			return e.fail(u, "start notify", err)
		}
		return respond(u, fmt.Sprintf(promptNotification, event.Title), render.CancelKeyboard())
	})
}

func (e *Engine) cancel(ctx context.Context, u model.Update) *model.Reply {
	return e.transition(ctx, u, func(state session.State) *model.Reply {
		if session.IsIdle(state) {
			return respond(u, msgNothingPending, render.BackKeyboard())
		}
		if err := e.sessions.Clear(ctx, u.Sender.UserID); err != nil {
			return e.fail(u, "cancel", err)
		}
		return respond(u, msgCancelled, render.BackKeyboard())
	})
}

// handleText advances the sender's conversation. Text from non-admins is ignored.
func (e *Engine) handleText(ctx context.Context, u model.Update, msg TextMessage) *model.Reply {
	if !e.IsAdmin(u.Sender.UserID) {
		return nil
	}

	return e.transition(ctx, u, func(state session.State) *model.Reply {
		text := strings.TrimSpace(msg.Text)

		if !session.IsIdle(state) && strings.EqualFold(text, "cancel") {
			if err := e.sessions.Clear(ctx, u.Sender.UserID); err != nil {
				return e.fail(u, "cancel", err)
			}
			return &model.Reply{Text: msgCancelled, Keyboard: render.BackKeyboard()}
		}

		switch st := state.(type) {
		case session.AwaitingEventTitle:
			return e.collectTitle(ctx, u, text)
		case session.AwaitingEventDate:
			return e.collectDate(ctx, u, st, text)
		case session.AwaitingEventDescription:
			return e.collectDescription(ctx, u, st, text)
		case session.AwaitingNotificationMessage:
			return e.sendNotification(ctx, u, st, text)
		default:
			return &model.Reply{Text: msgIdleHint}
		}
	})
}

func (e *Engine) collectTitle(ctx context.Context, u model.Update, text string) *model.Reply {
	if text == "" {
		return &model.Reply{Text: promptTitleEmpty, Keyboard: render.CancelKeyboard()}
	}
	if err := e.sessions.Set(ctx, u.Sender.UserID, session.AwaitingEventDate{Title: text}); err != nil {
		return e.fail(u, "collect title", err)
	}
	return &model.Reply{Text: promptDate, Keyboard: render.CancelKeyboard()}
}

func (e *Engine) collectDate(ctx context.Context, u model.Update, st session.AwaitingEventDate, text string) *model.Reply {
	if !model.IsValidEventDate(text) {
		return &model.Reply{Text: promptDateInvalid, Keyboard: render.CancelKeyboard()}
	}
	next := session.AwaitingEventDescription{Title: st.Title, Date: text}
	if err := e.sessions.Set(ctx, u.Sender.UserID, next); err != nil {
		return e.fail(u, "collect date", err)
	}
	return &model.Reply{Text: promptDescription, Keyboard: render.CancelKeyboard()}
}

// collectDescription is the last step: the event is written only here.
// On a storage failure the state is kept so the admin can resend.
func (e *Engine) collectDescription(ctx context.Context, u model.Update, st session.AwaitingEventDescription, text string) *model.Reply {
	if text == "" {
		return &model.Reply{Text: promptDescEmpty, Keyboard: render.CancelKeyboard()}
	}
	if text == "-" {
		text = ""
	}

	event, err := e.events.CreateEvent(ctx, st.Title, text, st.Date)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			// collected data is unusable; restart the flow from the title
			if setErr := e.sessions.Set(ctx, u.Sender.UserID, session.AwaitingEventTitle{}); setErr != nil {
				return e.fail(u, "create event", setErr)
			}
			return &model.Reply{Text: fmt.Sprintf("❗ %v\n%s", err, promptTitle), Keyboard: render.CancelKeyboard()}
		}
		return e.fail(u, "create event", err)
	}

	e.finish(ctx, u)
	return &model.Reply{Text: render.EventCreated(event), Keyboard: render.BackKeyboard()}
}

func (e *Engine) sendNotification(ctx context.Context, u model.Update, st session.AwaitingNotificationMessage, text string) *model.Reply {
	if text == "" {
		return &model.Reply{Text: promptMessageEmpty, Keyboard: render.CancelKeyboard()}
	}

	report, err := e.dispatcher.Notify(ctx, st.EventID, text)
	if err != nil {
		if errors.Is(err, apperrors.ErrEventNotFound) {
			e.finish(ctx, u)
		}
		return e.fail(u, "notify", err)
	}

	e.finish(ctx, u)
	return &model.Reply{Text: render.NotificationStatus(report), Keyboard: render.BackKeyboard()}
}
