package bot

import (
	"context"
	"errors"
	"fmt"

	"eventbot/internal/callback"
	"eventbot/internal/model"
	"eventbot/internal/render"
	apperrors "eventbot/pkg/app_errors"

	"go.uber.org/zap"
)

// The handlers below are stateless reads apart from postCard and testChannel,
// which only write to the transport. None of them touches the session tracker.

func (e *Engine) listEvents(ctx context.Context, u model.Update) *model.Reply {
	summaries, err := e.events.ListEventsWithCounts(ctx, false)
	if err != nil {
		return e.fail(u, "list events", err)
	}
	return respond(u, render.EventsOverview(summaries), render.BackKeyboard())
}

func (e *Engine) pickEvent(ctx context.Context, u model.Update, prompt string, action callback.Action) *model.Reply {
	summaries, err := e.events.ListEventsWithCounts(ctx, true)
	if err != nil {
		return e.fail(u, "pick event", err)
	}
	text, kb := render.EventPicker(prompt, summaries, action)
	return respond(u, text, kb)
}

func (e *Engine) eventUsers(ctx context.Context, u model.Update, eventID int64) *model.Reply {
	event, err := e.events.GetEvent(ctx, eventID)
	if err != nil {
		return e.fail(u, "event users", err)
	}
	registrations, err := e.events.GetRegistrations(ctx, eventID)
	if err != nil {
		return e.fail(u, "event users", err)
	}
	responses, err := e.events.GetRsvpResponses(ctx, eventID)
	if err != nil {
		return e.fail(u, "event users", err)
	}
	return respond(u, render.EventUsers(event, registrations, responses), render.BackKeyboard())
}

func (e *Engine) rsvpStats(ctx context.Context, u model.Update, eventID int64) *model.Reply {
	event, err := e.events.GetEvent(ctx, eventID)
	if err != nil {
		return e.fail(u, "rsvp stats", err)
	}
	counts, err := e.events.GetRsvpCounts(ctx, eventID)
	if err != nil {
		return e.fail(u, "rsvp stats", err)
	}
	responses, err := e.events.GetRsvpResponses(ctx, eventID)
	if err != nil {
		return e.fail(u, "rsvp stats", err)
	}
	return respond(u, render.RsvpStats(event, counts, responses), render.BackKeyboard())
}

// checkUsers probes every registrant and reports who can be reached.
func (e *Engine) checkUsers(ctx context.Context, u model.Update, eventID int64) *model.Reply {
	event, err := e.events.GetEvent(ctx, eventID)
	if err != nil {
		return e.fail(u, "check users", err)
	}
	registrations, err := e.events.GetRegistrations(ctx, eventID)
	if err != nil {
		return e.fail(u, "check users", err)
	}
	report, err := e.dispatcher.Probe(ctx, eventID)
	if err != nil {
		return e.fail(u, "check users", err)
	}
	return respond(u, render.UserStatusReport(event, registrations, report), render.BackKeyboard())
}

// postCard publishes the RSVP card to the configured channel, or returns it
// as the reply when no channel is configured.
func (e *Engine) postCard(ctx context.Context, u model.Update, eventID int64) *model.Reply {
	event, err := e.events.GetEvent(ctx, eventID)
	if err != nil {
		return e.fail(u, "post card", err)
	}
	if !event.IsActive {
		return e.fail(u, "post card", apperrors.ErrEventNotFound)
	}
	counts, err := e.events.GetRsvpCounts(ctx, eventID)
	if err != nil {
		return e.fail(u, "post card", err)
	}
	text, kb := render.EventCard(event, counts)

	if e.channelID == "" {
		return &model.Reply{Text: text, Keyboard: kb, Notice: "🎫 Card posted"}
	}

	if _, err := e.messenger.Post(ctx, e.channelID, model.OutgoingMessage{Text: text, Keyboard: kb}); err != nil {
		return e.channelFailure(u, err)
	}
	return respond(u, fmt.Sprintf("✅ Event card for %s posted to %s.", event.Title, e.channelID), render.BackKeyboard())
}

func (e *Engine) testChannel(ctx context.Context, u model.Update) *model.Reply {
	if e.channelID == "" {
		return respond(u, msgNoChannel, render.BackKeyboard())
	}
	if _, err := e.messenger.Post(ctx, e.channelID, model.OutgoingMessage{Text: msgTestChannel}); err != nil {
		return e.channelFailure(u, err)
	}
	return respond(u, fmt.Sprintf("✅ Test message posted to %s.", e.channelID), render.BackKeyboard())
}

// channelFailure explains why posting failed; these are configuration problems the admin can fix.
func (e *Engine) channelFailure(u model.Update, err error) *model.Reply {
	e.logger.Warn("Channel post failed",
		zap.String("trace_id", u.TraceID),
		zap.String("channel", e.channelID),
		zap.Error(err),
	)

	var text string
	switch {
	case errors.Is(err, apperrors.ErrChatNotFound):
		text = fmt.Sprintf("❗ Channel %s was not found. Check CHANNEL_ID.", e.channelID)
	case errors.Is(err, apperrors.ErrChannelNotAllowed), errors.Is(err, apperrors.ErrRecipientBlocked):
		text = fmt.Sprintf("❗ The bot cannot post to %s. Make it an administrator of the channel.", e.channelID)
	default:
		text = fmt.Sprintf("❗ Could not post to %s. Please try again later.", e.channelID)
	}
	return respond(u, text, render.BackKeyboard())
}
