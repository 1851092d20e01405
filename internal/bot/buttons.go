package bot

import (
	"context"

	"eventbot/internal/callback"
	"eventbot/internal/model"
	"eventbot/internal/render"

	"go.uber.org/zap"
)

func (e *Engine) handleButton(ctx context.Context, u model.Update, b ButtonCallback) *model.Reply {
	switch b.Action {
	case callback.ActionRegister:
		return e.register(ctx, u, b.EventID)
	case callback.ActionRsvp:
		return e.rsvp(ctx, u, b.EventID, b.Response)
	}

	if !e.IsAdmin(u.Sender.UserID) {
		return e.refuse(u, u.Data)
	}

	switch b.Action {
	case callback.ActionAdmin:
		return e.adminMenu(ctx, u, b.Menu)
	case callback.ActionNotifyEvent:
		return e.startNotify(ctx, u, b.EventID)
	case callback.ActionPostCard:
		return e.postCard(ctx, u, b.EventID)
	case callback.ActionViewStats:
		return e.rsvpStats(ctx, u, b.EventID)
	case callback.ActionCheckUsers:
		return e.checkUsers(ctx, u, b.EventID)
	case callback.ActionEventUsers:
		return e.eventUsers(ctx, u, b.EventID)
	}
	return notice(u, msgUnknownAction)
}

func (e *Engine) adminMenu(ctx context.Context, u model.Update, menu callback.Menu) *model.Reply {
	switch menu {
	case callback.MenuCreate:
		return e.startCreate(ctx, u)
	case callback.MenuList:
		return e.listEvents(ctx, u)
	case callback.MenuRegistrations:
		return e.pickEvent(ctx, u, pickEventUsers, callback.ActionEventUsers)
	case callback.MenuNotify:
		return e.pickEvent(ctx, u, pickNotify, callback.ActionNotifyEvent)
	case callback.MenuPostCard:
		return e.pickEvent(ctx, u, pickPostCard, callback.ActionPostCard)
	case callback.MenuRsvpStats:
		return e.pickEvent(ctx, u, pickRsvpStats, callback.ActionViewStats)
	case callback.MenuCheckUsers:
		return e.pickEvent(ctx, u, pickCheckUsers, callback.ActionCheckUsers)
	case callback.MenuTestChannel:
		return e.testChannel(ctx, u)
	case callback.MenuCancel:
		return e.cancel(ctx, u)
	default: // back
		text, kb := render.AdminPanel()
		return respond(u, text, kb)
	}
}

// register signs the sender up. Registering twice is reported as success.
func (e *Engine) register(ctx context.Context, u model.Update, eventID int64) *model.Reply {
	created, err := e.events.RegisterUser(ctx, eventID, u.Sender)
	if err != nil {
		return e.fail(u, "register", err)
	}

	event, err := e.events.GetEvent(ctx, eventID)
	if err != nil {
		e.logger.Warn("Registered but could not load event", zap.String("trace_id", u.TraceID), zap.Error(err))
		return &model.Reply{Notice: "✅ Registered"}
	}
	return &model.Reply{Text: render.RegistrationDone(event, created), Notice: "✅ Registered"}
}

// rsvp records the answer, tells the sender what is now on record and refreshes the card counts.
func (e *Engine) rsvp(ctx context.Context, u model.Update, eventID int64, answer model.RsvpAnswer) *model.Reply {
	result, err := e.events.RecordRsvp(ctx, eventID, u.Sender, answer)
	if err != nil {
		return e.fail(u, "rsvp", err)
	}
	ack := render.RsvpNotice(result)

	event, err := e.events.GetEvent(ctx, eventID)
	if err != nil {
		e.logger.Warn("RSVP recorded but card not refreshed", zap.String("trace_id", u.TraceID), zap.Error(err))
		return &model.Reply{Notice: ack}
	}
	counts, err := e.events.GetRsvpCounts(ctx, eventID)
	if err != nil {
		e.logger.Warn("RSVP recorded but card not refreshed", zap.String("trace_id", u.TraceID), zap.Error(err))
		return &model.Reply{Notice: ack}
	}

	text, kb := render.EventCard(event, counts)
	return &model.Reply{Text: text, Keyboard: kb, Notice: ack, Edit: true}
}
