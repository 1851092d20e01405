package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"eventbot/internal/callback"
	"eventbot/internal/model"
	"eventbot/internal/render"
	apperrors "eventbot/pkg/app_errors"
)

var adminCommands = map[string]bool{
	"admin":           true,
	"new_event":       true,
	"create_event":    true,
	"cancel":          true,
	"list_events":     true,
	"event_users":     true,
	"rsvp_stats":      true,
	"check_users":     true,
	"notify_users":    true,
	"post_event_card": true,
	"close_event":     true,
	"test_channel":    true,
}

func (e *Engine) handleCommand(ctx context.Context, u model.Update, cmd Command) *model.Reply {
	switch cmd.Name {
	case "start":
		return &model.Reply{Text: render.Welcome(e.IsAdmin(u.Sender.UserID))}
	case "events":
		return e.showEvents(ctx, u)
	}

	if !adminCommands[cmd.Name] {
		return &model.Reply{Text: msgUnknownCommand}
	}
	if !e.IsAdmin(u.Sender.UserID) {
		return e.refuse(u, "/"+cmd.Name)
	}

	switch cmd.Name {
	case "admin":
		text, kb := render.AdminPanel()
		return &model.Reply{Text: text, Keyboard: kb}
	case "new_event":
		return e.startCreate(ctx, u)
	case "create_event":
		return e.createOneShot(ctx, u, cmd.Args)
	case "cancel":
		return e.cancel(ctx, u)
	case "list_events":
		return e.listEvents(ctx, u)
	case "event_users":
		return e.withEventArg(ctx, u, cmd, pickEventUsers, callback.ActionEventUsers, e.eventUsers)
	case "rsvp_stats":
		return e.withEventArg(ctx, u, cmd, pickRsvpStats, callback.ActionViewStats, e.rsvpStats)
	case "check_users":
		return e.withEventArg(ctx, u, cmd, pickCheckUsers, callback.ActionCheckUsers, e.checkUsers)
	case "post_event_card":
		return e.withEventArg(ctx, u, cmd, pickPostCard, callback.ActionPostCard, e.postCard)
	case "notify_users":
		return e.notifyOneShot(ctx, u, cmd.Args)
	case "close_event":
		return e.closeEvent(ctx, u, cmd.Args)
	default: // test_channel
		return e.testChannel(ctx, u)
	}
}

// withEventArg shows an event picker when no id was given, otherwise runs show for that id.
func (e *Engine) withEventArg(
	ctx context.Context,
	u model.Update,
	cmd Command,
	prompt string,
	action callback.Action,
	show func(context.Context, model.Update, int64) *model.Reply,
) *model.Reply {
	if cmd.Args == "" {
		return e.pickEvent(ctx, u, prompt, action)
	}
	id, ok := parseEventID(cmd.Args)
	if !ok {
		return &model.Reply{Text: fmt.Sprintf(usageEventID, cmd.Name)}
	}
	return show(ctx, u, id)
}

func parseEventID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id, err == nil && id > 0
}

func (e *Engine) showEvents(ctx context.Context, u model.Update) *model.Reply {
	events, err := e.events.GetActiveEvents(ctx)
	if err != nil {
		return e.fail(u, "list active events", err)
	}
	text, kb := render.EventList(events)
	return &model.Reply{Text: text, Keyboard: kb}
}

// createOneShot handles "/create_event <title> | <date> | <description>".
func (e *Engine) createOneShot(ctx context.Context, u model.Update, args string) *model.Reply {
	parts := strings.SplitN(args, "|", 3)
	if len(parts) < 2 {
		return &model.Reply{Text: usageCreate}
	}
	description := ""
	if len(parts) == 3 {
		description = parts[2]
	}

	event, err := e.events.CreateEvent(ctx, parts[0], description, parts[1])
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			return &model.Reply{Text: fmt.Sprintf("❗ %v\n%s", err, usageCreate)}
		}
		return e.fail(u, "create event", err)
	}
	return &model.Reply{Text: render.EventCreated(event), Keyboard: render.BackKeyboard()}
}

// notifyOneShot handles "/notify_users <event id> <message>".
func (e *Engine) notifyOneShot(ctx context.Context, u model.Update, args string) *model.Reply {
	rawID, message, _ := strings.Cut(args, " ")
	id, ok := parseEventID(rawID)
	message = strings.TrimSpace(message)
	if !ok || message == "" {
		return &model.Reply{Text: usageNotify}
	}

	event, err := e.events.GetEvent(ctx, id)
	if err != nil {
		return e.fail(u, "notify", err)
	}
	if !event.IsActive {
		return e.fail(u, "notify", apperrors.ErrEventNotFound)
	}

	report, err := e.dispatcher.Notify(ctx, id, message)
	if err != nil {
		return e.fail(u, "notify", err)
	}
	return &model.Reply{Text: render.NotificationStatus(report)}
}

func (e *Engine) closeEvent(ctx context.Context, u model.Update, args string) *model.Reply {
	id, ok := parseEventID(args)
	if !ok {
		return &model.Reply{Text: usageCloseEvent}
	}
	if err := e.events.DeactivateEvent(ctx, id); err != nil {
		return e.fail(u, "close event", err)
	}
	return &model.Reply{Text: fmt.Sprintf("✅ Event %d closed. It no longer accepts registrations.", id)}
}
