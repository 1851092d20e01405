package telegram

import (
	"strings"

	"eventbot/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// FromTelegram converts a Bot API update. Updates the bot does not handle
// (edits, channel posts, media without text) report false.
func FromTelegram(up tgbotapi.Update) (model.Update, bool) {
	u := model.Update{UpdateID: up.UpdateID, TraceID: uuid.NewString()}

	switch {
	case up.CallbackQuery != nil:
		cq := up.CallbackQuery
		if cq.From == nil {
			return model.Update{}, false
		}
		u.Kind = model.UpdateCallback
		u.CallbackID = cq.ID
		u.Data = cq.Data
		u.Sender = participant(cq.From)
		u.ChatID = cq.From.ID
		if cq.Message != nil {
			u.MessageID = cq.Message.MessageID
			if cq.Message.Chat != nil {
				u.ChatID = cq.Message.Chat.ID
			}
		}
		return u, true

	case up.Message != nil:
		m := up.Message
		if m.From == nil || m.Chat == nil || m.Text == "" {
			return model.Update{}, false
		}
		u.ChatID = m.Chat.ID
		u.MessageID = m.MessageID
		u.Sender = participant(m.From)
		if m.IsCommand() {
			u.Kind = model.UpdateCommand
			u.Command = m.Command()
			u.Args = m.CommandArguments()
		} else {
			u.Kind = model.UpdateText
			u.Text = m.Text
		}
		return u, true
	}

	return model.Update{}, false
}

func participant(from *tgbotapi.User) model.Participant {
	p := model.Participant{UserID: from.ID, FirstName: from.FirstName}
	if name := strings.TrimSpace(from.UserName); name != "" {
		p.Username = &name
	}
	return p
}
