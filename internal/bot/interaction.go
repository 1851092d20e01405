package bot

import (
	"strings"

	"eventbot/internal/callback"
	"eventbot/internal/model"
)

// Interaction is one decoded inbound update. The set of variants is closed.
type Interaction interface {
	interaction()
}

// Command is a slash command, name without the slash or @bot suffix.
type Command struct {
	Name string
	Args string
}

// ButtonCallback is a pressed inline button.
type ButtonCallback struct {
	callback.Data
}

type TextMessage struct {
	Text string
}

func (Command) interaction()        {}
func (ButtonCallback) interaction() {}
func (TextMessage) interaction()    {}

// ParseInteraction decodes an update. Malformed button data wraps apperrors.ErrInvalidInput.
func ParseInteraction(u model.Update) (Interaction, error) {
	switch u.Kind {
	case model.UpdateCommand:
		name := strings.ToLower(strings.TrimPrefix(u.Command, "/"))
		if at := strings.IndexByte(name, '@'); at >= 0 {
			name = name[:at]
		}
		return Command{Name: name, Args: strings.TrimSpace(u.Args)}, nil
	case model.UpdateCallback:
		data, err := callback.Parse(u.Data)
		if err != nil {
			return nil, err
		}
		return ButtonCallback{Data: data}, nil
	default:
		return TextMessage{Text: u.Text}, nil
	}
}
