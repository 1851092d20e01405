// Package callback encodes and decodes the data carried by inline buttons.
//
// Formats:
//
//	register:<event id>
//	rsvp:<event id>:<attending|not_attending>
//	<notify_event|post_card|view_stats|check_users|event_users>:<event id>
//	admin:<menu>
package callback

import (
	"fmt"
	"strconv"
	"strings"

	"eventbot/internal/model"
	apperrors "eventbot/pkg/app_errors"
)

type Action string

const (
	ActionRegister    Action = "register"
	ActionRsvp        Action = "rsvp"
	ActionNotifyEvent Action = "notify_event"
	ActionPostCard    Action = "post_card"
	ActionViewStats   Action = "view_stats"
	ActionCheckUsers  Action = "check_users"
	ActionEventUsers  Action = "event_users"
	ActionAdmin       Action = "admin"
)

// Menu is an entry of the admin panel.
type Menu string

const (
	MenuCreate        Menu = "create"
	MenuList          Menu = "list"
	MenuRegistrations Menu = "registrations"
	MenuNotify        Menu = "notify"
	MenuPostCard      Menu = "post_card"
	MenuRsvpStats     Menu = "rsvp_stats"
	MenuCheckUsers    Menu = "check_users"
	MenuTestChannel   Menu = "test_channel"
	MenuBack          Menu = "back"
	MenuCancel        Menu = "cancel"
)

var menus = map[Menu]bool{
	MenuCreate: true, MenuList: true, MenuRegistrations: true, MenuNotify: true,
	MenuPostCard: true, MenuRsvpStats: true, MenuCheckUsers: true,
	MenuTestChannel: true, MenuBack: true, MenuCancel: true,
}

// eventActions take a single event id argument.
var eventActions = map[Action]bool{
	ActionRegister:    true,
	ActionNotifyEvent: true,
	ActionPostCard:    true,
	ActionViewStats:   true,
	ActionCheckUsers:  true,
	ActionEventUsers:  true,
}

// Data is a decoded button payload. Only the fields relevant to Action are set.
type Data struct {
	Action   Action
	EventID  int64
	Response model.RsvpAnswer
	Menu     Menu
}

func Register(eventID int64) string {
	return ForEvent(ActionRegister, eventID)
}

func Rsvp(eventID int64, answer model.RsvpAnswer) string {
	return fmt.Sprintf("%s:%d:%s", ActionRsvp, eventID, answer)
}

func ForEvent(action Action, eventID int64) string {
	return fmt.Sprintf("%s:%d", action, eventID)
}

func Admin(menu Menu) string {
	return fmt.Sprintf("%s:%s", ActionAdmin, menu)
}

// Parse decodes raw button data. Malformed input wraps apperrors.ErrInvalidInput.
func Parse(raw string) (Data, error) {
	parts := strings.Split(raw, ":")
	action := Action(parts[0])

	switch {
	case action == ActionAdmin:
		if len(parts) != 2 || !menus[Menu(parts[1])] {
			return Data{}, invalid(raw)
		}
		return Data{Action: action, Menu: Menu(parts[1])}, nil

	case action == ActionRsvp:
		if len(parts) != 3 {
			return Data{}, invalid(raw)
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Data{}, invalid(raw)
		}
		answer := model.RsvpAnswer(parts[2])
		if !answer.IsValid() {
			return Data{}, invalid(raw)
		}
		return Data{Action: action, EventID: id, Response: answer}, nil

	case eventActions[action]:
		if len(parts) != 2 {
			return Data{}, invalid(raw)
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Data{}, invalid(raw)
		}
		return Data{Action: action, EventID: id}, nil
	}

	return Data{}, invalid(raw)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q", s)
	}
	return id, nil
}

func invalid(raw string) error {
	return fmt.Errorf("%w: callback data %q", apperrors.ErrInvalidInput, raw)
}
