// Package session tracks where each administrator is in a multi-step conversation.
package session

import (
	"fmt"
	"strconv"
)

// Kind names a State variant; it is also the persisted discriminator.
type Kind string

const (
	KindIdle                        Kind = "idle"
	KindAwaitingEventTitle          Kind = "awaiting_event_title"
	KindAwaitingEventDate           Kind = "awaiting_event_date"
	KindAwaitingEventDescription    Kind = "awaiting_event_description"
	KindAwaitingNotificationMessage Kind = "awaiting_notification_message"
)

// State is one step of an admin conversation. Each variant carries exactly
// the data collected so far; the set of variants is closed.
type State interface {
	Kind() Kind
	sealed()
}

type Idle struct{}

type AwaitingEventTitle struct{}

type AwaitingEventDate struct {
	Title string
}

type AwaitingEventDescription struct {
	Title string
	Date  string
}

type AwaitingNotificationMessage struct {
	EventID int64
}

func (Idle) Kind() Kind                        { return KindIdle }
func (AwaitingEventTitle) Kind() Kind          { return KindAwaitingEventTitle }
func (AwaitingEventDate) Kind() Kind           { return KindAwaitingEventDate }
func (AwaitingEventDescription) Kind() Kind    { return KindAwaitingEventDescription }
func (AwaitingNotificationMessage) Kind() Kind { return KindAwaitingNotificationMessage }

func (Idle) sealed()                        {}
func (AwaitingEventTitle) sealed()          {}
func (AwaitingEventDate) sealed()           {}
func (AwaitingEventDescription) sealed()    {}
func (AwaitingNotificationMessage) sealed() {}

// IsIdle treats a nil state as idle.
func IsIdle(s State) bool {
	return s == nil || s.Kind() == KindIdle
}

// fields flattens a state into the string map stored in redis.
func fields(s State) map[string]interface{} {
	out := map[string]interface{}{"kind": string(s.Kind())}
	switch st := s.(type) {
	case AwaitingEventDate:
		out["title"] = st.Title
	case AwaitingEventDescription:
		out["title"] = st.Title
		out["date"] = st.Date
	case AwaitingNotificationMessage:
		out["event_id"] = st.EventID
	}
	return out
}

// fromFields is the inverse of fields.
func fromFields(m map[string]string) (State, error) {
	switch Kind(m["kind"]) {
	case KindIdle, "":
		return Idle{}, nil
	case KindAwaitingEventTitle:
		return AwaitingEventTitle{}, nil
	case KindAwaitingEventDate:
		return AwaitingEventDate{Title: m["title"]}, nil
	case KindAwaitingEventDescription:
		return AwaitingEventDescription{Title: m["title"], Date: m["date"]}, nil
	case KindAwaitingNotificationMessage:
		id, err := strconv.ParseInt(m["event_id"], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid event_id %q: %w", m["event_id"], err)
		}
		return AwaitingNotificationMessage{EventID: id}, nil
	default:
		return nil, fmt.Errorf("unknown session kind %q", m["kind"])
	}
}
