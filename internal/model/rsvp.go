package model

import "time"

// RsvpAnswer is the attendance intent recorded on an RSVP card.
type RsvpAnswer string

const (
	RsvpAttending    RsvpAnswer = "attending"
	RsvpNotAttending RsvpAnswer = "not_attending"
)

// IsValid reports whether the answer is one of the two stored values.
func (a RsvpAnswer) IsValid() bool {
	switch a {
	case RsvpAttending, RsvpNotAttending:
		return true
	}
	return false
}

// Label is the human readable form shown on buttons and notices.
func (a RsvpAnswer) Label() string {
	switch a {
	case RsvpAttending:
		return "going"
	case RsvpNotAttending:
		return "not going"
	}
	return string(a)
}

type RsvpResponse struct {
	ID          int64      `json:"id" db:"id"`
	EventID     int64      `json:"event_id" db:"event_id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	Username    *string    `json:"username,omitempty" db:"username"`
	FirstName   string     `json:"first_name" db:"first_name"`
	Response    RsvpAnswer `json:"response" db:"response"`
	RespondedAt time.Time  `json:"responded_at" db:"responded_at"`
}

func (r *RsvpResponse) Participant() Participant {
	return Participant{UserID: r.UserID, Username: r.Username, FirstName: r.FirstName}
}

// RsvpResult describes what a RecordRsvp call did.
type RsvpResult struct {
	Response RsvpAnswer  `json:"response"`
	Updated  bool        `json:"updated"`
	Previous *RsvpAnswer `json:"previous,omitempty"`
}

// Changed reports whether an existing answer was switched to a different value.
func (r *RsvpResult) Changed() bool {
	return r.Updated && r.Previous != nil && *r.Previous != r.Response
}

type RsvpCounts struct {
	Attending    int `json:"attending"`
	NotAttending int `json:"not_attending"`
}

func (c RsvpCounts) Total() int {
	return c.Attending + c.NotAttending
}
