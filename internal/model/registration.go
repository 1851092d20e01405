package model

import "time"

// Participant identifies a chat user acting on an event.
type Participant struct {
	UserID    int64   `json:"user_id"`
	Username  *string `json:"username,omitempty"`
	FirstName string  `json:"first_name"`
}

// DisplayName renders @handle when present, otherwise the first name.
func (p Participant) DisplayName() string {
	if p.Username != nil && *p.Username != "" {
		return "@" + *p.Username
	}
	if p.FirstName != "" {
		return p.FirstName
	}
	return "Unknown user"
}

type Registration struct {
	ID           int64     `json:"id" db:"id"`
	EventID      int64     `json:"event_id" db:"event_id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Username     *string   `json:"username,omitempty" db:"username"`
	FirstName    string    `json:"first_name" db:"first_name"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

func (r *Registration) Participant() Participant {
	return Participant{UserID: r.UserID, Username: r.Username, FirstName: r.FirstName}
}
