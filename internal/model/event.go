package model

import "time"

// EventDateLayout is the calendar date format events are stored and entered in.
const EventDateLayout = "2006-01-02"

type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	EventDate   string    `json:"event_date" db:"event_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	IsActive    bool      `json:"is_active" db:"is_active"`
}

// EventSummary is an event with its participant counts, used by admin listings.
type EventSummary struct {
	Event
	RegistrationCount int `json:"registration_count"`
	RsvpCount         int `json:"rsvp_count"`
}

// ParticipantCount is registrations plus RSVP answers. Someone who did both is counted twice.
func (s *EventSummary) ParticipantCount() int {
	return s.RegistrationCount + s.RsvpCount
}

// NewEventParams is the input of event creation.
type NewEventParams struct {
	Title       string
	Description string
	EventDate   string
}

// IsValidEventDate reports whether s is a real calendar date in EventDateLayout.
func IsValidEventDate(s string) bool {
	_, err := time.Parse(EventDateLayout, s)
	return err == nil
}
