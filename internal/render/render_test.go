package render

import (
	"fmt"
	"strings"
	"testing"

	"eventbot/internal/callback"
	"eventbot/internal/model"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// dump is the stable textual form of a message compared against golden files.
func dump(text string, kb model.Keyboard) []byte {
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n")
	if len(kb) > 0 {
		b.WriteString("--- keyboard\n")
		for _, row := range kb {
			labels := make([]string, len(row))
			for i, btn := range row {
				labels[i] = fmt.Sprintf("[%s](%s)", btn.Text, btn.Data)
			}
			b.WriteString(strings.Join(labels, " "))
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

func fixtureEvent() *model.Event {
	return &model.Event{ID: 7, Title: "Go meetup", Description: "Talks and pizza", EventDate: "2026-11-20", IsActive: true}
}

func fixtureRegistrations() []*model.Registration {
	ada := "ada"
	return []*model.Registration{
		{ID: 1, EventID: 7, UserID: 1, Username: &ada, FirstName: "Ada"},
		{ID: 2, EventID: 7, UserID: 2, FirstName: "Bob"},
	}
}

func TestGolden(t *testing.T) {
	g := newGoldie(t)
	event := fixtureEvent()
	ada := "ada"

	summaries := []*model.EventSummary{
		{Event: *event, RegistrationCount: 2, RsvpCount: 1},
		{Event: model.Event{ID: 8, Title: "Retro night", EventDate: "2026-12-01"}},
	}

	t.Run("admin_panel", func(t *testing.T) {
		g.Assert(t, "admin_panel", dump(AdminPanel()))
	})

	t.Run("event_card", func(t *testing.T) {
		g.Assert(t, "event_card", dump(EventCard(event, model.RsvpCounts{Attending: 3, NotAttending: 1})))
	})

	t.Run("events_overview", func(t *testing.T) {
		g.Assert(t, "events_overview", dump(EventsOverview(summaries), nil))
	})

	t.Run("notify_picker", func(t *testing.T) {
		g.Assert(t, "notify_picker", dump(EventPicker("📢 Choose an event to notify:", summaries[:1], callback.ActionNotifyEvent)))
	})

	t.Run("event_users", func(t *testing.T) {
		responses := []*model.RsvpResponse{
			{UserID: 1, Username: &ada, FirstName: "Ada", Response: model.RsvpAttending},
			{UserID: 3, FirstName: "Cy", Response: model.RsvpNotAttending},
		}
		g.Assert(t, "event_users", dump(EventUsers(event, fixtureRegistrations(), responses), nil))
	})

	t.Run("rsvp_stats", func(t *testing.T) {
		responses := []*model.RsvpResponse{
			{UserID: 1, Username: &ada, FirstName: "Ada", Response: model.RsvpAttending},
			{UserID: 3, FirstName: "Cy", Response: model.RsvpNotAttending},
			{UserID: 4, FirstName: "Dee", Response: model.RsvpAttending},
		}
		g.Assert(t, "rsvp_stats", dump(RsvpStats(event, model.RsvpCounts{Attending: 2, NotAttending: 1}, responses), nil))
	})

	t.Run("notification_status", func(t *testing.T) {
		report := &model.DeliveryReport{
			EventID: 7,
			Total:   4,
			Sent:    1,
			Reached: []int64{1},
			Failed: []model.DeliveryFailure{
				{UserID: 2, Reason: model.FailureBlocked},
				{UserID: 3, Reason: model.FailureBlocked},
				{UserID: 4, Reason: model.FailureTimeout},
			},
		}
		g.Assert(t, "notification_status", dump(NotificationStatus(report), nil))
	})

	t.Run("user_status_report", func(t *testing.T) {
		report := &model.DeliveryReport{
			EventID: 7,
			Total:   3,
			Sent:    1,
			Reached: []int64{1},
			Failed: []model.DeliveryFailure{
				{UserID: 2, Reason: model.FailureBlocked},
				{UserID: 9, Reason: model.FailureUnknown},
			},
		}
		g.Assert(t, "user_status_report", dump(UserStatusReport(event, fixtureRegistrations(), report), nil))
	})
}

func TestEventList(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		text, kb := EventList(nil)
		assert.Equal(t, "No upcoming events right now.", text)
		assert.Nil(t, kb)
	})

	t.Run("RegisterButtons", func(t *testing.T) {
		_, kb := EventList([]*model.Event{fixtureEvent()})
		assert.Equal(t, model.Keyboard{{{Text: "Go meetup - 2026-11-20", Data: "register:7"}}}, kb)
	})
}

func TestEventCard_NoDescription(t *testing.T) {
	event := fixtureEvent()
	event.Description = ""

	text, _ := EventCard(event, model.RsvpCounts{})

	assert.NotContains(t, text, "📝")
	assert.Equal(t, "🎉 Go meetup\n\n📅 Date: 2026-11-20\n\nWill you come?", text)
}

func TestRsvpNotice(t *testing.T) {
	prev := model.RsvpAttending

	assert.Equal(t, "Your answer: going", RsvpNotice(&model.RsvpResult{Response: model.RsvpAttending}))
	assert.Equal(t, "Your answer: going", RsvpNotice(&model.RsvpResult{Response: model.RsvpAttending, Updated: true, Previous: &prev}))
	assert.Equal(t, "Changed: going → not going", RsvpNotice(&model.RsvpResult{Response: model.RsvpNotAttending, Updated: true, Previous: &prev}))
}

func TestRegistrationDone(t *testing.T) {
	event := fixtureEvent()

	assert.Equal(t, "✅ You are registered for Go meetup (2026-11-20).", RegistrationDone(event, true))
	assert.Equal(t, "✅ You are already registered for Go meetup (2026-11-20).", RegistrationDone(event, false))
}

func TestNotificationStatus_AllDelivered(t *testing.T) {
	report := &model.DeliveryReport{Total: 2, Sent: 2, Reached: []int64{1, 2}}

	assert.Equal(t, "✅ Notifications sent to 2/2 users.", NotificationStatus(report))
	assert.Contains(t, NotificationStatus(&model.DeliveryReport{}), "Nobody is registered")
}

func TestEventPicker_Empty(t *testing.T) {
	text, kb := EventPicker("pick", nil, callback.ActionViewStats)

	assert.Equal(t, "No active events found.", text)
	assert.Equal(t, BackKeyboard(), kb)
}

func TestEventUsers_Empty(t *testing.T) {
	text := EventUsers(fixtureEvent(), nil, nil)

	assert.True(t, strings.HasSuffix(text, "Nobody has signed up yet."))
}
