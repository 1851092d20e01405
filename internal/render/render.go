// Package render builds the texts and inline keyboards the bot sends.
// Messages are plain text; nothing here touches storage or the transport.
package render

import (
	"fmt"
	"strings"

	"eventbot/internal/callback"
	"eventbot/internal/model"
)

const backLabel = "🔙 Back to admin panel"

func BackKeyboard() model.Keyboard {
	return model.Keyboard{{{Text: backLabel, Data: callback.Admin(callback.MenuBack)}}}
}

func CancelKeyboard() model.Keyboard {
	return model.Keyboard{{{Text: "❌ Cancel", Data: callback.Admin(callback.MenuCancel)}}}
}

func AdminPanel() (string, model.Keyboard) {
	entries := []struct {
		label string
		menu  callback.Menu
	}{
		{"📅 Create event", callback.MenuCreate},
		{"📋 List events", callback.MenuList},
		{"👥 Registrations", callback.MenuRegistrations},
		{"📢 Send notification", callback.MenuNotify},
		{"🎫 Post event card", callback.MenuPostCard},
		{"📊 RSVP stats", callback.MenuRsvpStats},
		{"🔍 Check users", callback.MenuCheckUsers},
		{"🔧 Test channel", callback.MenuTestChannel},
	}

	kb := make(model.Keyboard, 0, len(entries))
	for _, e := range entries {
		kb = append(kb, []model.Button{{Text: e.label, Data: callback.Admin(e.menu)}})
	}
	return "🛠 Admin panel\n\nChoose an action:", kb
}

func Welcome(isAdmin bool) string {
	text := "👋 Welcome! Use /events to see upcoming events and register."
	if isAdmin {
		text += "\nAdministrators: /admin opens the admin panel."
	}
	return text
}

// EventList is the public listing; each button registers the user.
func EventList(events []*model.Event) (string, model.Keyboard) {
	if len(events) == 0 {
		return "No upcoming events right now.", nil
	}

	kb := make(model.Keyboard, 0, len(events))
	for _, e := range events {
		kb = append(kb, []model.Button{{Text: eventLabel(e), Data: callback.Register(e.ID)}})
	}
	return "📅 Upcoming events. Tap one to register:", kb
}

// EventCard is the RSVP card with live counts on the buttons.
func EventCard(event *model.Event, counts model.RsvpCounts) (string, model.Keyboard) {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 %s\n\n", event.Title)
	if event.Description != "" {
		fmt.Fprintf(&b, "📝 %s\n\n", event.Description)
	}
	fmt.Fprintf(&b, "📅 Date: %s\n\nWill you come?", event.EventDate)

	kb := model.Keyboard{{
		{Text: fmt.Sprintf("✅ Going (%d)", counts.Attending), Data: callback.Rsvp(event.ID, model.RsvpAttending)},
		{Text: fmt.Sprintf("❌ Not going (%d)", counts.NotAttending), Data: callback.Rsvp(event.ID, model.RsvpNotAttending)},
	}}
	return b.String(), kb
}

func RegistrationDone(event *model.Event, created bool) string {
	if created {
		return fmt.Sprintf("✅ You are registered for %s (%s).", event.Title, event.EventDate)
	}
	return fmt.Sprintf("✅ You are already registered for %s (%s).", event.Title, event.EventDate)
}

// RsvpNotice always states the value now on record.
func RsvpNotice(result *model.RsvpResult) string {
	if result.Changed() {
		return fmt.Sprintf("Changed: %s → %s", result.Previous.Label(), result.Response.Label())
	}
	return "Your answer: " + result.Response.Label()
}

func EventCreated(event *model.Event) string {
	return fmt.Sprintf("✅ Event created!\n\n%s\n📅 %s\nID: %d", event.Title, event.EventDate, event.ID)
}

// EventsOverview lists every event with its participant count for admins.
func EventsOverview(summaries []*model.EventSummary) string {
	if len(summaries) == 0 {
		return "No events found."
	}

	var b strings.Builder
	b.WriteString("📋 All events:\n")
	for _, s := range summaries {
		status := "✅"
		if !s.IsActive {
			status = "❌"
		}
		fmt.Fprintf(&b, "\n%s %s (ID: %d)\n📅 %s\n👥 %d participants\n", status, s.Title, s.ID, s.EventDate, s.ParticipantCount())
	}
	return strings.TrimRight(b.String(), "\n")
}

// EventPicker asks the admin to choose an event; the chosen button carries action.
func EventPicker(prompt string, summaries []*model.EventSummary, action callback.Action) (string, model.Keyboard) {
	if len(summaries) == 0 {
		return "No active events found.", BackKeyboard()
	}

	kb := make(model.Keyboard, 0, len(summaries)+1)
	for _, s := range summaries {
		label := eventLabel(&s.Event)
		if action == callback.ActionNotifyEvent {
			label = fmt.Sprintf("%s (%d registered)", s.Title, s.RegistrationCount)
		}
		kb = append(kb, []model.Button{{Text: label, Data: callback.ForEvent(action, s.ID)}})
	}
	kb = append(kb, BackKeyboard()...)
	return prompt, kb
}

func EventUsers(event *model.Event, registrations []*model.Registration, responses []*model.RsvpResponse) string {
	var b strings.Builder
	writeEventHeader(&b, "👥 Participants of", event)

	if len(registrations) == 0 && len(responses) == 0 {
		b.WriteString("Nobody has signed up yet.")
		return b.String()
	}

	fmt.Fprintf(&b, "📝 Registered (%d):", len(registrations))
	for i, r := range registrations {
		fmt.Fprintf(&b, "\n%d. %s", i+1, r.Participant().DisplayName())
	}

	fmt.Fprintf(&b, "\n\n🗳 RSVP (%d):", len(responses))
	for i, r := range responses {
		fmt.Fprintf(&b, "\n%d. %s: %s", i+1, r.Participant().DisplayName(), r.Response.Label())
	}
	return b.String()
}

// RsvpStats shows the answer totals followed by the names of those who are going.
func RsvpStats(event *model.Event, counts model.RsvpCounts, responses []*model.RsvpResponse) string {
	var b strings.Builder
	writeEventHeader(&b, "📊 RSVP stats for", event)
	fmt.Fprintf(&b, "✅ Going: %d\n❌ Not going: %d\n\nTotal answers: %d", counts.Attending, counts.NotAttending, counts.Total())

	n := 0
	for _, r := range responses {
		if r.Response != model.RsvpAttending {
			continue
		}
		if n == 0 {
			b.WriteString("\n\nGoing:")
		}
		n++
		fmt.Fprintf(&b, "\n%d. %s", n, r.Participant().DisplayName())
	}
	return b.String()
}

// Notification is what registrants receive when an admin broadcasts text.
func Notification(event *model.Event, text string) string {
	return fmt.Sprintf("📢 %s (%s)\n\n%s", event.Title, event.EventDate, text)
}

// Probe is the message used to check that a registrant can be reached.
func Probe(event *model.Event) string {
	return fmt.Sprintf("🔔 Checking that you can receive updates about %s. No action needed.", event.Title)
}

func NotificationStatus(report *model.DeliveryReport) string {
	if report.Total == 0 {
		return "Nobody is registered for this event yet, no notifications were sent."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Notifications sent to %d/%d users.", report.Sent, report.Total)
	if len(report.Failed) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "\n❌ Failed for %d users.", len(report.Failed))
	if n := report.CountReason(model.FailureBlocked); n > 0 {
		fmt.Fprintf(&b, "\n\n⚠️ %d users have not started a chat with the bot or blocked it. They need to send /start first.", n)
	}
	if n := report.CountReason(model.FailureTimeout); n > 0 {
		fmt.Fprintf(&b, "\n⏱ %d deliveries timed out.", n)
	}
	return b.String()
}

// UserStatusReport splits registrants by whether the probe reached them.
func UserStatusReport(event *model.Event, registrations []*model.Registration, report *model.DeliveryReport) string {
	names := make(map[int64]string, len(registrations))
	for _, r := range registrations {
		names[r.UserID] = r.Participant().DisplayName()
	}
	name := func(id int64) string {
		if n, ok := names[id]; ok {
			return n
		}
		return fmt.Sprintf("User %d", id)
	}

	var b strings.Builder
	writeEventHeader(&b, "🔍 Reachability for", event)

	if report.Total == 0 {
		b.WriteString("Nobody is registered yet.")
		return b.String()
	}

	fmt.Fprintf(&b, "✅ Reachable (%d):", len(report.Reached))
	for _, id := range report.Reached {
		fmt.Fprintf(&b, "\n• %s", name(id))
	}

	if len(report.Failed) > 0 {
		fmt.Fprintf(&b, "\n\n❌ Unreachable (%d):", len(report.Failed))
		for _, f := range report.Failed {
			fmt.Fprintf(&b, "\n• %s (%s)", name(f.UserID), f.Reason)
		}
		if report.CountReason(model.FailureBlocked) > 0 {
			b.WriteString("\n\nBlocked users must send /start to the bot first.")
		}
	}
	return b.String()
}

func writeEventHeader(b *strings.Builder, title string, event *model.Event) {
	fmt.Fprintf(b, "%s %s\n📅 Date: %s\n\n", title, event.Title, event.EventDate)
}

func eventLabel(e *model.Event) string {
	return fmt.Sprintf("%s - %s", e.Title, e.EventDate)
}
