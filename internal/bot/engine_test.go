package bot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"eventbot/internal/callback"
	"eventbot/internal/model"
	notifyMocks "eventbot/internal/notify/mocks"
	serviceMocks "eventbot/internal/service/mocks"
	"eventbot/internal/session"
	transportMocks "eventbot/internal/transport/mocks"
	apperrors "eventbot/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	adminID = int64(1)
	userID  = int64(2)
)

type testEngine struct {
	*Engine
	events     *serviceMocks.EventServiceMock
	sessions   *session.MemoryTracker
	dispatcher *notifyMocks.DispatcherMock
	messenger  *transportMocks.MessengerMock
}

func newTestEngine(channelID string) *testEngine {
	events := serviceMocks.NewEventServiceMock()
	sessions := session.NewMemoryTracker()
	dispatcher := notifyMocks.NewDispatcherMock()
	messenger := transportMocks.NewMessengerMock()
	return &testEngine{
		Engine:     NewEngine(events, sessions, dispatcher, messenger, []int64{adminID}, channelID),
		events:     events,
		sessions:   sessions,
		dispatcher: dispatcher,
		messenger:  messenger,
	}
}

func (te *testEngine) state(t *testing.T, id int64) session.State {
	t.Helper()
	s, err := te.sessions.Get(context.Background(), id)
	require.NoError(t, err)
	return s
}

func sender(id int64) model.Participant {
	return model.Participant{UserID: id, FirstName: fmt.Sprintf("User%d", id)}
}

func command(from int64, name, args string) model.Update {
	return model.Update{Kind: model.UpdateCommand, ChatID: from, Sender: sender(from), Command: name, Args: args}
}

func text(from int64, s string) model.Update {
	return model.Update{Kind: model.UpdateText, ChatID: from, Sender: sender(from), Text: s}
}

func press(from int64, data string) model.Update {
	return model.Update{Kind: model.UpdateCallback, ChatID: from, MessageID: 10, CallbackID: "cb", Sender: sender(from), Data: data}
}

var meetup = &model.Event{ID: 5, Title: "Autumn Meetup", Description: "Community gathering", EventDate: "2025-11-01", IsActive: true}

func TestCreateEventFlow(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine("")

	reply := te.Handle(ctx, press(adminID, callback.Admin(callback.MenuCreate)))
	require.NotNil(t, reply)
	assert.Equal(t, promptTitle, reply.Text)
	assert.True(t, reply.Edit)
	assert.Equal(t, session.AwaitingEventTitle{}, te.state(t, adminID))

	reply = te.Handle(ctx, text(adminID, "Autumn Meetup"))
	assert.Equal(t, promptDate, reply.Text)
	assert.Equal(t, session.AwaitingEventDate{Title: "Autumn Meetup"}, te.state(t, adminID))

	reply = te.Handle(ctx, text(adminID, "2025-11-01"))
	assert.Equal(t, promptDescription, reply.Text)
	assert.Equal(t, session.AwaitingEventDescription{Title: "Autumn Meetup", Date: "2025-11-01"}, te.state(t, adminID))

	te.events.On("CreateEvent", mock.Anything, "Autumn Meetup", "Community gathering", "2025-11-01").Return(meetup, nil).Once()

	reply = te.Handle(ctx, text(adminID, "Community gathering"))
	assert.Contains(t, reply.Text, "Event created")
	assert.Contains(t, reply.Text, "Autumn Meetup")
	assert.Equal(t, session.Idle{}, te.state(t, adminID))
	te.events.AssertExpectations(t)
}

func TestCreateEventFlow_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyTitleDoesNotAdvance", func(t *testing.T) {
		te := newTestEngine("")
		te.Handle(ctx, command(adminID, "new_event", ""))

		reply := te.Handle(ctx, text(adminID, "   "))

		assert.Equal(t, promptTitleEmpty, reply.Text)
		assert.Equal(t, session.AwaitingEventTitle{}, te.state(t, adminID))
		te.events.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BadDateKeepsTitle", func(t *testing.T) {
		te := newTestEngine("")
		require.NoError(t, te.sessions.Set(ctx, adminID, session.AwaitingEventDate{Title: "Autumn Meetup"}))

		for _, bad := range []string{"", "tomorrow", "2025-13-01", "01/11/2025"} {
			reply := te.Handle(ctx, text(adminID, bad))
			assert.Equal(t, promptDateInvalid, reply.Text, bad)
			assert.Equal(t, session.AwaitingEventDate{Title: "Autumn Meetup"}, te.state(t, adminID))
		}
	})

	t.Run("EmptyDescriptionReprompts", func(t *testing.T) {
		te := newTestEngine("")
		require.NoError(t, te.sessions.Set(ctx, adminID, session.AwaitingEventDescription{Title: "T", Date: "2025-11-01"}))

		reply := te.Handle(ctx, text(adminID, ""))

		assert.Equal(t, promptDescEmpty, reply.Text)
		assert.Equal(t, session.AwaitingEventDescription{Title: "T", Date: "2025-11-01"}, te.state(t, adminID))
	})

	t.Run("DashMeansNoDescription", func(t *testing.T) {
		te := newTestEngine("")
		require.NoError(t, te.sessions.Set(ctx, adminID, session.AwaitingEventDescription{Title: "T", Date: "2025-11-01"}))
		te.events.On("CreateEvent", mock.Anything, "T", "", "2025-11-01").Return(&model.Event{ID: 1, Title: "T", EventDate: "2025-11-01"}, nil).Once()

		te.Handle(ctx, text(adminID, "-"))

		te.events.AssertExpectations(t)
		assert.Equal(t, session.Idle{}, te.state(t, adminID))
	})
}

func TestCreateEventFlow_StorageFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine("")
	pending := session.AwaitingEventDescription{Title: "Autumn Meetup", Date: "2025-11-01"}
	require.NoError(t, te.sessions.Set(ctx, adminID, pending))

	te.events.On("CreateEvent", mock.Anything, "Autumn Meetup", "Community gathering", "2025-11-01").
		Return(nil, fmt.Errorf("%w: %w", apperrors.ErrStorage, fmt.Errorf("connection refused"))).Once()

	reply := te.Handle(ctx, text(adminID, "Community gathering"))

	assert.Equal(t, msgTryLater, reply.Text)
	assert.NotContains(t, reply.Text, "connection refused")
	assert.Equal(t, pending, te.state(t, adminID))
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	inputs := map[string]model.Update{
		"Text":    text(adminID, " Cancel "),
		"Command": command(adminID, "cancel", ""),
		"Button":  press(adminID, callback.Admin(callback.MenuCancel)),
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			te := newTestEngine("")
			require.NoError(t, te.sessions.Set(ctx, adminID, session.AwaitingEventDescription{Title: "T", Date: "2025-11-01"}))

			reply := te.Handle(ctx, input)

			assert.Equal(t, msgCancelled, reply.Text)
			assert.Equal(t, session.Idle{}, te.state(t, adminID))
		})
	}

	t.Run("NothingPending", func(t *testing.T) {
		te := newTestEngine("")

		reply := te.Handle(ctx, command(adminID, "cancel", ""))

		assert.Equal(t, msgNothingPending, reply.Text)
	})
}

func TestAuthorization(t *testing.T) {
	ctx := context.Background()

	updates := []model.Update{
		command(userID, "admin", ""),
		command(userID, "new_event", ""),
		command(userID, "create_event", "X | 2025-11-01 | y"),
		command(userID, "list_events", ""),
		command(userID, "event_users", "5"),
		command(userID, "rsvp_stats", "5"),
		command(userID, "check_users", "5"),
		command(userID, "notify_users", "5 hi"),
		command(userID, "post_event_card", "5"),
		command(userID, "close_event", "5"),
		command(userID, "test_channel", ""),
		command(userID, "cancel", ""),
		press(userID, callback.Admin(callback.MenuCreate)),
		press(userID, callback.ForEvent(callback.ActionNotifyEvent, 5)),
		press(userID, callback.ForEvent(callback.ActionPostCard, 5)),
		press(userID, callback.ForEvent(callback.ActionCheckUsers, 5)),
	}

	for _, u := range updates {
		t.Run(u.Command+u.Data, func(t *testing.T) {
			// no expectations are set, so any store, dispatcher or transport call fails the test
			te := newTestEngine("@channel")
			require.NoError(t, te.sessions.Set(ctx, adminID, session.AwaitingEventTitle{}))

			reply := te.Handle(ctx, u)

			require.NotNil(t, reply)
			if u.Kind == model.UpdateCallback {
				assert.Equal(t, msgRefusal, reply.Notice)
			} else {
				assert.Equal(t, msgRefusal, reply.Text)
			}
			assert.Equal(t, session.Idle{}, te.state(t, userID))
			assert.Equal(t, session.AwaitingEventTitle{}, te.state(t, adminID))
		})
	}
}

func TestNonAdminTextIgnored(t *testing.T) {
	te := newTestEngine("")

	assert.Nil(t, te.Handle(context.Background(), text(userID, "hello")))
}

func TestIdleAdminTextHint(t *testing.T) {
	te := newTestEngine("")

	reply := te.Handle(context.Background(), text(adminID, "hello"))

	assert.Equal(t, msgIdleHint, reply.Text)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstTime", func(t *testing.T) {
		te := newTestEngine("")
		te.events.On("RegisterUser", mock.Anything, int64(5), sender(userID)).Return(true, nil).Once()
		te.events.On("GetEvent", mock.Anything, int64(5)).Return(meetup, nil).Once()

		reply := te.Handle(ctx, press(userID, callback.Register(5)))

		assert.Equal(t, "✅ Registered", reply.Notice)
		assert.Equal(t, "✅ You are registered for Autumn Meetup (2025-11-01).", reply.Text)
		assert.False(t, reply.Edit)
	})

	t.Run("AlreadyRegisteredIsStillSuccess", func(t *testing.T) {
		te := newTestEngine("")
		te.events.On("RegisterUser", mock.Anything, int64(5), sender(userID)).Return(false, nil).Once()
		te.events.On("GetEvent", mock.Anything, int64(5)).Return(meetup, nil).Once()

		reply := te.Handle(ctx, press(userID, callback.Register(5)))

		assert.Equal(t, "✅ Registered", reply.Notice)
		assert.Contains(t, reply.Text, "already registered")
	})

	t.Run("InactiveEvent", func(t *testing.T) {
		te := newTestEngine("")
		te.events.On("RegisterUser", mock.Anything, int64(5), sender(userID)).Return(false, apperrors.ErrEventNotFound).Once()

		reply := te.Handle(ctx, press(userID, callback.Register(5)))

		assert.Equal(t, msgEventNotFound, reply.Notice)
		assert.Empty(t, reply.Text)
	})
}

func TestRsvp(t *testing.T) {
	ctx := context.Background()

	t.Run("SwitchedAnswerIsReported", func(t *testing.T) {
		te := newTestEngine("")
		prev := model.RsvpAttending
		te.events.On("RecordRsvp", mock.Anything, int64(5), sender(userID), model.RsvpNotAttending).
			Return(&model.RsvpResult{Response: model.RsvpNotAttending, Updated: true, Previous: &prev}, nil).Once()
		te.events.On("GetEvent", mock.Anything, int64(5)).Return(meetup, nil).Once()
		te.events.On("GetRsvpCounts", mock.Anything, int64(5)).Return(model.RsvpCounts{Attending: 4, NotAttending: 2}, nil).Once()

		reply := te.Handle(ctx, press(userID, callback.Rsvp(5, model.RsvpNotAttending)))

		assert.Equal(t, "Changed: going → not going", reply.Notice)
		assert.True(t, reply.Edit)
		require.Len(t, reply.Keyboard, 1)
		assert.Equal(t, "✅ Going (4)", reply.Keyboard[0][0].Text)
		assert.Equal(t, "❌ Not going (2)", reply.Keyboard[0][1].Text)
	})

	t.Run("FirstAnswer", func(t *testing.T) {
		te := newTestEngine("")
		te.events.On("RecordRsvp", mock.Anything, int64(5), sender(userID), model.RsvpAttending).
			Return(&model.RsvpResult{Response: model.RsvpAttending}, nil).Once()
		te.events.On("GetEvent", mock.Anything, int64(5)).Return(meetup, nil).Once()
		te.events.On("GetRsvpCounts", mock.Anything, int64(5)).Return(model.RsvpCounts{Attending: 1}, nil).Once()

		reply := te.Handle(ctx, press(userID, callback.Rsvp(5, model.RsvpAttending)))

		assert.Equal(t, "Your answer: going", reply.Notice)
	})

	t.Run("CountsUnavailableStillAcknowledges", func(t *testing.T) {
		te := newTestEngine("")
		te.events.On("RecordRsvp", mock.Anything, int64(5), sender(userID), model.RsvpAttending).
			Return(&model.RsvpResult{Response: model.RsvpAttending}, nil).Once()
		te.events.On("GetEvent", mock.Anything, int64(5)).Return(meetup, nil).Once()
		te.events.On("GetRsvpCounts", mock.Anything, int64(5)).Return(model.RsvpCounts{}, apperrors.ErrStorage).Once()

		reply := te.Handle(ctx, press(userID, callback.Rsvp(5, model.RsvpAttending)))

		assert.Equal(t, "Your answer: going", reply.Notice)
		assert.False(t, reply.Edit)
	})
}

func TestNotificationFlow(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine("")

	te.events.On("GetEvent", mock.Anything, int64(5)).Return(meetup, nil).Once()

	reply := te.Handle(ctx, press(adminID, callback.ForEvent(callback.ActionNotifyEvent, 5)))
	assert.Equal(t, fmt.Sprintf(promptNotification, "Autumn Meetup"), reply.Text)
	assert.Equal(t, session.AwaitingNotificationMessage{EventID: 5}, te.state(t, adminID))

	report := &model.DeliveryReport{
		EventID: 5,
		Total:   3,
		Sent:    2,
		Reached: []int64{10, 30},
		Failed:  []model.DeliveryFailure{{UserID: 20, Reason: model.FailureBlocked}},
	}
	te.dispatcher.On("Notify", mock.Anything, int64(5), "Doors open at 7").Return(report, nil).Once()

	reply = te.Handle(ctx, text(adminID, "Doors open at 7"))

	assert.Contains(t, reply.Text, "2/3")
	assert.Contains(t, reply.Text, "Failed for 1")
	assert.Equal(t, session.Idle{}, te.state(t, adminID))
	te.dispatcher.AssertExpectations(t)
}

func TestNotificationFlow_Failures(t *testing.T) {
	ctx := context.Background()
	pending := session.AwaitingNotificationMessage{EventID: 5}

	t.Run("StorageFailureKeepsState", func(t *testing.T) {
		te := newTestEngine("")
		require.NoError(t, te.sessions.Set(ctx, adminID, pending))
		te.dispatcher.On("Notify", mock.Anything, int64(5), "hi").Return(nil, apperrors.ErrStorage).Once()

		reply := te.Handle(ctx, text(adminID, "hi"))

		assert.Equal(t, msgTryLater, reply.Text)
		assert.Equal(t, pending, te.state(t, adminID))
	})

	t.Run("EventGoneResets", func(t *testing.T) {
		te := newTestEngine("")
		require.NoError(t, te.sessions.Set(ctx, adminID, pending))
		te.dispatcher.On("Notify", mock.Anything, int64(5), "hi").Return(nil, apperrors.ErrEventNotFound).Once()

		reply := te.Handle(ctx, text(adminID, "hi"))

		assert.Equal(t, msgEventNotFound, reply.Text)
		assert.Equal(t, session.Idle{}, te.state(t, adminID))
	})

	t.Run("EmptyMessageReprompts", func(t *testing.T) {
		te := newTestEngine("")
		require.NoError(t, te.sessions.Set(ctx, adminID, pending))

		reply := te.Handle(ctx, text(adminID, "  "))

		assert.Equal(t, promptMessageEmpty, reply.Text)
		assert.Equal(t, pending, te.state(t, adminID))
	})

	t.Run("InactiveEventCannotBeSelected", func(t *testing.T) {
		te := newTestEngine("")
		closed := *meetup
		closed.IsActive = false
		te.events.On("GetEvent", mock.Anything, int64(5)).Return(&closed, nil).Once()

		reply := te.Handle(ctx, press(adminID, callback.ForEvent(callback.ActionNotifyEvent, 5)))

		assert.Equal(t, msgEventNotFound, reply.Notice)
		assert.Equal(t, session.Idle{}, te.state(t, adminID))
	})
}

// untouchableTracker fails the test on any session access.
type untouchableTracker struct {
	t *testing.T
}

func (u untouchableTracker) Get(context.Context, int64) (session.State, error) {
	u.t.Fatal("session Get called")
	return nil, nil
}

func (u untouchableTracker) Set(context.Context, int64, session.State) error {
	u.t.Fatal("session Set called")
	return nil
}

func (u untouchableTracker) Clear(context.Context, int64) error {
	u.t.Fatal("session Clear called")
	return nil
}

func (u untouchableTracker) Lock(context.Context, int64) (func(), error) {
	u.t.Fatal("session Lock called")
	return nil, nil
}

func TestStatelessReads(t *testing.T) {
	ctx := context.Background()
	events := serviceMocks.NewEventServiceMock()
	dispatcher := notifyMocks.NewDispatcherMock()
	engine := NewEngine(events, untouchableTracker{t}, dispatcher, transportMocks.NewMessengerMock(), []int64{adminID}, "")

	summaries := []*model.EventSummary{{Event: *meetup, RegistrationCount: 1}}
	registrations := []*model.Registration{{EventID: 5, UserID: 10, FirstName: "Ann"}}

	events.On("ListEventsWithCounts", mock.Anything, false).Return(summaries, nil)
	events.On("ListEventsWithCounts", mock.Anything, true).Return(summaries, nil)
	events.On("GetActiveEvents", mock.Anything).Return([]*model.Event{meetup}, nil)
	events.On("GetEvent", mock.Anything, int64(5)).Return(meetup, nil)
	events.On("GetRegistrations", mock.Anything, int64(5)).Return(registrations, nil)
	events.On("GetRsvpResponses", mock.Anything, int64(5)).Return([]*model.RsvpResponse{}, nil)
	events.On("GetRsvpCounts", mock.Anything, int64(5)).Return(model.RsvpCounts{Attending: 1}, nil)
	dispatcher.On("Probe", mock.Anything, int64(5)).Return(&model.DeliveryReport{EventID: 5, Total: 1, Sent: 1, Reached: []int64{10}}, nil)

	tests := []struct {
		name   string
		update model.Update
		want   string
	}{
		{"Start", command(userID, "start", ""), "Welcome"},
		{"Events", command(userID, "events", ""), "Upcoming events"},
		{"ListEvents", command(adminID, "list_events", ""), "All events"},
		{"ListButton", press(adminID, callback.Admin(callback.MenuList)), "All events"},
		{"EventUsersPicker", press(adminID, callback.Admin(callback.MenuRegistrations)), pickEventUsers},
		{"EventUsers", command(adminID, "event_users", "5"), "Participants of Autumn Meetup"},
		{"EventUsersButton", press(adminID, callback.ForEvent(callback.ActionEventUsers, 5)), "Ann"},
		{"RsvpStats", command(adminID, "rsvp_stats", "5"), "Going: 1"},
		{"RsvpStatsButton", press(adminID, callback.ForEvent(callback.ActionViewStats, 5)), "Total answers: 1"},
		{"CheckUsers", command(adminID, "check_users", "5"), "Reachable (1)"},
		{"CheckUsersButton", press(adminID, callback.ForEvent(callback.ActionCheckUsers, 5)), "• Ann"},
		{"Back", press(adminID, callback.Admin(callback.MenuBack)), "Admin panel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := engine.Handle(ctx, tt.update)

			require.NotNil(t, reply)
			assert.Contains(t, reply.Text, tt.want)
		})
	}

	events.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "RecordRsvp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "DeactivateEvent", mock.Anything, mock.Anything)
}

func TestCreateEventOneShot(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		te := newTestEngine("")
		te.events.On("CreateEvent", mock.Anything, "Autumn Meetup ", " Community gathering", " 2025-11-01 ").Return(meetup, nil).Once()

		reply := te.Handle(ctx, command(adminID, "create_event", "Autumn Meetup | 2025-11-01 | Community gathering"))

		assert.Contains(t, reply.Text, "Event created")
		assert.Equal(t, session.Idle{}, te.state(t, adminID))
	})

	t.Run("MissingParts", func(t *testing.T) {
		te := newTestEngine("")

		reply := te.Handle(ctx, command(adminID, "create_event", "just a title"))

		assert.Equal(t, usageCreate, reply.Text)
	})

	t.Run("InvalidDate", func(t *testing.T) {
		te := newTestEngine("")
		te.events.On("CreateEvent", mock.Anything, "T ", "", " soon").
			Return(nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", apperrors.ErrValidation, "soon")).Once()

		reply := te.Handle(ctx, command(adminID, "create_event", "T | soon"))

		assert.Contains(t, reply.Text, "not YYYY-MM-DD")
		assert.Contains(t, reply.Text, usageCreate)
	})
}

func TestNotifyOneShot(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		te := newTestEngine("")
		te.events.On("GetEvent", mock.Anything, int64(5)).Return(meetup, nil).Once()
		te.dispatcher.On("Notify", mock.Anything, int64(5), "Bring snacks please").
			Return(&model.DeliveryReport{Total: 1, Sent: 1, Reached: []int64{10}}, nil).Once()

		reply := te.Handle(ctx, command(adminID, "notify_users", "5 Bring snacks please"))

		assert.Equal(t, "✅ Notifications sent to 1/1 users.", reply.Text)
	})

	t.Run("ClosedEvent", func(t *testing.T) {
		te := newTestEngine("")
		closed := *meetup
		closed.IsActive = false
		te.events.On("GetEvent", mock.Anything, int64(5)).Return(&closed, nil).Once()

		reply := te.Handle(ctx, command(adminID, "notify_users", "5 Bring snacks please"))

		assert.Equal(t, msgEventNotFound, reply.Text)
		te.dispatcher.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Usage", func(t *testing.T) {
		te := newTestEngine("")

		for _, args := range []string{"", "5", "abc hello", "-3 hello"} {
			reply := te.Handle(ctx, command(adminID, "notify_users", args))
			assert.Equal(t, usageNotify, reply.Text, args)
		}
	})
}

func TestPostCard(t *testing.T) {
	ctx := context.Background()
	counts := model.RsvpCounts{Attending: 2}

	t.Run("ToChannel", func(t *testing.T) {
		te := newTestEngine("@events")
		te.events.On("GetEvent", mock.Anything, int64(5)).Return(meetup, nil).Once()
		te.events.On("GetRsvpCounts", mock.Anything, int64(5)).Return(counts, nil).Once()
		te.messenger.On("Post", mock.Anything, "@events", mock.MatchedBy(func(msg model.OutgoingMessage) bool {
			return len(msg.Keyboard) == 1 && msg.Keyboard[0][0].Data == callback.Rsvp(5, model.RsvpAttending)
		})).Return(99, nil).Once()

		reply := te.Handle(ctx, press(adminID, callback.ForEvent(callback.ActionPostCard, 5)))

		assert.Contains(t, reply.Text, "posted to @events")
		te.messenger.AssertExpectations(t)
	})

	t.Run("NoChannelRepliesWithCard", func(t *testing.T) {
		te := newTestEngine("")
		te.events.On("GetEvent", mock.Anything, int64(5)).Return(meetup, nil).Once()
		te.events.On("GetRsvpCounts", mock.Anything, int64(5)).Return(counts, nil).Once()

		reply := te.Handle(ctx, command(adminID, "post_event_card", "5"))

		assert.Contains(t, reply.Text, "🎉 Autumn Meetup")
		assert.False(t, reply.Edit)
		require.Len(t, reply.Keyboard, 1)
		te.messenger.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ChannelRejects", func(t *testing.T) {
		te := newTestEngine("@events")
		te.events.On("GetEvent", mock.Anything, int64(5)).Return(meetup, nil).Once()
		te.events.On("GetRsvpCounts", mock.Anything, int64(5)).Return(counts, nil).Once()
		te.messenger.On("Post", mock.Anything, "@events", mock.Anything).Return(0, apperrors.ErrChannelNotAllowed).Once()

		reply := te.Handle(ctx, command(adminID, "post_event_card", "5"))

		assert.Contains(t, reply.Text, "cannot post to @events")
	})

	t.Run("PickerWithoutID", func(t *testing.T) {
		te := newTestEngine("")
		te.events.On("ListEventsWithCounts", mock.Anything, true).Return([]*model.EventSummary{{Event: *meetup}}, nil).Once()

		reply := te.Handle(ctx, command(adminID, "post_event_card", ""))

		assert.Equal(t, pickPostCard, reply.Text)
		assert.Equal(t, callback.ForEvent(callback.ActionPostCard, 5), reply.Keyboard[0][0].Data)
	})
}

func TestTestChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("NotConfigured", func(t *testing.T) {
		te := newTestEngine("")

		reply := te.Handle(ctx, command(adminID, "test_channel", ""))

		assert.Equal(t, msgNoChannel, reply.Text)
	})

	t.Run("Posted", func(t *testing.T) {
		te := newTestEngine("-100123")
		te.messenger.On("Post", mock.Anything, "-100123", model.OutgoingMessage{Text: msgTestChannel}).Return(1, nil).Once()

		reply := te.Handle(ctx, press(adminID, callback.Admin(callback.MenuTestChannel)))

		assert.Equal(t, "✅ Test message posted to -100123.", reply.Text)
	})

	t.Run("ChannelMissing", func(t *testing.T) {
		te := newTestEngine("@nope")
		te.messenger.On("Post", mock.Anything, "@nope", mock.Anything).Return(0, apperrors.ErrChatNotFound).Once()

		reply := te.Handle(ctx, command(adminID, "test_channel", ""))

		assert.Contains(t, reply.Text, "was not found")
	})
}

func TestCloseEvent(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine("")

	te.events.On("DeactivateEvent", mock.Anything, int64(5)).Return(nil).Once()
	te.events.On("DeactivateEvent", mock.Anything, int64(6)).Return(apperrors.ErrEventNotFound).Once()

	assert.Contains(t, te.Handle(ctx, command(adminID, "close_event", "5")).Text, "Event 5 closed")
	assert.Equal(t, msgEventNotFound, te.Handle(ctx, command(adminID, "close_event", "6")).Text)
	assert.Equal(t, usageCloseEvent, te.Handle(ctx, command(adminID, "close_event", "x")).Text)
}

func TestUnknownInput(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine("")

	assert.Equal(t, msgUnknownCommand, te.Handle(ctx, command(userID, "dance", "")).Text)
	assert.Equal(t, msgUnknownAction, te.Handle(ctx, press(userID, "rsvp:5:maybe")).Notice)
}

// deadlineTracker fails writes once the caller's context is done, as a network backed tracker does.
type deadlineTracker struct {
	*session.MemoryTracker
}

func (d deadlineTracker) Clear(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.MemoryTracker.Clear(ctx, id)
}

func TestNotificationFlow_FanOutOutlivesDeadline(t *testing.T) {
	te := newTestEngine("")
	tracker := deadlineTracker{MemoryTracker: te.sessions}
	te.Engine = NewEngine(te.events, tracker, te.dispatcher, te.messenger, []int64{adminID}, "")
	require.NoError(t, te.sessions.Set(context.Background(), adminID, session.AwaitingNotificationMessage{EventID: 5}))

	report := &model.DeliveryReport{EventID: 5, Total: 1, Sent: 1, Reached: []int64{10}}
	te.dispatcher.On("Notify", mock.Anything, int64(5), "Doors open at 7").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(report, nil).Once()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	reply := te.Handle(ctx, text(adminID, "Doors open at 7"))

	require.NotNil(t, reply)
	assert.Contains(t, reply.Text, "1/1")
	assert.Equal(t, session.Idle{}, te.state(t, adminID))
}
