package bot

const (
	msgRefusal        = "⛔ This action is only available to administrators."
	msgTryLater       = "⚠️ Something went wrong. Please try again later."
	msgEventNotFound  = "❗ Event not found or no longer active."
	msgUnknownAction  = "❗ Unknown action."
	msgUnknownCommand = "Unknown command. Send /start to see what I can do."
	msgIdleHint       = "Use /admin to open the admin panel."
	msgCancelled      = "❌ Cancelled. Nothing was saved."
	msgNothingPending = "Nothing to cancel."

	promptTitle        = "📝 Send the event title."
	promptTitleEmpty   = "❗ The title cannot be empty. Send the event title."
	promptDate         = "📅 Send the event date as YYYY-MM-DD, e.g. 2026-12-31."
	promptDateInvalid  = "❗ That is not a valid date. Send it as YYYY-MM-DD, e.g. 2026-12-31."
	promptDescription  = "📄 Send a short description, or - to leave it empty."
	promptDescEmpty    = "❗ Send a description, or - to leave it empty."
	promptNotification = "✍️ Send the message for everyone registered for %s."
	promptMessageEmpty = "❗ The message cannot be empty. Send the notification text."

	pickEventUsers  = "👥 Choose an event to see its participants:"
	pickNotify      = "📢 Choose an event to notify:"
	pickPostCard    = "🎫 Choose an event to post a card for:"
	pickRsvpStats   = "📊 Choose an event to see RSVP stats:"
	pickCheckUsers  = "🔍 Choose an event to check its participants:"
	usageCreate     = "Usage: /create_event <title> | <YYYY-MM-DD> | <description>"
	usageNotify     = "Usage: /notify_users <event id> <message>"
	usageCloseEvent = "Usage: /close_event <event id>"
	usageEventID    = "Usage: /%s [event id]"

	msgNoChannel   = "No channel is configured. Set CHANNEL_ID to post event cards to a channel."
	msgTestChannel = "🔧 Test message from the event bot."
)
