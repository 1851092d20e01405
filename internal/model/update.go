package model

// UpdateKind is the coarse shape of an inbound chat update.
type UpdateKind string

const (
	UpdateCommand  UpdateKind = "command"
	UpdateCallback UpdateKind = "callback"
	UpdateText     UpdateKind = "text"
)

// Update is the transport neutral form of one inbound interaction.
// It is what travels through the update queue.
type Update struct {
	UpdateID   int         `json:"update_id"`
	TraceID    string      `json:"trace_id,omitempty"`
	Kind       UpdateKind  `json:"kind"`
	ChatID     int64       `json:"chat_id"`
	MessageID  int         `json:"message_id,omitempty"`
	CallbackID string      `json:"callback_id,omitempty"`
	Sender     Participant `json:"sender"`
	Command    string      `json:"command,omitempty"`
	Args       string      `json:"args,omitempty"`
	Data       string      `json:"data,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Keyboard is a grid of inline buttons, one slice per row.
type Keyboard [][]Button

// OutgoingMessage is a message the bot sends on its own initiative.
type OutgoingMessage struct {
	Text     string   `json:"text"`
	Keyboard Keyboard `json:"keyboard,omitempty"`
}

// Reply is what the engine answers to one update.
type Reply struct {
	Text     string
	Keyboard Keyboard
	// Notice is the short acknowledgment shown for a button press.
	Notice string
	// Edit replaces the message the pressed button belongs to instead of sending a new one.
	Edit bool
}

func (r *Reply) Message() OutgoingMessage {
	return OutgoingMessage{Text: r.Text, Keyboard: r.Keyboard}
}
