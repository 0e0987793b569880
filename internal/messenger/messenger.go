package messenger

// Messenger is the messaging adapter abstraction used by the bot. It is the
// only contact point with the chat platform, so handlers can be tested with
// fakes.
type Messenger interface {
	GetUpdates(offset int64, timeout int) ([]Update, error)
	SendMessage(chatID int64, text string) error
	SendChatAction(chatID int64, action string) error
}

// Update represents one incoming update from the platform.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message represents an inbound message.
type Message struct {
	Chat Chat    `json:"chat"`
	Text *string `json:"text,omitempty"`
	Date int64   `json:"date"`
}

// Chat identifies a conversation.
type Chat struct {
	ID int64 `json:"id"`
}
