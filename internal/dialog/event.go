package dialog

// InboundEvent is the tagged inbound variant: exactly one of Message or
// Callback is set. The machine has a single dispatch point over the tag.
type InboundEvent struct {
	UserID      int64
	ChatID      int64
	DisplayName string

	Message  *MessageEvent
	Callback *CallbackEvent
}

// Key returns the session key for the event.
func (e InboundEvent) Key() Key {
	return Key{UserID: e.UserID, ChatID: e.ChatID}
}

// MessageEvent is an incoming chat message.
type MessageEvent struct {
	ID      int
	Text    string
	Caption string

	// Photo is the transport file id of the largest photo size, if any.
	Photo string
	// AlbumID groups photos delivered as one album burst.
	AlbumID  string
	Document *DocumentEvent
}

// DocumentEvent describes an attached document.
type DocumentEvent struct {
	FileID string
	MIME   string
	Size   int64
}

// CallbackEvent is a button press carrying an opaque token.
type CallbackEvent struct {
	MessageID int
	Token     string
}
