package app

import (
	"strings"

	"github.com/m3rciful/refbot/core/telegram/callbacks"
	"github.com/m3rciful/refbot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

// displayName prefers the username and falls back to the profile name.
func displayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

func eventBase(c tele.Context) dialog.InboundEvent {
	ev := dialog.InboundEvent{DisplayName: displayName(c.Sender())}
	if s := c.Sender(); s != nil {
		ev.UserID = s.ID
	}
	if ch := c.Chat(); ch != nil {
		ev.ChatID = ch.ID
	}
	return ev
}

// messageEvent maps an incoming update to the machine's message event.
func messageEvent(c tele.Context) dialog.InboundEvent {
	ev := eventBase(c)
	msg := c.Message()
	if msg == nil {
		return ev
	}
	me := &dialog.MessageEvent{
		ID:      msg.ID,
		Text:    msg.Text,
		Caption: msg.Caption,
		AlbumID: msg.AlbumID,
	}
	if msg.Photo != nil {
		me.Photo = msg.Photo.FileID
	}
	if msg.Document != nil {
		me.Document = &dialog.DocumentEvent{
			FileID: msg.Document.FileID,
			MIME:   msg.Document.MIME,
			Size:   msg.Document.FileSize,
		}
	}
	ev.Message = me
	return ev
}

// callbackEvent maps a button press to the machine's callback event.
func callbackEvent(c tele.Context) dialog.InboundEvent {
	ev := eventBase(c)
	cb := c.Callback()
	if cb == nil {
		return ev
	}
	ce := &dialog.CallbackEvent{Token: callbacks.Token(cb)}
	if cb.Message != nil {
		ce.MessageID = cb.Message.ID
		ev.ChatID = cb.Message.Chat.ID
	}
	ev.Callback = ce
	return ev
}
