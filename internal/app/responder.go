package app

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/m3rciful/refbot/core/telegram/keyboard"
	"github.com/m3rciful/refbot/core/telegram/sender"
	"github.com/m3rciful/refbot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

// ErrNotBound is returned when a send is attempted before the bot exists.
var ErrNotBound = errors.New("app: responder not bound to a bot")

// Responder adapts the dialog machine's outbound interface to telebot.
// The bot and the outbound dispatcher are bound at startup; scheduled
// tasks fire against the same instances long after the originating
// update is gone. Calls that need a result go through the dispatcher's
// synchronous retry path; deletes ride the async queue.
type Responder struct {
	bot  atomic.Pointer[tele.Bot]
	disp atomic.Pointer[sender.Dispatcher]
}

// NewResponder returns an unbound responder.
func NewResponder() *Responder {
	return &Responder{}
}

// Bind attaches the running bot and its outbound dispatcher. A nil
// dispatcher leaves calls running directly against the API.
func (r *Responder) Bind(bot *tele.Bot, disp *sender.Dispatcher) {
	r.bot.Store(bot)
	if disp != nil {
		r.disp.Store(disp)
	}
}

func (r *Responder) current() (*tele.Bot, error) {
	bot := r.bot.Load()
	if bot == nil {
		return nil, ErrNotBound
	}
	return bot, nil
}

func (r *Responder) do(ctx context.Context, action, endpoint string, run func() error) error {
	if d := r.disp.Load(); d != nil {
		return d.Do(ctx, action, endpoint, run)
	}
	return run()
}

func markup(kb *dialog.Keyboard) *tele.ReplyMarkup {
	if kb == nil {
		return nil
	}
	if len(kb.Reply) > 0 {
		return keyboard.Reply(kb.Reply...)
	}
	if len(kb.Inline) > 0 {
		rows := make([][]keyboard.InlineBtn, 0, len(kb.Inline))
		for _, row := range kb.Inline {
			buttons := make([]keyboard.InlineBtn, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, keyboard.InlineBtn{Text: b.Text, Data: b.Data})
			}
			rows = append(rows, buttons)
		}
		return keyboard.Inline(rows...)
	}
	return nil
}

func sendOpts(kb *dialog.Keyboard) []interface{} {
	if m := markup(kb); m != nil {
		return []interface{}{m}
	}
	return nil
}

// Send delivers a plain text message.
func (r *Responder) Send(ctx context.Context, chatID int64, text string, kb *dialog.Keyboard) (int, error) {
	bot, err := r.current()
	if err != nil {
		return 0, err
	}
	var msg *tele.Message
	err = r.do(ctx, "send.text", "sendMessage", func() error {
		m, serr := bot.Send(tele.ChatID(chatID), text, sendOpts(kb)...)
		if serr != nil {
			return serr
		}
		msg = m
		return nil
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// SendPhoto delivers a single photo with an optional caption.
func (r *Responder) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, kb *dialog.Keyboard) (int, error) {
	bot, err := r.current()
	if err != nil {
		return 0, err
	}
	photo := &tele.Photo{File: tele.File{FileID: fileID}, Caption: caption}
	var msg *tele.Message
	err = r.do(ctx, "send.photo", "sendPhoto", func() error {
		m, serr := bot.Send(tele.ChatID(chatID), photo, sendOpts(kb)...)
		if serr != nil {
			return serr
		}
		msg = m
		return nil
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// SendDocument delivers a single document with an optional caption.
func (r *Responder) SendDocument(ctx context.Context, chatID int64, fileID, caption string, kb *dialog.Keyboard) (int, error) {
	bot, err := r.current()
	if err != nil {
		return 0, err
	}
	doc := &tele.Document{File: tele.File{FileID: fileID}, Caption: caption}
	var msg *tele.Message
	err = r.do(ctx, "send.document", "sendDocument", func() error {
		m, serr := bot.Send(tele.ChatID(chatID), doc, sendOpts(kb)...)
		if serr != nil {
			return serr
		}
		msg = m
		return nil
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// SendAlbum delivers photos as one media group, captioning the first.
func (r *Responder) SendAlbum(ctx context.Context, chatID int64, photoIDs []string, caption string) ([]int, error) {
	bot, err := r.current()
	if err != nil {
		return nil, err
	}
	album := make(tele.Album, 0, len(photoIDs))
	for i, fileID := range photoIDs {
		photo := &tele.Photo{File: tele.File{FileID: fileID}}
		if i == 0 {
			photo.Caption = caption
		}
		album = append(album, photo)
	}
	var msgs []tele.Message
	err = r.do(ctx, "send.album", "sendMediaGroup", func() error {
		ms, serr := bot.SendAlbum(tele.ChatID(chatID), album)
		if serr != nil {
			return serr
		}
		msgs = ms
		return nil
	})
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// Edit rewrites a previously sent message in place.
func (r *Responder) Edit(ctx context.Context, chatID int64, messageID int, text string, kb *dialog.Keyboard) error {
	bot, err := r.current()
	if err != nil {
		return err
	}
	ref := tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
	return r.do(ctx, "edit.text", "editMessageText", func() error {
		_, serr := bot.Edit(ref, text, sendOpts(kb)...)
		return serr
	})
}

// Delete removes a message from the chat. Nothing waits on the result, so
// the call is queued; a saturated or closed queue falls back to a direct
// call.
func (r *Responder) Delete(ctx context.Context, chatID int64, messageID int) error {
	bot, err := r.current()
	if err != nil {
		return err
	}
	ref := tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
	run := func() error { return bot.Delete(ref) }
	if d := r.disp.Load(); d != nil {
		if err := d.Enqueue(ctx, "delete", "deleteMessage", run); err == nil {
			return nil
		}
	}
	return run()
}
