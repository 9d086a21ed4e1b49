package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/refbot/core/logger"
	"github.com/m3rciful/refbot/internal/catalog"
	"github.com/m3rciful/refbot/internal/messages"
	"github.com/m3rciful/refbot/internal/pager"
	"github.com/m3rciful/refbot/internal/payload"
)

// answerTTL is how long a shown answer stays in the chat before the sweep.
const answerTTL = 30 * time.Minute

func (m *Machine) openGuide(ctx context.Context, ev InboundEvent) error {
	m.record(ctx, ev, "open_guide", "Пользователь открыл справочник")
	col, err := m.store.Load(ctx, catalog.KindGuide)
	if err != nil {
		return err
	}

	key := ev.Key()
	m.sessions.Reset(key)
	if len(col.Entries) == 0 {
		_, err := m.resp.Send(ctx, ev.ChatID, messages.GuideEmpty, MainMenu())
		return err
	}
	m.sessions.Do(key, func(s *Session) {
		s.Kind = catalog.KindGuide
		s.Snapshot = &col
		s.Page = 0
	})
	return m.sendPage(ctx, ev.ChatID, catalog.KindGuide, col.Entries, 0, false)
}

func (m *Machine) openTemplates(ctx context.Context, ev InboundEvent) error {
	m.record(ctx, ev, "open_templates", "Пользователь открыл шаблоны")
	col, err := m.store.Load(ctx, catalog.KindTemplate)
	if err != nil {
		return err
	}

	key := ev.Key()
	m.sessions.Reset(key)
	if len(col.Entries) == 0 {
		kb := &Keyboard{Inline: [][]Button{
			{{Text: messages.BtnAddTemplate, Data: payload.Payload{Action: payload.ActionAdd, Kind: catalog.KindTemplate}.Token()}},
			{{Text: messages.BtnBackToMenu, Data: payload.Payload{Action: payload.ActionCancel, Kind: catalog.KindTemplate}.Token()}},
		}}
		_, err := m.resp.Send(ctx, ev.ChatID, messages.TemplateEmpty, kb)
		return err
	}
	m.sessions.Do(key, func(s *Session) {
		s.Kind = catalog.KindTemplate
		s.Snapshot = &col
		s.Page = 0
	})
	return m.sendPage(ctx, ev.ChatID, catalog.KindTemplate, col.Entries, 0, false)
}

// flipPage re-renders the list message in place. The session snapshot is
// reused when it matches the kind, so search results keep paging correctly;
// otherwise the collection is reloaded.
func (m *Machine) flipPage(ctx context.Context, ev InboundEvent, kind catalog.Kind, page int, edit bool) error {
	key := ev.Key()
	var items []catalog.Entry
	m.sessions.Peek(key, func(s *Session) {
		if s.Snapshot != nil && s.Kind == kind {
			items = s.Snapshot.Entries
		}
	})
	if items == nil {
		col, err := m.store.Load(ctx, kind)
		if err != nil {
			return err
		}
		items = col.Entries
		m.sessions.Do(key, func(s *Session) {
			s.Kind = kind
			s.Snapshot = &col
		})
	}

	p, ok := pager.Render(items, page, m.pageSize)
	if !ok {
		text := messages.GuideEmpty
		if kind == catalog.KindTemplate {
			text = messages.TemplateEmpty
		}
		_, err := m.resp.Send(ctx, ev.ChatID, text, MainMenu())
		return err
	}
	m.sessions.Do(key, func(s *Session) { s.Page = p.Number })
	return m.resp.Edit(ctx, ev.ChatID, ev.Callback.MessageID, messages.ChooseItem, browseKeyboard(kind, p, edit))
}

// showAnswer renders one entry: caption text plus its photos and documents.
// Everything sent is remembered for the delete button and swept after the
// TTL elapses.
func (m *Machine) showAnswer(ctx context.Context, ev InboundEvent, kind catalog.Kind, id int) error {
	m.record(ctx, ev, "show_answer", fmt.Sprintf("Пользователь открыл пункт %s ID %d", kind, id))

	col, err := m.store.Load(ctx, kind)
	if err != nil {
		return err
	}
	entry, _, found := col.Find(id)
	if !found {
		_, err := m.resp.Send(ctx, ev.ChatID, messages.EntryMissing, MainMenu())
		return err
	}

	text := messages.EntryText(entry.Question, entry.Answer)
	var msgIDs []int

	switch {
	case m.attachments && len(entry.Photos) == 1:
		mid, err := m.resp.SendPhoto(ctx, ev.ChatID, entry.Photos[0], text, deleteButton(id))
		if err != nil {
			return err
		}
		msgIDs = append(msgIDs, mid)
	case m.attachments && len(entry.Photos) > 1:
		for start := 0; start < len(entry.Photos); start += AlbumCap {
			end := start + AlbumCap
			if end > len(entry.Photos) {
				end = len(entry.Photos)
			}
			caption := ""
			if start == 0 {
				caption = text
			}
			ids, err := m.resp.SendAlbum(ctx, ev.ChatID, entry.Photos[start:end], caption)
			if err != nil {
				return err
			}
			msgIDs = append(msgIDs, ids...)
		}
		mid, err := m.resp.Send(ctx, ev.ChatID, messages.TapToDelete, deleteButton(id))
		if err != nil {
			return err
		}
		msgIDs = append(msgIDs, mid)
	}

	for i, docID := range entry.Documents {
		caption := ""
		var kb *Keyboard
		if i == 0 && len(msgIDs) == 0 {
			caption = text
			kb = deleteButton(id)
		}
		mid, err := m.resp.SendDocument(ctx, ev.ChatID, docID, caption, kb)
		if err != nil {
			return err
		}
		msgIDs = append(msgIDs, mid)
	}

	if len(msgIDs) == 0 {
		mid, err := m.resp.Send(ctx, ev.ChatID, text, deleteButton(id))
		if err != nil {
			return err
		}
		msgIDs = append(msgIDs, mid)
	}

	key := ev.Key()
	m.sessions.Do(key, func(s *Session) {
		if s.AnswerMsgs == nil {
			s.AnswerMsgs = make(map[int][]int)
		}
		s.AnswerMsgs[id] = msgIDs
	})

	m.sched.RunAfter(answerTTL, answerSweepTask{
		machine: m,
		key:     key,
		chatID:  ev.ChatID,
		entryID: id,
		msgIDs:  append([]int(nil), msgIDs...),
	})
	logger.Debug(ctx, "dialog", "answer_sweep_scheduled",
		slog.Int64("user_id", key.UserID),
		slog.Int("entry_id", id),
		slog.Int("messages", len(msgIDs)),
	)
	return nil
}

// answerSweepTask removes a shown answer after its TTL. It carries the
// message ids by value; a user who already pressed the delete button just
// produces harmless delete failures.
type answerSweepTask struct {
	machine *Machine
	key     Key
	chatID  int64
	entryID int
	msgIDs  []int
}

// Run implements scheduler.Task.
func (t answerSweepTask) Run() {
	ctx := context.Background()
	for _, mid := range t.msgIDs {
		if err := t.machine.resp.Delete(ctx, t.chatID, mid); err != nil {
			logger.Debug(ctx, "dialog", "sweep_delete_failed",
				slog.Int("message_id", mid),
				slog.String("error", err.Error()),
			)
		}
	}
	t.machine.sessions.Peek(t.key, func(s *Session) {
		delete(s.AnswerMsgs, t.entryID)
	})
}

// deleteAnswer handles the delete button under a shown answer.
func (m *Machine) deleteAnswer(ctx context.Context, ev InboundEvent, id int) error {
	key := ev.Key()
	var msgIDs []int
	m.sessions.Peek(key, func(s *Session) {
		msgIDs = s.AnswerMsgs[id]
		delete(s.AnswerMsgs, id)
	})
	if len(msgIDs) == 0 {
		return nil
	}

	deleted := 0
	for _, mid := range msgIDs {
		if err := m.resp.Delete(ctx, ev.ChatID, mid); err != nil {
			logger.Debug(ctx, "dialog", "answer_delete_failed",
				slog.Int("message_id", mid),
				slog.String("error", err.Error()),
			)
			continue
		}
		deleted++
	}
	m.record(ctx, ev, "delete_answer", fmt.Sprintf("Пользователь удалил %d сообщений", deleted))
	return nil
}
