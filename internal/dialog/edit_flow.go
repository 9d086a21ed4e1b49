package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/m3rciful/refbot/internal/catalog"
	"github.com/m3rciful/refbot/internal/messages"
	"github.com/m3rciful/refbot/internal/payload"
)

func fieldName(f payload.Field) string {
	switch f {
	case payload.FieldQuestion:
		return "вопрос"
	case payload.FieldAnswer:
		return "ответ"
	case payload.FieldPhoto:
		return "фото/альбом"
	}
	return string(f)
}

// startEdit opens the entry picker for the edit flow.
func (m *Machine) startEdit(ctx context.Context, ev InboundEvent, kind catalog.Kind) error {
	col, err := m.store.Load(ctx, kind)
	if err != nil {
		return err
	}

	key := ev.Key()
	m.sessions.Reset(key)
	if len(col.Entries) == 0 {
		text := messages.GuideEmpty
		if kind == catalog.KindTemplate {
			text = messages.TemplateEmpty
		}
		_, err := m.resp.Send(ctx, ev.ChatID, text, MainMenu())
		return err
	}
	m.sessions.Do(key, func(s *Session) {
		s.State = StateEditSelect
		s.Active = true
		s.Kind = kind
		s.Snapshot = &col
		s.Page = 0
	})
	return m.sendPage(ctx, ev.ChatID, kind, col.Entries, 0, true)
}

// onEditSelect records the picked entry and offers the field keyboard.
func (m *Machine) onEditSelect(ctx context.Context, ev InboundEvent, kind catalog.Kind, id int) error {
	key := ev.Key()
	valid := false
	m.sessions.Peek(key, func(s *Session) {
		valid = s.Active && s.State == StateEditSelect && s.Kind == kind
	})
	if !valid {
		return m.sequencingFailure(ctx, key, ev.ChatID)
	}

	col, err := m.store.Load(ctx, kind)
	if err != nil {
		return err
	}
	if _, _, found := col.Find(id); !found {
		m.sessions.Reset(key)
		_, err := m.resp.Send(ctx, ev.ChatID, messages.EntryMissing, MainMenu())
		return err
	}

	m.sessions.Do(key, func(s *Session) {
		s.EditID = id
		s.State = StateEditField
	})
	_, err = m.resp.Send(ctx, ev.ChatID, messages.PromptEditField, fieldKeyboard(kind))
	return err
}

// onEditField branches on the picked field. Delete commits in the same step;
// every other field prompts for the replacement value.
func (m *Machine) onEditField(ctx context.Context, ev InboundEvent, kind catalog.Kind, field payload.Field) error {
	key := ev.Key()
	valid := false
	var id int
	m.sessions.Peek(key, func(s *Session) {
		valid = s.Active && s.State == StateEditField && s.Kind == kind
		id = s.EditID
	})
	if !valid {
		return m.sequencingFailure(ctx, key, ev.ChatID)
	}

	if field == payload.FieldDelete {
		return m.deleteEntry(ctx, ev, kind, id)
	}

	col, err := m.store.Load(ctx, kind)
	if err != nil {
		return err
	}
	entry, _, found := col.Find(id)
	if !found {
		m.sessions.Reset(key)
		_, err := m.resp.Send(ctx, ev.ChatID, messages.EntryMissing, MainMenu())
		return err
	}

	current := ""
	switch field {
	case payload.FieldQuestion:
		current = fmt.Sprintf("Текущий вопрос: %s\n", entry.Question)
	case payload.FieldAnswer:
		answer := entry.Answer
		if answer == "" {
			answer = "Отсутствует"
		}
		current = fmt.Sprintf("Текущий ответ: %s\n", answer)
	case payload.FieldPhoto:
		current = fmt.Sprintf("Текущие фото: %d шт.\n", len(entry.Photos))
	}

	m.sessions.Do(key, func(s *Session) {
		s.EditField = field
		s.State = StateEditValue
	})
	_, err = m.resp.Send(ctx, ev.ChatID, messages.PromptEditValue(current, fieldName(field)), cancelMenu())
	return err
}

// deleteEntry removes the picked entry and commits immediately.
func (m *Machine) deleteEntry(ctx context.Context, ev InboundEvent, kind catalog.Kind, id int) error {
	key := ev.Key()
	col, err := m.store.Load(ctx, kind)
	if err != nil {
		return err
	}
	if !col.Remove(id) {
		m.sessions.Reset(key)
		_, err := m.resp.Send(ctx, ev.ChatID, messages.EntryMissing, MainMenu())
		return err
	}
	saveErr := m.store.Save(ctx, kind, col)
	if saveErr != nil && !catalog.IsSyncError(saveErr) {
		return saveErr
	}

	m.record(ctx, ev, "delete_point", fmt.Sprintf("Пользователь удалил %s ID %d", kind, id))
	m.sessions.Reset(key)

	text := messages.EntryDeleted
	if kind == catalog.KindTemplate {
		text = messages.TemplateDeleted
	}
	if _, err := m.resp.Send(ctx, ev.ChatID, text, MainMenu()); err != nil {
		return err
	}
	if catalog.IsSyncError(saveErr) {
		_, err := m.resp.Send(ctx, ev.ChatID, messages.SyncWarning, nil)
		return err
	}
	return nil
}

// onEditValue applies the replacement value to the picked field. Replacing
// photos swaps the whole attachment list, it never appends.
func (m *Machine) onEditValue(ctx context.Context, ev InboundEvent) error {
	key := ev.Key()
	var kind catalog.Kind
	var field payload.Field
	var id int
	m.sessions.Peek(key, func(s *Session) {
		kind, field, id = s.Kind, s.EditField, s.EditID
	})

	msg := ev.Message
	text := strings.TrimSpace(msg.Text)

	var apply func(e *catalog.Entry)
	switch field {
	case payload.FieldQuestion, payload.FieldAnswer:
		if text == "" {
			_, err := m.resp.Send(ctx, ev.ChatID, messages.PromptEditValue("", fieldName(field)), cancelMenu())
			return err
		}
		if field == payload.FieldQuestion {
			apply = func(e *catalog.Entry) { e.Question = text }
		} else {
			apply = func(e *catalog.Entry) { e.Answer = text }
		}
	case payload.FieldPhoto:
		switch {
		case msg.Photo != "":
			apply = func(e *catalog.Entry) {
				e.Photos = []string{msg.Photo}
				e.Documents = nil
			}
		case msg.Document != nil:
			if ok, reason := documentAllowed(msg.Document); !ok {
				_, err := m.resp.Send(ctx, ev.ChatID, reason, cancelMenu())
				return err
			}
			apply = func(e *catalog.Entry) {
				e.Documents = []string{msg.Document.FileID}
				e.Photos = nil
			}
		default:
			_, err := m.resp.Send(ctx, ev.ChatID, messages.InvalidInput, cancelMenu())
			return err
		}
	default:
		return m.sequencingFailure(ctx, key, ev.ChatID)
	}

	col, err := m.store.Load(ctx, kind)
	if err != nil {
		return err
	}
	entry, _, found := col.Find(id)
	if !found {
		m.sessions.Reset(key)
		_, err := m.resp.Send(ctx, ev.ChatID, messages.EntryMissing, MainMenu())
		return err
	}
	apply(&entry)
	col.Replace(entry)
	saveErr := m.store.Save(ctx, kind, col)
	if saveErr != nil && !catalog.IsSyncError(saveErr) {
		return saveErr
	}

	m.record(ctx, ev, "edit_value",
		fmt.Sprintf("Пользователь изменил %s для %s ID %d", fieldName(field), kind, id))
	m.sessions.Reset(key)

	name := []rune(fieldName(field))
	label := strings.ToUpper(string(name[:1])) + string(name[1:])
	if _, err := m.resp.Send(ctx, ev.ChatID, messages.FieldChanged(label), MainMenu()); err != nil {
		return err
	}
	if catalog.IsSyncError(saveErr) {
		_, err := m.resp.Send(ctx, ev.ChatID, messages.SyncWarning, nil)
		return err
	}
	return nil
}
