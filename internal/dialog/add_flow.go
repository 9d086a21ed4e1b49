package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/refbot/core/logger"
	"github.com/m3rciful/refbot/internal/catalog"
	"github.com/m3rciful/refbot/internal/messages"
)

const (
	// AlbumCap bounds photos plus documents per entry.
	AlbumCap = 10
	// MaxDocumentSize is the per-document size ceiling.
	MaxDocumentSize = 20 << 20
)

var allowedDocumentMIMEs = map[string]struct{}{
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/pdf":               {},
	"application/vnd.ms-excel":      {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
}

func documentAllowed(doc *DocumentEvent) (ok bool, reason string) {
	if _, ok := allowedDocumentMIMEs[doc.MIME]; !ok {
		return false, messages.BadDocumentType
	}
	if doc.Size > MaxDocumentSize {
		return false, messages.DocumentTooBig
	}
	return true, ""
}

// startAdd resets the session and enters the question step. This is the only
// entry point of the add flow.
func (m *Machine) startAdd(ctx context.Context, ev InboundEvent, kind catalog.Kind) error {
	key := ev.Key()
	m.sessions.Reset(key)
	m.sessions.Do(key, func(s *Session) {
		s.State = StateQuestion
		s.Active = true
		s.Kind = kind
	})

	prompt := messages.PromptQuestionGuide
	if kind == catalog.KindTemplate {
		prompt = messages.PromptQuestionTemplate
	}
	_, err := m.resp.Send(ctx, ev.ChatID, prompt, cancelMenu())
	return err
}

// onQuestion accepts only non-empty text; anything else re-prompts in place.
func (m *Machine) onQuestion(ctx context.Context, ev InboundEvent) error {
	key := ev.Key()
	text := strings.TrimSpace(ev.Message.Text)
	if text == "" || ev.Message.Photo != "" || ev.Message.Document != nil {
		var kind catalog.Kind
		m.sessions.Peek(key, func(s *Session) { kind = s.Kind })
		prompt := messages.PromptQuestionGuide
		if kind == catalog.KindTemplate {
			prompt = messages.PromptQuestionTemplate
		}
		_, err := m.resp.Send(ctx, ev.ChatID, prompt, cancelMenu())
		return err
	}

	m.sessions.Do(key, func(s *Session) {
		s.Question = text
		s.State = StateAnswer
	})

	prompt := messages.PromptAnswer
	if m.attachments {
		prompt = messages.PromptAnswerWithFiles
	}
	_, err := m.resp.Send(ctx, ev.ChatID, prompt, cancelMenu())
	return err
}

// onAnswer handles the answer step. Bare text commits immediately; an
// attachment engages the attachment-collecting sub-state.
func (m *Machine) onAnswer(ctx context.Context, ev InboundEvent) error {
	key := ev.Key()
	msg := ev.Message

	switch {
	case strings.TrimSpace(msg.Text) == messages.BtnDone:
		return m.commit(ctx, ev)

	case msg.Photo != "":
		if !m.attachments {
			_, err := m.resp.Send(ctx, ev.ChatID, messages.PromptAnswer, cancelMenu())
			return err
		}
		if msg.AlbumID != "" {
			// The album arrived as the answer itself: the flush commits.
			return m.acceptAlbumPhoto(ctx, ev, true)
		}
		var total int
		m.sessions.Do(key, func(s *Session) {
			appendRef(&s.Photos, msg.Photo)
			if msg.Caption != "" && s.Answer == "" {
				s.Answer = msg.Caption
			}
			s.State = StateAnswerAttachments
			total = len(s.Photos)
		})
		_, err := m.resp.Send(ctx, ev.ChatID, messages.PhotoAdded(total), doneMenu())
		return err

	case msg.Document != nil:
		if !m.attachments {
			_, err := m.resp.Send(ctx, ev.ChatID, messages.PromptAnswer, cancelMenu())
			return err
		}
		if ok, reason := documentAllowed(msg.Document); !ok {
			_, err := m.resp.Send(ctx, ev.ChatID, reason, doneMenu())
			return err
		}
		var total int
		m.sessions.Do(key, func(s *Session) {
			appendRef(&s.Documents, msg.Document.FileID)
			if msg.Caption != "" && s.Answer == "" {
				s.Answer = msg.Caption
			}
			s.State = StateAnswerAttachments
			total = len(s.Documents)
		})
		_, err := m.resp.Send(ctx, ev.ChatID, messages.DocumentAdded(total), doneMenu())
		return err

	case strings.TrimSpace(msg.Text) != "":
		m.sessions.Do(key, func(s *Session) {
			s.Answer = strings.TrimSpace(msg.Text)
		})
		return m.commit(ctx, ev)
	}

	_, err := m.resp.Send(ctx, ev.ChatID, messages.InvalidInput, cancelMenu())
	return err
}

// onAttachments collects attachments until the sentinel.
func (m *Machine) onAttachments(ctx context.Context, ev InboundEvent) error {
	key := ev.Key()
	msg := ev.Message

	switch {
	case strings.TrimSpace(msg.Text) == messages.BtnDone:
		return m.commit(ctx, ev)

	case msg.Photo != "":
		if m.attachmentLimitReached(key) {
			_, err := m.resp.Send(ctx, ev.ChatID, messages.TooManyFiles(AlbumCap), doneMenu())
			return err
		}
		if msg.AlbumID != "" {
			return m.acceptAlbumPhoto(ctx, ev, false)
		}
		var total int
		m.sessions.Do(key, func(s *Session) {
			appendRef(&s.Photos, msg.Photo)
			if msg.Caption != "" && s.Answer == "" {
				s.Answer = msg.Caption
			}
			total = len(s.Photos)
		})
		_, err := m.resp.Send(ctx, ev.ChatID, messages.PhotoAdded(total), doneMenu())
		return err

	case msg.Document != nil:
		if m.attachmentLimitReached(key) {
			_, err := m.resp.Send(ctx, ev.ChatID, messages.TooManyFiles(AlbumCap), doneMenu())
			return err
		}
		if ok, reason := documentAllowed(msg.Document); !ok {
			_, err := m.resp.Send(ctx, ev.ChatID, reason, doneMenu())
			return err
		}
		var total int
		m.sessions.Do(key, func(s *Session) {
			appendRef(&s.Documents, msg.Document.FileID)
			if msg.Caption != "" && s.Answer == "" {
				s.Answer = msg.Caption
			}
			total = len(s.Documents)
		})
		_, err := m.resp.Send(ctx, ev.ChatID, messages.DocumentAdded(total), doneMenu())
		return err

	case strings.TrimSpace(msg.Text) != "":
		m.sessions.Do(key, func(s *Session) {
			s.Answer = strings.TrimSpace(msg.Text)
		})
		_, err := m.resp.Send(ctx, ev.ChatID, messages.AnswerStored, doneMenu())
		return err
	}

	_, err := m.resp.Send(ctx, ev.ChatID, messages.InvalidInput, doneMenu())
	return err
}

// attachmentLimitReached counts buffered album photos too, so a burst
// cannot carry the combined total past the cap once it folds in.
func (m *Machine) attachmentLimitReached(key Key) bool {
	reached := false
	m.sessions.Peek(key, func(s *Session) {
		reached = len(s.Photos)+len(s.Documents)+len(s.PendingPhotos) >= AlbumCap
	})
	return reached
}

// draft is the by-value copy of a claimed commit.
type draft struct {
	kind      catalog.Kind
	question  string
	answer    string
	photos    []string
	documents []string
	name      string
}

// commit writes the draft exactly once. The point-saved flag is checked and
// set under the session lock; both the debounce timer path and the message
// path go through here, and whichever loses the claim no-ops silently.
// Storage I/O happens outside the lock.
func (m *Machine) commit(ctx context.Context, ev InboundEvent) error {
	key := ev.Key()
	var d draft
	claimed := false
	empty := false
	m.sessions.Do(key, func(s *Session) {
		if !s.Active || s.PointSaved {
			return
		}
		foldPending(s)
		if s.Answer == "" && len(s.Photos) == 0 && len(s.Documents) == 0 {
			empty = true
			return
		}
		s.PointSaved = true
		claimed = true
		d = draft{
			kind:      s.Kind,
			question:  s.Question,
			answer:    s.Answer,
			photos:    append([]string(nil), s.Photos...),
			documents: append([]string(nil), s.Documents...),
			name:      s.DisplayName,
		}
	})
	if empty {
		prompt := messages.PromptAnswer
		if m.attachments {
			prompt = messages.PromptAnswerWithFiles
		}
		_, err := m.resp.Send(ctx, ev.ChatID, prompt, cancelMenu())
		return err
	}
	if !claimed {
		return nil
	}

	col, err := m.store.Load(ctx, d.kind)
	if err != nil {
		return err
	}
	id := col.Append(catalog.Entry{
		Question:  d.question,
		Answer:    d.answer,
		Photos:    d.photos,
		Documents: d.documents,
	})
	saveErr := m.store.Save(ctx, d.kind, col)
	if saveErr != nil && !catalog.IsSyncError(saveErr) {
		// The local write failed; release the claim so the user can retry.
		m.sessions.Do(key, func(s *Session) { s.PointSaved = false })
		return saveErr
	}

	logger.Info(ctx, "dialog", "point_saved",
		slog.Int64("user_id", key.UserID),
		slog.String("kind", string(d.kind)),
		slog.Int("id", id),
	)
	m.record(ctx, ev, "save_point",
		fmt.Sprintf("Пользователь сохранил пункт в %s: %s", d.kind, d.question))

	m.sessions.Reset(key)
	if _, err := m.resp.Send(ctx, ev.ChatID, messages.EntrySaved(d.kind == catalog.KindGuide, d.question), MainMenu()); err != nil {
		return err
	}
	if catalog.IsSyncError(saveErr) {
		_, err := m.resp.Send(ctx, ev.ChatID, messages.SyncWarning, nil)
		return err
	}
	return nil
}

// foldPending moves buffered album photos into the draft, deduplicated,
// preserving first-arrival order. The combined cap holds here as well;
// photos past it are dropped.
func foldPending(s *Session) {
	for _, ref := range s.PendingPhotos {
		if len(s.Photos)+len(s.Documents) >= AlbumCap {
			break
		}
		appendRef(&s.Photos, ref)
	}
	s.PendingPhotos = nil
}

// appendRef appends ref unless it is already present.
func appendRef(refs *[]string, ref string) {
	for _, r := range *refs {
		if r == ref {
			return
		}
	}
	*refs = append(*refs, ref)
}
