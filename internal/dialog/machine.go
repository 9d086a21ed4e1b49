package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/refbot/core/logger"
	"github.com/m3rciful/refbot/core/scheduler"
	"github.com/m3rciful/refbot/internal/access"
	"github.com/m3rciful/refbot/internal/audit"
	"github.com/m3rciful/refbot/internal/catalog"
	"github.com/m3rciful/refbot/internal/messages"
	"github.com/m3rciful/refbot/internal/pager"
	"github.com/m3rciful/refbot/internal/payload"
	"github.com/m3rciful/refbot/internal/search"
)

// Config wires the machine's collaborators.
type Config struct {
	Store     catalog.Store
	Scheduler scheduler.Scheduler
	Responder Responder
	Gate      *access.Gate
	Recorder  audit.Recorder

	// AttachmentsEnabled turns photo/document support on in the add flow.
	AttachmentsEnabled bool
	PageSize           int
}

// Machine drives every conversation. One instance serves all users; state
// lives in the keyed session store.
type Machine struct {
	store       catalog.Store
	sessions    *Sessions
	sched       scheduler.Scheduler
	resp        Responder
	gate        *access.Gate
	recorder    audit.Recorder
	attachments bool
	pageSize    int
}

// New builds a machine.
func New(cfg Config) *Machine {
	pageSize := cfg.PageSize
	if pageSize < 1 {
		pageSize = pager.DefaultPageSize
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = audit.NewMemoryRecorder()
	}
	return &Machine{
		store:       cfg.Store,
		sessions:    NewSessions(),
		sched:       cfg.Scheduler,
		resp:        cfg.Responder,
		gate:        cfg.Gate,
		recorder:    recorder,
		attachments: cfg.AttachmentsEnabled,
		pageSize:    pageSize,
	}
}

// Sessions exposes the session store for the cleanup sweep and tests.
func (m *Machine) Sessions() *Sessions { return m.sessions }

// HandleEvent is the single dispatch point for inbound events. Unauthorized
// users get the fixed denial and never touch session or collection state.
// Handler failures are absorbed here: the session is reset to the error
// marker and the user sees a generic apology.
func (m *Machine) HandleEvent(ctx context.Context, ev InboundEvent) error {
	if !m.admit(ctx, ev) {
		return nil
	}
	key := ev.Key()
	m.sessions.Do(key, func(s *Session) {
		if ev.DisplayName != "" {
			s.DisplayName = ev.DisplayName
		}
	})

	defer func() {
		if r := recover(); r != nil {
			m.failSession(ctx, key, ev.ChatID, fmt.Errorf("panic: %v", r))
		}
	}()

	var err error
	switch {
	case ev.Callback != nil:
		err = m.handleCallback(ctx, ev)
	case ev.Message != nil:
		err = m.handleMessage(ctx, ev)
	default:
		return nil
	}
	if err != nil {
		m.failSession(ctx, key, ev.ChatID, err)
	}
	return nil
}

// admit runs the access gate. Denial happens before any session write.
func (m *Machine) admit(ctx context.Context, ev InboundEvent) bool {
	if m.gate.Allowed(ev.UserID) {
		return true
	}
	logger.Warn(ctx, "dialog", "access_denied", slog.Int64("user_id", ev.UserID))
	if _, err := m.resp.Send(ctx, ev.ChatID, messages.AccessDenied, nil); err != nil {
		logger.Error(ctx, "dialog", "denial_send_failed", slog.String("error", err.Error()))
	}
	return false
}

// failSession is the outermost error boundary.
func (m *Machine) failSession(ctx context.Context, key Key, chatID int64, cause error) {
	logger.Error(ctx, "dialog", "handler_failed",
		slog.Int64("user_id", key.UserID),
		slog.String("error", cause.Error()),
	)
	m.sessions.Reset(key)
	m.sessions.Do(key, func(s *Session) { s.State = StateError })
	if _, err := m.resp.Send(ctx, chatID, messages.GenericError, MainMenu()); err != nil {
		logger.Error(ctx, "dialog", "apology_send_failed", slog.String("error", err.Error()))
	}
}

func (m *Machine) handleMessage(ctx context.Context, ev InboundEvent) error {
	msg := ev.Message
	key := ev.Key()

	var st State
	var active, pending bool
	var albumID string
	m.sessions.Do(key, func(s *Session) {
		st, active = s.State, s.Active
		pending = len(s.PendingPhotos) > 0
		albumID = s.AlbumID
	})

	// An unrelated message closes a pending album burst. The interrupter is
	// never treated as an album member; once the flush settles it proceeds
	// against the resulting session, so a menu press during the closing
	// burst lands on the first try. A sentinel that raced a committing
	// flush asked for what already happened and stops here.
	if active && pending && msg.AlbumID != albumID {
		committed, err := m.interruptAlbum(ctx, key, ev.ChatID)
		if err != nil {
			return err
		}
		if committed && strings.TrimSpace(msg.Text) == messages.BtnDone {
			return nil
		}
		m.sessions.Do(key, func(s *Session) { st, active = s.State, s.Active })
	}

	if active {
		switch st {
		case StateQuestion:
			return m.onQuestion(ctx, ev)
		case StateAnswer:
			return m.onAnswer(ctx, ev)
		case StateAnswerAttachments:
			return m.onAttachments(ctx, ev)
		case StateEditValue:
			return m.onEditValue(ctx, ev)
		case StateEditSelect, StateEditField:
			// These states advance via buttons; free text means the user
			// lost the thread.
			return m.sequencingFailure(ctx, key, ev.ChatID)
		default:
			return m.sequencingFailure(ctx, key, ev.ChatID)
		}
	}

	switch strings.TrimSpace(msg.Text) {
	case messages.BtnGuide:
		return m.openGuide(ctx, ev)
	case messages.BtnTemplates:
		return m.openTemplates(ctx, ev)
	case messages.BtnAdd:
		return m.startAdd(ctx, ev, catalog.KindGuide)
	case messages.BtnEdit:
		return m.startEdit(ctx, ev, catalog.KindGuide)
	}
	if strings.TrimSpace(msg.Text) != "" {
		return m.searchGuide(ctx, ev)
	}

	// Stray non-text input outside any dialog.
	_, err := m.resp.Send(ctx, ev.ChatID, messages.InvalidInput, MainMenu())
	return err
}

func (m *Machine) handleCallback(ctx context.Context, ev InboundEvent) error {
	p, err := payload.Parse(ev.Callback.Token)
	if err != nil {
		logger.Warn(ctx, "dialog", "bad_callback",
			slog.Int64("user_id", ev.UserID),
			slog.String("token", ev.Callback.Token),
		)
		return nil
	}

	switch p.Action {
	case payload.ActionSelect:
		return m.showAnswer(ctx, ev, p.Kind, p.ID)
	case payload.ActionPage:
		return m.flipPage(ctx, ev, p.Kind, p.Page, false)
	case payload.ActionAdd:
		return m.startAdd(ctx, ev, p.Kind)
	case payload.ActionEditMenu:
		return m.startEdit(ctx, ev, p.Kind)
	case payload.ActionCancel:
		m.sessions.Reset(ev.Key())
		_, err := m.resp.Send(ctx, ev.ChatID, messages.BackToMenu, MainMenu())
		return err
	case payload.ActionEditSelect:
		return m.onEditSelect(ctx, ev, p.Kind, p.ID)
	case payload.ActionEditPage:
		return m.flipPage(ctx, ev, p.Kind, p.Page, true)
	case payload.ActionEditField:
		return m.onEditField(ctx, ev, p.Kind, p.Field)
	case payload.ActionEditCancel:
		m.sessions.Reset(ev.Key())
		_, err := m.resp.Send(ctx, ev.ChatID, messages.BackToMenu, MainMenu())
		return err
	case payload.ActionDeleteAnswer:
		return m.deleteAnswer(ctx, ev, p.ID)
	}
	return nil
}

// sequencingFailure resets the session and asks the user to restart.
func (m *Machine) sequencingFailure(ctx context.Context, key Key, chatID int64) error {
	var kind catalog.Kind
	m.sessions.Peek(key, func(s *Session) { kind = s.Kind })
	m.sessions.Reset(key)
	text := messages.RestartAddGuide
	if kind == catalog.KindTemplate {
		text = messages.RestartAddTemplate
	}
	_, err := m.resp.Send(ctx, chatID, text, MainMenu())
	return err
}

// Start handles /start: clean session, greeting, main menu.
func (m *Machine) Start(ctx context.Context, ev InboundEvent) error {
	if !m.admit(ctx, ev) {
		return nil
	}
	m.sessions.Reset(ev.Key())
	m.sessions.Do(ev.Key(), func(s *Session) { s.DisplayName = ev.DisplayName })
	m.record(ctx, ev, "start", "Пользователь запустил бота")
	_, err := m.resp.Send(ctx, ev.ChatID, messages.Welcome, MainMenu())
	return err
}

// CancelDialog handles /cancel: stop timers, clear state, back to menu.
func (m *Machine) CancelDialog(ctx context.Context, ev InboundEvent) error {
	if !m.admit(ctx, ev) {
		return nil
	}
	m.sessions.Reset(ev.Key())
	m.record(ctx, ev, "cancel", "Пользователь отменил диалог")
	_, err := m.resp.Send(ctx, ev.ChatID, messages.Cancelled, MainMenu())
	return err
}

// Instruction handles /instruction.
func (m *Machine) Instruction(ctx context.Context, ev InboundEvent) error {
	if !m.admit(ctx, ev) {
		return nil
	}
	m.record(ctx, ev, "instruction", "Пользователь запросил инструкцию")
	_, err := m.resp.Send(ctx, ev.ChatID, messages.Instruction, MainMenu())
	return err
}

func (m *Machine) record(ctx context.Context, ev InboundEvent, action, details string) {
	name := ev.DisplayName
	if name == "" {
		name = fmt.Sprintf("ID %d", ev.UserID)
	}
	a := audit.Action{UserID: ev.UserID, Username: name, Action: action, Details: details}
	if err := m.recorder.Record(ctx, a); err != nil {
		logger.Warn(ctx, "audit", "record_failed", slog.String("error", err.Error()))
	}
}

// searchGuide treats stray idle text as a keyword search over the guide.
func (m *Machine) searchGuide(ctx context.Context, ev InboundEvent) error {
	keyword := strings.TrimSpace(ev.Message.Text)
	col, err := m.store.Load(ctx, catalog.KindGuide)
	if err != nil {
		return err
	}
	results := search.Find(col.Entries, keyword)
	m.record(ctx, ev, "search", fmt.Sprintf("Пользователь искал '%s', найдено %d", keyword, len(results)))
	if len(results) == 0 {
		_, err := m.resp.Send(ctx, ev.ChatID, messages.SearchEmpty, MainMenu())
		return err
	}

	key := ev.Key()
	m.sessions.Reset(key)
	snapshot := &catalog.Collection{Entries: results}
	m.sessions.Do(key, func(s *Session) {
		s.Kind = catalog.KindGuide
		s.Snapshot = snapshot
		s.Page = 0
	})
	return m.sendPage(ctx, ev.ChatID, catalog.KindGuide, snapshot.Entries, 0, false)
}

// sendPage renders one list page as a fresh message.
func (m *Machine) sendPage(ctx context.Context, chatID int64, kind catalog.Kind, items []catalog.Entry, page int, edit bool) error {
	p, ok := pager.Render(items, page, m.pageSize)
	if !ok {
		text := messages.GuideEmpty
		if kind == catalog.KindTemplate {
			text = messages.TemplateEmpty
		}
		_, err := m.resp.Send(ctx, chatID, text, MainMenu())
		return err
	}
	_, err := m.resp.Send(ctx, chatID, messages.ChooseItem, browseKeyboard(kind, p, edit))
	return err
}
