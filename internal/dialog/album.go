package dialog

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/refbot/core/logger"
	"github.com/m3rciful/refbot/core/scheduler"
	"github.com/m3rciful/refbot/internal/messages"
)

const (
	// albumInitialDelay is the debounce after the first photo of a burst.
	albumInitialDelay = 7 * time.Second
	// albumRestartDelay restarts the debounce on every later arrival, so the
	// burst closes only after a true quiet period.
	albumRestartDelay = 5 * time.Second
)

// albumFlushTask carries its inputs by value; firing against a superseded
// session is detected by the album id check inside flushAlbum.
type albumFlushTask struct {
	machine *Machine
	key     Key
	chatID  int64
	albumID string
}

// Run implements scheduler.Task.
func (t albumFlushTask) Run() {
	if _, _, err := t.machine.flushAlbum(context.Background(), t.key, t.chatID, t.albumID); err != nil {
		t.machine.failSession(context.Background(), t.key, t.chatID, err)
	}
}

// acceptAlbumPhoto buffers one photo of a burst and (re)arms the debounce.
// commitOnFlush marks bursts that arrived as the answer itself: their flush
// commits the draft instead of prompting for more input.
func (m *Machine) acceptAlbumPhoto(ctx context.Context, ev InboundEvent, commitOnFlush bool) error {
	key := ev.Key()
	msg := ev.Message

	first := false
	var stale *scheduler.Handle
	m.sessions.Do(key, func(s *Session) {
		if s.AlbumID != msg.AlbumID {
			s.AlbumID = msg.AlbumID
			s.PendingPhotos = nil
			first = true
		} else {
			first = len(s.PendingPhotos) == 0
		}
		appendRef(&s.PendingPhotos, msg.Photo)
		if msg.Caption != "" && s.Answer == "" {
			s.Answer = msg.Caption
		}
		if commitOnFlush {
			s.AlbumCommit = true
		}
		s.State = StateAnswerAttachments
		stale = s.Debounce
		s.Debounce = nil
	})
	stale.Cancel()

	delay := albumRestartDelay
	if first {
		delay = albumInitialDelay
		loadingID, err := m.resp.Send(ctx, ev.ChatID, messages.Loading, nil)
		if err != nil {
			return err
		}
		m.sessions.Do(key, func(s *Session) { s.LoadingMsgID = loadingID })
	}

	handle := m.sched.RunAfter(delay, albumFlushTask{
		machine: m,
		key:     key,
		chatID:  ev.ChatID,
		albumID: msg.AlbumID,
	})
	m.sessions.Do(key, func(s *Session) { s.Debounce = handle })

	logger.Debug(ctx, "dialog", "album_photo_buffered",
		slog.Int64("user_id", key.UserID),
		slog.String("album_id", msg.AlbumID),
	)
	return nil
}

// flushAlbum closes a burst: fold pending photos into the draft, drop the
// loading indicator, then either commit or prompt for more input. A stale
// fire (session reset or a newer burst) no-ops.
func (m *Machine) flushAlbum(ctx context.Context, key Key, chatID int64, albumID string) (flushed, committed bool, err error) {
	var loadingID, total int
	var commitMode bool
	var name string
	live := false
	m.sessions.Do(key, func(s *Session) {
		if !s.Active || s.AlbumID != albumID {
			return
		}
		live = true
		foldPending(s)
		loadingID = s.LoadingMsgID
		s.LoadingMsgID = 0
		s.AlbumID = ""
		s.Debounce = nil
		commitMode = s.AlbumCommit
		s.AlbumCommit = false
		total = len(s.Photos)
		name = s.DisplayName
	})
	if !live {
		return false, false, nil
	}

	if loadingID != 0 {
		if derr := m.resp.Delete(ctx, chatID, loadingID); derr != nil {
			logger.Debug(ctx, "dialog", "loading_delete_failed", slog.String("error", derr.Error()))
		}
	}

	if commitMode {
		ev := InboundEvent{UserID: key.UserID, ChatID: chatID, DisplayName: name}
		if err := m.commit(ctx, ev); err != nil {
			return true, false, err
		}
		return true, true, nil
	}

	_, serr := m.resp.Send(ctx, chatID, messages.PhotoAdded(total), doneMenu())
	return true, false, serr
}

// interruptAlbum closes a pending burst early because an unrelated message
// arrived. The debounce timer is cancelled first so it cannot fire against
// the flushed state.
func (m *Machine) interruptAlbum(ctx context.Context, key Key, chatID int64) (committed bool, err error) {
	var handle *scheduler.Handle
	var albumID string
	m.sessions.Do(key, func(s *Session) {
		handle = s.Debounce
		s.Debounce = nil
		albumID = s.AlbumID
	})
	handle.Cancel()
	if albumID == "" {
		return false, nil
	}
	_, committed, err = m.flushAlbum(ctx, key, chatID, albumID)
	return committed, err
}
