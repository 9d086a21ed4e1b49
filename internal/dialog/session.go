// Package dialog implements the conversational state machine that drives the
// add and edit flows, album batching, browsing and search.
package dialog

import (
	"sync"

	"github.com/m3rciful/refbot/core/scheduler"
	"github.com/m3rciful/refbot/internal/catalog"
	"github.com/m3rciful/refbot/internal/payload"
)

// State names a position in the conversation.
type State int

const (
	// StateIdle means no dialog is in progress.
	StateIdle State = iota
	// StateQuestion waits for the new entry's question text.
	StateQuestion
	// StateAnswer waits for the answer text or the first attachment.
	StateAnswer
	// StateAnswerAttachments collects attachments until the sentinel.
	StateAnswerAttachments
	// StateEditSelect waits for the entry pick in the edit flow.
	StateEditSelect
	// StateEditField waits for the field pick in the edit flow.
	StateEditField
	// StateEditValue waits for the replacement value.
	StateEditValue
	// StateError marks a session cleared by the error boundary.
	StateError
)

// Key identifies one conversation.
type Key struct {
	UserID int64
	ChatID int64
}

// Session is the per-conversation state bag. All fields are reset together;
// a session never survives past a commit, cancel or error.
type Session struct {
	State  State
	Active bool
	Kind   catalog.Kind

	// DisplayName is the admitted user's name kept for audit records.
	DisplayName string

	// Add flow draft.
	Question      string
	Answer        string
	Photos        []string
	Documents     []string
	PendingPhotos []string
	AlbumID       string
	AlbumCommit   bool
	PointSaved    bool
	LoadingMsgID  int
	Debounce      *scheduler.Handle

	// Browsing.
	Page     int
	Snapshot *catalog.Collection

	// Edit flow.
	EditID    int
	EditField payload.Field

	// AnswerMsgs maps a shown entry id to the chat message ids that display
	// it, so the delete button and the scheduled sweep can remove them.
	AnswerMsgs map[int][]int
}

// reset clears every field except the display name.
func (s *Session) reset() {
	name := s.DisplayName
	*s = Session{DisplayName: name}
}

// Sessions is the keyed session store. One conversation maps to one Session;
// concurrent users never share state.
type Sessions struct {
	mu sync.Mutex
	m  map[Key]*Session
}

// NewSessions returns an empty store.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[Key]*Session)}
}

// Do runs fn with the session for key held under the store lock, creating the
// session if needed. fn must not block on I/O.
func (s *Sessions) Do(key Key, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[key]
	if !ok {
		sess = &Session{}
		s.m[key] = sess
	}
	fn(sess)
}

// Peek runs fn with the session for key if one exists, without creating it.
func (s *Sessions) Peek(key Key, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[key]
	if !ok {
		return false
	}
	fn(sess)
	return true
}

// Reset clears the session for key, cancelling any pending debounce first.
func (s *Sessions) Reset(key Key) {
	var handle *scheduler.Handle
	s.mu.Lock()
	if sess, ok := s.m[key]; ok {
		handle = sess.Debounce
		sess.reset()
	}
	s.mu.Unlock()
	handle.Cancel()
}

// Len reports how many sessions exist. Used by tests.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
