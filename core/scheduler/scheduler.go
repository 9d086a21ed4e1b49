// Package scheduler provides delayed task execution with cancellable handles.
package scheduler

import (
	"sync"
	"time"
)

// Task is a unit of delayed work. Implementations carry their input by value
// so a fire observes the data captured at schedule time.
type Task interface {
	Run()
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc func()

// Run calls the wrapped function.
func (f TaskFunc) Run() { f() }

// Handle identifies a scheduled task and allows cancelling it before it fires.
type Handle struct {
	cancel func() bool
}

// Cancel stops the pending task. It reports whether the cancellation happened
// before the task started running. Cancel on a nil handle is a no-op.
func (h *Handle) Cancel() bool {
	if h == nil || h.cancel == nil {
		return false
	}
	return h.cancel()
}

// Scheduler runs tasks after a delay.
type Scheduler interface {
	RunAfter(d time.Duration, t Task) *Handle
}

// TimerScheduler schedules tasks on the process clock.
type TimerScheduler struct{}

// New returns a Scheduler backed by time.AfterFunc.
func New() *TimerScheduler {
	return &TimerScheduler{}
}

// RunAfter schedules t to run once after d elapses.
func (s *TimerScheduler) RunAfter(d time.Duration, t Task) *Handle {
	if t == nil {
		return &Handle{}
	}
	timer := time.AfterFunc(d, t.Run)
	return &Handle{cancel: timer.Stop}
}

// Immediate is a Scheduler for tests: tasks queue until Flush so tests control
// exactly when pending work runs.
type Immediate struct {
	mu     sync.Mutex
	seq    int
	queued map[int]Task
	order  []int
}

// NewImmediate returns an empty Immediate scheduler.
func NewImmediate() *Immediate {
	return &Immediate{queued: make(map[int]Task)}
}

// RunAfter ignores the delay and queues t until Flush.
func (s *Immediate) RunAfter(_ time.Duration, t Task) *Handle {
	if t == nil {
		return &Handle{}
	}
	s.mu.Lock()
	s.seq++
	id := s.seq
	s.queued[id] = t
	s.order = append(s.order, id)
	s.mu.Unlock()
	return &Handle{cancel: func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.queued[id]; !ok {
			return false
		}
		delete(s.queued, id)
		return true
	}}
}

// Flush runs all queued tasks in schedule order and returns how many ran.
// Cancelled tasks are skipped.
func (s *Immediate) Flush() int {
	s.mu.Lock()
	ids := s.order
	s.order = nil
	pending := make([]Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.queued[id]; ok {
			pending = append(pending, t)
			delete(s.queued, id)
		}
	}
	s.mu.Unlock()
	for _, t := range pending {
		t.Run()
	}
	return len(pending)
}

// Pending reports how many live tasks are queued.
func (s *Immediate) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queued)
}
