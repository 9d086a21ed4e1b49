package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerSchedulerRunsTask(t *testing.T) {
	s := New()
	done := make(chan struct{})
	s.RunAfter(time.Millisecond, TaskFunc(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("task did not run")
	}
}

func TestTimerSchedulerCancel(t *testing.T) {
	s := New()
	var fired atomic.Bool
	h := s.RunAfter(50*time.Millisecond, TaskFunc(func() { fired.Store(true) }))
	if !h.Cancel() {
		t.Fatalf("expected Cancel to stop a pending task")
	}
	time.Sleep(100 * time.Millisecond)
	if fired.Load() {
		t.Fatalf("cancelled task fired")
	}
}

func TestHandleCancelNil(t *testing.T) {
	var h *Handle
	if h.Cancel() {
		t.Fatalf("nil handle must report false")
	}
	if (&Handle{}).Cancel() {
		t.Fatalf("empty handle must report false")
	}
}

func TestImmediateFlushOrder(t *testing.T) {
	s := NewImmediate()
	var got []int
	s.RunAfter(0, TaskFunc(func() { got = append(got, 1) }))
	s.RunAfter(0, TaskFunc(func() { got = append(got, 2) }))
	if s.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2", s.Pending())
	}
	if n := s.Flush(); n != 2 {
		t.Fatalf("Flush = %d, want 2", n)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("tasks ran out of order: %v", got)
	}
}

func TestImmediateCancelSkipsTask(t *testing.T) {
	s := NewImmediate()
	var fired bool
	h := s.RunAfter(0, TaskFunc(func() { fired = true }))
	if !h.Cancel() {
		t.Fatalf("expected Cancel to succeed")
	}
	if h.Cancel() {
		t.Fatalf("second Cancel must report false")
	}
	if n := s.Flush(); n != 0 {
		t.Fatalf("Flush = %d, want 0", n)
	}
	if fired {
		t.Fatalf("cancelled task fired")
	}
}
