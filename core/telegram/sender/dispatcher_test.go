package sender

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func testOptions() Options {
	return Options{
		QueueSize:    4,
		Workers:      1,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
		MaxDuration:  time.Second,
	}
}

func TestDoRetriesTransientError(t *testing.T) {
	d := NewDispatcher(testOptions())
	defer d.Close()

	calls := 0
	err := d.Do(context.Background(), "send.text", "sendMessage", func() error {
		calls++
		if calls == 1 {
			return &net.OpError{Op: "dial", Err: errors.New("connection refused")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if d.ErrorCount() != 0 {
		t.Fatalf("errors = %d, want 0", d.ErrorCount())
	}
}

func TestDoPermanentErrorNotRetried(t *testing.T) {
	d := NewDispatcher(testOptions())
	defer d.Close()

	calls := 0
	wantErr := errors.New("telegram: Bad Request (400)")
	err := d.Do(context.Background(), "send.text", "sendMessage", func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Do = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if d.ErrorCount() != 1 {
		t.Fatalf("errors = %d, want 1", d.ErrorCount())
	}
}

func TestEnqueueProcessesJob(t *testing.T) {
	d := NewDispatcher(testOptions())

	done := make(chan struct{})
	if err := d.Enqueue(context.Background(), "delete", "deleteMessage", func() error {
		close(done)
		return nil
	}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued job never ran")
	}
	d.Close()
}

func TestEnqueueAfterClose(t *testing.T) {
	d := NewDispatcher(testOptions())
	d.Close()

	err := d.Enqueue(context.Background(), "delete", "deleteMessage", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}
