// Package audit records user actions and builds the periodic usage digest.
package audit

import (
	"context"
	"sync"
	"time"
)

// Action is one recorded user interaction.
type Action struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Action    string    `db:"action"`
	Details   string    `db:"details"`
	Timestamp time.Time `db:"created_at"`
}

// Recorder stores actions and serves them back for reporting.
type Recorder interface {
	Record(ctx context.Context, a Action) error
	// Since returns actions at or after the cutoff, oldest first.
	Since(ctx context.Context, cutoff time.Time) ([]Action, error)
	// Prune drops actions older than the cutoff.
	Prune(ctx context.Context, cutoff time.Time) error
}

// MemoryRecorder keeps actions in process memory. It is the fallback when no
// database is configured.
type MemoryRecorder struct {
	mu      sync.Mutex
	actions []Action
}

// NewMemoryRecorder returns an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record appends the action.
func (r *MemoryRecorder) Record(_ context.Context, a Action) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
	return nil
}

// Since returns actions at or after the cutoff, oldest first.
func (r *MemoryRecorder) Since(_ context.Context, cutoff time.Time) ([]Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Action
	for _, a := range r.actions {
		if !a.Timestamp.Before(cutoff) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Prune drops actions older than the cutoff.
func (r *MemoryRecorder) Prune(_ context.Context, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.actions[:0]
	for _, a := range r.actions {
		if !a.Timestamp.Before(cutoff) {
			kept = append(kept, a)
		}
	}
	r.actions = kept
	return nil
}
