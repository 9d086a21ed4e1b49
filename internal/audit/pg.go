package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PGRecorder persists actions in the user_actions table.
type PGRecorder struct {
	db *sqlx.DB
}

// NewPGRecorder returns a recorder backed by the given database.
func NewPGRecorder(db *sqlx.DB) *PGRecorder {
	return &PGRecorder{db: db}
}

// Record inserts the action.
func (r *PGRecorder) Record(ctx context.Context, a Action) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	const q = `
		INSERT INTO user_actions (user_id, username, action, details, created_at)
		VALUES (:user_id, :username, :action, :details, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, q, a); err != nil {
		return fmt.Errorf("audit: insert action: %w", err)
	}
	return nil
}

// Since returns actions at or after the cutoff, oldest first.
func (r *PGRecorder) Since(ctx context.Context, cutoff time.Time) ([]Action, error) {
	const q = `
		SELECT user_id, username, action, details, created_at
		FROM user_actions
		WHERE created_at >= $1
		ORDER BY created_at`
	var out []Action
	if err := r.db.SelectContext(ctx, &out, q, cutoff); err != nil {
		return nil, fmt.Errorf("audit: select actions: %w", err)
	}
	return out, nil
}

// Prune drops actions older than the cutoff.
func (r *PGRecorder) Prune(ctx context.Context, cutoff time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_actions WHERE created_at < $1`, cutoff); err != nil {
		return fmt.Errorf("audit: prune actions: %w", err)
	}
	return nil
}
