package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/m3rciful/refbot/core/logger"
)

// Digest renders the usage report for actions recorded after the cutoff.
func Digest(actions []Action, window time.Duration) string {
	hours := int(window.Hours())
	if len(actions) == 0 {
		return fmt.Sprintf("📊 Статистика за последние %d часов: нет активности.", hours)
	}

	actionCounts := map[string]int{}
	userCounts := map[string]int{}
	for _, a := range actions {
		actionCounts[a.Action]++
		name := a.Username
		if name == "" {
			name = fmt.Sprintf("ID %d", a.UserID)
		}
		userCounts[name]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Статистика за последние %d часов:\n", hours)
	fmt.Fprintf(&b, "Всего действий: %d\n", len(actions))
	fmt.Fprintf(&b, "Уникальных пользователей: %d\n", len(userCounts))

	b.WriteString("Действия по типам:\n")
	for _, name := range sortedKeys(actionCounts) {
		fmt.Fprintf(&b, "- %s: %d\n", name, actionCounts[name])
	}
	b.WriteString("Действия по пользователям:\n")
	for _, name := range sortedKeys(userCounts) {
		fmt.Fprintf(&b, "- %s: %d\n", name, userCounts[name])
	}
	b.WriteString("Подробности:\n")
	for _, a := range actions {
		name := a.Username
		if name == "" {
			name = fmt.Sprintf("ID %d", a.UserID)
		}
		fmt.Fprintf(&b, "- [%s] %s: %s\n", a.Timestamp.UTC().Format(time.RFC3339), name, a.Details)
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SendFunc delivers a digest text to the stats chat.
type SendFunc func(ctx context.Context, text string) error

// Reporter periodically sends the digest and prunes reported actions.
type Reporter struct {
	recorder Recorder
	send     SendFunc
	window   time.Duration
}

// NewReporter builds a reporter over the recorder.
func NewReporter(recorder Recorder, send SendFunc, window time.Duration) *Reporter {
	if window <= 0 {
		window = 6 * time.Hour
	}
	return &Reporter{recorder: recorder, send: send, window: window}
}

// Report sends one digest covering the configured window.
func (r *Reporter) Report(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-r.window)
	actions, err := r.recorder.Since(ctx, cutoff)
	if err != nil {
		return err
	}
	if err := r.send(ctx, Digest(actions, r.window)); err != nil {
		return err
	}
	if err := r.recorder.Prune(ctx, cutoff); err != nil {
		logger.Warn(ctx, "audit", "prune_failed", slog.String("error", err.Error()))
	}
	return nil
}

// Run sends the digest on every tick until the context ends.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Report(ctx); err != nil {
				logger.Error(ctx, "audit", "digest_failed", slog.String("error", err.Error()))
			}
		}
	}
}
