package audit

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestMemoryRecorderSinceAndPrune(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRecorder()
	now := time.Now().UTC()

	old := Action{UserID: 1, Username: "alice", Action: "open_guide", Timestamp: now.Add(-8 * time.Hour)}
	fresh := Action{UserID: 2, Username: "bob", Action: "save_point", Timestamp: now.Add(-time.Hour)}
	if err := r.Record(ctx, old); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := r.Record(ctx, fresh); err != nil {
		t.Fatalf("Record: %v", err)
	}

	cutoff := now.Add(-6 * time.Hour)
	got, err := r.Since(ctx, cutoff)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if len(got) != 1 || got[0].Username != "bob" {
		t.Fatalf("Since = %+v", got)
	}

	if err := r.Prune(ctx, cutoff); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	all, _ := r.Since(ctx, time.Time{})
	if len(all) != 1 || all[0].Username != "bob" {
		t.Fatalf("Prune kept %+v", all)
	}
}

func TestRecordFillsTimestamp(t *testing.T) {
	r := NewMemoryRecorder()
	if err := r.Record(context.Background(), Action{UserID: 1, Action: "start"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, _ := r.Since(context.Background(), time.Time{})
	if got[0].Timestamp.IsZero() {
		t.Fatalf("timestamp not filled")
	}
}

func TestDigestEmpty(t *testing.T) {
	text := Digest(nil, 6*time.Hour)
	if text != "📊 Статистика за последние 6 часов: нет активности." {
		t.Fatalf("empty digest = %q", text)
	}
}

func TestDigestCounts(t *testing.T) {
	now := time.Now().UTC()
	actions := []Action{
		{UserID: 1, Username: "alice", Action: "open_guide", Details: "открыл справочник", Timestamp: now},
		{UserID: 1, Username: "alice", Action: "show_answer", Details: "открыл пункт guide ID 3", Timestamp: now},
		{UserID: 2, Action: "open_guide", Details: "открыл справочник", Timestamp: now},
	}
	text := Digest(actions, 6*time.Hour)
	for _, want := range []string{
		"Всего действий: 3",
		"Уникальных пользователей: 2",
		"- open_guide: 2",
		"- show_answer: 1",
		"- alice: 2",
		"- ID 2: 1",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("digest missing %q:\n%s", want, text)
		}
	}
}

func TestReporterSendsAndPrunes(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRecorder()
	_ = r.Record(ctx, Action{UserID: 1, Username: "alice", Action: "start", Timestamp: time.Now().UTC().Add(-10 * time.Hour)})
	_ = r.Record(ctx, Action{UserID: 1, Username: "alice", Action: "save_point", Timestamp: time.Now().UTC()})

	var sent string
	rep := NewReporter(r, func(_ context.Context, text string) error {
		sent = text
		return nil
	}, 6*time.Hour)

	if err := rep.Report(ctx); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.Contains(sent, "save_point") || strings.Contains(sent, "start") {
		t.Fatalf("digest window wrong:\n%s", sent)
	}
	left, _ := r.Since(ctx, time.Time{})
	if len(left) != 1 {
		t.Fatalf("prune after report kept %d actions", len(left))
	}
}
