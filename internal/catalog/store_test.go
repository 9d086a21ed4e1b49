package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("guide"); err != nil || k != KindGuide {
		t.Fatalf("ParseKind(guide) = %v, %v", k, err)
	}
	if k, err := ParseKind("template"); err != nil || k != KindTemplate {
		t.Fatalf("ParseKind(template) = %v, %v", k, err)
	}
	if _, err := ParseKind("nonsense"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestCollectionNextID(t *testing.T) {
	var c Collection
	if got := c.NextID(); got != 1 {
		t.Fatalf("empty NextID = %d, want 1", got)
	}
	c.Entries = []Entry{{ID: 3}, {ID: 7}, {ID: 5}}
	if got := c.NextID(); got != 8 {
		t.Fatalf("NextID = %d, want 8", got)
	}
}

func TestCollectionAppendRemove(t *testing.T) {
	var c Collection
	id := c.Append(Entry{Question: "q1", Answer: "a1"})
	if id != 1 {
		t.Fatalf("first id = %d, want 1", id)
	}
	c.Append(Entry{Question: "q2", Answer: "a2"})

	if !c.Remove(1) {
		t.Fatalf("Remove(1) failed")
	}
	if c.Remove(1) {
		t.Fatalf("second Remove(1) must fail")
	}
	if len(c.Entries) != 1 || c.Entries[0].ID != 2 {
		t.Fatalf("unexpected entries after remove: %+v", c.Entries)
	}

	// ids keep growing past deleted ones
	if id := c.Append(Entry{Question: "q3"}); id != 3 {
		t.Fatalf("id after remove = %d, want 3", id)
	}
}

func TestEntryNormalizeLegacyPhoto(t *testing.T) {
	e := Entry{Question: " q ", LegacyPhoto: "f1", Photos: []string{"f2"}}
	e.Normalize()
	if e.Question != "q" {
		t.Fatalf("question not trimmed: %q", e.Question)
	}
	if e.LegacyPhoto != "" {
		t.Fatalf("legacy photo not cleared")
	}
	if len(e.Photos) != 2 || e.Photos[0] != "f1" || e.Photos[1] != "f2" {
		t.Fatalf("photos = %v", e.Photos)
	}

	dup := Entry{LegacyPhoto: "f1", Photos: []string{"f1"}}
	dup.Normalize()
	if len(dup.Photos) != 1 {
		t.Fatalf("duplicate legacy photo folded twice: %v", dup.Photos)
	}
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	s := NewFileStore(t.TempDir(), nil)
	c, err := s.Load(context.Background(), KindGuide)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Entries) != 0 {
		t.Fatalf("expected empty collection, got %d entries", len(c.Entries))
	}
}

func TestFileStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, nil)
	ctx := context.Background()

	want := Collection{Entries: []Entry{
		{ID: 1, Question: "q1", Answer: "a1"},
		{ID: 2, Question: "q2", Photos: []string{"p1", "p2"}, Documents: []string{"d1"}},
	}}
	if err := s.Save(ctx, KindTemplate, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "templates.json"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !strings.Contains(string(data), `"templates"`) {
		t.Fatalf("templates root key missing: %s", data)
	}

	got, err := s.Load(ctx, KindTemplate)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Entries) != 2 || got.Entries[1].Photos[1] != "p2" {
		t.Fatalf("round trip mismatch: %+v", got.Entries)
	}
}

func TestFileStoreLoadLegacyPhotoField(t *testing.T) {
	dir := t.TempDir()
	raw := `{"questions":[{"id":1,"question":"q","answer":"a","photo":"old"}]}`
	if err := os.WriteFile(filepath.Join(dir, "guide.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewFileStore(dir, nil)
	c, err := s.Load(context.Background(), KindGuide)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Entries) != 1 || len(c.Entries[0].Photos) != 1 || c.Entries[0].Photos[0] != "old" {
		t.Fatalf("legacy photo not folded: %+v", c.Entries)
	}
}

type failingSyncer struct{ err error }

func (f failingSyncer) Sync(context.Context, string) error { return f.err }

func TestFileStoreSaveSurfacesSyncError(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, failingSyncer{err: errors.New("push rejected")})
	ctx := context.Background()

	err := s.Save(ctx, KindGuide, Collection{Entries: []Entry{{ID: 1, Question: "q", Answer: "a"}}})
	if err == nil {
		t.Fatalf("expected sync error")
	}
	if !IsSyncError(err) {
		t.Fatalf("error is not a SyncError: %v", err)
	}

	// local write must survive the failed sync
	got, loadErr := s.Load(ctx, KindGuide)
	if loadErr != nil {
		t.Fatalf("Load: %v", loadErr)
	}
	if len(got.Entries) != 1 {
		t.Fatalf("local write lost: %+v", got.Entries)
	}
}
