package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/m3rciful/refbot/core/logger"
)

// Store loads and saves collections. Load on a missing file returns an empty
// collection; Save overwrites the whole file and then mirrors the change
// through the configured Syncer. A sync failure does not roll back the local
// write; it is returned as a *SyncError so callers can downgrade it to a
// warning.
type Store interface {
	Load(ctx context.Context, kind Kind) (Collection, error)
	Save(ctx context.Context, kind Kind, c Collection) error
}

// Syncer mirrors a saved file to an external replica.
type Syncer interface {
	Sync(ctx context.Context, fileName string) error
}

// SyncError marks a save whose local write succeeded but whose external
// mirroring failed.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string { return fmt.Sprintf("catalog: sync failed: %v", e.Err) }

func (e *SyncError) Unwrap() error { return e.Err }

// IsSyncError reports whether err is a mirroring failure after a successful
// local write.
func IsSyncError(err error) bool {
	var se *SyncError
	return errors.As(err, &se)
}

// FileStore keeps each collection in a JSON file under a single directory.
type FileStore struct {
	dir    string
	syncer Syncer
	mu     sync.Mutex
}

// NewFileStore returns a store rooted at dir. syncer may be nil.
func NewFileStore(dir string, syncer Syncer) *FileStore {
	return &FileStore{dir: dir, syncer: syncer}
}

// Load reads the collection file. A missing file yields an empty collection.
func (s *FileStore) Load(ctx context.Context, kind Kind) (Collection, error) {
	if err := ctx.Err(); err != nil {
		return Collection{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(kind)
}

func (s *FileStore) loadLocked(kind Kind) (Collection, error) {
	path := filepath.Join(s.dir, kind.FileName())
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Collection{}, nil
		}
		return Collection{}, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var doc map[string][]Entry
	if err := json.Unmarshal(data, &doc); err != nil {
		return Collection{}, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	entries := doc[kind.rootKey()]
	for i := range entries {
		entries[i].Normalize()
	}
	return Collection{Entries: entries}, nil
}

// Save writes the collection file atomically and then runs the syncer.
func (s *FileStore) Save(ctx context.Context, kind Kind, c Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.saveLocked(kind, c)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if s.syncer == nil {
		return nil
	}
	if err := s.syncer.Sync(ctx, kind.FileName()); err != nil {
		logger.Warn(ctx, "store", "sync_failed",
			slog.String("file", kind.FileName()),
			slog.String("error", err.Error()),
		)
		return &SyncError{Err: err}
	}
	return nil
}

func (s *FileStore) saveLocked(kind Kind, c Collection) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("catalog: create dir %s: %w", s.dir, err)
	}

	entries := c.Entries
	if entries == nil {
		entries = []Entry{}
	}
	doc := map[string][]Entry{kind.rootKey(): entries}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: encode %s: %w", kind.FileName(), err)
	}
	data = append(data, '\n')

	path := filepath.Join(s.dir, kind.FileName())
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("catalog: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("catalog: replace %s: %w", path, err)
	}
	return nil
}
