// Package catalog defines the knowledge base entries and their file-backed store.
package catalog

import (
	"fmt"
	"strings"
)

// Kind selects one of the two collections the bot serves.
type Kind string

const (
	// KindGuide is the troubleshooting guide collection.
	KindGuide Kind = "guide"
	// KindTemplate is the reply template collection.
	KindTemplate Kind = "template"
)

// ParseKind validates a raw collection name.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.TrimSpace(raw)) {
	case KindGuide:
		return KindGuide, nil
	case KindTemplate:
		return KindTemplate, nil
	}
	return "", fmt.Errorf("catalog: unknown collection kind %q", raw)
}

// FileName returns the JSON file the collection is stored in.
func (k Kind) FileName() string {
	if k == KindTemplate {
		return "templates.json"
	}
	return "guide.json"
}

// rootKey returns the collection's array key inside the JSON document.
func (k Kind) rootKey() string {
	if k == KindTemplate {
		return "templates"
	}
	return "questions"
}

// Entry is one knowledge base item. Attachment fields hold transport file
// identifiers, never raw bytes.
type Entry struct {
	ID        int      `json:"id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Photos    []string `json:"photos,omitempty"`
	Documents []string `json:"documents,omitempty"`

	// LegacyPhoto carries the single-photo field older files used. It is
	// folded into Photos on load and never written back.
	LegacyPhoto string `json:"photo,omitempty"`
}

// Normalize folds the legacy single-photo field into Photos and trims text.
func (e *Entry) Normalize() {
	e.Question = strings.TrimSpace(e.Question)
	e.Answer = strings.TrimSpace(e.Answer)
	if e.LegacyPhoto != "" {
		if !containsRef(e.Photos, e.LegacyPhoto) {
			e.Photos = append([]string{e.LegacyPhoto}, e.Photos...)
		}
		e.LegacyPhoto = ""
	}
}

// HasContent reports whether the entry carries an answer or any attachment.
func (e Entry) HasContent() bool {
	return e.Answer != "" || len(e.Photos) > 0 || len(e.Documents) > 0
}

// Collection is an ordered sequence of entries loaded and saved wholesale.
type Collection struct {
	Entries []Entry
}

// NextID returns max(existing ids) + 1, or 1 for an empty collection.
func (c Collection) NextID() int {
	maxID := 0
	for _, e := range c.Entries {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	return maxID + 1
}

// Find returns the entry with the given id and its index, or ok=false.
func (c Collection) Find(id int) (Entry, int, bool) {
	for i, e := range c.Entries {
		if e.ID == id {
			return e, i, true
		}
	}
	return Entry{}, -1, false
}

// Append adds an entry with the next free id and returns the assigned id.
func (c *Collection) Append(e Entry) int {
	e.ID = c.NextID()
	c.Entries = append(c.Entries, e)
	return e.ID
}

// Replace swaps the entry with e.ID for e. It reports whether the id existed.
func (c *Collection) Replace(e Entry) bool {
	for i := range c.Entries {
		if c.Entries[i].ID == e.ID {
			c.Entries[i] = e
			return true
		}
	}
	return false
}

// Remove drops the entry with the given id, keeping the order of the rest.
func (c *Collection) Remove(id int) bool {
	for i, e := range c.Entries {
		if e.ID == id {
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
			return true
		}
	}
	return false
}

func containsRef(refs []string, ref string) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}
