package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrSheetNotFound is returned when no stored sheet matches a reference.
	ErrSheetNotFound = errors.New("character sheet not found")
	// ErrAmbiguousSheet is returned when a reference matches several sheets.
	ErrAmbiguousSheet = errors.New("character sheet reference is ambiguous")
	// ErrEmptySheet is returned when importing an empty document.
	ErrEmptySheet = errors.New("character sheet is empty")
	// ErrMarkdownSheet is returned when a structured operation is attempted
	// on a markdown sheet.
	ErrMarkdownSheet = errors.New("markdown sheets have no structured data")
)

// Format discriminates the stored sheet variants.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Entry is one stored sheet.
type Entry struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	AddedAt  time.Time `json:"addedAt"`
	Format   Format    `json:"type"`
	Markdown string    `json:"markdown,omitempty"`
	// JSON is set for FormatJSON entries. Stored sheets are never mutated.
	JSON *Sheet `json:"json,omitempty"`
}

// Collection is a snapshot of the store.
type Collection struct {
	Sheets []Entry `json:"sheets"`
	// Active is uuid.Nil when no sheet is active.
	Active uuid.UUID `json:"activeId"`
}

// ActiveEntry returns the active sheet of the collection.
func (c Collection) ActiveEntry() (Entry, bool) {
	for _, e := range c.Sheets {
		if e.ID == c.Active {
			return e, true
		}
	}
	return Entry{}, false
}

// Store keeps imported sheets in insertion order and tracks the active one.
//
// All methods are safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	logger *zap.Logger
	sheets []Entry
	active uuid.UUID

	// Injected after construction. nil = no-op.
	OnChange func(Collection)
	// Now and NewID default to time.Now and uuid.New.
	Now   func() time.Time
	NewID func() uuid.UUID
}

// NewStore creates an empty Store.
//
// Precondition: logger must be non-nil.
func NewStore(logger *zap.Logger) *Store {
	return &Store{logger: logger, Now: time.Now, NewID: uuid.New}
}

// AddMarkdown stores a markdown sheet and makes it active.
func (s *Store) AddMarkdown(text string) (Entry, error) {
	if strings.TrimSpace(text) == "" {
		return Entry{}, ErrEmptySheet
	}
	return s.add(Entry{Name: MarkdownName(text), Format: FormatMarkdown, Markdown: text}), nil
}

// AddJSON validates and stores a JSON sheet named after its short name and
// makes it active.
//
// Postcondition: On error nothing is stored.
func (s *Store) AddJSON(data []byte) (Entry, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Entry{}, ErrEmptySheet
	}
	sh, err := ParseJSON(data)
	if err != nil {
		return Entry{}, err
	}
	name := sh.Info.ShortName
	if name == "" {
		name = sh.Info.Name
	}
	if name == "" {
		name = UnknownName
	}
	return s.add(Entry{Name: name, Format: FormatJSON, JSON: &sh}), nil
}

// ImportFile stores the sheet at path. Files ending in .json are parsed as
// JSON sheets, everything else as markdown.
func (s *Store) ImportFile(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("importing %q: %w", path, err)
	}
	var e Entry
	if strings.EqualFold(filepath.Ext(path), ".json") {
		e, err = s.AddJSON(data)
	} else {
		e, err = s.AddMarkdown(string(data))
	}
	if err != nil {
		return Entry{}, fmt.Errorf("importing %q: %w", path, err)
	}
	return e, nil
}

func (s *Store) add(e Entry) Entry {
	e.ID = s.NewID()
	e.AddedAt = s.Now()
	s.mutate(func() error {
		s.sheets = append(s.sheets, e)
		s.active = e.ID
		return nil
	})
	s.logger.Info("character sheet added",
		zap.String("id", e.ID.String()),
		zap.String("name", e.Name),
		zap.String("format", string(e.Format)),
	)
	return e
}

// Remove deletes the sheet with id. Removing the active sheet activates the
// last remaining one.
func (s *Store) Remove(id uuid.UUID) error {
	return s.mutate(func() error {
		i := s.indexLocked(id)
		if i < 0 {
			return fmt.Errorf("sheet %s: %w", id, ErrSheetNotFound)
		}
		s.sheets = append(s.sheets[:i:i], s.sheets[i+1:]...)
		if s.active == id {
			s.active = uuid.Nil
			if n := len(s.sheets); n > 0 {
				s.active = s.sheets[n-1].ID
			}
		}
		return nil
	})
}

// SetActive makes the sheet with id active.
func (s *Store) SetActive(id uuid.UUID) error {
	return s.mutate(func() error {
		if s.indexLocked(id) < 0 {
			return fmt.Errorf("sheet %s: %w", id, ErrSheetNotFound)
		}
		s.active = id
		return nil
	})
}

// Active returns the active sheet.
func (s *Store) Active() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(s.active); i >= 0 {
		return s.sheets[i], true
	}
	return Entry{}, false
}

// Find resolves ref to a sheet. ref may be a full ID, a unique ID prefix, or
// a sheet name compared case-insensitively.
func (s *Store) Find(ref string) (Entry, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Entry{}, ErrSheetNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, err := uuid.Parse(ref); err == nil {
		if i := s.indexLocked(id); i >= 0 {
			return s.sheets[i], nil
		}
	}
	var matches []Entry
	for _, e := range s.sheets {
		if strings.EqualFold(e.Name, ref) {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		lower := strings.ToLower(ref)
		for _, e := range s.sheets {
			if strings.HasPrefix(e.ID.String(), lower) {
				matches = append(matches, e)
			}
		}
	}
	switch len(matches) {
	case 0:
		return Entry{}, fmt.Errorf("sheet %q: %w", ref, ErrSheetNotFound)
	case 1:
		return matches[0], nil
	}
	return Entry{}, fmt.Errorf("sheet %q matches %d sheets: %w", ref, len(matches), ErrAmbiguousSheet)
}

// List returns the sheets in insertion order.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.sheets))
	copy(out, s.sheets)
	return out
}

// Len returns the number of stored sheets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sheets)
}

// Snapshot returns a copy of the store.
func (s *Store) Snapshot() Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Restore replaces the store contents. Entries with a nil ID or an unknown
// format are skipped, so is a JSON entry without data. An active ID that is
// not present falls back to the last sheet.
func (s *Store) Restore(c Collection) {
	kept := make([]Entry, 0, len(c.Sheets))
	seen := make(map[uuid.UUID]bool, len(c.Sheets))
	for _, e := range c.Sheets {
		if e.ID == uuid.Nil || seen[e.ID] {
			continue
		}
		switch {
		case e.Format == FormatMarkdown:
		case e.Format == FormatJSON && e.JSON != nil:
		default:
			continue
		}
		seen[e.ID] = true
		kept = append(kept, e)
	}
	active := c.Active
	if !seen[active] {
		active = uuid.Nil
		if n := len(kept); n > 0 {
			active = kept[n-1].ID
		}
	}
	s.mutate(func() error {
		s.sheets = kept
		s.active = active
		return nil
	})
	s.logger.Info("character sheets restored",
		zap.Int("sheets", len(kept)),
		zap.Int("skipped", len(c.Sheets)-len(kept)),
	)
}

func (s *Store) indexLocked(id uuid.UUID) int {
	if id == uuid.Nil {
		return -1
	}
	for i, e := range s.sheets {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() Collection {
	out := make([]Entry, len(s.sheets))
	copy(out, s.sheets)
	return Collection{Sheets: out, Active: s.active}
}

func (s *Store) mutate(fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	if s.OnChange != nil {
		s.OnChange(snap)
	}
	return nil
}
