package snippet

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned by Remove when no snippet has the given id.
var ErrNotFound = errors.New("snippet not found")

// Store holds the snippet set backed by a JSON file. The file is the CRUD
// boundary: any writer (this process's IPC handlers, an external settings
// UI) rewrites the file, and the store picks the change up through its
// fsnotify watcher and notifies listeners so the trigger index can rebuild.
type Store struct {
	path string

	mu       sync.RWMutex
	snippets []Snippet

	onChange func([]Snippet)

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Open loads the snippet file at path, creating an empty set if the file
// does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, done: make(chan struct{})}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// OnChange registers the listener invoked with the full snippet set after
// every reload. Only one listener is supported; calling again replaces it.
// The listener is also invoked once immediately with the current set.
func (s *Store) OnChange(fn func([]Snippet)) {
	s.mu.Lock()
	s.onChange = fn
	snaps := append([]Snippet(nil), s.snippets...)
	s.mu.Unlock()
	if fn != nil {
		fn(snaps)
	}
}

// Watch starts the fsnotify watcher on the snippet file's directory.
// Watching the directory rather than the file survives atomic
// rename-over-write updates from external editors.
func (s *Store) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("snippet watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}
	s.watcher = w

	go func() {
		for {
			select {
			case <-s.done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != filepath.Base(s.path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if err := s.reload(); err != nil {
					slog.Warn("snippet reload failed", "err", err)
				} else {
					slog.Debug("snippet set reloaded", "count", s.Count())
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("snippet watcher error", "err", err)
			}
		}
	}()
	return nil
}

// Close stops the watcher.
func (s *Store) Close() {
	close(s.done)
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
}

// All returns a copy of the current snippet set, sorted by trigger.
func (s *Store) All() []Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]Snippet(nil), s.snippets...)
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Trigger) < strings.ToLower(out[j].Trigger)
	})
	return out
}

// Count returns the number of snippets.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snippets)
}

// Add validates and persists a new snippet, assigning it an id.
func (s *Store) Add(trigger, content string) (Snippet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn := Snippet{
		ID:      ulid.Make().String(),
		Trigger: trigger,
		Content: content,
	}
	if err := sn.Validate(s.snippets); err != nil {
		return Snippet{}, err
	}
	next := append(append([]Snippet(nil), s.snippets...), sn)
	if err := s.persistLocked(next); err != nil {
		return Snippet{}, err
	}
	return sn, nil
}

// Remove deletes the snippet with the given id.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Snippet, 0, len(s.snippets))
	found := false
	for _, sn := range s.snippets {
		if sn.ID == id {
			found = true
			continue
		}
		next = append(next, sn)
	}
	if !found {
		return ErrNotFound
	}
	return s.persistLocked(next)
}

// persistLocked writes next to disk atomically, updates the in-memory set,
// and fires the change listener. Caller holds s.mu.
func (s *Store) persistLocked(next []Snippet) error {
	raw, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snippets: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write snippets: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snippets: %w", err)
	}
	s.snippets = next
	if s.onChange != nil {
		fn, snaps := s.onChange, append([]Snippet(nil), next...)
		go fn(snaps)
	}
	return nil
}

// reload re-reads the snippet file and fires the change listener. Invalid
// records are skipped with a warning rather than poisoning the whole set.
func (s *Store) reload() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		raw = []byte("[]")
	} else if err != nil {
		return fmt.Errorf("read snippets: %w", err)
	}

	var loaded []Snippet
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}

	valid := make([]Snippet, 0, len(loaded))
	for _, sn := range loaded {
		if sn.ID == "" {
			sn.ID = ulid.Make().String()
		}
		if err := sn.Validate(valid); err != nil {
			slog.Warn("skipping invalid snippet", "trigger", sn.Trigger, "err", err)
			continue
		}
		valid = append(valid, sn)
	}

	s.mu.Lock()
	s.snippets = valid
	fn := s.onChange
	snaps := append([]Snippet(nil), valid...)
	s.mu.Unlock()

	if fn != nil {
		fn(snaps)
	}
	return nil
}
