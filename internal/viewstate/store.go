// Package viewstate persists per-view visibility flags.
//
// A view registers its flags with defaults under a view key (for example
// "connections" with show_installed/show_available). Reads fall back to
// the default until a value has been written; writes are last-write-wins
// and survive restarts via a JSON document in the data dir.
package viewstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/connhub/console/internal/logging"
)

const stateFile = "view-state.json"

// Store holds visibility flags for all views.
type Store struct {
	path string
	log  *logging.Logger

	mu       sync.Mutex
	defaults map[string]bool // "<view>.<flag>" -> default
	values   map[string]bool // "<view>.<flag>" -> stored value
}

// New creates a flag store backed by a JSON file in dataDir. An existing
// state file is loaded; a corrupt one is logged and replaced on the next
// write.
func New(dataDir string, log *logging.Logger) *Store {
	s := &Store{
		path:     filepath.Join(dataDir, stateFile),
		log:      log,
		defaults: make(map[string]bool),
		values:   make(map[string]bool),
	}
	s.load()
	return s
}

// RegisterDefaults declares the flags of one view and their defaults.
func (s *Store) RegisterDefaults(viewKey string, defaults map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for flag, def := range defaults {
		s.defaults[storageKey(viewKey, flag)] = def
	}
}

// Get returns the current value of a flag, falling back to its default.
func (s *Store) Get(viewKey, flag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storageKey(viewKey, flag)
	if v, ok := s.values[key]; ok {
		return v
	}
	return s.defaults[key]
}

// Set writes a flag value and persists the store.
func (s *Store) Set(viewKey, flag string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[storageKey(viewKey, flag)] = value
	return s.persist()
}

// Toggle flips a flag and returns the new value.
func (s *Store) Toggle(viewKey, flag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storageKey(viewKey, flag)
	cur, ok := s.values[key]
	if !ok {
		cur = s.defaults[key]
	}

	s.values[key] = !cur
	return !cur, s.persist()
}

// List returns all flags of a view with their effective values.
func (s *Store) List(viewKey string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := viewKey + "."
	out := make(map[string]bool)
	for key, def := range s.defaults {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			flag := key[len(prefix):]
			if v, ok := s.values[key]; ok {
				out[flag] = v
			} else {
				out[flag] = def
			}
		}
	}
	return out
}

// Known reports whether a flag was registered for the view.
func (s *Store) Known(viewKey, flag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.defaults[storageKey(viewKey, flag)]
	return ok
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("Failed to read view state", zap.String("path", s.path), zap.Error(err))
		}
		return
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		s.log.Warn("Corrupt view state file, starting fresh",
			zap.String("path", s.path),
			zap.Error(err),
		)
		s.values = make(map[string]bool)
	}
}

// persist is called with s.mu held.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal view state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write view state: %w", err)
	}
	return nil
}

func storageKey(viewKey, flag string) string {
	return viewKey + "." + flag
}
