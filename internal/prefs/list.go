package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"semgraph/internal/logging"
)

const (
	ImportantFile = "important_nodes.json"
	HiddenFile    = "hidden_nodes.json"
)

// ListStore persists an ordered list of file ids as a JSON array.
type ListStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewListStore(path string, logger *slog.Logger) *ListStore {
	return &ListStore{path: path, logger: logging.OrDefault(logger)}
}

// ForRepo returns the important and hidden lists kept in root's state dir.
func ForRepo(root, stateDir string, logger *slog.Logger) (important, hidden *ListStore) {
	dir := filepath.Join(root, stateDir)
	return NewListStore(filepath.Join(dir, ImportantFile), logger),
		NewListStore(filepath.Join(dir, HiddenFile), logger)
}

func (s *ListStore) Path() string { return s.path }

// Exists reports whether the list has ever been saved.
func (s *ListStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load returns the stored list. A missing, unreadable or malformed document
// yields an empty list.
func (s *ListStore) Load() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *ListStore) load() []string {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("preference list unreadable", "path", s.path, "error", err)
		}
		return []string{}
	}
	if err := validateDocument("mem://prefs/list.json", listSchema, raw); err != nil {
		s.logger.Warn("preference list malformed", "path", s.path, "error", err)
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return []string{}
	}
	return out
}

// Save overwrites the stored list.
func (s *ListStore) Save(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ids)
}

func (s *ListStore) save(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(s.path), err)
	}
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Set adds id when on is true and removes it otherwise, then persists and
// returns the resulting list. Existing order is kept and new ids go last.
func (s *ListStore) Set(id string, on bool) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.load()
	idx := -1
	for i, v := range ids {
		if v == id {
			idx = i
			break
		}
	}
	switch {
	case on && idx < 0:
		ids = append(ids, id)
	case !on && idx >= 0:
		ids = append(ids[:idx], ids[idx+1:]...)
	}
	if err := s.save(ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// AsSet loads the list as a lookup set.
func (s *ListStore) AsSet() map[string]bool {
	ids := s.Load()
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
