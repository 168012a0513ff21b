// internal/state/prefs.go
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// PrefStore is a JSON-file-backed preference store. It survives
// application restarts and holds only the user's chosen provider and
// model. Read failures fall back to zero values; the engine treats
// preferences as best effort.
type PrefStore struct {
	root string
	mu   sync.RWMutex
}

type prefs struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// NewPrefStore creates a file-backed PrefStore rooted at the given
// directory.
func NewPrefStore(root string) *PrefStore {
	return &PrefStore{root: root}
}

func (s *PrefStore) path() string {
	return filepath.Join(s.root, "prefs.json")
}

// load reads prefs.json, returning zero values when the file is absent
// or unreadable. Caller must hold the lock.
func (s *PrefStore) load() prefs {
	var p prefs
	data, err := os.ReadFile(s.path())
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("read prefs", "error", err)
		}
		return p
	}
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("unmarshal prefs", "error", err)
		return prefs{}
	}
	return p
}

// save marshals with indentation and writes atomically via temp file
// and rename. Caller must hold the lock.
func (s *PrefStore) save(p prefs) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp prefs: %w", err)
	}
	return nil
}

// Provider returns the preferred provider id, or "" when unset.
func (s *PrefStore) Provider() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load().Provider
}

// Model returns the preferred model id, or "" when unset.
func (s *PrefStore) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load().Model
}

// SetProvider persists the preferred provider id.
func (s *PrefStore) SetProvider(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.load()
	p.Provider = id
	return s.save(p)
}

// SetModel persists the preferred model id.
func (s *PrefStore) SetModel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.load()
	p.Model = id
	return s.save(p)
}
