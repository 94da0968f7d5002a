package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"

	"foodbot/internal/logger"
	"foodbot/pkg"
)

// SavedListStore is the durable per-user "to try" list: a single JSON
// object keyed by user id, rewritten in full on every mutation. The mutex
// serializes in-process mutations; a cross-process race stays an accepted
// risk at this scale.
type SavedListStore struct {
	path  string
	mu    sync.Mutex
	lists map[string][]pkg.SavedEntry
}

// NewSavedListStore loads the persisted mapping. Malformed content resets
// to an empty mapping silently; a missing file is a fresh start.
func NewSavedListStore(path string) (*SavedListStore, error) {
	s := &SavedListStore{
		path:  path,
		lists: make(map[string][]pkg.SavedEntry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read saved list file: %w", err)
	}
	if err := sonic.Unmarshal(data, &s.lists); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("saved list file malformed, starting empty")
		s.lists = make(map[string][]pkg.SavedEntry)
	}
	return s, nil
}

// Add appends an entry for the user. It is idempotent on name: a second
// entry with the same name reports false and changes nothing.
func (s *SavedListStore) Add(userID string, entry pkg.SavedEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, saved := range s.lists[userID] {
		if saved.Name == entry.Name {
			return false, nil
		}
	}
	s.lists[userID] = append(s.lists[userID], entry)

	if err := s.persist(); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the first entry whose name contains the given substring,
// in insertion order. Ambiguous substrings resolve to the earliest match.
func (s *SavedListStore) Remove(userID, nameSubstring string) (pkg.SavedEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.lists[userID]
	for i, entry := range saved {
		if strings.Contains(entry.Name, nameSubstring) {
			s.lists[userID] = append(saved[:i:i], saved[i+1:]...)
			if err := s.persist(); err != nil {
				return pkg.SavedEntry{}, false, err
			}
			return entry, true, nil
		}
	}
	return pkg.SavedEntry{}, false, nil
}

// List returns the user's entries in insertion order.
func (s *SavedListStore) List(userID string) []pkg.SavedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.lists[userID]
	out := make([]pkg.SavedEntry, len(saved))
	copy(out, saved)
	return out
}

// persist rewrites the whole mapping. Callers hold the mutex.
func (s *SavedListStore) persist() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create saved list directory: %w", err)
		}
	}

	data, err := sonic.MarshalIndent(s.lists, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal saved lists: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write saved list file: %w", err)
	}
	logger.Debug().Str("path", s.path).Msg("💾 saved lists persisted")
	return nil
}
