package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultPath is where the CLI keeps lookups that can never change, such as
// receipts of transactions that reached consensus.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hsocial", "cache.json")
}

type fileCache struct {
	Data map[string]json.RawMessage `json:"Data"`
}

// Store is a small JSON file keyed by case-insensitive strings. An empty
// path makes a memory-only store.
type Store struct {
	path string

	mu     sync.Mutex
	loaded *fileCache
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() *fileCache {
	if s.loaded != nil {
		return s.loaded
	}
	s.loaded = &fileCache{Data: map[string]json.RawMessage{}}
	if s.path == "" {
		return s.loaded
	}
	content, err := os.ReadFile(s.path)
	if err != nil {
		return s.loaded
	}
	// a corrupt cache file is treated as empty and rewritten on next Set
	if json.Unmarshal(content, s.loaded) != nil || s.loaded.Data == nil {
		s.loaded = &fileCache{Data: map[string]json.RawMessage{}}
	}
	return s.loaded
}

// Get decodes the value stored under key into out.
func (s *Store) Get(key string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, found := s.load().Data[strings.ToLower(key)]
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.load()
	c.Data[strings.ToLower(key)] = raw
	return s.persist(c)
}

func (s *Store) persist(c *fileCache) error {
	if s.path == "" {
		return nil
	}
	content, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, content, 0644)
}
