package config

import (
	"sort"
	"sync"
	"time"

	"github.com/shaverlee/gearbox/core/errors"
)

// Store is a mutable configuration mapping with dotted string keys.
// All methods are safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewStore creates a Store holding a copy of initial. A nil map yields an
// empty store.
func NewStore(initial map[string]any) *Store {
	values := make(map[string]any, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Store{values: values}
}

// Get returns the value for an exact key. Missing keys are a coded NotFound
// error.
func (s *Store) Get(key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, errors.NotFoundKey(key)
	}
	return value, nil
}

// Lookup returns the value for an exact key and whether it exists.
func (s *Store) Lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok
}

// Set creates or overwrites the value for a key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Update merges the given values into the store, overwriting existing keys.
func (s *Store) Update(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
}

// Delete removes a key. Deleting an absent key is a coded NotFound error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return errors.NotFoundKey(key)
	}
	delete(s.values, key)
	return nil
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Snapshot returns a copy of the current mapping.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]any, len(s.values))
	for k, v := range s.values {
		snapshot[k] = v
	}
	return snapshot
}

// View returns the group of keys sharing prefix as a dot-prefix, with the
// prefix stripped. An empty group is a coded NotFound error.
func (s *Store) View(prefix string) (View, error) {
	return group(prefix, s.Snapshot())
}

// Resolve returns the value for key, falling back to the prefix group when no
// exact entry exists. Only when both fail does it return NotFound.
func (s *Store) Resolve(key string) (any, error) {
	if value, ok := s.Lookup(key); ok {
		return value, nil
	}

	view, err := s.View(key)
	if err != nil {
		return nil, errors.NotFoundKey(key)
	}
	return view, nil
}

// BoolOr returns the key's value as a bool, or def when the key is absent or
// not a bool.
func (s *Store) BoolOr(key string, def bool) bool {
	if value, ok := s.Lookup(key); ok {
		if b, ok := value.(bool); ok {
			return b
		}
	}
	return def
}

// StringOr returns the key's value as a string, or def when the key is absent
// or not a string.
func (s *Store) StringOr(key string, def string) string {
	if value, ok := s.Lookup(key); ok {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return def
}

// IntOr returns the key's value as an int, or def when the key is absent or
// not an integer.
func (s *Store) IntOr(key string, def int) int {
	if value, ok := s.Lookup(key); ok {
		switch n := value.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}

// DurationOr returns the key's value as a duration, accepting time.Duration
// values or parseable strings, or def otherwise.
func (s *Store) DurationOr(key string, def time.Duration) time.Duration {
	if value, ok := s.Lookup(key); ok {
		switch d := value.(type) {
		case time.Duration:
			return d
		case string:
			if parsed, err := time.ParseDuration(d); err == nil {
				return parsed
			}
		}
	}
	return def
}
