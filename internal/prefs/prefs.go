// Package prefs keeps small UI preferences in memory and writes them
// through to a persistent backend as JSON values.
package prefs

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/pders01/skim/internal/debuglog"
	"github.com/pders01/skim/internal/storage"
)

const (
	KeyTheme          = "theme"
	KeyInfiniteScroll = "infiniteScroll"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Backend is the persistent side of a Store. *storage.Store satisfies it.
type Backend interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	ForEach(fn func(key string, value []byte) error) error
}

// Store is safe for concurrent use. A nil backend keeps values in memory
// only.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	cache   map[string]json.RawMessage
	log     *debuglog.FieldLogger
}

func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		cache:   make(map[string]json.RawMessage),
		log:     debuglog.WithFields(map[string]any{"component": "prefs"}),
	}
}

// Get returns the value stored under key decoded as T. A missing key, an
// unreadable backend or an undecodable value all yield def.
func Get[T any](s *Store, key string, def T) T {
	raw, ok := s.lookup(key)
	if !ok {
		return def
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.log.With("key", key).Warnf("discarding corrupt preference: %v", err)
		return def
	}
	return v
}

func (s *Store) lookup(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	raw, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return raw, true
	}

	if s.backend == nil {
		return nil, false
	}

	data, err := s.backend.Get(key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.With("key", key).Warnf("reading preference: %v", err)
		}
		return nil, false
	}

	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()
	return data, true
}

// Set updates the in-memory value and writes it through. The in-memory
// value is kept even when the write fails.
func (s *Store) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.With("key", key).Errorf("encoding preference: %v", err)
		return err
	}

	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	if s.backend == nil {
		return nil
	}
	if err := s.backend.Put(key, data); err != nil {
		s.log.With("key", key).Errorf("persisting preference: %v", err)
		return err
	}
	return nil
}

// Persistent reports whether values survive the process.
func (s *Store) Persistent() bool {
	return s.backend != nil
}

func (s *Store) Theme() string {
	if Get(s, KeyTheme, ThemeLight) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

func (s *Store) SetTheme(theme string) error {
	if theme != ThemeDark {
		theme = ThemeLight
	}
	return s.Set(KeyTheme, theme)
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Store) ToggleTheme() string {
	next := ThemeDark
	if s.Theme() == ThemeDark {
		next = ThemeLight
	}
	_ = s.SetTheme(next)
	return next
}

func (s *Store) InfiniteScroll() bool {
	return Get(s, KeyInfiniteScroll, true)
}

func (s *Store) SetInfiniteScroll(on bool) error {
	return s.Set(KeyInfiniteScroll, on)
}

// ToggleInfiniteScroll flips the scroll mode and returns the new value.
func (s *Store) ToggleInfiniteScroll() bool {
	next := !s.InfiniteScroll()
	_ = s.SetInfiniteScroll(next)
	return next
}

// Entry is one stored key with its raw JSON value.
type Entry struct {
	Key   string
	Value string
}

// Entries lists every known preference sorted by key. In-memory values
// take precedence over the backend's copy.
func (s *Store) Entries() []Entry {
	merged := make(map[string]string)
	if s.backend != nil {
		err := s.backend.ForEach(func(key string, value []byte) error {
			merged[key] = string(value)
			return nil
		})
		if err != nil {
			s.log.Warnf("listing preferences: %v", err)
		}
	}

	s.mu.RLock()
	for k, v := range s.cache {
		merged[k] = string(v)
	}
	s.mu.RUnlock()

	entries := make([]Entry, 0, len(merged))
	for k, v := range merged {
		entries = append(entries, Entry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Parse decodes a command-line value for key. Known keys are validated;
// unknown keys accept any JSON and fall back to a plain string.
func Parse(key, value string) (any, error) {
	switch key {
	case KeyTheme:
		if value != ThemeLight && value != ThemeDark {
			return nil, errors.New("theme must be \"light\" or \"dark\"")
		}
		return value, nil
	case KeyInfiniteScroll:
		switch value {
		case "true", "on", "1":
			return true, nil
		case "false", "off", "0":
			return false, nil
		}
		return nil, errors.New("infiniteScroll must be true or false")
	}

	var v any
	if err := json.Unmarshal([]byte(value), &v); err == nil {
		return v, nil
	}
	return value, nil
}
