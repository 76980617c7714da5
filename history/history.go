// Package history persists the prompt/response log of the interactive
// client and exports it in several formats.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/ousax/scrap/log"
)

// StoreFile is the history file inside the data directory.
const StoreFile = "history.json"

// DefaultLimit is the number of entries shown by a history listing.
const DefaultLimit = 10

// ErrEmpty is returned when an operation needs at least one entry.
var ErrEmpty = errors.New("no conversation history")

// Entry is one answered prompt.
type Entry struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp" msgpack:"timestamp"`
	Prompt    string    `json:"prompt" yaml:"prompt" msgpack:"prompt"`
	Response  string    `json:"response" yaml:"response" msgpack:"response"`
}

// timestampLayouts are accepted when reading a history file. Files written
// by older clients use naive ISO timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// fileEntry is the on-disk shape, parsed leniently.
type fileEntry struct {
	Timestamp string `json:"timestamp"`
	Prompt    string `json:"prompt"`
	Response  string `json:"response"`
}

// Store is an append-only history bounded to the most recent entries.
// It is safe for concurrent use.
type Store struct {
	path     string
	maxItems int
	logger   *log.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries []Entry
}

// Open loads the history file at path. A missing file yields an empty
// store; an unreadable or corrupt file is logged and also yields an empty
// store.
func Open(path string, maxItems int, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Nop()
	}
	s := &Store{
		path:     path,
		maxItems: max(maxItems, 1),
		logger:   logger,
		now:      time.Now,
	}
	entries, err := load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("history unreadable, starting empty", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
	}
	s.entries = s.trim(entries)
	return s
}

func load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, Entry{
			Timestamp: parseTimestamp(r.Timestamp),
			Prompt:    r.Prompt,
			Response:  r.Response,
		})
	}
	return entries, nil
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// SetMaxItems changes the retention bound. Excess entries are dropped on
// the next write.
func (s *Store) SetMaxItems(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxItems = max(n, 1)
}

// Add appends an entry and saves the file.
func (s *Store) Add(prompt, response string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := Entry{Timestamp: s.now(), Prompt: prompt, Response: response}
	s.entries = s.trim(append(s.entries, e))
	return e, s.save()
}

// Get returns the last limit entries, oldest first. A limit <= 0 returns
// every entry.
func (s *Store) Get(limit int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if limit > 0 && limit < len(s.entries) {
		start = len(s.entries) - limit
	}
	return slices.Clone(s.entries[start:])
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Prompts returns the prompts of every entry, oldest first.
func (s *Store) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Prompt
	}
	return out
}

// Clear removes every entry and saves the empty history.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return s.save()
}

func (s *Store) trim(entries []Entry) []Entry {
	if len(entries) > s.maxItems {
		return slices.Clone(entries[len(entries)-s.maxItems:])
	}
	return entries
}

// save writes the file atomically. Callers hold mu.
func (s *Store) save() error {
	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
