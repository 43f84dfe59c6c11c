package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// ErrAlreadyProcessed indicates a transcript filename is in the processed set.
var ErrAlreadyProcessed = errors.New("transcript already processed")

// ProcessedSet tracks which transcript filenames have completed processing.
// Entries map filename to the time the episode bundle was written. The set is
// the idempotence record: a filename in here is never re-processed, even
// across restarts, until its entry is removed by hand.
type ProcessedSet struct {
	path string
	mu   sync.Mutex
}

// NewProcessedSet returns a set backed by the JSON file at path. The file is
// created lazily on first Mark.
func NewProcessedSet(path string) *ProcessedSet {
	return &ProcessedSet{path: path}
}

// Contains reports whether filename has already been processed.
func (s *ProcessedSet) Contains(filename string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return false, err
	}
	_, ok := entries[filename]
	return ok, nil
}

// Mark records filename as processed at the current time. Marking an
// already-present filename returns ErrAlreadyProcessed and leaves the
// existing timestamp untouched.
func (s *ProcessedSet) Mark(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[filename]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyProcessed, filename)
	}
	entries[filename] = time.Now()
	return s.save(entries)
}

// Remove deletes filename from the set, allowing a re-run. Removing an
// absent filename is a no-op.
func (s *ProcessedSet) Remove(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[filename]; !ok {
		return nil
	}
	delete(entries, filename)
	return s.save(entries)
}

// Entries returns a copy of the full filename->timestamp mapping.
func (s *ProcessedSet) Entries() (map[string]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *ProcessedSet) load() (map[string]time.Time, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]time.Time{}, nil
		}
		return nil, fmt.Errorf("read processed set: %w", err)
	}

	entries := map[string]time.Time{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse processed set %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *ProcessedSet) save(entries map[string]time.Time) error {
	writer, err := NewAtomicWriter(s.path)
	if err != nil {
		return fmt.Errorf("write processed set: %w", err)
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		writer.Abort()
		return fmt.Errorf("write processed set: %w", err)
	}
	if err := writer.Commit(); err != nil {
		return fmt.Errorf("write processed set: %w", err)
	}
	return nil
}
