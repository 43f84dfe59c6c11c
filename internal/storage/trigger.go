package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TriggerStatus is the lifecycle state of a publish trigger.
type TriggerStatus string

const (
	TriggerPending   TriggerStatus = "pending"
	TriggerTriggered TriggerStatus = "triggered"
	TriggerExpired   TriggerStatus = "expired"
)

// Sentinel errors for trigger state operations.
var (
	ErrTriggerNotFound = errors.New("trigger state not found")
	// ErrNotPending indicates an attempted transition out of a terminal
	// status. pending->triggered and pending->expired are the only legal
	// moves; a state never returns to pending.
	ErrNotPending = errors.New("trigger state is not pending")
)

// TriggerState is the persisted record for one publish poller. Each completed
// episode bundle gets its own state file so concurrent pollers never share a
// key and a restart reattaches the right poller to the right bundle.
type TriggerState struct {
	ID         string        `json:"id"`
	BundleDir  string        `json:"bundle_dir"`
	Title      string        `json:"title"`
	ThreadChan string        `json:"thread_channel"`
	ThreadTS   string        `json:"thread_ts"`
	CreatedAt  time.Time     `json:"created_at"`
	Deadline   time.Time     `json:"deadline"`
	Status     TriggerStatus `json:"status"`
}

// TriggerStore keeps one JSON file per trigger state under dir.
type TriggerStore struct {
	dir string
}

// NewTriggerStore returns a store rooted at dir.
func NewTriggerStore(dir string) *TriggerStore {
	return &TriggerStore{dir: dir}
}

// Save writes the state atomically.
func (s *TriggerStore) Save(state *TriggerState) error {
	writer, err := NewAtomicWriter(s.path(state.ID))
	if err != nil {
		return fmt.Errorf("save trigger state: %w", err)
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(state); err != nil {
		writer.Abort()
		return fmt.Errorf("save trigger state: %w", err)
	}
	if err := writer.Commit(); err != nil {
		return fmt.Errorf("save trigger state: %w", err)
	}
	return nil
}

// Load reads a state by ID. A missing file yields ErrTriggerNotFound, which
// the poller treats as manual cancellation.
func (s *TriggerStore) Load(id string) (*TriggerState, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTriggerNotFound, id)
		}
		return nil, fmt.Errorf("load trigger state: %w", err)
	}

	state := &TriggerState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parse trigger state %s: %w", id, err)
	}
	return state, nil
}

// Exists reports whether the state file is still on disk.
func (s *TriggerStore) Exists(id string) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// Delete removes a state file. Missing files are ignored.
func (s *TriggerStore) Delete(id string) error {
	err := os.Remove(s.path(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete trigger state: %w", err)
	}
	return nil
}

// List returns every persisted state, used to resume pollers after a restart.
func (s *TriggerStore) List() ([]*TriggerState, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list trigger states: %w", err)
	}

	var states []*TriggerState
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		state, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

// MarkTriggered persists the pending->triggered transition. It re-reads the
// file first so that the transition happens at most once even if two pollers
// somehow observe the same trigger event.
func (s *TriggerStore) MarkTriggered(state *TriggerState) error {
	return s.transition(state, TriggerTriggered)
}

// MarkExpired persists the pending->expired transition.
func (s *TriggerStore) MarkExpired(state *TriggerState) error {
	return s.transition(state, TriggerExpired)
}

func (s *TriggerStore) transition(state *TriggerState, to TriggerStatus) error {
	current, err := s.Load(state.ID)
	if err != nil {
		return err
	}
	if current.Status != TriggerPending {
		return fmt.Errorf("%w: %s is %s", ErrNotPending, state.ID, current.Status)
	}
	state.Status = to
	return s.Save(state)
}

func (s *TriggerStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
