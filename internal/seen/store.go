// Package seen is the cross-run dedup store: every posting identity the
// engine has ever emitted, keyed source_id|external_id, persisted as one flat
// JSON file. The set only grows; forgetting a key would mean a duplicate
// alert later.
package seen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Entry records when a key was first and most recently observed.
// FirstSeen is never overwritten.
type Entry struct {
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

type Store struct {
	path string
	fl   *flock.Flock

	mu      sync.Mutex
	entries map[string]Entry
	dirty   bool
}

// Open locks the store file against other engine processes and loads its full
// contents into memory. A missing file is an empty store, not an error.
func Open(path string) (*Store, error) {
	fl := flock.New(path + ".lock")
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("seen store lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("seen store %s is locked by another process", path)
	}

	s := &Store{
		path:    path,
		fl:      fl,
		entries: make(map[string]Entry),
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("seen store read: %w", err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &s.entries); err != nil {
			_ = fl.Unlock()
			return nil, fmt.Errorf("seen store decode %s: %w", path, err)
		}
	}
	return s, nil
}

func key(sourceID, externalID string) string {
	return sourceID + "|" + externalID
}

func (s *Store) Contains(sourceID, externalID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key(sourceID, externalID)]
	return ok
}

// CheckAndRecord is the membership-test-plus-insert as one atomic step.
// Returns true when the key was new. Recording an existing key only refreshes
// LastSeen.
func (s *Store) CheckAndRecord(sourceID, externalID string, seenAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(sourceID, externalID)
	if e, ok := s.entries[k]; ok {
		if seenAt.After(e.LastSeen) {
			e.LastSeen = seenAt
			s.entries[k] = e
			s.dirty = true
		}
		return false
	}
	s.entries[k] = Entry{FirstSeen: seenAt, LastSeen: seenAt}
	s.dirty = true
	return true
}

// Record is CheckAndRecord without caring about the answer.
func (s *Store) Record(sourceID, externalID string, seenAt time.Time) {
	s.CheckAndRecord(sourceID, externalID, seenAt)
}

func (s *Store) FirstSeen(sourceID, externalID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key(sourceID, externalID)]
	return e.FirstSeen, ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Flush writes the whole store back with a tmp+rename replace, so a crash
// mid-write leaves the previous file intact. All-or-nothing: on any error the
// on-disk state is whatever the last successful flush wrote.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	b, err := json.MarshalIndent(s.entries, "", " ")
	if err != nil {
		return fmt.Errorf("seen store encode: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("seen store mkdir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("seen store write tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("seen store replace: %w", err)
	}
	s.dirty = false
	return nil
}

// Close flushes and releases the file lock.
func (s *Store) Close() error {
	err := s.Flush()
	if s.fl != nil {
		if uerr := s.fl.Unlock(); err == nil {
			err = uerr
		}
	}
	return err
}
