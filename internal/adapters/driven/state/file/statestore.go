// Package file persists sync state as a small JSON file. The format is
// a flat map keyed "<kind>_updated_at" with RFC 3339 timestamps, plus a
// "<kind>_last_sync" entry per kind.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cinevault/cinesync/internal/core/domain"
	"github.com/cinevault/cinesync/internal/core/ports/driven"
	"github.com/cinevault/cinesync/internal/logger"
)

// Ensure SyncStateStore implements the interface.
var _ driven.SyncStateStore = (*SyncStateStore)(nil)

// SyncStateStore stores per-kind watermarks in one JSON file.
//
// A missing or corrupt file reads as empty: the engine re-syncs from
// the beginning rather than refusing to run, and upserts make the
// repeat harmless.
type SyncStateStore struct {
	mu   sync.Mutex
	path string
}

// NewSyncStateStore creates a file-backed store at path. If path is
// empty, defaults to ~/.cinesync/state.json.
func NewSyncStateStore(path string) (*SyncStateStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".cinesync", "state.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	return &SyncStateStore{path: path}, nil
}

// Path returns the state file path.
func (s *SyncStateStore) Path() string {
	return s.path
}

// Save stores or updates sync state. The file is rewritten through a
// temp file and renamed into place so a crash mid-write cannot leave a
// half-written state behind.
func (s *SyncStateStore) Save(_ context.Context, state domain.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.read()
	if state.Watermark != nil {
		entries[watermarkKey(state.Kind)] = state.Watermark.UTC().Format(time.RFC3339Nano)
	} else {
		delete(entries, watermarkKey(state.Kind))
	}
	entries[lastSyncKey(state.Kind)] = state.LastSync.UTC().Format(time.RFC3339Nano)

	return s.write(entries)
}

// Get retrieves sync state for a kind. Returns domain.ErrNotFound when
// the kind has never been recorded.
func (s *SyncStateStore) Get(_ context.Context, kind domain.EntityKind) (*domain.SyncState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.read()
	raw, hasMark := entries[watermarkKey(kind)]
	lastRaw, hasSync := entries[lastSyncKey(kind)]
	if !hasMark && !hasSync {
		return nil, domain.ErrNotFound
	}

	state := &domain.SyncState{Kind: kind}
	if hasMark {
		mark, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			logger.Warn("Discarding unparseable watermark for %s: %v", kind, err)
			return nil, domain.ErrNotFound
		}
		state.Watermark = &mark
	}
	if hasSync {
		if last, err := time.Parse(time.RFC3339Nano, lastRaw); err == nil {
			state.LastSync = last
		}
	}
	return state, nil
}

// Delete removes sync state for a kind.
func (s *SyncStateStore) Delete(_ context.Context, kind domain.EntityKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.read()
	delete(entries, watermarkKey(kind))
	delete(entries, lastSyncKey(kind))
	return s.write(entries)
}

// read loads the state file, treating any failure as an empty store.
func (s *SyncStateStore) read() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Reading state file %s: %v; starting empty", s.path, err)
		}
		return map[string]string{}
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("State file %s is corrupt: %v; starting empty", s.path, err)
		return map[string]string{}
	}
	if entries == nil {
		entries = map[string]string{}
	}
	return entries
}

// write replaces the state file atomically.
func (s *SyncStateStore) write(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

func watermarkKey(kind domain.EntityKind) string {
	return string(kind) + "_updated_at"
}

func lastSyncKey(kind domain.EntityKind) string {
	return string(kind) + "_last_sync"
}
