// Package sqlite persists sync state in a local SQLite database. It
// trades the file store's simplicity for transactional writes, which
// matters when several sync processes share one state location.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/cinevault/cinesync/internal/core/domain"
	"github.com/cinevault/cinesync/internal/core/ports/driven"
	"github.com/cinevault/cinesync/internal/logger"
)

// Ensure SyncStateStore implements the interface.
var _ driven.SyncStateStore = (*SyncStateStore)(nil)

// SyncStateStore is a SQLite-backed implementation of
// driven.SyncStateStore.
type SyncStateStore struct {
	db   *sql.DB
	path string
}

// NewSyncStateStore opens (or creates) the state database at path. If
// path is empty, defaults to ~/.cinesync/state.db.
func NewSyncStateStore(path string) (*SyncStateStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".cinesync", "state.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sync_states (
			kind      TEXT PRIMARY KEY,
			watermark TEXT,
			last_sync DATETIME
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sync_states table: %w", err)
	}

	return &SyncStateStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SyncStateStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SyncStateStore) Path() string {
	return s.path
}

// Save stores or updates sync state.
func (s *SyncStateStore) Save(ctx context.Context, state domain.SyncState) error {
	if state.Kind == "" {
		return domain.ErrInvalidInput
	}

	var watermark sql.NullString
	if state.Watermark != nil {
		watermark = sql.NullString{
			String: state.Watermark.UTC().Format(time.RFC3339Nano),
			Valid:  true,
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_states (kind, watermark, last_sync)
		VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			watermark = excluded.watermark,
			last_sync = excluded.last_sync
	`, string(state.Kind), watermark, state.LastSync.UTC())

	if err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}
	return nil
}

// Get retrieves sync state for a kind.
func (s *SyncStateStore) Get(ctx context.Context, kind domain.EntityKind) (*domain.SyncState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT watermark, last_sync
		FROM sync_states WHERE kind = ?
	`, string(kind))

	var watermark sql.NullString
	var lastSync sql.NullTime
	if err := row.Scan(&watermark, &lastSync); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning sync state: %w", err)
	}

	state := &domain.SyncState{Kind: kind}
	if watermark.Valid {
		mark, err := time.Parse(time.RFC3339Nano, watermark.String)
		if err != nil {
			// Corrupt state reads as empty: re-syncing from the
			// beginning beats refusing to run.
			logger.Warn("Discarding unparseable watermark for %s: %v", kind, err)
			return nil, domain.ErrNotFound
		}
		state.Watermark = &mark
	}
	if lastSync.Valid {
		state.LastSync = lastSync.Time
	}
	return state, nil
}

// Delete removes sync state for a kind.
func (s *SyncStateStore) Delete(ctx context.Context, kind domain.EntityKind) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sync_states WHERE kind = ?", string(kind))
	if err != nil {
		return fmt.Errorf("deleting sync state: %w", err)
	}
	return nil
}
