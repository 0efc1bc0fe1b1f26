package driven

import (
	"context"

	"github.com/cinevault/cinesync/internal/core/domain"
)

// SyncStateStore persists per-kind watermarks across process restarts.
//
// Implementations must serialize concurrent Save calls and must treat
// a corrupt backing store as empty rather than failing: losing the
// incremental optimization and re-syncing from the beginning is
// preferable to refusing to run.
type SyncStateStore interface {
	// Save stores or updates the watermark for state.Kind. The write
	// must be atomic with respect to a process crash.
	Save(ctx context.Context, state domain.SyncState) error

	// Get retrieves sync state for a kind. Returns domain.ErrNotFound
	// when the kind has never been recorded.
	Get(ctx context.Context, kind domain.EntityKind) (*domain.SyncState, error)

	// Delete removes the stored state for a kind so its next pass
	// starts from the beginning. Deleting absent state is not an error.
	Delete(ctx context.Context, kind domain.EntityKind) error
}
