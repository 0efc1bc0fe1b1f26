package driven

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cinevault/cinesync/internal/core/domain"
)

// ChangeSet is the result of one extraction call for one entity kind.
type ChangeSet struct {
	// Kind is the entity kind the changed rows belong to.
	Kind domain.EntityKind

	// ChangedIDs are the rows of Kind whose updated_at moved past the
	// watermark, in ascending updated_at order.
	ChangedIDs []uuid.UUID

	// FilmIDs are the film works that must be re-enriched because of
	// the change. For the primary kind this equals ChangedIDs; for a
	// dependent kind it is the set of film works linked to the changed
	// rows, ordered by the film's own updated_at.
	FilmIDs []uuid.UUID

	// NextWatermark is the maximum updated_at among the changed rows
	// of Kind. It becomes the kind's watermark once the whole pass has
	// been durably loaded. Never wall-clock time: deriving it from row
	// timestamps is what makes a concurrent update visible to the next
	// pass instead of silently skipped.
	NextWatermark time.Time
}

// Empty reports whether extraction found no changed rows.
func (c *ChangeSet) Empty() bool {
	return c == nil || len(c.ChangedIDs) == 0
}

// ChangeExtractor finds rows of one entity kind changed after a
// watermark and resolves which film works they cascade to.
type ChangeExtractor interface {
	// Kind returns the entity kind this extractor serves.
	Kind() domain.EntityKind

	// Extract returns at most one page of rows changed strictly after
	// since, ordered oldest first. A nil since means from the beginning
	// (first run). An empty ChangeSet is returned when nothing changed;
	// the caller must then leave the watermark untouched.
	Extract(ctx context.Context, since *time.Time) (*ChangeSet, error)
}
