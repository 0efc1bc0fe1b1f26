package domain

import "time"

// SyncState is the persisted watermark for one entity kind.
//
// Watermark is the change timestamp below which rows of this kind are
// considered already synchronized. A nil Watermark means the kind has
// never completed a pass and the next pass starts from the beginning.
type SyncState struct {
	// Kind is the entity kind this state belongs to.
	Kind EntityKind

	// Watermark is the updated_at of the newest row consumed by the
	// last successful pass. It is always a value observed on a row,
	// never wall-clock time.
	Watermark *time.Time

	// LastSync is when the last successful pass for this kind
	// committed.
	LastSync time.Time
}
