package domain

import "time"

// PassOutcome reports the result of one extract-transform-load pass
// for a single entity kind.
type PassOutcome struct {
	// Kind is the entity kind the pass ran for.
	Kind EntityKind

	// Changed is how many changed rows of this kind the pass consumed.
	Changed int

	// Loaded is how many index documents the pass upserted, across
	// all target indexes (a genre pass loads genre documents plus the
	// film documents it cascaded to).
	Loaded int

	// Watermark is the committed watermark after the pass. Unchanged
	// from the previous value when the pass was a no-op or failed.
	Watermark *time.Time

	// Err is the failure that aborted the pass, nil on success.
	// A failed pass never advances its watermark.
	Err error
}

// NoChanges reports whether the pass found nothing to synchronize.
func (o PassOutcome) NoChanges() bool {
	return o.Err == nil && o.Changed == 0
}

// CycleReport aggregates the per-kind outcomes of one synchronization
// cycle. Outcomes appear in the order the passes ran.
type CycleReport struct {
	Started  time.Time
	Finished time.Time
	Outcomes []PassOutcome
}

// Failed returns the outcomes of passes that ended in an error.
func (r CycleReport) Failed() []PassOutcome {
	var failed []PassOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
