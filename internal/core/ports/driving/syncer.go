// Package driving defines the inbound ports of the sync engine: the
// operations callers (CLI, scheduler) invoke on the core.
package driving

import (
	"context"

	"github.com/cinevault/cinesync/internal/core/domain"
)

// SyncRunner exposes the engine's single operation: run one
// synchronization cycle across every entity kind.
type SyncRunner interface {
	// RunCycle performs one pass per entity kind in a fixed order and
	// reports each kind's outcome independently. A failed pass never
	// prevents the remaining kinds from being attempted; the error
	// return is non-nil only when the cycle could not run at all.
	RunCycle(ctx context.Context) (domain.CycleReport, error)
}
