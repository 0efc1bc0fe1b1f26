package driven

import (
	"context"

	"github.com/cinevault/cinesync/internal/core/domain"
)

// BulkIndexer writes transformed documents to the search index.
type BulkIndexer interface {
	// Upsert writes docs to index with create-if-absent,
	// merge-if-present semantics, chunked to the loader's configured
	// size. Transient transport failures are retried with exponential
	// backoff inside the call; a data/validation rejection propagates
	// immediately as domain.ErrInvalidDocument.
	//
	// Chunks are independent: a failure may leave earlier chunks
	// persisted. Callers own the at-least-once contract by advancing
	// watermarks only after Upsert returns nil for the whole pass.
	Upsert(ctx context.Context, index string, docs []domain.IndexDocument) error

	// EnsureIndex creates index if it does not exist yet. Mapping
	// bootstrap is owned by the index schema files, not by this
	// subsystem.
	EnsureIndex(ctx context.Context, index string) error
}
