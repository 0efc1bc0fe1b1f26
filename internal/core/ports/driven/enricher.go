package driven

import (
	"context"

	"github.com/google/uuid"

	"github.com/cinevault/cinesync/internal/core/domain"
)

// Enricher turns sets of entity IDs into fully joined rows ready for
// transformation. Implementations must return rows ordered by the
// entity's own updated_at ascending so that a partially processed
// batch always corresponds to a watermark-consistent prefix.
type Enricher interface {
	// Films returns the denormalized film works for ids: scalars plus
	// deduplicated genre and per-role person lists.
	Films(ctx context.Context, ids []uuid.UUID) ([]domain.FilmWork, error)

	// Genres returns the genre rows for ids. No join is required.
	Genres(ctx context.Context, ids []uuid.UUID) ([]domain.Genre, error)

	// Persons returns the person rows for ids, each aggregated with
	// every linked film and the roles held on it.
	Persons(ctx context.Context, ids []uuid.UUID) ([]domain.Person, error)
}
