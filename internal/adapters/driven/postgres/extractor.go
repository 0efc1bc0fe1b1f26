package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cinevault/cinesync/internal/core/domain"
	"github.com/cinevault/cinesync/internal/core/ports/driven"
)

// Ensure extractor implements the interface.
var _ driven.ChangeExtractor = (*extractor)(nil)

// extractor finds rows of one kind changed after a watermark. The kind
// doubles as the table name; dependent kinds additionally translate
// their changed IDs into the film works that reference them.
type extractor struct {
	db    *sql.DB
	kind  domain.EntityKind
	chunk int
}

// changedRow is one row of the changed-row query.
type changedRow struct {
	ID        uuid.UUID
	UpdatedAt time.Time
}

// Kind returns the entity kind this extractor serves.
func (e *extractor) Kind() domain.EntityKind {
	return e.kind
}

// Extract returns one page of rows changed strictly after since,
// oldest first, plus the film works the change cascades to. The
// candidate watermark is the newest updated_at among the returned rows
// of this kind, never wall-clock time: a row updated between the
// watermark read and the query must surface on the next pass.
func (e *extractor) Extract(ctx context.Context, since *time.Time) (*driven.ChangeSet, error) {
	rows, err := e.changedRows(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("querying changed %s rows: %w", e.kind, err)
	}
	if len(rows) == 0 {
		// Nothing to do; the caller leaves the watermark untouched.
		return &driven.ChangeSet{Kind: e.kind}, nil
	}

	changes := &driven.ChangeSet{
		Kind:          e.kind,
		ChangedIDs:    rowIDs(rows),
		NextWatermark: rows[len(rows)-1].UpdatedAt,
	}

	if e.kind.Primary() {
		changes.FilmIDs = changes.ChangedIDs
		return changes, nil
	}

	filmIDs, err := e.dependentFilmIDs(ctx, changes.ChangedIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving film works for changed %s rows: %w", e.kind, err)
	}
	changes.FilmIDs = filmIDs
	return changes, nil
}

// changedRows pages rows with updated_at past the watermark, oldest
// first. A nil watermark (first run) selects from the beginning.
func (e *extractor) changedRows(ctx context.Context, since *time.Time) ([]changedRow, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if since == nil {
		query := fmt.Sprintf(
			`SELECT id, updated_at FROM %s.%s ORDER BY updated_at LIMIT $1`,
			schema, e.kind)
		rows, err = e.db.QueryContext(ctx, query, e.chunk)
	} else {
		query := fmt.Sprintf(
			`SELECT id, updated_at FROM %s.%s WHERE updated_at > $1 ORDER BY updated_at LIMIT $2`,
			schema, e.kind)
		rows, err = e.db.QueryContext(ctx, query, *since, e.chunk)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChangedRows(rows)
}

// dependentFilmIDs joins the changed secondary IDs through the link
// table to the film works that reference them. The films are ordered
// by their own updated_at: if a later stage fails partway, the resumed
// window still lines up with a real prefix of processed rows.
func (e *extractor) dependentFilmIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	// Guard: "IN ()" is invalid SQL.
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT fw.id, fw.updated_at
		FROM %[1]s.film_work fw
		JOIN %[1]s.%[2]s_film_work link ON link.film_work_id = fw.id
		WHERE link.%[2]s_id IN (%[3]s)
		ORDER BY fw.updated_at`,
		schema, e.kind, placeholders(len(ids), 1))

	rows, err := e.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	films, err := scanChangedRows(rows)
	if err != nil {
		return nil, err
	}
	return rowIDs(films), nil
}

// scanChangedRows drains an (id, updated_at) result set.
func scanChangedRows(rows *sql.Rows) ([]changedRow, error) {
	var out []changedRow
	for rows.Next() {
		var r changedRow
		if err := rows.Scan(&r.ID, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// rowIDs projects the ID column, preserving order.
func rowIDs(rows []changedRow) []uuid.UUID {
	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}
