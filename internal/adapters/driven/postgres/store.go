// Package postgres implements change extraction and enrichment against
// the relational content store. Access is read-only: the engine never
// mutates the source schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/google/uuid"

	"github.com/cinevault/cinesync/internal/core/domain"
	"github.com/cinevault/cinesync/internal/core/ports/driven"
)

// schema is the Postgres schema holding the content tables.
const schema = "content"

// Store wraps a shared database handle and hands out the extractor and
// enricher interfaces backed by it. One handle serves the whole cycle.
type Store struct {
	db *sql.DB
}

// NewStore opens a connection pool for dsn and verifies connectivity.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Extractor returns a ChangeExtractor for kind, pulling at most
// chunkSize changed rows per call.
func (s *Store) Extractor(kind domain.EntityKind, chunkSize int) driven.ChangeExtractor {
	return &extractor{db: s.db, kind: kind, chunk: chunkSize}
}

// Enricher returns the Enricher backed by this store.
func (s *Store) Enricher() driven.Enricher {
	return &enricher{db: s.db}
}

// placeholders renders "$start, $start+1, ..." for n arguments. The
// caller must guard n > 0: an empty IN list is invalid SQL.
func placeholders(n, start int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// idArgs converts ids into driver arguments.
func idArgs(ids []uuid.UUID) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
