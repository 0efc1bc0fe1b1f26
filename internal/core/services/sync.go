// Package services contains the core sync engine: the SyncManager
// that drives one extract-transform-load pass per entity kind, and the
// pure document transformers it feeds the loader with.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cinevault/cinesync/internal/core/domain"
	"github.com/cinevault/cinesync/internal/core/ports/driven"
	"github.com/cinevault/cinesync/internal/core/ports/driving"
	"github.com/cinevault/cinesync/internal/logger"
)

// Ensure SyncManager implements the interface.
var _ driving.SyncRunner = (*SyncManager)(nil)

// IndexNames maps entity kinds to their target index names.
type IndexNames struct {
	Films   string
	Genres  string
	Persons string
}

// SyncManager orchestrates synchronization passes. Each cycle runs one
// pass per entity kind in a fixed order; each pass is extract ->
// enrich -> transform -> load -> commit watermark, with the commit
// strictly last so a crash replays the same window instead of losing
// it.
type SyncManager struct {
	extractors []driven.ChangeExtractor
	enricher   driven.Enricher
	states     driven.SyncStateStore
	indexer    driven.BulkIndexer
	indexes    IndexNames
}

// NewSyncManager creates a sync manager. Extractors run in the order
// given; by convention the primary kind comes first.
func NewSyncManager(
	extractors []driven.ChangeExtractor,
	enricher driven.Enricher,
	states driven.SyncStateStore,
	indexer driven.BulkIndexer,
	indexes IndexNames,
) *SyncManager {
	return &SyncManager{
		extractors: extractors,
		enricher:   enricher,
		states:     states,
		indexer:    indexer,
		indexes:    indexes,
	}
}

// RunCycle performs one pass per entity kind and reports each outcome
// independently. A pass failure is contained: it is recorded in the
// report and the remaining kinds still run. The error return is
// reserved for not being able to run at all (context already done).
func (m *SyncManager) RunCycle(ctx context.Context) (domain.CycleReport, error) {
	report := domain.CycleReport{Started: time.Now()}

	for _, ex := range m.extractors {
		if err := ctx.Err(); err != nil {
			report.Finished = time.Now()
			return report, err
		}

		outcome := m.runPass(ctx, ex)
		report.Outcomes = append(report.Outcomes, outcome)

		switch {
		case outcome.Err != nil:
			logger.Error("Pass for %s failed: %v", outcome.Kind, outcome.Err)
		case outcome.NoChanges():
			logger.Debug("No changes for %s", outcome.Kind)
		default:
			logger.Info("Pass for %s: %d changed rows, %d documents loaded, watermark %s",
				outcome.Kind, outcome.Changed, outcome.Loaded, outcome.Watermark.Format(time.RFC3339Nano))
		}
	}

	report.Finished = time.Now()
	return report, nil
}

// runPass executes the state machine for a single kind. On any error
// the pass is abandoned with the watermark untouched; the next cycle
// naturally retries the same unconsumed window.
func (m *SyncManager) runPass(ctx context.Context, ex driven.ChangeExtractor) domain.PassOutcome {
	kind := ex.Kind()
	outcome := domain.PassOutcome{Kind: kind}

	// Idle -> Extracting
	since, err := m.watermark(ctx, kind)
	if err != nil {
		outcome.Err = fmt.Errorf("read watermark: %w", err)
		return outcome
	}
	outcome.Watermark = since

	changes, err := ex.Extract(ctx, since)
	if err != nil {
		outcome.Err = fmt.Errorf("extract: %w", err)
		return outcome
	}

	// Extracting -> Idle (no-op pass, watermark untouched)
	if changes.Empty() {
		return outcome
	}
	outcome.Changed = len(changes.ChangedIDs)

	// Enriching -> Transforming -> Loading, first the kind's own
	// documents, then the film works the change cascades to.
	loaded, err := m.loadOwn(ctx, changes)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Loaded += loaded

	loaded, err = m.loadFilms(ctx, changes.FilmIDs)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Loaded += loaded

	// Loading -> Committing: only after every chunk of the pass has
	// been durably loaded.
	next := changes.NextWatermark
	state := domain.SyncState{Kind: kind, Watermark: &next, LastSync: time.Now()}
	if err := m.states.Save(ctx, state); err != nil {
		outcome.Err = fmt.Errorf("save watermark: %w", err)
		return outcome
	}

	outcome.Watermark = &next
	return outcome
}

// watermark reads the stored watermark for kind. Absent state reads as
// nil (first run, sync from the beginning).
func (m *SyncManager) watermark(ctx context.Context, kind domain.EntityKind) (*time.Time, error) {
	state, err := m.states.Get(ctx, kind)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return state.Watermark, nil
}

// loadOwn enriches and loads the changed rows' own index documents.
// The primary kind has no separate own-document step: its documents
// are the film documents loaded by loadFilms.
func (m *SyncManager) loadOwn(ctx context.Context, changes *driven.ChangeSet) (int, error) {
	switch changes.Kind {
	case domain.KindGenre:
		genres, err := m.enricher.Genres(ctx, changes.ChangedIDs)
		if err != nil {
			return 0, fmt.Errorf("enrich genres: %w", err)
		}
		docs := TransformGenres(genres)
		if err := m.indexer.Upsert(ctx, m.indexes.Genres, docs); err != nil {
			return 0, fmt.Errorf("load genres: %w", err)
		}
		return len(docs), nil

	case domain.KindPerson:
		persons, err := m.enricher.Persons(ctx, changes.ChangedIDs)
		if err != nil {
			return 0, fmt.Errorf("enrich persons: %w", err)
		}
		docs := TransformPersons(persons)
		if err := m.indexer.Upsert(ctx, m.indexes.Persons, docs); err != nil {
			return 0, fmt.Errorf("load persons: %w", err)
		}
		return len(docs), nil

	default:
		return 0, nil
	}
}

// loadFilms enriches and loads the film documents for ids.
func (m *SyncManager) loadFilms(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	films, err := m.enricher.Films(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("enrich films: %w", err)
	}
	docs := TransformFilms(films)
	if err := m.indexer.Upsert(ctx, m.indexes.Films, docs); err != nil {
		return 0, fmt.Errorf("load films: %w", err)
	}
	return len(docs), nil
}
