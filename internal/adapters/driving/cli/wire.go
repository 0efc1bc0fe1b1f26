package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/cinevault/cinesync/internal/adapters/driven/elastic"
	"github.com/cinevault/cinesync/internal/adapters/driven/postgres"
	statefile "github.com/cinevault/cinesync/internal/adapters/driven/state/file"
	statesqlite "github.com/cinevault/cinesync/internal/adapters/driven/state/sqlite"
	"github.com/cinevault/cinesync/internal/config"
	"github.com/cinevault/cinesync/internal/core/domain"
	"github.com/cinevault/cinesync/internal/core/ports/driven"
	"github.com/cinevault/cinesync/internal/core/services"
	"github.com/cinevault/cinesync/internal/logger"
)

// engine bundles the wired sync stack with its lifecycle.
type engine struct {
	runner  *services.SyncManager
	indexer driven.BulkIndexer
	states  driven.SyncStateStore
	indexes []string
	poll    time.Duration

	closers []func() error
}

// close releases the engine's connections, newest first.
func (e *engine) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			logger.Warn("Closing resource: %v", err)
		}
	}
}

// buildEngine wires the full sync stack from the configuration file.
func buildEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	eng := &engine{
		indexes: []string{cfg.Elastic.FilmIndex, cfg.Elastic.GenreIndex, cfg.Elastic.PersonIndex},
		poll:    cfg.Sync.PollInterval.Std(),
	}

	store, err := postgres.NewStore(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	eng.closers = append(eng.closers, store.Close)

	indexer, err := elastic.NewIndexer(cfg.Elastic.URL, elastic.Options{
		ChunkSize:       cfg.Sync.LoadChunkSize,
		InitialInterval: cfg.Backoff.InitialInterval.Std(),
		Multiplier:      cfg.Backoff.Multiplier,
		MaxInterval:     cfg.Backoff.MaxInterval.Std(),
		MaxRetries:      cfg.Backoff.MaxRetries,
		RateLimit:       cfg.Elastic.RateLimit,
	})
	if err != nil {
		eng.close()
		return nil, err
	}
	eng.indexer = indexer

	states, closer, err := newStateStore(cfg.State)
	if err != nil {
		eng.close()
		return nil, err
	}
	if closer != nil {
		eng.closers = append(eng.closers, closer)
	}
	eng.states = states

	extractors := make([]driven.ChangeExtractor, 0, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		extractors = append(extractors, store.Extractor(kind, cfg.Sync.ChunkSize(string(kind))))
	}

	eng.runner = services.NewSyncManager(extractors, store.Enricher(), states, indexer,
		services.IndexNames{
			Films:   cfg.Elastic.FilmIndex,
			Genres:  cfg.Elastic.GenreIndex,
			Persons: cfg.Elastic.PersonIndex,
		})
	return eng, nil
}

// resolveStateStore returns the injected state store or opens the
// configured backend. The cleanup must be called when done.
func resolveStateStore() (driven.SyncStateStore, func(), error) {
	if stateStore != nil {
		return stateStore, func() {}, nil
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	store, closer, err := newStateStore(cfg.State)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if closer == nil {
			return
		}
		if err := closer(); err != nil {
			logger.Warn("Closing state store: %v", err)
		}
	}
	return store, cleanup, nil
}

// newStateStore opens the configured watermark backend.
func newStateStore(cfg config.StateConfig) (driven.SyncStateStore, func() error, error) {
	switch cfg.Backend {
	case "sqlite":
		store, err := statesqlite.NewSyncStateStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "file", "":
		store, err := statefile.NewSyncStateStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("state backend %q is not supported", cfg.Backend)
	}
}
