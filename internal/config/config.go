// Package config loads the cinesync configuration from a TOML file
// with sane defaults and environment overrides for connection strings.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that unmarshals from TOML strings such
// as "100ms" or "10s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full configuration surface of the sync engine.
type Config struct {
	Postgres PostgresConfig `toml:"postgres"`
	Elastic  ElasticConfig  `toml:"elastic"`
	Sync     SyncConfig     `toml:"sync"`
	Backoff  BackoffConfig  `toml:"backoff"`
	State    StateConfig    `toml:"state"`
}

// PostgresConfig points at the relational content store.
type PostgresConfig struct {
	// DSN is the connection string. Overridable via
	// CINESYNC_POSTGRES_DSN so credentials stay out of the file.
	DSN string `toml:"dsn"`
}

// ElasticConfig points at the search index.
type ElasticConfig struct {
	// URL is the Elasticsearch endpoint. Overridable via
	// CINESYNC_ELASTIC_URL.
	URL string `toml:"url"`

	FilmIndex   string `toml:"film_index"`
	GenreIndex  string `toml:"genre_index"`
	PersonIndex string `toml:"person_index"`

	// RateLimit caps bulk requests per second. Zero disables the cap.
	RateLimit float64 `toml:"rate_limit"`
}

// SyncConfig bounds batch sizes and the poll loop.
//
// The genre and person chunk sizes also bound how many film works one
// dependent-kind page can cascade to; keep them small enough that the
// resulting document batch stays reasonable.
type SyncConfig struct {
	FilmChunkSize   int `toml:"film_chunk_size"`
	GenreChunkSize  int `toml:"genre_chunk_size"`
	PersonChunkSize int `toml:"person_chunk_size"`

	// LoadChunkSize is how many documents go into one bulk request,
	// independent of the extraction chunk sizes.
	LoadChunkSize int `toml:"load_chunk_size"`

	// PollInterval is the sleep between cycles in loop mode.
	PollInterval Duration `toml:"poll_interval"`
}

// BackoffConfig tunes the loader's transient-failure retry.
type BackoffConfig struct {
	InitialInterval Duration `toml:"initial_interval"`
	Multiplier      float64  `toml:"multiplier"`
	MaxInterval     Duration `toml:"max_interval"`
	MaxRetries      uint64   `toml:"max_retries"`
}

// StateConfig selects the watermark persistence backend.
type StateConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `toml:"backend"`

	// Path is the state file or database path. Empty means the
	// backend's default under ~/.cinesync.
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Postgres: PostgresConfig{
			DSN: "postgres://localhost:5432/movies?sslmode=disable",
		},
		Elastic: ElasticConfig{
			URL:         "http://localhost:9200",
			FilmIndex:   "movies",
			GenreIndex:  "genres",
			PersonIndex: "persons",
		},
		Sync: SyncConfig{
			FilmChunkSize:   100,
			GenreChunkSize:  50,
			PersonChunkSize: 50,
			LoadChunkSize:   100,
			PollInterval:    Duration(30 * time.Second),
		},
		Backoff: BackoffConfig{
			InitialInterval: Duration(100 * time.Millisecond),
			Multiplier:      2,
			MaxInterval:     Duration(10 * time.Second),
			MaxRetries:      8,
		},
		State: StateConfig{
			Backend: "file",
		},
	}
}

// Load reads the TOML file at path on top of the defaults, applies
// environment overrides and validates the result. A missing file is
// not an error: the defaults (plus environment) apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Fall through to defaults.
		case err != nil:
			return Config{}, fmt.Errorf("reading config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if dsn := os.Getenv("CINESYNC_POSTGRES_DSN"); dsn != "" {
		cfg.Postgres.DSN = dsn
	}
	if url := os.Getenv("CINESYNC_ELASTIC_URL"); url != "" {
		cfg.Elastic.URL = url
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run
// with.
func (c Config) Validate() error {
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Elastic.URL == "" {
		return errors.New("elastic.url is required")
	}
	if c.Elastic.FilmIndex == "" || c.Elastic.GenreIndex == "" || c.Elastic.PersonIndex == "" {
		return errors.New("elastic index names are required")
	}
	for name, size := range map[string]int{
		"sync.film_chunk_size":   c.Sync.FilmChunkSize,
		"sync.genre_chunk_size":  c.Sync.GenreChunkSize,
		"sync.person_chunk_size": c.Sync.PersonChunkSize,
		"sync.load_chunk_size":   c.Sync.LoadChunkSize,
	} {
		if size <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Backoff.Multiplier < 1 {
		return errors.New("backoff.multiplier must be >= 1")
	}
	if c.Backoff.InitialInterval <= 0 || c.Backoff.MaxInterval < c.Backoff.InitialInterval {
		return errors.New("backoff intervals are invalid")
	}
	// Zero would retry forever: the loader's retries are bounded by
	// max_retries, not elapsed time.
	if c.Backoff.MaxRetries == 0 {
		return errors.New("backoff.max_retries must be positive")
	}
	if c.State.Backend != "file" && c.State.Backend != "sqlite" {
		return fmt.Errorf("state.backend %q is not supported", c.State.Backend)
	}
	if c.Sync.PollInterval <= 0 {
		return errors.New("sync.poll_interval must be positive")
	}
	if c.Elastic.RateLimit < 0 {
		return errors.New("elastic.rate_limit must not be negative")
	}
	return nil
}

// ChunkSize returns the extraction page size for kind's table name.
func (c SyncConfig) ChunkSize(table string) int {
	switch table {
	case "genre":
		return c.GenreChunkSize
	case "person":
		return c.PersonChunkSize
	default:
		return c.FilmChunkSize
	}
}
