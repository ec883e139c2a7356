// Package store persists layout records.
//
// All backends implement [Store]:
//   - memory: process-local map, for tests and throwaway servers
//   - file: one JSON file per layout, for the CLI
//   - sqlite: a single database file
//   - redis: shared storage for multi-instance servers
//   - mongo: document storage keyed by layout id
//
// [Open] builds the backend named in a [config.Store] and wraps it with
// [Instrument] so every operation is reported to the observability hooks.
//
// Save validates the record, stamps its timestamps and upserts it. Get
// returns an error carrying errors.ErrCodeLayoutNotFound for unknown ids.
// Delete of an unknown id succeeds. List returns records most recently
// updated first.
package store

import (
	"context"
	"sort"

	"github.com/matzehuels/gridboard/pkg/config"
	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// Store is the interface for layout storage backends.
// Implementations are safe for concurrent use.
type Store interface {
	// Get retrieves a layout by id.
	Get(ctx context.Context, id string) (*layout.Record, error)

	// List returns all layouts, most recently updated first.
	List(ctx context.Context) ([]*layout.Record, error)

	// Save validates and upserts a layout. It updates rec's timestamps.
	Save(ctx context.Context, rec *layout.Record) error

	// Delete removes a layout. Deleting a missing layout is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Open creates the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendFile:
		s, err = NewFileStore(cfg.Path)
	case config.BackendSQLite:
		s, err = NewSQLiteStore(ctx, cfg.Path)
	case config.BackendRedis:
		s, err = NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.BackendMongo:
		s, err = NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, gberr.New(gberr.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(s, cfg.Backend), nil
}

// prepare validates rec and stamps its timestamps ahead of a write.
func prepare(rec *layout.Record) error {
	if err := layout.Validate(rec); err != nil {
		return err
	}
	rec.Touch()
	return nil
}

// checkID rejects ids that are empty or could escape a key namespace.
func checkID(id string) error {
	if err := gberr.ValidateID(id); err != nil {
		return gberr.Wrap(gberr.ErrCodeInvalidInput, err, "layout id")
	}
	return nil
}

func notFound(id string) error {
	return gberr.New(gberr.ErrCodeLayoutNotFound, "layout %s not found", id)
}

// sortRecords orders records by UpdatedAt descending, then by id.
func sortRecords(recs []*layout.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}
