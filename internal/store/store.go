// Package store persists geocode lookups and run history in SQLite or
// Postgres.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pugetworks/healthmap-cli/pkg/geocode"
)

// Run records one pipeline invocation.
type Run struct {
	ID         string
	SortKey    string
	Limit      int
	Features   int
	Skipped    int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store is the persistence interface shared by the SQLite and Postgres
// backends. The geocode methods satisfy geocode.Cache.
type Store interface {
	GetGeocode(ctx context.Context, addressHash string) (*geocode.Result, bool, error)
	PutGeocode(ctx context.Context, addressHash string, r *geocode.Result) error
	CountGeocodes(ctx context.Context) (int, error)
	ClearGeocodes(ctx context.Context) (int, error)

	RecordRun(ctx context.Context, run Run) (string, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver. Driver "none" returns
// (nil, nil): callers treat a nil Store as "no cache, no run log".
func Open(ctx context.Context, driver, dsn string, cacheTTLDays int) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(dsn, cacheTTLDays)
	case "postgres":
		return NewPostgres(ctx, dsn, cacheTTLDays)
	case "none", "":
		return nil, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
