package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/pugetworks/healthmap-cli/pkg/geocode"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool         Pool
	cacheTTLDays int
}

// NewPostgres connects to the given database URL.
func NewPostgres(ctx context.Context, url string, cacheTTLDays int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool, cacheTTLDays: cacheTTLDays}, nil
}

// NewPostgresWithPool wraps an existing pool, for tests.
func NewPostgresWithPool(pool Pool, cacheTTLDays int) *PostgresStore {
	return &PostgresStore{pool: pool, cacheTTLDays: cacheTTLDays}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address_hash       TEXT PRIMARY KEY,
	latitude           DOUBLE PRECISION NOT NULL,
	longitude          DOUBLE PRECISION NOT NULL,
	normalized_address TEXT NOT NULL DEFAULT '',
	source             TEXT NOT NULL DEFAULT '',
	matched            BOOLEAN NOT NULL,
	cached_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	sort_key     TEXT NOT NULL,
	record_limit INTEGER NOT NULL,
	features     INTEGER NOT NULL,
	skipped      INTEGER NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_geocode_cache_cached_at ON geocode_cache(cached_at);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// GetGeocode implements geocode.Cache, respecting the cache TTL if set.
func (s *PostgresStore) GetGeocode(ctx context.Context, addressHash string) (*geocode.Result, bool, error) {
	query := `SELECT latitude, longitude, normalized_address, source, matched
		FROM geocode_cache WHERE address_hash = $1`
	if s.cacheTTLDays > 0 {
		query += fmt.Sprintf(" AND cached_at > now() - interval '%d days'", s.cacheTTLDays)
	}

	var r geocode.Result
	row := s.pool.QueryRow(ctx, query, addressHash)
	if err := row.Scan(&r.Latitude, &r.Longitude, &r.NormalizedAddress, &r.Source, &r.Matched); err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "postgres: get geocode")
	}
	return &r, true, nil
}

// PutGeocode implements geocode.Cache. Non-matches are stored too.
func (s *PostgresStore) PutGeocode(ctx context.Context, addressHash string, r *geocode.Result) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO geocode_cache (address_hash, latitude, longitude, normalized_address, source, matched, cached_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (address_hash) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			normalized_address = EXCLUDED.normalized_address,
			source = EXCLUDED.source,
			matched = EXCLUDED.matched,
			cached_at = now()`,
		addressHash, r.Latitude, r.Longitude, r.NormalizedAddress, r.Source, r.Matched,
	)
	return eris.Wrap(err, "postgres: put geocode")
}

func (s *PostgresStore) CountGeocodes(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM geocode_cache`).Scan(&n)
	return n, eris.Wrap(err, "postgres: count geocodes")
}

func (s *PostgresStore) ClearGeocodes(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM geocode_cache`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: clear geocodes")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO runs (id, sort_key, record_limit, features, skipped, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.SortKey, run.Limit, run.Features, run.Skipped,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: record run")
	}
	return run.ID, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, sort_key, record_limit, features, skipped, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.SortKey, &r.Limit, &r.Features, &r.Skipped, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
