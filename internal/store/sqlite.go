package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/pugetworks/healthmap-cli/pkg/geocode"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db           *sql.DB
	cacheTTLDays int
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string, cacheTTLDays int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, cacheTTLDays: cacheTTLDays}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address_hash       TEXT PRIMARY KEY,
	latitude           REAL NOT NULL,
	longitude          REAL NOT NULL,
	normalized_address TEXT NOT NULL DEFAULT '',
	source             TEXT NOT NULL DEFAULT '',
	matched            INTEGER NOT NULL,
	cached_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	sort_key     TEXT NOT NULL,
	record_limit INTEGER NOT NULL,
	features     INTEGER NOT NULL,
	skipped      INTEGER NOT NULL,
	started_at   DATETIME NOT NULL,
	finished_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_geocode_cache_cached_at ON geocode_cache(cached_at);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetGeocode implements geocode.Cache, respecting the cache TTL if set.
func (s *SQLiteStore) GetGeocode(ctx context.Context, addressHash string) (*geocode.Result, bool, error) {
	query := `SELECT latitude, longitude, normalized_address, source, matched
		FROM geocode_cache WHERE address_hash = ?`
	if s.cacheTTLDays > 0 {
		query += fmt.Sprintf(" AND cached_at > datetime('now', '-%d days')", s.cacheTTLDays)
	}

	var r geocode.Result
	row := s.db.QueryRowContext(ctx, query, addressHash)
	if err := row.Scan(&r.Latitude, &r.Longitude, &r.NormalizedAddress, &r.Source, &r.Matched); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "sqlite: get geocode")
	}
	return &r, true, nil
}

// PutGeocode implements geocode.Cache. Non-matches are stored too.
func (s *SQLiteStore) PutGeocode(ctx context.Context, addressHash string, r *geocode.Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (address_hash, latitude, longitude, normalized_address, source, matched, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (address_hash) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			normalized_address = excluded.normalized_address,
			source = excluded.source,
			matched = excluded.matched,
			cached_at = datetime('now')`,
		addressHash, r.Latitude, r.Longitude, r.NormalizedAddress, r.Source, r.Matched,
	)
	return eris.Wrap(err, "sqlite: put geocode")
}

func (s *SQLiteStore) CountGeocodes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM geocode_cache`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count geocodes")
}

func (s *SQLiteStore) ClearGeocodes(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM geocode_cache`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: clear geocodes")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, sort_key, record_limit, features, skipped, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SortKey, run.Limit, run.Features, run.Skipped,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: record run")
	}
	return run.ID, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sort_key, record_limit, features, skipped, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.SortKey, &r.Limit, &r.Features, &r.Skipped, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}
