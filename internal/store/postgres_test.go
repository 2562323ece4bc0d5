package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pugetworks/healthmap-cli/pkg/geocode"
)

func newMockPostgres(t *testing.T, ttlDays int) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock, ttlDays), mock
}

func TestPostgres_GetGeocodeHit(t *testing.T) {
	st, mock := newMockPostgres(t, 0)

	mock.ExpectQuery("SELECT latitude, longitude, normalized_address, source, matched").
		WithArgs("abc123").
		WillReturnRows(pgxmock.NewRows(
			[]string{"latitude", "longitude", "normalized_address", "source", "matched"},
		).AddRow(47.62, -122.29, "M", "census", true))

	got, ok, err := st.GetGeocode(context.Background(), "abc123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 47.62, got.Latitude)
	assert.True(t, got.Matched)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetGeocodeMiss(t *testing.T) {
	st, mock := newMockPostgres(t, 0)

	mock.ExpectQuery("SELECT latitude, longitude, normalized_address, source, matched").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(
			[]string{"latitude", "longitude", "normalized_address", "source", "matched"},
		))

	_, ok, err := st.GetGeocode(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetGeocodeAppliesTTL(t *testing.T) {
	st, mock := newMockPostgres(t, 30)

	mock.ExpectQuery(`cached_at > now\(\) - interval '30 days'`).
		WithArgs("abc123").
		WillReturnRows(pgxmock.NewRows(
			[]string{"latitude", "longitude", "normalized_address", "source", "matched"},
		))

	_, ok, err := st.GetGeocode(context.Background(), "abc123")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_PutGeocode(t *testing.T) {
	st, mock := newMockPostgres(t, 0)

	mock.ExpectExec("INSERT INTO geocode_cache").
		WithArgs("abc123", 47.62, -122.29, "M", "census", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := st.PutGeocode(context.Background(), "abc123", &geocode.Result{
		Latitude: 47.62, Longitude: -122.29,
		NormalizedAddress: "M", Source: "census", Matched: true,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RecordRunGeneratesID(t *testing.T) {
	st, mock := newMockPostgres(t, 0)

	mock.ExpectExec("INSERT INTO runs").
		WithArgs(pgxmock.AnyArg(), "average", 10, 7, 1, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := st.RecordRun(context.Background(), Run{
		SortKey: "average", Limit: 10, Features: 7, Skipped: 1,
		StartedAt: time.Now(), FinishedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Migrate(t *testing.T) {
	st, mock := newMockPostgres(t, 0)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS geocode_cache").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
