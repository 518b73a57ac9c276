package sql

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/scribe/dialect"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var slow atomic.Int64
	drv := NewStatsDriver(OpenDB(dialect.Postgres, db),
		WithSlowThreshold(-time.Nanosecond),
		WithSlowQueryHook(func(ctx context.Context, query string, args []any, duration time.Duration) {
			slow.Add(1)
		}),
	)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT 1", []any{}, rows))
	require.NoError(t, rows.Close())

	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM users", []any{}, nil))

	mock.ExpectExec("DELETE FROM groups").WillReturnError(errors.New("boom"))
	require.Error(t, drv.Exec(context.Background(), "DELETE FROM groups", []any{}, nil))

	stats := drv.QueryStats().Stats()
	assert.Equal(t, int64(1), stats.TotalQueries)
	assert.Equal(t, int64(2), stats.TotalExecs)
	assert.Equal(t, int64(1), stats.Errors)
	assert.Equal(t, int64(3), stats.SlowQueries)
	assert.Equal(t, int64(3), slow.Load())
	assert.Greater(t, stats.TotalDuration, time.Duration(0))

	drv.QueryStats().Reset()
	assert.Equal(t, int64(0), drv.QueryStats().Stats().TotalQueries)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsDriverThreshold(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := NewStatsDriver(OpenDB(dialect.MySQL, db))
	assert.Equal(t, 100*time.Millisecond, drv.SlowThreshold())

	drv.SetSlowThreshold(time.Second)
	assert.Equal(t, time.Second, drv.SlowThreshold())
}

func TestStatsTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := NewStatsDriver(OpenDB(dialect.Postgres, db), WithSlowThreshold(time.Hour))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)

	require.NoError(t, tx.Exec(context.Background(), "INSERT INTO users (name) VALUES ('x')", []any{}, nil))
	rows := &Rows{}
	require.NoError(t, tx.Query(context.Background(), "SELECT id FROM users", []any{}, rows))
	require.NoError(t, rows.Close())
	require.NoError(t, tx.Commit())

	stats := drv.QueryStats().Stats()
	assert.Equal(t, int64(1), stats.TotalQueries)
	assert.Equal(t, int64(1), stats.TotalExecs)
	assert.Equal(t, int64(0), stats.SlowQueries)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsSnapshotString(t *testing.T) {
	s := StatsSnapshot{
		TotalQueries:  2,
		TotalExecs:    2,
		TotalDuration: 8 * time.Second,
		SlowQueries:   1,
		Errors:        1,
	}
	assert.Equal(t, 2*time.Second, s.AvgQueryDuration())
	assert.Equal(t, "queries=2 execs=2 duration=8s avg=2s slow=1 errors=1", s.String())

	assert.Equal(t, time.Duration(0), StatsSnapshot{}.AvgQueryDuration())
}
