package sql

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/scribe/dialect"
)

func TestBuildCache(t *testing.T) {
	b, err := Dialect(dialect.Postgres)
	require.NoError(t, err)
	cache, err := NewBuildCache(b, 16)
	require.NoError(t, err)

	params := &Params{}
	stmt, err := cache.BuildSelect(&Query{From: []string{"users"}, Where: EQ("id", 1)}, params)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" WHERE "id"=:qp0`, stmt)
	assert.Equal(t, []any{1}, params.Values())
	assert.Equal(t, int64(0), cache.Hits())
	assert.Equal(t, int64(1), cache.Misses())

	// An equal specification assembled separately hits, and leaves the
	// caller's collection in the same state a direct build would.
	params = &Params{}
	stmt, err = cache.BuildSelect(&Query{From: []string{"users"}, Where: EQ("id", 1)}, params)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" WHERE "id"=:qp0`, stmt)
	assert.Equal(t, []string{"qp0"}, params.Names())
	assert.Equal(t, []any{1}, params.Values())
	assert.Equal(t, int64(1), cache.Hits())
	assert.Equal(t, int64(1), cache.Misses())

	// Different bound values are different specifications.
	params = &Params{}
	_, err = cache.BuildSelect(&Query{From: []string{"users"}, Where: EQ("id", 2)}, params)
	require.NoError(t, err)
	assert.Equal(t, []any{2}, params.Values())
	assert.Equal(t, int64(2), cache.Misses())
	assert.Equal(t, 2, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, int64(0), cache.Hits())
	assert.Equal(t, int64(0), cache.Misses())
}

func TestBuildCachePreseededParams(t *testing.T) {
	// Generated placeholder names depend on the collection size, so a
	// build into a non-empty collection bypasses the cache.
	b, err := Dialect(dialect.MySQL)
	require.NoError(t, err)
	cache, err := NewBuildCache(b, 4)
	require.NoError(t, err)

	params := &Params{}
	params.Add("tenant", 7)
	stmt, err := cache.BuildSelect(&Query{From: []string{"users"}, Where: EQ("id", 1)}, params)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `users` WHERE `id`=:qp1", stmt)
	assert.Equal(t, int64(0), cache.Misses())
	assert.Equal(t, 0, cache.Len())
}

func TestBuildCacheEviction(t *testing.T) {
	b, err := Dialect(dialect.SQLite)
	require.NoError(t, err)
	cache, err := NewBuildCache(b, 2)
	require.NoError(t, err)

	for _, table := range []string{"a", "b", "c"} {
		_, err := cache.BuildSelect(&Query{From: []string{table}}, &Params{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, int64(3), cache.Misses())
}

func TestBuildCacheErrors(t *testing.T) {
	b, err := Dialect(dialect.SQLite)
	require.NoError(t, err)
	cache, err := NewBuildCache(b, 4)
	require.NoError(t, err)

	_, err = cache.BuildSelect(nil, &Params{})
	require.EqualError(t, err, "sql: nil query")

	_, err = cache.BuildSelect(&Query{From: []string{"t"}, Where: Op{Operator: "EXPLODES"}}, &Params{})
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len(), "failed builds are not cached")

	_, err = NewBuildCache(nil, 4)
	require.Error(t, err)

	_, err = NewBuildCache(b, -1)
	require.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	b, err := Dialect(dialect.Postgres)
	require.NoError(t, err)
	cache, err := NewBuildCache(b, 4)
	require.NoError(t, err)

	k1, err := cache.Fingerprint(&Query{From: []string{"users"}, Where: EQ("id", 1)})
	require.NoError(t, err)
	k2, err := cache.Fingerprint(&Query{From: []string{"users"}, Where: EQ("id", 1)})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	k3, err := cache.Fingerprint(&Query{From: []string{"groups"}, Where: EQ("id", 1)})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}

func TestBuildCacheParallel(t *testing.T) {
	b, err := Dialect(dialect.Postgres)
	require.NoError(t, err)
	cache, err := NewBuildCache(b, 8)
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 64; i++ {
		g.Go(func() error {
			params := &Params{}
			stmt, err := cache.BuildSelect(&Query{
				From:  []string{"users"},
				Where: And(EQ("status", "a"), GT("age", 21)),
			}, params)
			if err != nil {
				return err
			}
			if want := `SELECT * FROM "users" WHERE ("status"=:qp0) AND ("age">:qp1)`; stmt != want {
				return fmt.Errorf("unexpected statement %q", stmt)
			}
			if params.Len() != 2 {
				return fmt.Errorf("unexpected params %s", params)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(1), cache.Misses(), "concurrent builds of one specification compile once")
	assert.Equal(t, int64(63), cache.Hits())
}
