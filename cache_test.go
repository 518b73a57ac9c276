package scribe_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/scribe"
)

func TestCacheKey(t *testing.T) {
	k := scribe.CacheKey{
		Dialect:   "postgres",
		Statement: `SELECT * FROM "users" WHERE "id"=$1`,
		Args:      []any{1},
	}
	s := k.String()
	assert.Len(t, s, 36, "keys are UUID-shaped")
	assert.Equal(t, s, k.String(), "keys are stable")

	sameArgs := scribe.CacheKey{Dialect: "postgres", Statement: k.Statement, Args: []any{1}}
	assert.Equal(t, s, sameArgs.String())

	otherArgs := scribe.CacheKey{Dialect: "postgres", Statement: k.Statement, Args: []any{2}}
	assert.NotEqual(t, s, otherArgs.String())

	otherDialect := scribe.CacheKey{Dialect: "mysql", Statement: k.Statement, Args: []any{1}}
	assert.NotEqual(t, s, otherDialect.String())
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c, err := scribe.NewMemoryCache(8)
	require.NoError(t, err)

	v, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.Set(ctx, "users:1", []byte("alice"), 0))
	require.NoError(t, c.Set(ctx, "users:2", []byte("bob"), 0))
	require.NoError(t, c.Set(ctx, "groups:1", []byte("admins"), 0))
	assert.Equal(t, 3, c.Len())

	v, err = c.Get(ctx, "users:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("alice"), v)

	require.NoError(t, c.Delete(ctx, "users:1"))
	v, err = c.Get(ctx, "users:1")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.DeletePrefix(ctx, "users:"))
	v, err = c.Get(ctx, "users:2")
	require.NoError(t, err)
	assert.Nil(t, v)
	v, err = c.Get(ctx, "groups:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("admins"), v)

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()
	c, err := scribe.NewMemoryCache(4)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)
	v, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, v, "expired entries read as missing")

	require.NoError(t, c.Set(ctx, "pinned", []byte("v"), 0))
	v, err = c.Get(ctx, "pinned")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v, "zero TTL never expires")
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	c, err := scribe.NewMemoryCache(2)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))
	assert.Equal(t, 2, c.Len())

	// "a" is the least recently used entry.
	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestNewMemoryCacheError(t *testing.T) {
	_, err := scribe.NewMemoryCache(-1)
	require.Error(t, err)
}
