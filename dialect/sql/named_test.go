package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/scribe/dialect"
)

func TestPositional(t *testing.T) {
	params := &Params{}
	params.Bind(1)
	params.Bind("a8m")

	t.Run("mysql", func(t *testing.T) {
		stmt, args, err := Positional(dialect.MySQL, "SELECT * FROM users WHERE id=:qp0 AND name=:qp1", params)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM users WHERE id=? AND name=?", stmt)
		assert.Equal(t, []any{1, "a8m"}, args)
	})

	t.Run("postgres", func(t *testing.T) {
		stmt, args, err := Positional(dialect.Postgres, "SELECT * FROM users WHERE id=:qp0 AND name=:qp1", params)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM users WHERE id=$1 AND name=$2", stmt)
		assert.Equal(t, []any{1, "a8m"}, args)
	})

	t.Run("sqlite", func(t *testing.T) {
		stmt, args, err := Positional(dialect.SQLite, "DELETE FROM users WHERE id=:qp0", params)
		require.NoError(t, err)
		assert.Equal(t, "DELETE FROM users WHERE id=?", stmt)
		assert.Equal(t, []any{1}, args)
	})
}

func TestPositionalRepeated(t *testing.T) {
	params := &Params{}
	params.Add("id", 7)
	stmt, args, err := Positional(dialect.Postgres, "SELECT :id, :id", params)
	require.NoError(t, err)
	assert.Equal(t, "SELECT $1, $2", stmt)
	assert.Equal(t, []any{7, 7}, args)
}

func TestPositionalSkipsQuoted(t *testing.T) {
	params := &Params{}
	params.Bind("x")

	t.Run("string_literal", func(t *testing.T) {
		stmt, args, err := Positional(dialect.MySQL, "SELECT ':qp9' FROM t WHERE a=:qp0", params)
		require.NoError(t, err)
		assert.Equal(t, "SELECT ':qp9' FROM t WHERE a=?", stmt)
		assert.Equal(t, []any{"x"}, args)
	})

	t.Run("escaped_quote", func(t *testing.T) {
		stmt, args, err := Positional(dialect.MySQL, "SELECT 'it''s :qp9' FROM t WHERE a=:qp0", params)
		require.NoError(t, err)
		assert.Equal(t, "SELECT 'it''s :qp9' FROM t WHERE a=?", stmt)
		assert.Len(t, args, 1)
	})

	t.Run("quoted_identifier", func(t *testing.T) {
		stmt, _, err := Positional(dialect.Postgres, `SELECT "weird:col" FROM t WHERE a=:qp0`, params)
		require.NoError(t, err)
		assert.Equal(t, `SELECT "weird:col" FROM t WHERE a=$1`, stmt)
	})

	t.Run("backtick_identifier", func(t *testing.T) {
		stmt, _, err := Positional(dialect.MySQL, "SELECT `weird:col` FROM t WHERE a=:qp0", params)
		require.NoError(t, err)
		assert.Equal(t, "SELECT `weird:col` FROM t WHERE a=?", stmt)
	})

	t.Run("postgres_cast", func(t *testing.T) {
		stmt, args, err := Positional(dialect.Postgres, "SELECT a::text FROM t WHERE b=:qp0", params)
		require.NoError(t, err)
		assert.Equal(t, "SELECT a::text FROM t WHERE b=$1", stmt)
		assert.Len(t, args, 1)
	})
}

func TestPositionalMissing(t *testing.T) {
	params := &Params{}
	_, _, err := Positional(dialect.MySQL, "SELECT * FROM t WHERE a=:qp0", params)
	require.Error(t, err)
	assert.EqualError(t, err, `sql: no value bound for placeholder "qp0"`)
}
