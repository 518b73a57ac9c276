package gen

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/scribe/dialect"
)

func TestGenerate(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schema.yaml", []byte(blogYAML), 0o644))

	cfg := MustNewConfig(
		WithSchema("schema.yaml"),
		WithTarget("out/blog"),
		WithFs(fs),
	)
	require.NoError(t, Generate(context.Background(), cfg))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, d := range []string{dialect.MySQL, dialect.Postgres, dialect.SQLite} {
		body, err := afero.ReadFile(fs, filepath.Join("out/blog/migrations", d+".sql"))
		require.NoError(t, err, "missing migration script for %s", d)
		g.Assert(t, d, body)
	}

	src, err := afero.ReadFile(fs, "out/blog/blog.go")
	require.NoError(t, err)
	code := string(src)
	assert.Contains(t, code, "Code generated by scribe. DO NOT EDIT.")
	assert.Contains(t, code, "package blog")
	// gofmt aligns the = inside const blocks, so match with \s+.
	assert.Regexp(t, `UserTable\s+= "users"`, code)
	assert.Regexp(t, `UserFieldCreatedAt\s+= "created_at"`, code)
	assert.Regexp(t, `PostFieldAuthorID\s+= "author_id"`, code)
	assert.Contains(t, code, "UserColumns = []string{")
	assert.Contains(t, code, "PostColumns = []string{")
}

func TestGenerate_DialectSubset(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schema.yaml", []byte(blogYAML), 0o644))

	cfg := MustNewConfig(
		WithSchema("schema.yaml"),
		WithTarget("out/blog"),
		WithDialects(dialect.SQLite),
		WithFs(fs),
	)
	require.NoError(t, Generate(context.Background(), cfg))

	exists, err := afero.Exists(fs, "out/blog/migrations/sqlite.sql")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.Exists(fs, "out/blog/migrations/mysql.sql")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("missing schema in config", func(t *testing.T) {
		err := Generate(context.Background(), &Config{Target: "out"})

		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Contains(t, err.Error(), "Schema")
	})

	t.Run("missing target in config", func(t *testing.T) {
		err := Generate(context.Background(), &Config{Schema: "schema.yaml"})

		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Contains(t, err.Error(), "Target")
	})

	t.Run("version gate rejects older release", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "schema.yaml", []byte(blogYAML), 0o644))

		cfg := MustNewConfig(
			WithSchema("schema.yaml"),
			WithTarget("out"),
			WithFs(fs),
			WithMinVersion("99.0.0"),
		)
		err := Generate(context.Background(), cfg)

		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Contains(t, err.Error(), "requires scribe")
	})

	t.Run("invalid schema fails the build", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "schema.yaml", []byte(`
tables:
  - name: users
    columns:
      - name: id
        type: pk
      - name: id
        type: string
`), 0o644))

		cfg := MustNewConfig(
			WithSchema("schema.yaml"),
			WithTarget("out"),
			WithFs(fs),
		)
		err := Generate(context.Background(), cfg)

		require.Error(t, err)
		assert.True(t, IsGenerationError(err))
		assert.Contains(t, err.Error(), "duplicate column name")
	})

	t.Run("colliding table identifiers fail rendering", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "schema.yaml", []byte(`
tables:
  - name: posts
    columns:
      - name: id
        type: pk
  - name: post
    columns:
      - name: id
        type: pk
`), 0o644))

		cfg := MustNewConfig(
			WithSchema("schema.yaml"),
			WithTarget("out"),
			WithFs(fs),
		)
		err := Generate(context.Background(), cfg)

		require.Error(t, err)
		assert.True(t, IsGenerationError(err))
		assert.Contains(t, err.Error(), "same identifier")
	})
}

func TestPascal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user", "User"},
		{"user_posts", "UserPosts"},
		{"author_id", "AuthorID"},
		{"created_at", "CreatedAt"},
		{"api_key", "APIKey"},
		{"uuid", "UUID"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, pascal(tt.in))
		})
	}
}
