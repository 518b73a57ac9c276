package gen

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/scribe/dialect/sql/schema"
)

const blogYAML = `
name: blog
tables:
  - name: users
    comment: registered members
    columns:
      - name: id
        type: pk
      - name: name
        type: string
        size: 128
      - name: email
        type: string
        unique: true
      - name: bio
        type: text
        nullable: true
      - name: created_at
        type: timestamp
        default_expr: CURRENT_TIMESTAMP
    indexes:
      - name: idx_users_email
        unique: true
        columns: [email]
  - name: posts
    columns:
      - name: id
        type: bigpk
      - name: author_id
        type: bigint
      - name: title
        type: string
      - name: published
        type: boolean
        default: false
    foreign_keys:
      - symbol: fk_posts_author
        columns: [author_id]
        ref_table: users
        ref_columns: [id]
        on_delete: cascade
`

func TestLoad(t *testing.T) {
	t.Run("decodes a full spec", func(t *testing.T) {
		spec, err := Load(strings.NewReader(blogYAML))
		require.NoError(t, err)

		assert.Equal(t, "blog", spec.Name)
		require.Len(t, spec.Tables, 2)

		users := spec.Tables[0]
		assert.Equal(t, "users", users.Name)
		assert.Equal(t, "registered members", users.Comment)
		require.Len(t, users.Columns, 5)
		assert.Equal(t, 128, users.Columns[1].Size)
		assert.True(t, users.Columns[2].Unique)
		assert.True(t, users.Columns[3].Nullable)
		assert.Equal(t, "CURRENT_TIMESTAMP", users.Columns[4].DefaultExpr)
		require.Len(t, users.Indexes, 1)
		assert.Equal(t, []string{"email"}, users.Indexes[0].Columns)

		posts := spec.Tables[1]
		assert.Equal(t, false, posts.Columns[3].Default)
		require.Len(t, posts.ForeignKeys, 1)
		assert.Equal(t, "users", posts.ForeignKeys[0].RefTable)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		_, err := Load(strings.NewReader(`
tables:
  - name: users
    columns:
      - name: id
        type: pk
        nulable: true
`))
		require.Error(t, err)
		assert.True(t, IsSchemaError(err))
		assert.Contains(t, err.Error(), "nulable")
	})

	t.Run("empty input returns error", func(t *testing.T) {
		_, err := Load(strings.NewReader(""))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema file is empty")
	})

	t.Run("no tables returns error", func(t *testing.T) {
		_, err := Load(strings.NewReader("name: empty\n"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema defines no tables")
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("reads from the filesystem", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "schema.yaml", []byte(blogYAML), 0o644))

		spec, err := LoadFile(fs, "schema.yaml")
		require.NoError(t, err)
		assert.Len(t, spec.Tables, 2)
	})

	t.Run("missing file returns error", func(t *testing.T) {
		_, err := LoadFile(afero.NewMemMapFs(), "missing.yaml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "open schema")
	})
}

func TestSpecSchema(t *testing.T) {
	t.Run("converts tables and binds references", func(t *testing.T) {
		spec, err := Load(strings.NewReader(blogYAML))
		require.NoError(t, err)

		tables, err := spec.Schema()
		require.NoError(t, err)
		require.Len(t, tables, 2)

		users, posts := tables[0], tables[1]
		assert.Equal(t, "users", users.Name)
		assert.Equal(t, "registered members", users.Comment)
		require.Len(t, users.Columns, 5)

		email, ok := users.Column("email")
		require.True(t, ok)
		require.Len(t, users.Indexes, 1)
		assert.Same(t, email, users.Indexes[0].Columns[0])

		created, ok := users.Column("created_at")
		require.True(t, ok)
		assert.Equal(t, schema.Expr("CURRENT_TIMESTAMP"), created.Default)

		require.Len(t, posts.ForeignKeys, 1)
		fk := posts.ForeignKeys[0]
		assert.Same(t, users, fk.RefTable)
		assert.Equal(t, schema.Cascade, fk.OnDelete)
		assert.Equal(t, "author_id", fk.Columns[0].Name)
		assert.Equal(t, "id", fk.RefColumns[0].Name)
	})

	t.Run("composite primary key resolves by name", func(t *testing.T) {
		spec, err := Load(strings.NewReader(`
tables:
  - name: memberships
    columns:
      - name: user_id
        type: bigint
      - name: group_id
        type: bigint
    primary_key: [user_id, group_id]
`))
		require.NoError(t, err)

		tables, err := spec.Schema()
		require.NoError(t, err)
		require.Len(t, tables[0].PrimaryKey, 2)
		assert.Equal(t, "user_id", tables[0].PrimaryKey[0].Name)
	})

	t.Run("collects every resolution error", func(t *testing.T) {
		spec, err := Load(strings.NewReader(`
tables:
  - name: users
    columns:
      - name: id
        type: pk
    primary_key: [uid]
    foreign_keys:
      - symbol: fk_users_org
        columns: [id]
        ref_table: orgs
        ref_columns: [id]
`))
		require.NoError(t, err)

		_, err = spec.Schema()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidSchema))
		assert.Contains(t, err.Error(), "uid")
		assert.Contains(t, err.Error(), `unknown table "orgs"`)
	})

	t.Run("unknown referential action", func(t *testing.T) {
		spec, err := Load(strings.NewReader(`
tables:
  - name: users
    columns:
      - name: id
        type: pk
  - name: posts
    columns:
      - name: id
        type: pk
      - name: author_id
        type: bigint
    foreign_keys:
      - symbol: fk_posts_author
        columns: [author_id]
        ref_table: users
        ref_columns: [id]
        on_delete: destroy
`))
		require.NoError(t, err)

		_, err = spec.Schema()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown referential action "destroy"`)
	})
}

func TestRefAction(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    schema.ReferenceOption
		wantErr bool
	}{
		{"lower case", "cascade", schema.Cascade, false},
		{"upper case", "CASCADE", schema.Cascade, false},
		{"underscored", "set_null", schema.SetNull, false},
		{"spaced", "no action", schema.NoAction, false},
		{"empty means unset", "", "", false},
		{"unknown", "destroy", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := refAction(tt.in)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
