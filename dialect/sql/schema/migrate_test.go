package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/sqltool"

	"github.com/stretchr/testify/require"

	"github.com/syssam/scribe/dialect"
	"github.com/syssam/scribe/dialect/sql"
)

func TestNewMigrate(t *testing.T) {
	m, err := NewMigrate(dialect.Postgres)
	require.NoError(t, err)
	require.NotNil(t, m)

	_, err = NewMigrate("oracle")
	require.ErrorContains(t, err, `unknown dialect "oracle"`)
}

func TestMigrate_Formatter(t *testing.T) {
	// With no explicit formatter the directory implementation picks it.
	for _, tt := range []struct {
		dir migrate.Dir
		fmt migrate.Formatter
	}{
		{&migrate.LocalDir{}, migrate.DefaultFormatter},
		{&sqltool.GolangMigrateDir{}, sqltool.GolangMigrateFormatter},
		{&sqltool.GooseDir{}, sqltool.GooseFormatter},
		{&sqltool.DBMateDir{}, sqltool.DBMateFormatter},
		{&sqltool.FlywayDir{}, sqltool.FlywayFormatter},
		{&sqltool.LiquibaseDir{}, sqltool.LiquibaseFormatter},
		{struct{ migrate.Dir }{}, migrate.DefaultFormatter},
	} {
		m, err := NewMigrate(dialect.SQLite, WithDir(tt.dir))
		require.NoError(t, err)
		require.Equal(t, tt.fmt, m.fmt)
	}

	// An explicit formatter is never overridden.
	m, err := NewMigrate(dialect.SQLite, WithDir(&sqltool.GooseDir{}), WithFormatter(migrate.DefaultFormatter))
	require.NoError(t, err)
	require.Equal(t, migrate.DefaultFormatter, m.fmt)
}

func TestMigrate_Plan(t *testing.T) {
	users := NewTable("users").
		AddPrimary(&Column{Name: "id", Type: sql.TypePK}).
		AddColumn(&Column{Name: "name", Type: sql.TypeString})

	m, err := NewMigrate(dialect.Postgres)
	require.NoError(t, err)
	plan, err := m.Plan("add_users", users)
	require.NoError(t, err)
	require.Equal(t, "add_users", plan.Name)
	require.Regexp(t, `^\d{14}$`, plan.Version)
	require.True(t, plan.Transactional)
	require.True(t, plan.Reversible)
	require.Len(t, plan.Changes, 1)
	require.Equal(t, "CREATE TABLE \"users\" (\n\t\"id\" serial NOT NULL PRIMARY KEY,\n\t\"name\" varchar(255) NOT NULL\n)", plan.Changes[0].Cmd)
	require.Equal(t, `create "users" table`, plan.Changes[0].Comment)
	require.Equal(t, `DROP TABLE "users"`, plan.Changes[0].Reverse)

	// MySQL commits DDL implicitly, so its plans cannot run in a transaction.
	m, err = NewMigrate(dialect.MySQL)
	require.NoError(t, err)
	plan, err = m.Plan("add_users", users)
	require.NoError(t, err)
	require.False(t, plan.Transactional)

	// Planning validates the schema first.
	dup := NewTable("users").
		AddPrimary(&Column{Name: "id", Type: sql.TypePK}).
		AddColumn(&Column{Name: "id", Type: sql.TypeString})
	_, err = m.Plan("bad", dup)
	require.ErrorContains(t, err, "invalid schema")
	require.ErrorContains(t, err, "duplicate column name")
}

func TestMigrate_Diff(t *testing.T) {
	users := NewTable("users").
		AddPrimary(&Column{Name: "id", Type: sql.TypePK}).
		AddColumn(&Column{Name: "name", Type: sql.TypeString}).
		AddIndex("idx_users_name", false, []string{"name"})

	p := t.TempDir()
	d, err := migrate.NewLocalDir(p)
	require.NoError(t, err)
	m, err := NewMigrate(dialect.SQLite, WithDir(d), WithFormatter(sqltool.GolangMigrateFormatter))
	require.NoError(t, err)
	require.NoError(t, m.Diff(users))

	up := globOne(t, filepath.Join(p, "*_changes.up.sql"))
	require.Regexp(t, `^\d{14}_changes\.up\.sql$`, filepath.Base(up))
	requireFileEqual(t, up, strings.Join([]string{
		`-- create "users" table`,
		"CREATE TABLE \"users\" (\n\t\"id\" integer PRIMARY KEY AUTOINCREMENT NOT NULL,\n\t\"name\" varchar(255) NOT NULL\n);",
		`-- create index "idx_users_name" on table "users"`,
		"CREATE INDEX \"idx_users_name\" ON \"users\" (\"name\");",
		"",
	}, "\n"))
	// The down file undoes the changes in reverse order.
	down := globOne(t, filepath.Join(p, "*_changes.down.sql"))
	requireFileEqual(t, down, strings.Join([]string{
		`-- reverse: create index "idx_users_name" on table "users"`,
		"DROP INDEX \"idx_users_name\" ON \"users\";",
		`-- reverse: create "users" table`,
		"DROP TABLE \"users\";",
		"",
	}, "\n"))

	// The checksum file is written alongside and validates.
	require.FileExists(t, filepath.Join(p, migrate.HashFileName))
	require.NoError(t, migrate.Validate(d))

	// A file foreign to the checksum fails the next diff.
	require.NoError(t, d.WriteFile("tmp.sql", nil))
	require.ErrorIs(t, m.Diff(users), migrate.ErrChecksumMismatch)
}

func TestMigrate_NamedDiff(t *testing.T) {
	m, err := NewMigrate(dialect.SQLite)
	require.NoError(t, err)
	require.EqualError(t, m.NamedDiff("changes"), "sql/schema: no migration directory given")

	p := t.TempDir()
	d, err := migrate.NewLocalDir(p)
	require.NoError(t, err)
	m, err = NewMigrate(dialect.SQLite, WithDir(d))
	require.NoError(t, err)
	require.EqualError(t, m.NamedDiff(""), "sql/schema: empty migration name")

	// An empty plan writes nothing and is not an error by default.
	require.NoError(t, m.NamedDiff("no_changes"))
	entries, err := os.ReadDir(p)
	require.NoError(t, err)
	require.Empty(t, entries)

	// Enable WithErrNoPlan.
	m, err = NewMigrate(dialect.SQLite, WithDir(d), WithErrNoPlan(true))
	require.NoError(t, err)
	require.ErrorIs(t, m.NamedDiff("no_changes"), migrate.ErrNoPlan)
}

func TestMigrate_TemplateFormatter(t *testing.T) {
	p := t.TempDir()
	d, err := migrate.NewLocalDir(p)
	require.NoError(t, err)
	f, err := migrate.NewTemplateFormatter(
		template.Must(template.New("").Parse("{{ .Name }}.sql")),
		template.Must(template.New("").Parse(
			`{{ range .Changes }}{{ printf "%s;\n" .Cmd }}{{ end }}`,
		)),
	)
	require.NoError(t, err)

	users := NewTable("users").
		AddPrimary(&Column{Name: "id", Type: sql.TypePK}).
		AddColumn(&Column{Name: "name", Type: sql.TypeString}).
		AddIndex("idx_users_name", false, []string{"name"})
	m, err := NewMigrate(dialect.MySQL, WithDir(d), WithFormatter(f))
	require.NoError(t, err)
	require.NoError(t, m.NamedDiff("changes", users))
	requireFileEqual(t, filepath.Join(p, "changes.sql"), strings.Join([]string{
		"CREATE TABLE `users` (\n\t`id` int(11) NOT NULL AUTO_INCREMENT PRIMARY KEY,\n\t`name` varchar(255) NOT NULL\n);",
		"CREATE INDEX `idx_users_name` ON `users` (`name`);",
		"",
	}, "\n"))
}

func requireFileEqual(t *testing.T, name, contents string) {
	t.Helper()
	c, err := os.ReadFile(name)
	require.NoError(t, err)
	require.Equal(t, contents, string(c))
}

func globOne(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(pattern)
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected exactly one file matching %s", pattern)
	return matches[0]
}
