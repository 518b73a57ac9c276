package schema

import (
	"errors"
	"fmt"
	"time"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/sqltool"

	"github.com/syssam/scribe/dialect"
	"github.com/syssam/scribe/dialect/sql"
)

// Migrate writes DDL programs as versioned migration files into an
// atlas migration directory. The directory checksum file is verified
// before writing and refreshed together with the new files.
type Migrate struct {
	builder   *sql.Builder
	dir       migrate.Dir
	fmt       migrate.Formatter
	errNoPlan bool
}

// MigrateOption configures a Migrate.
type MigrateOption func(*Migrate)

// WithDir sets the migration directory written to.
func WithDir(dir migrate.Dir) MigrateOption {
	return func(m *Migrate) { m.dir = dir }
}

// WithFormatter sets the migration file formatter. Without it the
// formatter follows the directory flavor: sqltool directories get the
// formatter of their tool and anything else the atlas default.
func WithFormatter(f migrate.Formatter) MigrateOption {
	return func(m *Migrate) { m.fmt = f }
}

// WithErrNoPlan makes Diff return migrate.ErrNoPlan when there is
// nothing to write instead of succeeding silently.
func WithErrNoPlan(b bool) MigrateOption {
	return func(m *Migrate) { m.errNoPlan = b }
}

// NewMigrate returns a migration writer for the given dialect.
func NewMigrate(d string, opts ...MigrateOption) (*Migrate, error) {
	b, err := sql.Dialect(d)
	if err != nil {
		return nil, fmt.Errorf("sql/schema: %w", err)
	}
	m := &Migrate{builder: b}
	for _, opt := range opts {
		opt(m)
	}
	m.setupFormatter()
	return m, nil
}

func (m *Migrate) setupFormatter() {
	if m.fmt != nil {
		return
	}
	switch m.dir.(type) {
	case *sqltool.GolangMigrateDir:
		m.fmt = sqltool.GolangMigrateFormatter
	case *sqltool.GooseDir:
		m.fmt = sqltool.GooseFormatter
	case *sqltool.DBMateDir:
		m.fmt = sqltool.DBMateFormatter
	case *sqltool.FlywayDir:
		m.fmt = sqltool.FlywayFormatter
	case *sqltool.LiquibaseDir:
		m.fmt = sqltool.LiquibaseFormatter
	default:
		m.fmt = migrate.DefaultFormatter
	}
}

// Diff plans the DDL program for the given tables and writes it as a
// migration named "changes".
func (m *Migrate) Diff(tables ...*Table) error {
	return m.NamedDiff("changes", tables...)
}

// NamedDiff plans the DDL program for the given tables and writes it
// under the given name. The directory checksum is validated before
// writing and rewritten to cover the new files.
func (m *Migrate) NamedDiff(name string, tables ...*Table) error {
	if m.dir == nil {
		return errors.New("sql/schema: no migration directory given")
	}
	if name == "" {
		return errors.New("sql/schema: empty migration name")
	}
	if err := migrate.Validate(m.dir); err != nil {
		return fmt.Errorf("sql/schema: validating migration directory: %w", err)
	}
	plan, err := m.Plan(name, tables...)
	if err != nil {
		return err
	}
	if len(plan.Changes) == 0 {
		if m.errNoPlan {
			return migrate.ErrNoPlan
		}
		return nil
	}
	return migrate.NewPlanner(nil, m.dir, migrate.PlanFormat(m.fmt)).WritePlan(plan)
}

// Plan compiles the tables into an atlas migration plan. The plan
// version is the UTC wall clock in the 20060102150405 form common to
// versioned migration tools.
func (m *Migrate) Plan(name string, tables ...*Table) (*migrate.Plan, error) {
	prog, err := build(m.builder, tables)
	if err != nil {
		return nil, err
	}
	plan := &migrate.Plan{
		Name:    name,
		Version: time.Now().UTC().Format("20060102150405"),
		// MySQL commits DDL statements implicitly, so the plan cannot
		// run in a transaction there.
		Transactional: m.builder.Dialect() != dialect.MySQL,
		Reversible:    true,
	}
	for _, s := range prog.Statements {
		change := &migrate.Change{Cmd: s.Cmd, Comment: s.Comment}
		if s.Reverse != "" {
			change.Reverse = s.Reverse
		} else {
			plan.Reversible = false
		}
		plan.Changes = append(plan.Changes, change)
	}
	return plan, nil
}
