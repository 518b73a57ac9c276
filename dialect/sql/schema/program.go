package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/scribe/dialect"
	"github.com/syssam/scribe/dialect/sql"
)

// Statement is one DDL statement of a program, together with the
// statement undoing it when one exists.
type Statement struct {
	Cmd     string
	Reverse string
	Comment string
}

// Program is the ordered DDL realization of a set of table descriptors
// on one dialect: tables in the given order, then their indexes, then
// the foreign-key constraints. On SQLite the constraints are inlined
// into CREATE TABLE instead, since it cannot add them with ALTER.
type Program struct {
	Dialect    string
	Statements []Statement
}

// Build compiles the given tables into a DDL program. The schema is
// validated first and validation errors abort the build.
func Build(d string, tables ...*Table) (*Program, error) {
	b, err := sql.Dialect(d)
	if err != nil {
		return nil, fmt.Errorf("sql/schema: %w", err)
	}
	return build(b, tables)
}

func build(b *sql.Builder, tables []*Table) (*Program, error) {
	if err := ValidateSchema(tables).Err(); err != nil {
		return nil, fmt.Errorf("sql/schema: invalid schema: %w", err)
	}
	var (
		q      = b.Quoter()
		d      = b.Dialect()
		inline = d == dialect.SQLite
		prog   = &Program{Dialect: d}
	)
	for _, t := range tables {
		defs := make([]sql.ColumnDef, 0, len(t.Columns)+1+len(t.ForeignKeys))
		for _, c := range t.Columns {
			defs = append(defs, sql.ColumnDef{Name: c.Name, Type: c.def()})
		}
		if pk := t.pkClause(q); pk != "" {
			defs = append(defs, sql.ColumnDef{Type: pk})
		}
		if inline {
			for _, fk := range t.ForeignKeys {
				defs = append(defs, sql.ColumnDef{Type: fk.clause(q)})
			}
		}
		prog.Statements = append(prog.Statements, Statement{
			Cmd:     b.CreateTable(t.Name, defs, t.options(d)),
			Reverse: b.DropTable(t.Name),
			Comment: fmt.Sprintf("create %q table", t.Name),
		})
		for _, idx := range t.Indexes {
			prog.Statements = append(prog.Statements, Statement{
				Cmd:     b.CreateIndex(idx.Name, t.Name, idx.Unique, columnNames(idx.Columns)...),
				Reverse: b.DropIndex(idx.Name, t.Name),
				Comment: fmt.Sprintf("create index %q on table %q", idx.Name, t.Name),
			})
		}
	}
	if inline {
		return prog, nil
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			prog.Statements = append(prog.Statements, Statement{
				Cmd: b.AddForeignKey(fk.Symbol, t.Name, columnNames(fk.Columns),
					fk.RefTable.Name, columnNames(fk.RefColumns),
					string(fk.OnDelete), string(fk.OnUpdate)),
				Reverse: b.DropForeignKey(fk.Symbol, t.Name),
				Comment: fmt.Sprintf("add %q foreign key to table %q", fk.Symbol, t.Name),
			})
		}
	}
	return prog, nil
}

// Commands returns the forward statements in order.
func (p *Program) Commands() []string {
	cmds := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		cmds[i] = s.Cmd
	}
	return cmds
}

// String renders the program as an executable SQL script with one
// comment line per statement.
func (p *Program) String() string {
	var sb strings.Builder
	for i, s := range p.Statements {
		if i > 0 {
			sb.WriteString("\n")
		}
		if s.Comment != "" {
			sb.WriteString("-- ")
			sb.WriteString(s.Comment)
			sb.WriteString("\n")
		}
		sb.WriteString(s.Cmd)
		sb.WriteString(";\n")
	}
	return sb.String()
}
