package sql

import "strings"

// ColumnDef is one column definition in a CREATE TABLE statement: a
// column name and its abstract or physical type. A definition with an
// empty Name is emitted verbatim, which covers inline constraint lines.
type ColumnDef struct {
	Name string
	Type string
}

// CreateTable builds a CREATE TABLE statement. Column types resolve
// through the builder's type map; options text, when non-empty, is
// appended verbatim after the closing parenthesis.
func (b *Builder) CreateTable(table string, columns []ColumnDef, options string) string {
	if len(columns) == 0 {
		stmt := "CREATE TABLE " + b.quoteTable(table) + " ()"
		if options != "" {
			stmt += " " + options
		}
		return stmt
	}
	lines := make([]string, len(columns))
	for i, column := range columns {
		if column.Name == "" {
			lines[i] = "\t" + column.Type
			continue
		}
		lines[i] = "\t" + b.quoteColumn(column.Name) + " " + b.ColumnType(column.Type)
	}
	stmt := "CREATE TABLE " + b.quoteTable(table) + " (\n" + strings.Join(lines, ",\n") + "\n)"
	if options != "" {
		stmt += " " + options
	}
	return stmt
}

// DropTable builds a DROP TABLE statement.
func (b *Builder) DropTable(table string) string {
	return "DROP TABLE " + b.quoteTable(table)
}

// RenameTable builds a RENAME TABLE statement.
func (b *Builder) RenameTable(oldName, newName string) string {
	return "RENAME TABLE " + b.quoteTable(oldName) + " TO " + b.quoteTable(newName)
}

// TruncateTable builds a TRUNCATE TABLE statement.
func (b *Builder) TruncateTable(table string) string {
	return "TRUNCATE TABLE " + b.quoteTable(table)
}

// AddColumn builds an ALTER TABLE statement adding a column. The type
// resolves through the builder's type map.
func (b *Builder) AddColumn(table, column, typ string) string {
	return "ALTER TABLE " + b.quoteTable(table) + " ADD " + b.quoteColumn(column) + " " + b.ColumnType(typ)
}

// DropColumn builds an ALTER TABLE statement dropping a column.
func (b *Builder) DropColumn(table, column string) string {
	return "ALTER TABLE " + b.quoteTable(table) + " DROP COLUMN " + b.quoteColumn(column)
}

// RenameColumn builds an ALTER TABLE statement renaming a column.
func (b *Builder) RenameColumn(table, oldName, newName string) string {
	return "ALTER TABLE " + b.quoteTable(table) + " RENAME COLUMN " +
		b.quoteColumn(oldName) + " TO " + b.quoteColumn(newName)
}

// AlterColumn builds an ALTER TABLE statement changing a column's type,
// in the CHANGE form that repeats the column name.
func (b *Builder) AlterColumn(table, column, typ string) string {
	quoted := b.quoteColumn(column)
	return "ALTER TABLE " + b.quoteTable(table) + " CHANGE " + quoted + " " + quoted + " " + b.ColumnType(typ)
}

// AddPrimaryKey builds an ALTER TABLE statement adding a named primary
// key over the given columns. Each column argument may itself be a
// comma-separated list.
func (b *Builder) AddPrimaryKey(name, table string, columns ...string) string {
	return "ALTER TABLE " + b.quoteTable(table) + " ADD CONSTRAINT " + b.quoteColumn(name) +
		" PRIMARY KEY (" + b.buildColumns(columns) + ")"
}

// DropPrimaryKey builds an ALTER TABLE statement dropping a named
// primary key.
func (b *Builder) DropPrimaryKey(name, table string) string {
	return "ALTER TABLE " + b.quoteTable(table) + " DROP CONSTRAINT " + b.quoteColumn(name)
}

// AddForeignKey builds an ALTER TABLE statement adding a named foreign
// key. The onDelete and onUpdate actions are appended only when
// non-empty. Column arguments may be comma-separated lists.
func (b *Builder) AddForeignKey(name, table string, columns []string, refTable string, refColumns []string, onDelete, onUpdate string) string {
	stmt := "ALTER TABLE " + b.quoteTable(table) +
		" ADD CONSTRAINT " + b.quoteColumn(name) +
		" FOREIGN KEY (" + b.buildColumns(columns) + ")" +
		" REFERENCES " + b.quoteTable(refTable) +
		" (" + b.buildColumns(refColumns) + ")"
	if onDelete != "" {
		stmt += " ON DELETE " + onDelete
	}
	if onUpdate != "" {
		stmt += " ON UPDATE " + onUpdate
	}
	return stmt
}

// DropForeignKey builds an ALTER TABLE statement dropping a named
// foreign key.
func (b *Builder) DropForeignKey(name, table string) string {
	return "ALTER TABLE " + b.quoteTable(table) + " DROP CONSTRAINT " + b.quoteColumn(name)
}

// CreateIndex builds a CREATE INDEX statement, unique when requested.
// Column arguments may be comma-separated lists.
func (b *Builder) CreateIndex(name, table string, unique bool, columns ...string) string {
	stmt := "CREATE INDEX "
	if unique {
		stmt = "CREATE UNIQUE INDEX "
	}
	return stmt + b.quoteTable(name) + " ON " + b.quoteTable(table) + " (" + b.buildColumns(columns) + ")"
}

// DropIndex builds a DROP INDEX statement.
func (b *Builder) DropIndex(name, table string) string {
	return "DROP INDEX " + b.quoteTable(name) + " ON " + b.quoteTable(table)
}

// buildColumns normalizes a composite column list. Elements may be
// plain names or comma-separated lists; every resulting name is quoted
// unless it carries a parenthesis.
func (b *Builder) buildColumns(columns []string) string {
	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		if strings.Contains(column, "(") {
			parts = append(parts, column)
			continue
		}
		for _, name := range strings.Split(column, ",") {
			if name = strings.TrimSpace(name); name != "" {
				parts = append(parts, b.quoter.QuoteColumnName(name))
			}
		}
	}
	return strings.Join(parts, ", ")
}
