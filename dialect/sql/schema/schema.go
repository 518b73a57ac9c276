// Package schema describes tables as dialect-neutral descriptors and
// compiles them into ordered DDL programs and versioned migration
// files. Column types use the abstract tokens of the sql package type
// maps, so one descriptor set builds on every supported dialect.
package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/scribe/dialect"
	"github.com/syssam/scribe/dialect/sql"
)

// ReferenceOption is a referential action for the ON DELETE and
// ON UPDATE clauses of a foreign key.
type ReferenceOption string

// Referential actions understood by all supported dialects.
const (
	NoAction   ReferenceOption = "NO ACTION"
	Restrict   ReferenceOption = "RESTRICT"
	Cascade    ReferenceOption = "CASCADE"
	SetNull    ReferenceOption = "SET NULL"
	SetDefault ReferenceOption = "SET DEFAULT"
)

// ConstName returns the Go constant spelling of the action. The code
// generator uses it when rendering schema sources.
func (r ReferenceOption) ConstName() string {
	words := strings.Fields(strings.ToLower(string(r)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, "")
}

// Table is a table descriptor: columns, primary key, secondary indexes
// and outgoing foreign keys.
type Table struct {
	Name        string
	Columns     []*Column
	PrimaryKey  []*Column
	Indexes     []*Index
	ForeignKeys []*ForeignKey
	// Options is appended verbatim after the closing parenthesis of
	// CREATE TABLE, for engine or charset clauses.
	Options string
	// Comment is emitted as a COMMENT clause on MySQL and ignored on
	// dialects that take table comments out of band.
	Comment string
}

// NewTable returns a new table descriptor with the given name.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// AddColumn appends a column and returns the table for chaining.
func (t *Table) AddColumn(c *Column) *Table {
	t.Columns = append(t.Columns, c)
	return t
}

// AddPrimary appends a column and includes it in the primary key.
func (t *Table) AddPrimary(c *Column) *Table {
	t.Columns = append(t.Columns, c)
	t.PrimaryKey = append(t.PrimaryKey, c)
	return t
}

// AddIndex appends an index over the named columns. A name that does
// not resolve to a table column is kept as a detached column so that
// validation can report it.
func (t *Table) AddIndex(name string, unique bool, columns []string) *Table {
	idx := &Index{Name: name, Unique: unique, Columns: make([]*Column, 0, len(columns))}
	for _, name := range columns {
		c, ok := t.Column(name)
		if !ok {
			c = &Column{Name: name}
		}
		idx.Columns = append(idx.Columns, c)
	}
	t.Indexes = append(t.Indexes, idx)
	return t
}

// AddForeignKey appends a foreign key and returns the table.
func (t *Table) AddForeignKey(fk *ForeignKey) *Table {
	t.ForeignKeys = append(t.ForeignKeys, fk)
	return t
}

// SetOptions sets the literal CREATE TABLE options suffix.
func (t *Table) SetOptions(opts string) *Table {
	t.Options = opts
	return t
}

// SetComment sets the table comment.
func (t *Table) SetComment(c string) *Table {
	t.Comment = c
	return t
}

// HasColumn reports if the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Index returns the index with the given name.
func (t *Table) Index(name string) (*Index, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return nil, false
}

// pkClause renders the inline PRIMARY KEY constraint line, or "" when
// the key is carried by a single auto-increment token column.
func (t *Table) pkClause(q sql.Quoter) string {
	if len(t.PrimaryKey) == 0 {
		return ""
	}
	if len(t.PrimaryKey) == 1 && t.PrimaryKey[0].PKType() {
		return ""
	}
	return "PRIMARY KEY (" + quoteJoin(q, columnNames(t.PrimaryKey)) + ")"
}

// options assembles the CREATE TABLE options suffix for the dialect.
func (t *Table) options(d string) string {
	opts := t.Options
	if t.Comment != "" && d == dialect.MySQL {
		if opts != "" {
			opts += " "
		}
		opts += "COMMENT '" + strings.ReplaceAll(t.Comment, "'", "''") + "'"
	}
	return opts
}

// Column is a column descriptor. Type holds an abstract type token
// resolved through the dialect type map; tokens the map does not know
// pass through as physical SQL. The zero value of Nullable means the
// column is NOT NULL.
type Column struct {
	Name string
	Type string
	// Size renders as the parenthesized length of the type token,
	// unless the token already carries one.
	Size     int
	Nullable bool
	Unique   bool
	// Default renders as a DEFAULT clause: strings are quoted and
	// escaped, Expr values are emitted verbatim.
	Default any
}

// PKType reports if the column type is one of the auto-increment
// primary-key tokens, which render their own PRIMARY KEY clause.
func (c *Column) PKType() bool {
	return c.Type == sql.TypePK || c.Type == sql.TypeBigPK
}

// def renders the definition token handed to the DDL builder.
func (c *Column) def() string {
	token := c.Type
	if c.Size > 0 && !strings.Contains(token, "(") {
		token = fmt.Sprintf("%s(%d)", token, c.Size)
	}
	if c.PKType() {
		return token
	}
	if !c.Nullable {
		token += " NOT NULL"
	}
	if c.Unique {
		token += " UNIQUE"
	}
	if c.Default != nil {
		token += " DEFAULT " + defaultValue(c.Default)
	}
	return token
}

// Expr marks a column default as a raw SQL expression, emitted without
// quoting: Column{..., Default: schema.Expr("CURRENT_TIMESTAMP")}.
type Expr string

// defaultValue renders a DEFAULT clause operand.
func defaultValue(v any) string {
	switch v := v.(type) {
	case Expr:
		return string(v)
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(v)
	}
}

// Index is a secondary index over table columns.
type Index struct {
	Name    string
	Unique  bool
	Columns []*Column
}

// ForeignKey is an outgoing foreign-key constraint. Symbol names the
// constraint; Columns and RefColumns pair up positionally.
type ForeignKey struct {
	Symbol     string
	Columns    []*Column
	RefTable   *Table
	RefColumns []*Column
	OnDelete   ReferenceOption
	OnUpdate   ReferenceOption
}

// clause renders the inline CONSTRAINT line used on dialects that
// cannot add foreign keys with ALTER TABLE.
func (fk *ForeignKey) clause(q sql.Quoter) string {
	var sb strings.Builder
	sb.WriteString("CONSTRAINT ")
	sb.WriteString(q.QuoteColumnName(fk.Symbol))
	sb.WriteString(" FOREIGN KEY (")
	sb.WriteString(quoteJoin(q, columnNames(fk.Columns)))
	sb.WriteString(") REFERENCES ")
	if fk.RefTable != nil {
		sb.WriteString(q.QuoteTableName(fk.RefTable.Name))
	}
	sb.WriteString(" (")
	sb.WriteString(quoteJoin(q, columnNames(fk.RefColumns)))
	sb.WriteString(")")
	if fk.OnDelete != "" {
		sb.WriteString(" ON DELETE ")
		sb.WriteString(string(fk.OnDelete))
	}
	if fk.OnUpdate != "" {
		sb.WriteString(" ON UPDATE ")
		sb.WriteString(string(fk.OnUpdate))
	}
	return sb.String()
}

func columnNames(cols []*Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func quoteJoin(q sql.Quoter, names []string) string {
	for i, n := range names {
		names[i] = q.QuoteColumnName(n)
	}
	return strings.Join(names, ", ")
}
