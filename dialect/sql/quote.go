package sql

import (
	"strings"

	"github.com/syssam/scribe/dialect"
)

// Quoter escapes table and column identifiers for one dialect. The
// compiler skips quoting entirely when an identifier carries a
// parenthesis, treating the text as a raw expression, so implementations
// only see plain, possibly qualified names.
type Quoter interface {
	// QuoteTableName quotes a possibly schema-qualified table name.
	QuoteTableName(name string) string
	// QuoteColumnName quotes a possibly table-qualified column name.
	QuoteColumnName(name string) string
}

// QuoterFor returns the quoter of the given dialect: backticks for MySQL,
// ANSI double quotes for Postgres and SQLite, and a pass-through quoter
// for anything else.
func QuoterFor(name string) Quoter {
	switch name {
	case dialect.MySQL:
		return identQuoter{left: "`", right: "`"}
	case dialect.Postgres, dialect.SQLite:
		return identQuoter{left: `"`, right: `"`}
	default:
		return nopQuoter{}
	}
}

// nopQuoter leaves identifiers untouched. It is the default of a builder
// constructed without a dialect, keeping generic output readable.
type nopQuoter struct{}

func (nopQuoter) QuoteTableName(name string) string  { return name }
func (nopQuoter) QuoteColumnName(name string) string { return name }

// identQuoter wraps identifiers in the dialect's quote characters,
// quoting each segment of a qualified name separately.
type identQuoter struct {
	left, right string
}

// QuoteTableName quotes a table name. Qualified names are split on dots
// and each part is quoted on its own; names that already carry a quote
// character are returned unchanged.
func (q identQuoter) QuoteTableName(name string) string {
	if !strings.Contains(name, ".") {
		return q.quotePart(name)
	}
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = q.quotePart(part)
	}
	return strings.Join(parts, ".")
}

// QuoteColumnName quotes a column name. For a table-qualified name the
// prefix is quoted with the table rules and the column part on its own;
// "*" is never quoted.
func (q identQuoter) QuoteColumnName(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return q.quotePart(name)
	}
	return q.QuoteTableName(name[:i]) + "." + q.quotePart(name[i+1:])
}

func (q identQuoter) quotePart(name string) string {
	if name == "*" || strings.Contains(name, q.left) {
		return name
	}
	return q.left + name + q.right
}
