package sql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/syssam/scribe/dialect"
)

// Join types accepted in Join descriptors.
const (
	InnerJoin = "INNER JOIN"
	LeftJoin  = "LEFT JOIN"
	RightJoin = "RIGHT JOIN"
	CrossJoin = "CROSS JOIN"
)

// Builder compiles query and statement specifications into SQL text.
// It carries no per-build state: one builder may serve any number of
// concurrent builds as long as each build uses its own Params.
type Builder struct {
	dialect   string
	quoter    Quoter
	types     *TypeMap
	separator string
}

// Option configures a Builder.
type Option func(*Builder) error

// NewBuilder returns a builder configured by the given options. Without
// options the builder is dialect-agnostic: identifiers pass through
// unquoted and column types resolve to themselves.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{quoter: nopQuoter{}, separator: " "}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Dialect returns a builder preconfigured for the given dialect, with
// its quoting rules and default type map installed.
func Dialect(name string, opts ...Option) (*Builder, error) {
	return NewBuilder(append([]Option{WithDialect(name)}, opts...)...)
}

// WithDialect installs the quoting rules and default type map of the
// given dialect. The name "sqlite3" is accepted as an alias of sqlite.
func WithDialect(name string) Option {
	return func(b *Builder) error {
		switch name {
		case "sqlite3":
			name = dialect.SQLite
		case dialect.MySQL, dialect.Postgres, dialect.SQLite:
		default:
			return fmt.Errorf("sql: unknown dialect %q", name)
		}
		b.dialect = name
		b.quoter = QuoterFor(name)
		b.types = NewTypeMap(DefaultTypes(name))
		return nil
	}
}

// WithQuoter overrides the identifier quoter.
func WithQuoter(q Quoter) Option {
	return func(b *Builder) error {
		if q == nil {
			return fmt.Errorf("sql: nil quoter")
		}
		b.quoter = q
		return nil
	}
}

// WithTypeMap overrides the abstract column-type table. Start from
// DefaultTypes to adjust a dialect's built-in table.
func WithTypeMap(types map[string]string) Option {
	return func(b *Builder) error {
		b.types = NewTypeMap(types)
		return nil
	}
}

// WithSeparator sets the separator joining top-level clauses and join
// entries. The default is a single space; "\n" gives readable
// multi-line statements.
func WithSeparator(sep string) Option {
	return func(b *Builder) error {
		if sep == "" {
			return fmt.Errorf("sql: empty clause separator")
		}
		b.separator = sep
		return nil
	}
}

// Dialect returns the dialect name the builder was configured with, or
// the empty string for a dialect-agnostic builder.
func (b *Builder) Dialect() string {
	return b.dialect
}

// ColumnType resolves an abstract column-type token through the
// builder's type map. Builders without a type map pass tokens through
// unchanged.
func (b *Builder) ColumnType(token string) string {
	return b.types.Resolve(token)
}

// Quoter returns the identifier quoter the builder was configured with.
func (b *Builder) Quoter() Quoter {
	return b.quoter
}

// Query describes a SELECT statement. The builder reads it and never
// mutates it; bound values accumulate in the Params collection passed
// to BuildSelect.
type Query struct {
	// Select lists the select expressions. Empty means "*".
	Select []string
	// Distinct adds the DISTINCT keyword.
	Distinct bool
	// SelectOption is injected verbatim after SELECT, for dialect
	// hints such as SQL_CALC_FOUND_ROWS.
	SelectOption string
	// From lists the sources, each a table name with an optional alias.
	From []string
	// Joins lists the join descriptors in order.
	Joins []Join
	// Where filters rows. A nil condition emits no WHERE clause.
	Where Cond
	// GroupBy lists grouping columns.
	GroupBy []string
	// Having filters groups. A nil condition emits no HAVING clause.
	Having Cond
	// Unions lists sub-queries combined with UNION.
	Unions []Union
	// OrderBy lists ordering terms.
	OrderBy []Order
	// Limit caps the row count when non-nil and non-negative.
	Limit *int
	// Offset skips rows when positive.
	Offset int
	// Params carries values already bound by whoever assembled the
	// query, typically referenced from raw fragments. They are merged
	// before any clause is compiled.
	Params []Param
}

// Join describes one join entry: the join type, the joined table with
// an optional alias, and an optional join condition. Entries missing
// the type or table fail the build with a MalformedJoinError.
type Join struct {
	Type  string
	Table string
	On    Cond
}

// Union describes one UNION member, either a sub-query compiled
// recursively into the ambient parameter collection or a raw SQL
// string. Query takes precedence when both are set.
type Union struct {
	All   bool
	Query *Query
	Raw   string
}

// Order is one ordering term. Ascending is the default; Desc appends
// the DESC keyword.
type Order struct {
	Column string
	Desc   bool
}

// Asc returns an ascending ordering term for the column.
func Asc(column string) Order {
	return Order{Column: column}
}

// Desc returns a descending ordering term for the column.
func Desc(column string) Order {
	return Order{Column: column, Desc: true}
}

// Limit returns a pointer to the given limit, for use in Query.Limit.
func Limit(n int) *int {
	return &n
}

var (
	columnAliasRe = regexp.MustCompile(`^(.*?)(?i:\s+as\s+|\s+)([\w.\-]+)$`)
	tableAliasRe  = regexp.MustCompile(`^(.*?)(?i:\s+as|)\s+([^ ]+)$`)
)

// BuildSelect assembles a full SELECT statement from the query
// description, appending every bound value to params. Clauses are
// emitted in a fixed order and joined by the builder separator; clause
// builders that do not apply contribute nothing.
func (b *Builder) BuildSelect(q *Query, params *Params) (string, error) {
	if q == nil {
		return "", fmt.Errorf("sql: nil query")
	}
	if params == nil {
		params = &Params{}
	}
	for _, p := range q.Params {
		params.Add(p.Name, p.Value)
	}
	clauses := make([]string, 0, 9)
	clauses = append(clauses, b.buildSelectClause(q))
	if from := b.buildFrom(q.From); from != "" {
		clauses = append(clauses, from)
	}
	join, err := b.buildJoin(q.Joins, params)
	if err != nil {
		return "", err
	}
	if join != "" {
		clauses = append(clauses, join)
	}
	where, err := b.buildPrefixed("WHERE", q.Where, params)
	if err != nil {
		return "", err
	}
	if where != "" {
		clauses = append(clauses, where)
	}
	if groupBy := b.buildGroupBy(q.GroupBy); groupBy != "" {
		clauses = append(clauses, groupBy)
	}
	having, err := b.buildPrefixed("HAVING", q.Having, params)
	if err != nil {
		return "", err
	}
	if having != "" {
		clauses = append(clauses, having)
	}
	union, err := b.buildUnion(q.Unions, params)
	if err != nil {
		return "", err
	}
	if union != "" {
		clauses = append(clauses, union)
	}
	if orderBy := b.buildOrderBy(q.OrderBy); orderBy != "" {
		clauses = append(clauses, orderBy)
	}
	if limit := b.buildLimit(q.Limit, q.Offset); limit != "" {
		clauses = append(clauses, limit)
	}
	return strings.Join(clauses, b.separator), nil
}

// buildSelectClause emits the SELECT keyword with its modifiers and the
// select list. An empty list selects "*".
func (b *Builder) buildSelectClause(q *Query) string {
	sel := "SELECT"
	if q.Distinct {
		sel += " DISTINCT"
	}
	if q.SelectOption != "" {
		sel += " " + q.SelectOption
	}
	if len(q.Select) == 0 {
		return sel + " *"
	}
	columns := make([]string, len(q.Select))
	for i, column := range q.Select {
		columns[i] = b.selectExpr(column)
	}
	return sel + " " + strings.Join(columns, ", ")
}

// selectExpr quotes one select expression. Text carrying a parenthesis
// is a raw expression and passes through; "expr AS alias" and
// "expr alias" forms have both parts quoted and are rejoined with AS.
func (b *Builder) selectExpr(column string) string {
	if strings.Contains(column, "(") {
		return column
	}
	if m := columnAliasRe.FindStringSubmatch(column); m != nil {
		return b.quoter.QuoteColumnName(m[1]) + " AS " + b.quoter.QuoteColumnName(m[2])
	}
	return b.quoter.QuoteColumnName(column)
}

func (b *Builder) buildFrom(from []string) string {
	if len(from) == 0 {
		return ""
	}
	tables := make([]string, len(from))
	for i, table := range from {
		tables[i] = b.tableExpr(table)
	}
	return "FROM " + strings.Join(tables, ", ")
}

// tableExpr quotes one source. Aliased sources keep the bare-space form
// of the input, with both parts quoted.
func (b *Builder) tableExpr(table string) string {
	if strings.Contains(table, "(") {
		return table
	}
	if m := tableAliasRe.FindStringSubmatch(table); m != nil {
		return b.quoter.QuoteTableName(m[1]) + " " + b.quoter.QuoteTableName(m[2])
	}
	return b.quoter.QuoteTableName(table)
}

// buildJoin emits the join entries, joined by the builder separator.
// The ON keyword is omitted when a join condition compiles to nothing.
func (b *Builder) buildJoin(joins []Join, params *Params) (string, error) {
	if len(joins) == 0 {
		return "", nil
	}
	parts := make([]string, len(joins))
	for i, join := range joins {
		if join.Type == "" || join.Table == "" {
			return "", NewMalformedJoinError(i)
		}
		s := join.Type + " " + b.tableExpr(join.Table)
		if join.On != nil {
			on, err := b.buildCond(join.On, params)
			if err != nil {
				return "", err
			}
			if on != "" {
				s += " ON " + on
			}
		}
		parts[i] = s
	}
	return strings.Join(parts, b.separator), nil
}

// buildPrefixed compiles a condition and prefixes it with the clause
// keyword, or emits nothing when the condition compiles to nothing.
func (b *Builder) buildPrefixed(keyword string, cond Cond, params *Params) (string, error) {
	s, err := b.buildCond(cond, params)
	if err != nil || s == "" {
		return "", err
	}
	return keyword + " " + s, nil
}

func (b *Builder) buildGroupBy(columns []string) string {
	if len(columns) == 0 {
		return ""
	}
	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = b.quoteColumn(column)
	}
	return "GROUP BY " + strings.Join(quoted, ", ")
}

// buildUnion emits the union members. Sub-queries compile recursively
// with their bound values appended to the ambient collection.
func (b *Builder) buildUnion(unions []Union, params *Params) (string, error) {
	if len(unions) == 0 {
		return "", nil
	}
	parts := make([]string, len(unions))
	for i, union := range unions {
		stmt := union.Raw
		if union.Query != nil {
			var err error
			stmt, err = b.BuildSelect(union.Query, params)
			if err != nil {
				return "", err
			}
		}
		keyword := "UNION "
		if union.All {
			keyword = "UNION ALL "
		}
		parts[i] = keyword + "(\n" + stmt + "\n)"
	}
	return strings.Join(parts, b.separator), nil
}

func (b *Builder) buildOrderBy(orders []Order) string {
	if len(orders) == 0 {
		return ""
	}
	parts := make([]string, len(orders))
	for i, order := range orders {
		parts[i] = b.quoteColumn(order.Column)
		if order.Desc {
			parts[i] += " DESC"
		}
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

// buildLimit emits the LIMIT and OFFSET keywords. LIMIT appears only
// for a non-nil, non-negative limit, OFFSET only for a positive offset.
func (b *Builder) buildLimit(limit *int, offset int) string {
	s := ""
	if limit != nil && *limit >= 0 {
		s = "LIMIT " + strconv.Itoa(*limit)
	}
	if offset > 0 {
		s += " OFFSET " + strconv.Itoa(offset)
	}
	return strings.TrimLeft(s, " ")
}

// Insert builds an INSERT statement for one row. Expression values are
// inlined with their parameters merged; every other value is bound.
func (b *Builder) Insert(table string, values Hash, params *Params) (string, error) {
	if params == nil {
		params = &Params{}
	}
	columns := make([]string, len(values))
	tokens := make([]string, len(values))
	for i, pair := range values {
		columns[i] = b.quoteColumn(pair.Column)
		switch v := pair.Value.(type) {
		case *Expr:
			v.mergeParams(params)
			tokens[i] = v.SQL
		default:
			tokens[i] = params.Bind(v)
		}
	}
	return "INSERT INTO " + b.quoteTable(table) +
		" (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(tokens, ", ") + ")", nil
}

// Update builds an UPDATE statement. Assignments handle values exactly
// as Insert does; the WHERE clause is omitted when the condition
// compiles to nothing.
func (b *Builder) Update(table string, values Hash, where Cond, params *Params) (string, error) {
	if params == nil {
		params = &Params{}
	}
	sets := make([]string, len(values))
	for i, pair := range values {
		column := b.quoteColumn(pair.Column)
		switch v := pair.Value.(type) {
		case *Expr:
			v.mergeParams(params)
			sets[i] = column + "=" + v.SQL
		default:
			sets[i] = column + "=" + params.Bind(v)
		}
	}
	stmt := "UPDATE " + b.quoteTable(table) + " SET " + strings.Join(sets, ", ")
	cond, err := b.buildCond(where, params)
	if err != nil {
		return "", err
	}
	if cond != "" {
		stmt += " WHERE " + cond
	}
	return stmt, nil
}

// Delete builds a DELETE statement. The WHERE clause is omitted when
// the condition compiles to nothing.
func (b *Builder) Delete(table string, where Cond, params *Params) (string, error) {
	if params == nil {
		params = &Params{}
	}
	stmt := "DELETE FROM " + b.quoteTable(table)
	cond, err := b.buildCond(where, params)
	if err != nil {
		return "", err
	}
	if cond != "" {
		stmt += " WHERE " + cond
	}
	return stmt, nil
}

// BatchInsert builds a multi-row INSERT. There is no generic form that
// is correct across dialects, so the builder reports the gap instead of
// guessing.
func (b *Builder) BatchInsert(table string, columns []string, rows [][]any) (string, error) {
	return "", NewUnsupportedError(b.dialect, "batch insert")
}

// ResetSequence builds a statement resetting the auto-increment
// sequence of a table. There is no generic form.
func (b *Builder) ResetSequence(table string, value int) (string, error) {
	return "", NewUnsupportedError(b.dialect, "sequence reset")
}

// CheckIntegrity builds a statement toggling integrity checks. There is
// no generic form.
func (b *Builder) CheckIntegrity(check bool, schema, table string) (string, error) {
	return "", NewUnsupportedError(b.dialect, "integrity check toggling")
}

// quoteColumn quotes a column name unless it carries a parenthesis, in
// which case the text is a raw expression and passes through.
func (b *Builder) quoteColumn(name string) string {
	if strings.Contains(name, "(") {
		return name
	}
	return b.quoter.QuoteColumnName(name)
}

// quoteTable quotes a table name unless it carries a parenthesis.
func (b *Builder) quoteTable(name string) string {
	if strings.Contains(name, "(") {
		return name
	}
	return b.quoter.QuoteTableName(name)
}
