package sql

import (
	"fmt"
	"reflect"
	"strings"
)

// Cond is a condition specification: the abstract, shape-polymorphic
// description of a boolean filter before compilation. The closed set of
// shapes is Raw (a verbatim fragment), Hash (column/value pairs) and Op
// (an operator with operands). A nil Cond compiles to the empty string,
// which callers read as "no condition".
type Cond interface {
	cond()
}

// Raw is a condition used verbatim, with no escaping or quoting. The
// caller owns its safety.
type Raw string

func (Raw) cond() {}

// Assign is a single column/value pair. It is used both by the Hash
// condition and by the Insert/Update value lists.
type Assign struct {
	Column string
	Value  any
}

// Hash is an ordered set of column/value pairs, implicitly AND-ed. A
// slice or array value turns the pair into a membership test, a nil value
// into an IS NULL check, and an *Expr value is inlined with its
// parameters merged.
type Hash []Assign

func (Hash) cond() {}

// Op is an operator-form condition: an operator token and its operands.
// The token is matched case-insensitively against the operator table; an
// unrecognized token fails the build with an UnknownOperatorError.
type Op struct {
	Operator string
	Operands []any
}

func (Op) cond() {}

// condBuilderFunc compiles the operands of one operator into a boolean
// SQL fragment, appending every bound value to params.
type condBuilderFunc func(b *Builder, op string, operands []any, params *Params) (string, error)

// condBuilders is the static operator dispatch table. Keys are canonical
// (upper-cased, single-spaced) operator tokens. The table is populated in
// init because its builders recurse through buildCond, which reads the
// table again; a plain initializer would be an initialization cycle.
var condBuilders map[string]condBuilderFunc

func init() {
	condBuilders = map[string]condBuilderFunc{
		"AND":         buildAndCond,
		"OR":          buildAndCond,
		"NOT":         buildNotCond,
		"BETWEEN":     buildBetweenCond,
		"NOT BETWEEN": buildBetweenCond,
		"IN":          buildInCond,
		"NOT IN":      buildInCond,
		"LIKE":        buildLikeCond,
		"NOT LIKE":    buildLikeCond,
		"OR LIKE":     buildLikeCond,
		"OR NOT LIKE": buildLikeCond,
		"=":           buildSimpleCond,
		"<>":          buildSimpleCond,
		"!=":          buildSimpleCond,
		">":           buildSimpleCond,
		"<":           buildSimpleCond,
		">=":          buildSimpleCond,
		"<=":          buildSimpleCond,
	}
}

// canonicalOp normalizes an operator token for table lookup: upper-cased
// with runs of whitespace collapsed to single spaces.
func canonicalOp(op string) string {
	return strings.ToUpper(strings.Join(strings.Fields(op), " "))
}

// BuildCondition compiles a condition specification into a boolean SQL
// fragment, appending every bound value to params. An empty result means
// "no condition" and is not an error; callers omit the surrounding
// keyword in that case. On error no partial SQL is returned.
func (b *Builder) BuildCondition(cond Cond, params *Params) (string, error) {
	return b.buildCond(cond, params)
}

// buildCond dispatches on the condition shape. Besides the Cond variants
// it accepts the operand forms that appear in recursive positions: nil
// (dropped), plain strings (verbatim) and *Expr (inlined).
func (b *Builder) buildCond(cond any, params *Params) (string, error) {
	switch cond := cond.(type) {
	case nil:
		return "", nil
	case Raw:
		return string(cond), nil
	case string:
		return cond, nil
	case *Expr:
		cond.mergeParams(params)
		return cond.SQL, nil
	case Hash:
		return b.buildHashCond(cond, params)
	case Op:
		fn, ok := condBuilders[canonicalOp(cond.Operator)]
		if !ok {
			return "", NewUnknownOperatorError(cond.Operator)
		}
		return fn(b, canonicalOp(cond.Operator), cond.Operands, params)
	default:
		return "", fmt.Errorf("sql: unsupported condition type %T", cond)
	}
}

// buildHashCond compiles an ordered column/value mapping. Each pair
// produces one fragment; fragments are parenthesized individually and
// AND-ed, except when there is exactly one pair.
func (b *Builder) buildHashCond(cond Hash, params *Params) (string, error) {
	if len(cond) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(cond))
	for _, pair := range cond {
		if vs, ok := asList(pair.Value); ok {
			part, err := buildInCond(b, "IN", []any{pair.Column, vs}, params)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
			continue
		}
		column := b.quoteColumn(pair.Column)
		switch v := pair.Value.(type) {
		case nil:
			parts = append(parts, column+" IS NULL")
		case *Expr:
			v.mergeParams(params)
			parts = append(parts, column+"="+v.SQL)
		default:
			parts = append(parts, column+"="+params.Bind(v))
		}
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, ") AND (") + ")", nil
}

// buildAndCond compiles AND and OR conditions. Operands are compiled
// recursively and empty results are dropped; the remaining parts are
// parenthesized individually and joined by the operator, except when a
// single part survives, which is returned unwrapped.
func buildAndCond(b *Builder, op string, operands []any, params *Params) (string, error) {
	parts := make([]string, 0, len(operands))
	for _, operand := range operands {
		part, err := b.buildCond(operand, params)
		if err != nil {
			return "", err
		}
		if part != "" {
			parts = append(parts, part)
		}
	}
	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	default:
		return "(" + strings.Join(parts, ") "+op+" (") + ")", nil
	}
}

// buildNotCond compiles a NOT condition over a single operand. An empty
// operand result yields an empty result.
func buildNotCond(b *Builder, op string, operands []any, params *Params) (string, error) {
	if len(operands) != 1 {
		return "", NewOperandCountError(op, 1, len(operands))
	}
	part, err := b.buildCond(operands[0], params)
	if err != nil {
		return "", err
	}
	if part == "" {
		return "", nil
	}
	return op + " (" + part + ")", nil
}

// buildBetweenCond compiles BETWEEN and NOT BETWEEN over exactly three
// operands: column, lower bound, upper bound.
func buildBetweenCond(b *Builder, op string, operands []any, params *Params) (string, error) {
	if len(operands) != 3 {
		return "", NewOperandCountError(op, 3, len(operands))
	}
	column, ok := operands[0].(string)
	if !ok {
		return "", fmt.Errorf("sql: operator %s expects a column name, got %T", op, operands[0])
	}
	column = b.quoteColumn(column)
	lo, err := b.bindOperand(operands[1], params)
	if err != nil {
		return "", err
	}
	hi, err := b.bindOperand(operands[2], params)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s AND %s", column, op, lo, hi), nil
}

// buildInCond compiles IN and NOT IN over exactly two operands: the
// column (a single name or a list of names for a composite test) and the
// value list. An empty value or column list short-circuits: IN yields the
// always-false predicate "0=1", NOT IN yields the empty string.
func buildInCond(b *Builder, op string, operands []any, params *Params) (string, error) {
	if len(operands) != 2 {
		return "", NewOperandCountError(op, 2, len(operands))
	}
	columns, err := asColumnList(operands[0])
	if err != nil {
		return "", fmt.Errorf("sql: operator %s: %w", op, err)
	}
	values, ok := asList(operands[1])
	if !ok {
		return "", fmt.Errorf("sql: operator %s expects a value list, got %T", op, operands[1])
	}
	if len(values) == 0 || len(columns) == 0 {
		if op == "IN" {
			return "0=1", nil
		}
		return "", nil
	}
	if len(columns) > 1 {
		return b.buildCompositeInCond(op, columns, values, params)
	}
	column := columns[0]
	tokens := make([]string, len(values))
	for i, v := range values {
		if row, ok := asRow(v); ok {
			v = row[column]
		}
		switch v := v.(type) {
		case nil:
			tokens[i] = "NULL"
		case *Expr:
			v.mergeParams(params)
			tokens[i] = v.SQL
		default:
			tokens[i] = params.Bind(v)
		}
	}
	quoted := b.quoteColumn(column)
	if len(tokens) == 1 {
		if op == "IN" {
			return quoted + "=" + tokens[0], nil
		}
		return quoted + "<>" + tokens[0], nil
	}
	return fmt.Sprintf("%s %s (%s)", quoted, op, strings.Join(tokens, ", ")), nil
}

// buildCompositeInCond compiles a membership test over a tuple of
// columns. Each value is a row mapping column names to sub-values; a
// missing or nil entry becomes the literal NULL. Row order is preserved.
func (b *Builder) buildCompositeInCond(op string, columns []string, values []any, params *Params) (string, error) {
	rows := make([]string, len(values))
	for i, v := range values {
		row, ok := asRow(v)
		if !ok {
			return "", fmt.Errorf("sql: operator %s expects column/value rows for a composite test, got %T", op, v)
		}
		tokens := make([]string, len(columns))
		for j, column := range columns {
			if value, ok := row[column]; ok && value != nil {
				tokens[j] = params.Bind(value)
			} else {
				tokens[j] = "NULL"
			}
		}
		rows[i] = "(" + strings.Join(tokens, ", ") + ")"
	}
	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = b.quoteColumn(column)
	}
	return fmt.Sprintf("(%s) %s (%s)", strings.Join(quoted, ", "), op, strings.Join(rows, ", ")), nil
}

// buildLikeCond compiles the LIKE family over exactly two operands:
// column and a pattern or pattern list. LIKE and NOT LIKE combine
// multiple patterns with AND; the OR-prefixed tokens combine with OR. An
// empty pattern list yields "0=1" for the positive forms and the empty
// string for the negated ones. Patterns are bound as given; wildcards are
// the caller's business.
func buildLikeCond(b *Builder, op string, operands []any, params *Params) (string, error) {
	if len(operands) != 2 {
		return "", NewOperandCountError(op, 2, len(operands))
	}
	column, ok := operands[0].(string)
	if !ok {
		return "", fmt.Errorf("sql: operator %s expects a column name, got %T", op, operands[0])
	}
	combine, like := " AND ", op
	if rest, ok := strings.CutPrefix(op, "OR "); ok {
		combine, like = " OR ", rest
	}
	patterns, ok := asList(operands[1])
	if !ok {
		patterns = []any{operands[1]}
	}
	if len(patterns) == 0 {
		if like == "LIKE" {
			return "0=1", nil
		}
		return "", nil
	}
	quoted := b.quoteColumn(column)
	parts := make([]string, len(patterns))
	for i, pattern := range patterns {
		token, err := b.bindOperand(pattern, params)
		if err != nil {
			return "", err
		}
		parts[i] = quoted + " " + like + " " + token
	}
	return strings.Join(parts, combine), nil
}

// buildSimpleCond compiles the plain comparison operators over exactly
// two operands, column and value, concatenated with no surrounding
// spaces: "col=:qp0". A nil value yields the literal NULL on the right
// side.
func buildSimpleCond(b *Builder, op string, operands []any, params *Params) (string, error) {
	if len(operands) != 2 {
		return "", NewOperandCountError(op, 2, len(operands))
	}
	column, ok := operands[0].(string)
	if !ok {
		return "", fmt.Errorf("sql: operator %s expects a column name, got %T", op, operands[0])
	}
	column = b.quoteColumn(column)
	switch v := operands[1].(type) {
	case nil:
		return column + op + "NULL", nil
	case *Expr:
		v.mergeParams(params)
		return column + op + v.SQL, nil
	default:
		return column + op + params.Bind(v), nil
	}
}

// bindOperand turns a single value operand into its SQL token: nil maps
// to the literal NULL, an *Expr is inlined with its parameters merged,
// anything else is bound to a fresh placeholder.
func (b *Builder) bindOperand(v any, params *Params) (string, error) {
	switch v := v.(type) {
	case nil:
		return "NULL", nil
	case *Expr:
		v.mergeParams(params)
		return v.SQL, nil
	case Cond:
		return "", fmt.Errorf("sql: conditions cannot be used as value operands (%T)", v)
	default:
		return params.Bind(v), nil
	}
}

// asList normalizes slice and array values of any element type to []any.
// Byte slices are values, not lists.
func asList(v any) ([]any, bool) {
	switch v := v.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, false
	}
	vs := make([]any, rv.Len())
	for i := range vs {
		vs[i] = rv.Index(i).Interface()
	}
	return vs, true
}

// asColumnList normalizes the column operand of a membership test: a
// single name or a list of names.
func asColumnList(v any) ([]string, error) {
	switch v := v.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	}
	vs, ok := asList(v)
	if !ok {
		return nil, fmt.Errorf("expects a column name or a list of names, got %T", v)
	}
	columns := make([]string, len(vs))
	for i, c := range vs {
		s, ok := c.(string)
		if !ok {
			return nil, fmt.Errorf("expects column names, got %T", c)
		}
		columns[i] = s
	}
	return columns, nil
}

// asRow normalizes a composite-test row to a column/value map. Hash rows
// keep their last value per column, matching map semantics.
func asRow(v any) (map[string]any, bool) {
	switch v := v.(type) {
	case map[string]any:
		return v, true
	case Hash:
		row := make(map[string]any, len(v))
		for _, pair := range v {
			row[pair.Column] = pair.Value
		}
		return row, true
	}
	return nil, false
}
