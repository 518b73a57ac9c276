package sql

// Typed constructors for the operator-form conditions. They are thin
// wrappers over Op that keep operator tokens out of call sites:
//
//	q.Where = sql.And(
//	    sql.EQ("status", 1),
//	    sql.Or(sql.In("group_id", 1, 2, 3), sql.IsNull("group_id")),
//	)

// And returns a condition that is satisfied when all child conditions
// are. Empty children are dropped at compile time.
func And(conds ...Cond) Op {
	return Op{Operator: "AND", Operands: condOperands(conds)}
}

// Or returns a condition that is satisfied when any child condition is.
// Empty children are dropped at compile time.
func Or(conds ...Cond) Op {
	return Op{Operator: "OR", Operands: condOperands(conds)}
}

// Not returns the negation of the given condition.
func Not(cond Cond) Op {
	return Op{Operator: "NOT", Operands: []any{cond}}
}

// In returns a membership test. The column is a single name or, for a
// composite test over a tuple of columns, a list of names with the values
// given as column/value rows.
func In(column any, values ...any) Op {
	return Op{Operator: "IN", Operands: []any{column, values}}
}

// NotIn returns a negated membership test. See In for the column and
// value shapes.
func NotIn(column any, values ...any) Op {
	return Op{Operator: "NOT IN", Operands: []any{column, values}}
}

// Between returns a range test over the given column.
func Between(column string, lo, hi any) Op {
	return Op{Operator: "BETWEEN", Operands: []any{column, lo, hi}}
}

// NotBetween returns a negated range test over the given column.
func NotBetween(column string, lo, hi any) Op {
	return Op{Operator: "NOT BETWEEN", Operands: []any{column, lo, hi}}
}

// Like returns a pattern test; multiple patterns are AND-ed. Patterns are
// bound as given, wildcards included.
func Like(column string, patterns ...any) Op {
	return Op{Operator: "LIKE", Operands: []any{column, patterns}}
}

// NotLike returns a negated pattern test; multiple patterns are AND-ed.
func NotLike(column string, patterns ...any) Op {
	return Op{Operator: "NOT LIKE", Operands: []any{column, patterns}}
}

// OrLike returns a pattern test combining multiple patterns with OR.
func OrLike(column string, patterns ...any) Op {
	return Op{Operator: "OR LIKE", Operands: []any{column, patterns}}
}

// OrNotLike returns a negated pattern test combining multiple patterns
// with OR.
func OrNotLike(column string, patterns ...any) Op {
	return Op{Operator: "OR NOT LIKE", Operands: []any{column, patterns}}
}

// EQ returns an equality check on the given column.
func EQ(column string, v any) Op {
	return Op{Operator: "=", Operands: []any{column, v}}
}

// NEQ returns an inequality check on the given column.
func NEQ(column string, v any) Op {
	return Op{Operator: "<>", Operands: []any{column, v}}
}

// GT returns a greater-than check on the given column.
func GT(column string, v any) Op {
	return Op{Operator: ">", Operands: []any{column, v}}
}

// GTE returns a greater-than-or-equal check on the given column.
func GTE(column string, v any) Op {
	return Op{Operator: ">=", Operands: []any{column, v}}
}

// LT returns a less-than check on the given column.
func LT(column string, v any) Op {
	return Op{Operator: "<", Operands: []any{column, v}}
}

// LTE returns a less-than-or-equal check on the given column.
func LTE(column string, v any) Op {
	return Op{Operator: "<=", Operands: []any{column, v}}
}

// IsNull returns an IS NULL check on the given column.
func IsNull(column string) Hash {
	return Hash{{Column: column}}
}

func condOperands(conds []Cond) []any {
	operands := make([]any, len(conds))
	for i, c := range conds {
		operands[i] = c
	}
	return operands
}
