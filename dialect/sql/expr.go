package sql

// Param is a single named parameter carried by an Expr.
type Param struct {
	Name  string
	Value any
}

// P returns a named parameter for use with NewExpr.
func P(name string, value any) Param {
	return Param{Name: name, Value: value}
}

// Expr is a verbatim SQL fragment paired with its own named parameters.
// It is the only sanctioned escape hatch for raw SQL inside an otherwise
// fully parameterized build: wherever a value position holds an *Expr, the
// fragment text is inlined unchanged and its parameters are merged into
// the ambient collection as-is. The caller owns the safety of the fragment
// and guarantees its parameter names do not collide with generated ones.
type Expr struct {
	// SQL is the fragment text, inlined verbatim.
	SQL string
	// Params holds the named values referenced by the fragment.
	Params []Param
}

// NewExpr returns an Expr with the given fragment and parameters.
//
//	sql.NewExpr("created_at > NOW() - :ttl", sql.P("ttl", 3600))
func NewExpr(sql string, params ...Param) *Expr {
	return &Expr{SQL: sql, Params: params}
}

// mergeParams copies the expression parameters into the ambient collection,
// keeping their names untouched.
func (e *Expr) mergeParams(params *Params) {
	for _, p := range e.Params {
		params.Add(p.Name, p.Value)
	}
}
