// Package sql compiles abstract statement specifications into SQL text
// with named parameter bindings, and executes the result over
// database/sql.
//
// The compiler is split along the statement structure: a Params
// collection accumulates bound values, conditions compile through
// BuildCondition, and a Builder assembles full SELECT, INSERT, UPDATE,
// DELETE and DDL statements. Every literal value becomes a named
// placeholder; SQL text never carries interpolated values.
//
// # Building Statements
//
// A Builder is configured once per dialect and shared freely; each
// build call owns its Params:
//
//	import "github.com/syssam/scribe/dialect"
//
//	b, err := sql.Dialect(dialect.Postgres)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	params := &sql.Params{}
//	stmt, err := b.BuildSelect(&sql.Query{
//	    From:  []string{"users"},
//	    Where: sql.And(sql.EQ("status", 1), sql.IsNull("deleted_at")),
//	    Limit: sql.Limit(10),
//	}, params)
//	// stmt:   SELECT * FROM "users" WHERE ("status"=:qp0) AND ("deleted_at" IS NULL) LIMIT 10
//	// params: {qp0:1}
//
// # Conditions
//
// Conditions come in three shapes. Raw text passes through verbatim,
// Hash pairs are implicitly AND-ed, and operator conditions cover the
// boolean combinators and membership, range and pattern tests:
//
//	sql.Raw("status=1")
//	sql.Hash{{Column: "status", Value: 1}, {Column: "deleted_at", Value: nil}}
//	sql.Or(sql.In("group_id", 1, 2, 3), sql.Between("age", 18, 65))
//
// Raw fragments with their own parameters use the Expr escape hatch:
//
//	sql.NewExpr("created_at > NOW() - :ttl", sql.P("ttl", 3600))
//
// # Schema Statements
//
// DDL statements resolve abstract column types through the dialect's
// type map, so one schema definition builds everywhere:
//
//	b.CreateTable("users", []sql.ColumnDef{
//	    {Name: "id", Type: "pk"},
//	    {Name: "name", Type: "string(128) NOT NULL"},
//	}, "")
//
// # Execution
//
// A Driver wraps database/sql and executes compiled statements after
// rewriting named placeholders into the dialect's positional form:
//
//	drv, err := sql.Open("postgres", dsn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rows := &sql.Rows{}
//	err = drv.QueryStatement(ctx, stmt, params, rows)
package sql
