package dialect

import (
	"context"
	"fmt"
	"log/slog"
)

// Database dialects supported by the statement compiler.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two standard SQL operations, statement
// execution and row querying. It is implemented by both Driver
// and Tx, allowing code to run inside or outside a transaction.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows.
	// The args parameter is expected to be a []any holding the bound
	// values, and v (when non-nil) a *sql.Result destination.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows. The args parameter
	// is expected to be a []any holding the bound values, and v a *Rows
	// destination defined by the driver package.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the minimal interface a database driver must satisfy
// to execute compiled statements.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	// The provided context is used until the transaction is committed or rolled back.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps transactional execution with commit and rollback.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

type nopTx struct {
	Driver
}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

// NopTx returns a Tx with a no-op Commit / Rollback operations.
func NopTx(d Driver) Tx {
	return nopTx{d}
}

// DebugDriver is a driver that logs all driver operations.
type DebugDriver struct {
	Driver              // underlying driver.
	log    *slog.Logger // log function. defaults to slog.Default().
}

// Debug gets a driver and an optional logger, and returns
// a new debugged-driver that prints all outgoing operations.
func Debug(d Driver, logger ...*slog.Logger) Driver {
	drv := &DebugDriver{Driver: d, log: slog.Default()}
	if len(logger) == 1 {
		drv.log = logger[0]
	}
	return drv
}

// Exec logs its params and calls the underlying driver Exec method.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log.InfoContext(ctx, "driver.Exec", "query", query, "args", fmt.Sprintf("%v", args))
	return d.Driver.Exec(ctx, query, args, v)
}

// Query logs its params and calls the underlying driver Query method.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log.InfoContext(ctx, "driver.Query", "query", query, "args", fmt.Sprintf("%v", args))
	return d.Driver.Query(ctx, query, args, v)
}

// Tx adds a log-id for the transaction and calls the underlying driver Tx command.
func (d *DebugDriver) Tx(ctx context.Context) (Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("%p", tx)
	d.log.InfoContext(ctx, "driver.Tx started", "id", id)
	return &DebugTx{tx: tx, id: id, log: d.log, ctx: ctx}, nil
}

// DebugTx is a transaction implementation that logs all transaction operations.
type DebugTx struct {
	tx  Tx           // underlying transaction.
	id  string       // transaction logging id.
	log *slog.Logger // log function. defaults to slog.Default().
	ctx context.Context
}

// Exec logs its params and calls the underlying transaction Exec method.
func (d *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	d.log.InfoContext(ctx, "Tx.Exec", "id", d.id, "query", query, "args", fmt.Sprintf("%v", args))
	return d.tx.Exec(ctx, query, args, v)
}

// Query logs its params and calls the underlying transaction Query method.
func (d *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	d.log.InfoContext(ctx, "Tx.Query", "id", d.id, "query", query, "args", fmt.Sprintf("%v", args))
	return d.tx.Query(ctx, query, args, v)
}

// Commit logs this step and calls the underlying transaction Commit method.
func (d *DebugTx) Commit() error {
	d.log.InfoContext(d.ctx, "Tx.Commit", "id", d.id)
	return d.tx.Commit()
}

// Rollback logs this step and calls the underlying transaction Rollback method.
func (d *DebugTx) Rollback() error {
	d.log.InfoContext(d.ctx, "Tx.Rollback", "id", d.id)
	return d.tx.Rollback()
}
