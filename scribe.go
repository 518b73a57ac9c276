// Package scribe compiles SQL statements from structured specifications.
//
// The compiler itself lives in dialect/sql: a named-parameter collection,
// a condition compiler, SELECT and schema statement builders, and the
// driver plumbing executing compiled statements. The gen package turns
// declarative schema files into migration SQL and Go artifacts, and
// cmd/scribe wraps both as a command line tool.
//
// This package carries the pieces shared across those layers: the
// result-cache contract with its in-memory implementation, the error
// vocabulary surfaced to callers, and the release version.
package scribe

// Version is the scribe release version, surfaced by cmd/scribe.
const Version = "0.4.0"
