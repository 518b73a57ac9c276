package sql

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
)

// ErrUnsupported is returned when a statement has no generic form and the
// dialect at hand provides none either.
var ErrUnsupported = errors.New("sql: unsupported statement")

// UnknownOperatorError is returned when the leading token of an
// operator-form condition is not in the operator table.
type UnknownOperatorError struct {
	operator string
}

// Error returns the error string.
func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("sql: unknown operator %q in condition", e.operator)
}

// Operator returns the unrecognized token.
func (e *UnknownOperatorError) Operator() string {
	return e.operator
}

// NewUnknownOperatorError returns a new UnknownOperatorError for the
// given token.
func NewUnknownOperatorError(operator string) *UnknownOperatorError {
	return &UnknownOperatorError{operator: operator}
}

// IsUnknownOperator returns true if the error is an UnknownOperatorError.
func IsUnknownOperator(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownOperatorError
	return errors.As(err, &e)
}

// OperandCountError is returned when an operator receives the wrong
// number of operands.
type OperandCountError struct {
	operator string
	want     int
	got      int
}

// Error returns the error string.
func (e *OperandCountError) Error() string {
	noun := "operands"
	if e.want == 1 {
		noun = "operand"
	}
	return fmt.Sprintf("sql: operator %s requires %s %s (got %d)", e.operator, countWord(e.want), noun, e.got)
}

// Operator returns the operator token.
func (e *OperandCountError) Operator() string {
	return e.operator
}

// Want returns the required operand count.
func (e *OperandCountError) Want() int {
	return e.want
}

// Got returns the received operand count.
func (e *OperandCountError) Got() int {
	return e.got
}

// NewOperandCountError returns a new OperandCountError for the given
// operator and counts.
func NewOperandCountError(operator string, want, got int) *OperandCountError {
	return &OperandCountError{operator: operator, want: want, got: got}
}

// IsOperandCount returns true if the error is an OperandCountError.
func IsOperandCount(err error) bool {
	if err == nil {
		return false
	}
	var e *OperandCountError
	return errors.As(err, &e)
}

func countWord(n int) string {
	switch n {
	case 1:
		return "one"
	case 2:
		return "two"
	case 3:
		return "three"
	default:
		return strconv.Itoa(n)
	}
}

// MalformedJoinError is returned when a join descriptor lacks its join
// type or table.
type MalformedJoinError struct {
	index int
}

// Error returns the error string.
func (e *MalformedJoinError) Error() string {
	return fmt.Sprintf("sql: join clause %d must specify a join type and table", e.index)
}

// Index returns the position of the offending join descriptor.
func (e *MalformedJoinError) Index() int {
	return e.index
}

// NewMalformedJoinError returns a new MalformedJoinError for the join
// descriptor at the given position.
func NewMalformedJoinError(index int) *MalformedJoinError {
	return &MalformedJoinError{index: index}
}

// IsMalformedJoin returns true if the error is a MalformedJoinError.
func IsMalformedJoin(err error) bool {
	if err == nil {
		return false
	}
	var e *MalformedJoinError
	return errors.As(err, &e)
}

// UnsupportedError is returned when a capability has no generic statement
// form. It marks a deliberate gap rather than an attempt to emit
// incorrect SQL.
type UnsupportedError struct {
	dialect string
	feature string
}

// Error returns the error string.
func (e *UnsupportedError) Error() string {
	if e.dialect == "" {
		return fmt.Sprintf("sql: %s is not supported", e.feature)
	}
	return fmt.Sprintf("sql: %s is not supported by the %s dialect", e.feature, e.dialect)
}

// Is reports whether the target error matches UnsupportedError.
// This allows errors.Is(err, ErrUnsupported) to return true.
func (e *UnsupportedError) Is(err error) bool {
	return err == ErrUnsupported
}

// Dialect returns the dialect lacking the capability.
func (e *UnsupportedError) Dialect() string {
	return e.dialect
}

// Feature returns the missing capability.
func (e *UnsupportedError) Feature() string {
	return e.feature
}

// NewUnsupportedError returns a new UnsupportedError for the given
// dialect and capability.
func NewUnsupportedError(dialect, feature string) *UnsupportedError {
	return &UnsupportedError{dialect: dialect, feature: feature}
}

// IsUnsupported returns true if the error is an UnsupportedError.
func IsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedError
	return errors.As(err, &e) || errors.Is(err, ErrUnsupported)
}

// MySQL, Postgres and SQLite surface constraint violations as
// driver-specific error values. The helpers below classify them so
// callers can react without importing three driver packages.

// MySQL error numbers for duplicate-key violations.
const (
	mysqlDupEntry            = 1062
	mysqlDupEntryWithKeyName = 1586
)

// MySQL error numbers for foreign-key violations.
const (
	mysqlRowIsReferenced  = 1451
	mysqlNoReferencedRow  = 1452
	mysqlRowIsReferenced1 = 1217
	mysqlNoReferencedRow1 = 1216
)

// SQLite extended result codes for constraint violations.
const (
	sqliteConstraintUnique     = 2067
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintForeignKey = 787
)

// IsUniqueViolation returns true if the error resulted from a unique or
// primary-key constraint violation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var (
		myerr *mysql.MySQLError
		pqerr *pq.Error
		lierr *sqlite.Error
	)
	switch {
	case errors.As(err, &myerr):
		return myerr.Number == mysqlDupEntry || myerr.Number == mysqlDupEntryWithKeyName
	case errors.As(err, &pqerr):
		return pqerr.Code == "23505"
	case errors.As(err, &lierr):
		return lierr.Code() == sqliteConstraintUnique || lierr.Code() == sqliteConstraintPrimaryKey
	}
	return false
}

// IsForeignKeyViolation returns true if the error resulted from a
// foreign-key constraint violation.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var (
		myerr *mysql.MySQLError
		pqerr *pq.Error
		lierr *sqlite.Error
	)
	switch {
	case errors.As(err, &myerr):
		switch myerr.Number {
		case mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlRowIsReferenced1, mysqlNoReferencedRow1:
			return true
		}
	case errors.As(err, &pqerr):
		return pqerr.Code == "23503"
	case errors.As(err, &lierr):
		return lierr.Code() == sqliteConstraintForeignKey
	}
	return false
}

// IsConstraintViolation returns true if the error resulted from any
// constraint violation recognized by the drivers above.
func IsConstraintViolation(err error) bool {
	return IsUniqueViolation(err) || IsForeignKeyViolation(err)
}
