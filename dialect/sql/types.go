package sql

import (
	"maps"
	"regexp"

	"github.com/syssam/scribe/dialect"
)

// Abstract column types resolved through a TypeMap. Schema definitions
// use these tokens instead of physical SQL types so the same definition
// builds on every supported dialect.
const (
	TypePK        = "pk"
	TypeBigPK     = "bigpk"
	TypeChar      = "char"
	TypeString    = "string"
	TypeText      = "text"
	TypeSmallInt  = "smallint"
	TypeInteger   = "integer"
	TypeBigInt    = "bigint"
	TypeFloat     = "float"
	TypeDouble    = "double"
	TypeDecimal   = "decimal"
	TypeDateTime  = "datetime"
	TypeTimestamp = "timestamp"
	TypeTime      = "time"
	TypeDate      = "date"
	TypeBinary    = "binary"
	TypeBoolean   = "boolean"
	TypeMoney     = "money"
	TypeUUID      = "uuid"
)

var (
	typeLengthRe   = regexp.MustCompile(`^(\w+)\((.+?)\)(.*)$`)
	typeModifierRe = regexp.MustCompile(`^(\w+)\s+`)
	typeParensRe   = regexp.MustCompile(`\(.+\)`)
	typeLeadWordRe = regexp.MustCompile(`^\w+`)
)

// TypeMap resolves abstract column-type tokens to physical SQL type
// text. A builder owns one per dialect and treats it as immutable.
type TypeMap struct {
	types map[string]string
}

// NewTypeMap returns a TypeMap over a copy of the given table.
func NewTypeMap(types map[string]string) *TypeMap {
	return &TypeMap{types: maps.Clone(types)}
}

// Resolve maps an abstract type token to its physical SQL text.
//
// A token matching a table entry exactly returns the mapped template.
// A token of the form "name(length)trailing" substitutes the explicit
// length into the template's parenthesized segment and keeps the
// trailing text, so "string(32) NOT NULL" becomes "varchar(32) NOT
// NULL" under MySQL. A token of the form "name trailing" replaces only
// the leading word with the template. Unrecognized tokens pass through
// unchanged, which lets schema definitions mix abstract and physical
// types freely.
func (m *TypeMap) Resolve(token string) string {
	if m == nil || len(m.types) == 0 {
		return token
	}
	if t, ok := m.types[token]; ok {
		return t
	}
	if match := typeLengthRe.FindStringSubmatch(token); match != nil {
		if t, ok := m.types[match[1]]; ok {
			return typeParensRe.ReplaceAllLiteralString(t, "("+match[2]+")") + match[3]
		}
	} else if match := typeModifierRe.FindStringSubmatch(token); match != nil {
		if t, ok := m.types[match[1]]; ok {
			return typeLeadWordRe.ReplaceAllLiteralString(token, t)
		}
	}
	return token
}

// Has returns true if the abstract token has a mapped template.
func (m *TypeMap) Has(token string) bool {
	if m == nil {
		return false
	}
	_, ok := m.types[token]
	return ok
}

// DefaultTypes returns a copy of the built-in type table for the given
// dialect, or nil if the dialect has none. Callers may adjust the copy
// and install it with WithTypeMap.
func DefaultTypes(name string) map[string]string {
	switch name {
	case dialect.MySQL:
		return maps.Clone(mysqlTypes)
	case dialect.Postgres:
		return maps.Clone(postgresTypes)
	case dialect.SQLite, "sqlite3":
		return maps.Clone(sqliteTypes)
	}
	return nil
}

var mysqlTypes = map[string]string{
	TypePK:        "int(11) NOT NULL AUTO_INCREMENT PRIMARY KEY",
	TypeBigPK:     "bigint(20) NOT NULL AUTO_INCREMENT PRIMARY KEY",
	TypeChar:      "char(1)",
	TypeString:    "varchar(255)",
	TypeText:      "text",
	TypeSmallInt:  "smallint(6)",
	TypeInteger:   "int(11)",
	TypeBigInt:    "bigint(20)",
	TypeFloat:     "float",
	TypeDouble:    "double",
	TypeDecimal:   "decimal(10,0)",
	TypeDateTime:  "datetime",
	TypeTimestamp: "timestamp",
	TypeTime:      "time",
	TypeDate:      "date",
	TypeBinary:    "blob",
	TypeBoolean:   "tinyint(1)",
	TypeMoney:     "decimal(19,4)",
	TypeUUID:      "char(36)",
}

var postgresTypes = map[string]string{
	TypePK:        "serial NOT NULL PRIMARY KEY",
	TypeBigPK:     "bigserial NOT NULL PRIMARY KEY",
	TypeChar:      "char(1)",
	TypeString:    "varchar(255)",
	TypeText:      "text",
	TypeSmallInt:  "smallint",
	TypeInteger:   "integer",
	TypeBigInt:    "bigint",
	TypeFloat:     "double precision",
	TypeDouble:    "double precision",
	TypeDecimal:   "numeric(10,0)",
	TypeDateTime:  "timestamp(0)",
	TypeTimestamp: "timestamp(0)",
	TypeTime:      "time(0)",
	TypeDate:      "date",
	TypeBinary:    "bytea",
	TypeBoolean:   "boolean",
	TypeMoney:     "numeric(19,4)",
	TypeUUID:      "uuid",
}

var sqliteTypes = map[string]string{
	TypePK:        "integer PRIMARY KEY AUTOINCREMENT NOT NULL",
	TypeBigPK:     "integer PRIMARY KEY AUTOINCREMENT NOT NULL",
	TypeChar:      "char(1)",
	TypeString:    "varchar(255)",
	TypeText:      "text",
	TypeSmallInt:  "smallint",
	TypeInteger:   "integer",
	TypeBigInt:    "bigint",
	TypeFloat:     "float",
	TypeDouble:    "double",
	TypeDecimal:   "decimal(10,0)",
	TypeDateTime:  "datetime",
	TypeTimestamp: "timestamp",
	TypeTime:      "time",
	TypeDate:      "date",
	TypeBinary:    "blob",
	TypeBoolean:   "boolean",
	TypeMoney:     "decimal(19,4)",
	TypeUUID:      "uuid",
}
