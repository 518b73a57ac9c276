package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/scribe/dialect"
)

// Positional rewrites a statement using named placeholders into the
// positional form of the given dialect, returning the rewritten text
// and the argument list in placeholder order. Postgres uses numbered
// placeholders ($1, $2, ...); every other dialect uses "?". Text inside
// quoted strings, quoted identifiers and Postgres casts (::) is left
// untouched; a repeated placeholder name contributes one argument per
// occurrence. A placeholder with no bound value fails the rewrite.
func Positional(name, query string, params *Params) (string, []any, error) {
	var (
		sb   strings.Builder
		args = make([]any, 0, params.Len())
	)
	sb.Grow(len(query))
	numbered := name == dialect.Postgres
	for i := 0; i < len(query); {
		c := query[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			j := skipQuoted(query, i)
			sb.WriteString(query[i:j])
			i = j
		case c == ':' && i+1 < len(query) && query[i+1] == ':':
			sb.WriteString("::")
			i += 2
		case c == ':' && i+1 < len(query) && isNameStart(query[i+1]):
			j := i + 1
			for j < len(query) && isNamePart(query[j]) {
				j++
			}
			pname := query[i+1 : j]
			v, ok := params.Get(pname)
			if !ok {
				return "", nil, fmt.Errorf("sql: no value bound for placeholder %q", pname)
			}
			args = append(args, v)
			if numbered {
				sb.WriteByte('$')
				sb.WriteString(strconv.Itoa(len(args)))
			} else {
				sb.WriteByte('?')
			}
			i = j
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), args, nil
}

// skipQuoted returns the index just past the quoted run starting at i.
// Doubled quote characters inside single- and double-quoted runs are
// escapes, not terminators.
func skipQuoted(query string, i int) int {
	quote := query[i]
	j := i + 1
	for j < len(query) {
		if query[j] == quote {
			if quote != '`' && j+1 < len(query) && query[j+1] == quote {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return j
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || ('0' <= c && c <= '9')
}
