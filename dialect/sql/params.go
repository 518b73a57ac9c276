package sql

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// paramPrefix is the prefix of generated placeholder names. A generated
// placeholder reads ":qp<N>" in SQL text, where N is the size of the
// collection at generation time.
const paramPrefix = "qp"

// Params is an ordered collection of named bound values, accumulated across
// one statement build. Placeholder names are stored without the leading
// colon; the colon belongs to the SQL text.
//
// A Params value is owned by exactly one build call. Two statements must
// not be compiled concurrently into the same collection. The zero value
// is ready to use.
type Params struct {
	names  []string
	values map[string]any
}

// Bind inserts the given value under a generated placeholder name and
// returns the placeholder token as it appears in SQL text (":qp0", ":qp1",
// and so on). Names are unique within the collection because its size
// strictly increases with every call and entries are never removed
// mid-build.
func (p *Params) Bind(v any) string {
	name := paramPrefix + strconv.Itoa(len(p.names))
	p.Add(name, v)
	return ":" + name
}

// Add inserts the value under the given name, keeping insertion order.
// Adding an existing name overwrites its value in place. It is used for
// merging expression-supplied parameters, which keep their own names
// untouched; callers are responsible for avoiding collisions with
// generated names.
func (p *Params) Add(name string, v any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = v
}

// Get returns the value bound under the given name.
func (p *Params) Get(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Len returns the number of bound values.
func (p *Params) Len() int {
	return len(p.names)
}

// Names returns the placeholder names in insertion order.
func (p *Params) Names() []string {
	names := make([]string, len(p.names))
	copy(names, p.names)
	return names
}

// Values returns the bound values in insertion order.
func (p *Params) Values() []any {
	vs := make([]any, len(p.names))
	for i, name := range p.names {
		vs[i] = p.values[name]
	}
	return vs
}

// List returns the collection as an ordered list of name/value pairs.
func (p *Params) List() []Param {
	list := make([]Param, len(p.names))
	for i, name := range p.names {
		list[i] = Param{Name: name, Value: p.values[name]}
	}
	return list
}

// NamedArgs returns the collection as database/sql named arguments, in
// insertion order, for drivers that support named parameters natively.
func (p *Params) NamedArgs() []sql.NamedArg {
	args := make([]sql.NamedArg, len(p.names))
	for i, name := range p.names {
		args[i] = sql.Named(name, p.values[name])
	}
	return args
}

// String returns a compact representation of the collection, mainly for
// logging and test failures.
func (p *Params) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range p.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s:%v", name, p.values[name])
	}
	sb.WriteByte('}')
	return sb.String()
}
