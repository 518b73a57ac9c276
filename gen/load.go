package gen

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/syssam/scribe"
	"github.com/syssam/scribe/dialect/sql/schema"
)

// Spec is the decoded form of a YAML schema file.
type Spec struct {
	// Name labels the schema in generated documentation.
	Name   string       `yaml:"name,omitempty"`
	Tables []*TableSpec `yaml:"tables"`
}

// TableSpec describes one table of the schema.
type TableSpec struct {
	Name    string        `yaml:"name"`
	Comment string        `yaml:"comment,omitempty"`
	Options string        `yaml:"options,omitempty"`
	Columns []*ColumnSpec `yaml:"columns"`
	// PrimaryKey lists the key columns by name. A single pk or bigpk
	// column needs no entry here, its type carries the key.
	PrimaryKey  []string          `yaml:"primary_key,omitempty"`
	Indexes     []*IndexSpec      `yaml:"indexes,omitempty"`
	ForeignKeys []*ForeignKeySpec `yaml:"foreign_keys,omitempty"`
}

// ColumnSpec describes one column. Type holds an abstract type token of
// the sql package, or physical SQL for anything the type maps miss.
type ColumnSpec struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Size     int    `yaml:"size,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty"`
	Unique   bool   `yaml:"unique,omitempty"`
	// Default is a literal default value, quoted per its Go type.
	Default any `yaml:"default,omitempty"`
	// DefaultExpr is a raw SQL default, emitted without quoting.
	DefaultExpr string `yaml:"default_expr,omitempty"`
}

// IndexSpec describes one secondary index.
type IndexSpec struct {
	Name    string   `yaml:"name"`
	Unique  bool     `yaml:"unique,omitempty"`
	Columns []string `yaml:"columns"`
}

// ForeignKeySpec describes one outgoing foreign key.
type ForeignKeySpec struct {
	Symbol     string   `yaml:"symbol"`
	Columns    []string `yaml:"columns"`
	RefTable   string   `yaml:"ref_table"`
	RefColumns []string `yaml:"ref_columns"`
	OnDelete   string   `yaml:"on_delete,omitempty"`
	OnUpdate   string   `yaml:"on_update,omitempty"`
}

// Load decodes a schema spec from r. Unknown keys are rejected, so a
// typo fails loading instead of silently dropping the value.
func Load(r io.Reader) (*Spec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	spec := &Spec{}
	if err := dec.Decode(spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, NewSchemaError("", "", "schema file is empty", nil)
		}
		return nil, NewSchemaError("", "", "cannot decode schema file", err)
	}
	if len(spec.Tables) == 0 {
		return nil, NewSchemaError("", "", "schema defines no tables", nil)
	}
	return spec, nil
}

// LoadFile reads and decodes the schema file at path.
func LoadFile(fs afero.Fs, path string) (*Spec, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gen: open schema: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Schema converts the spec into table descriptors. Problems across the
// whole spec are collected and reported together, so one run surfaces
// every unknown column and table reference.
func (s *Spec) Schema() ([]*schema.Table, error) {
	var errs []error
	tables := make([]*schema.Table, len(s.Tables))
	byName := make(map[string]*schema.Table, len(s.Tables))
	for i, ts := range s.Tables {
		t := schema.NewTable(ts.Name).SetComment(ts.Comment).SetOptions(ts.Options)
		for _, cs := range ts.Columns {
			c := &schema.Column{
				Name:     cs.Name,
				Type:     cs.Type,
				Size:     cs.Size,
				Nullable: cs.Nullable,
				Unique:   cs.Unique,
			}
			switch {
			case cs.DefaultExpr != "":
				c.Default = schema.Expr(cs.DefaultExpr)
			case cs.Default != nil:
				c.Default = cs.Default
			}
			t.AddColumn(c)
		}
		for _, name := range ts.PrimaryKey {
			c, ok := t.Column(name)
			if !ok {
				errs = append(errs, NewSchemaError(ts.Name, name, "primary key references unknown column", nil))
				continue
			}
			t.PrimaryKey = append(t.PrimaryKey, c)
		}
		for _, is := range ts.Indexes {
			t.AddIndex(is.Name, is.Unique, is.Columns)
		}
		tables[i] = t
		byName[ts.Name] = t
	}
	// Foreign keys resolve after every table exists, so a reference may
	// point forward in the file.
	for i, ts := range s.Tables {
		for _, fks := range ts.ForeignKeys {
			fk, err := resolveFK(tables[i], fks, byName)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			tables[i].AddForeignKey(fk)
		}
	}
	if err := scribe.NewAggregateError(errs...); err != nil {
		return nil, err
	}
	return tables, nil
}

// resolveFK binds a foreign-key spec to the loaded descriptor set.
func resolveFK(t *schema.Table, spec *ForeignKeySpec, byName map[string]*schema.Table) (*schema.ForeignKey, error) {
	ref, ok := byName[spec.RefTable]
	if !ok {
		msg := fmt.Sprintf("foreign key %q references unknown table %q", spec.Symbol, spec.RefTable)
		return nil, NewSchemaError(t.Name, "", msg, nil)
	}
	onDelete, err := refAction(spec.OnDelete)
	if err != nil {
		return nil, NewSchemaError(t.Name, "", fmt.Sprintf("foreign key %q: %v", spec.Symbol, err), nil)
	}
	onUpdate, err := refAction(spec.OnUpdate)
	if err != nil {
		return nil, NewSchemaError(t.Name, "", fmt.Sprintf("foreign key %q: %v", spec.Symbol, err), nil)
	}
	fk := &schema.ForeignKey{
		Symbol:   spec.Symbol,
		RefTable: ref,
		OnDelete: onDelete,
		OnUpdate: onUpdate,
	}
	for _, name := range spec.Columns {
		c, ok := t.Column(name)
		if !ok {
			msg := fmt.Sprintf("foreign key %q references unknown column", spec.Symbol)
			return nil, NewSchemaError(t.Name, name, msg, nil)
		}
		fk.Columns = append(fk.Columns, c)
	}
	for _, name := range spec.RefColumns {
		c, ok := ref.Column(name)
		if !ok {
			msg := fmt.Sprintf("foreign key %q references unknown column", spec.Symbol)
			return nil, NewSchemaError(ref.Name, name, msg, nil)
		}
		fk.RefColumns = append(fk.RefColumns, c)
	}
	return fk, nil
}

// refAction parses a referential action spelled in the schema file.
// Spellings are case-insensitive and may use underscores, so cascade,
// CASCADE and set_null all work.
func refAction(s string) (schema.ReferenceOption, error) {
	if s == "" {
		return "", nil
	}
	r := schema.ReferenceOption(strings.ToUpper(strings.ReplaceAll(s, "_", " ")))
	switch r {
	case schema.NoAction, schema.Restrict, schema.Cascade, schema.SetNull, schema.SetDefault:
		return r, nil
	}
	return "", fmt.Errorf("unknown referential action %q", s)
}
