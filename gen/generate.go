package gen

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/scribe/dialect/sql/schema"
)

// Generate loads the configured schema file and writes the generation
// artifacts: one migration script per configured dialect under
// migrations/, and a Go constants file naming every table and column.
func Generate(ctx context.Context, cfg *Config) error {
	if cfg == nil || cfg.Schema == "" {
		return NewConfigError("Schema", nil, "missing schema file in config")
	}
	if cfg.Target == "" {
		return NewConfigError("Target", nil, "missing target directory in config")
	}
	cfg.defaults()
	if err := cfg.checkVersion(); err != nil {
		return err
	}
	spec, err := LoadFile(cfg.Fs, cfg.Schema)
	if err != nil {
		return err
	}
	tables, err := spec.Schema()
	if err != nil {
		return err
	}
	files := make([]*File, 0, len(cfg.Dialects)+1)
	for _, d := range cfg.Dialects {
		name := filepath.Join("migrations", d+".sql")
		prog, err := schema.Build(d, tables...)
		if err != nil {
			return NewGenerationError("build", name, "cannot build migration program", err)
		}
		files = append(files, &File{Path: name, Body: []byte(prog.String())})
	}
	src, err := constantsFile(cfg, spec, tables)
	if err != nil {
		return err
	}
	files = append(files, src)
	w := NewWriter(cfg.Fs, cfg.Target).WithWorkers(cfg.Workers)
	return w.Write(ctx, files)
}

// constantsFile renders the Go source naming every table and column of
// the schema so queries can reference them without string literals.
func constantsFile(cfg *Config, spec *Spec, tables []*schema.Table) (*File, error) {
	name := cfg.Package + ".go"
	f := jen.NewFile(cfg.Package)
	f.HeaderComment(cfg.Header)
	if spec.Name != "" {
		f.PackageComment(fmt.Sprintf("Package %s holds the schema identifiers of the %s schema.", cfg.Package, titleCase(spec.Name)))
	}
	entities := make(map[string]string, len(tables))
	for _, t := range tables {
		entity := pascal(rules.Singularize(t.Name))
		if prev, ok := entities[entity]; ok {
			msg := fmt.Sprintf("tables %q and %q map to the same identifier %s", prev, t.Name, entity)
			return nil, NewGenerationError("render", name, msg, nil)
		}
		entities[entity] = t.Name
		f.Commentf("Schema identifiers of the %q table.", t.Name)
		f.Const().DefsFunc(func(g *jen.Group) {
			g.Id(entity + "Table").Op("=").Lit(t.Name)
			for _, c := range t.Columns {
				g.Id(entity + "Field" + pascal(c.Name)).Op("=").Lit(c.Name)
			}
		})
		f.Commentf("%sColumns holds all column names of the %q table.", entity, t.Name)
		f.Var().Id(entity + "Columns").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
			for _, c := range t.Columns {
				g.Id(entity + "Field" + pascal(c.Name))
			}
		})
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, NewGenerationError("render", name, "cannot render constants file", err)
	}
	return &File{Path: name, Body: buf.Bytes()}, nil
}

var (
	rules    = ruleset()
	acronyms = make(map[string]struct{})
)

// ruleset returns the inflection rules used for identifier naming.
func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	for _, w := range []string{"API", "ID", "IP", "JSON", "SQL", "UID", "URI", "URL", "UUID"} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

// pascal converts a snake_case name to PascalCase, keeping acronyms
// upper-cased, so author_id becomes AuthorID.
func pascal(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			words[i] = upper
			continue
		}
		words[i] = rules.Capitalize(w)
	}
	return strings.Join(words, "")
}

// titleCase upper-cases the first letter of each word for doc text.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
